// Package handlers exposes the print service over HTTP.
package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farebox/printd/internal/core"
	"github.com/farebox/printd/internal/layout"
)

type PrinterHandler struct {
	service *core.PrintService
}

func NewPrinterHandler(service *core.PrintService) *PrinterHandler {
	return &PrinterHandler{service: service}
}

type TicketRequest struct {
	RouteFrom     string `json:"route_from"`
	RouteTo       string `json:"route_to"`
	CarrierCode   string `json:"carrier_code"`
	FlightNumber  string `json:"flight_number"`
	DepartureTime string `json:"departure_time"`
	ArrivalTime   string `json:"arrival_time"`
	TravelDate    string `json:"travel_date"`

	PassengerName string `json:"passenger_name"`
	PNR           string `json:"pnr"`
	BookingRef    string `json:"booking_ref"`

	Seat         string `json:"seat"`
	Gate         string `json:"gate"`
	Terminal     string `json:"terminal"`
	BoardingTime string `json:"boarding_time"`

	CabinBaggage   string `json:"cabin_baggage"`
	CheckedBaggage string `json:"checked_baggage"`

	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	PaymentStatus string `json:"payment_status"`

	ScanPayload string `json:"scan_payload"`
}

func (r *TicketRequest) ticket() *layout.Ticket {
	return &layout.Ticket{
		RouteFrom:      r.RouteFrom,
		RouteTo:        r.RouteTo,
		CarrierCode:    r.CarrierCode,
		FlightNumber:   r.FlightNumber,
		DepartureTime:  r.DepartureTime,
		ArrivalTime:    r.ArrivalTime,
		TravelDate:     r.TravelDate,
		PassengerName:  r.PassengerName,
		PNR:            r.PNR,
		BookingRef:     r.BookingRef,
		Seat:           r.Seat,
		Gate:           r.Gate,
		Terminal:       r.Terminal,
		BoardingTime:   r.BoardingTime,
		CabinBaggage:   r.CabinBaggage,
		CheckedBaggage: r.CheckedBaggage,
		Amount:         r.Amount,
		Currency:       r.Currency,
		PaymentStatus:  r.PaymentStatus,
		ScanPayload:    r.ScanPayload,
	}
}

type PrintRequest struct {
	Ticket     TicketRequest `json:"ticket" binding:"required"`
	Copies     int           `json:"copies"`
	FullFormat bool          `json:"full_format"`
}

type SendDataRequest struct {
	Data string `json:"data" binding:"required"`
}

type PrinterConfigRequest struct {
	Transport     string `json:"transport"`
	Address       string `json:"address"`
	Port          int    `json:"port"`
	RadioAddress  string `json:"radio_address"`
	RadioName     string `json:"radio_name"`
	Paper         string `json:"paper"`
	Protocol      string `json:"protocol"`
	Density       int    `json:"density"`
	Speed         int    `json:"speed"`
	AutoReconnect bool   `json:"auto_reconnect"`
}

func (r *PrinterConfigRequest) config() core.PrinterConfig {
	return core.PrinterConfig{
		Transport:     core.ParseTransportKind(r.Transport),
		Address:       r.Address,
		Port:          r.Port,
		RadioAddress:  r.RadioAddress,
		RadioName:     r.RadioName,
		Paper:         layout.ParsePaperWidth(r.Paper),
		Protocol:      r.Protocol,
		Density:       r.Density,
		Speed:         r.Speed,
		AutoReconnect: r.AutoReconnect,
	}
}

func configResponse(cfg core.PrinterConfig) gin.H {
	return gin.H{
		"transport":      string(cfg.Transport),
		"address":        cfg.Address,
		"port":           cfg.Port,
		"radio_address":  cfg.RadioAddress,
		"radio_name":     cfg.RadioName,
		"paper":          string(cfg.Paper),
		"protocol":       cfg.Protocol,
		"density":        cfg.Density,
		"speed":          cfg.Speed,
		"auto_reconnect": cfg.AutoReconnect,
	}
}

func errStatus(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidConfig), errors.Is(err, core.ErrUnsupportedTransport):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotConnected):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func (h *PrinterHandler) Connect(c *gin.Context) {
	if err := h.service.Connect(); err != nil {
		c.JSON(errStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": h.service.Status().String()})
}

func (h *PrinterHandler) Disconnect(c *gin.Context) {
	h.service.Disconnect()
	c.JSON(http.StatusOK, gin.H{"status": h.service.Status().String()})
}

func (h *PrinterHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       h.service.Status().String(),
		"pending_jobs": h.service.PendingJobs(),
	})
}

func (h *PrinterHandler) TestConnection(c *gin.Context) {
	var req PrinterConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reachable": h.service.TestConnection(req.config())})
}

func (h *PrinterHandler) Print(c *gin.Context) {
	var req PrintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := h.service.PrintTicketMultiple(req.Ticket.ticket(), req.Copies, req.FullFormat)
	if err != nil {
		c.JSON(errStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"job_id":       job.ID,
		"copies":       job.Copies,
		"submitted_at": job.SubmittedAt,
	})
}

func (h *PrinterHandler) PrintTestPage(c *gin.Context) {
	if err := h.service.PrintTestPage(); err != nil {
		c.JSON(errStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *PrinterHandler) SendData(c *gin.Context) {
	var req SendDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "data must be base64 encoded"})
		return
	}

	if err := h.service.SendData(data); err != nil {
		c.JSON(errStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bytes": len(data)})
}

func (h *PrinterHandler) ClearQueue(c *gin.Context) {
	h.service.ClearQueue()
	c.JSON(http.StatusOK, gin.H{"pending_jobs": h.service.PendingJobs()})
}

func (h *PrinterHandler) JobResults(c *gin.Context) {
	results := h.service.JobResults()
	out := make([]gin.H, 0, len(results))
	for _, r := range results {
		entry := gin.H{
			"job_id":       r.JobID,
			"copies":       r.Copies,
			"printed":      r.Printed,
			"completed_at": r.CompletedAt,
		}
		if r.Error != "" {
			entry["error"] = r.Error
		}
		out = append(out, entry)
	}
	c.JSON(http.StatusOK, gin.H{"results": out})
}

func (h *PrinterHandler) GetSettings(c *gin.Context) {
	cfg, err := h.service.PrinterConfig()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, configResponse(cfg))
}

func (h *PrinterHandler) SaveSettings(c *gin.Context) {
	var req PrinterConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg := req.config()
	if err := h.service.SavePrinterConfig(cfg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, configResponse(cfg))
}
