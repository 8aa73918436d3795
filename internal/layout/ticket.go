// Package layout composes encoder commands into complete byte streams for
// the named ticket layouts.
package layout

// PaperWidth is the installed paper width class.
type PaperWidth string

const (
	PaperNarrow PaperWidth = "narrow"
	PaperWide   PaperWidth = "wide"
)

// Columns is the number of text columns the paper fits.
func (w PaperWidth) Columns() int {
	if w == PaperNarrow {
		return 32
	}
	return 48
}

// ParsePaperWidth maps a stored value to a paper width, falling back to
// wide for unknown values.
func ParsePaperWidth(s string) PaperWidth {
	switch PaperWidth(s) {
	case PaperNarrow:
		return PaperNarrow
	case PaperWide:
		return PaperWide
	default:
		return PaperWide
	}
}

// Ticket is the read-only travel ticket record the formatter renders.
// The formatter never mutates it.
type Ticket struct {
	RouteFrom     string
	RouteTo       string
	CarrierCode   string
	FlightNumber  string
	DepartureTime string
	ArrivalTime   string
	TravelDate    string

	PassengerName string
	PNR           string
	BookingRef    string

	Seat         string
	Gate         string
	Terminal     string
	BoardingTime string

	CabinBaggage   string
	CheckedBaggage string

	Amount        string
	Currency      string
	PaymentStatus string

	// ScanPayload is the pre-rendered scan-code string.
	ScanPayload string
}
