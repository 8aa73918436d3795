package layout

import (
	"bytes"
	"fmt"

	"github.com/farebox/printd/internal/escpos"
)

const (
	detailKeyWidth = 14
	barcodeHeight  = 80
	qrModuleSize   = 6
)

// Formatter renders tickets into complete ESC/POS byte streams for the
// configured paper width. It holds no other state.
type Formatter struct {
	width PaperWidth
}

func NewFormatter(width PaperWidth) *Formatter {
	return &Formatter{width: width}
}

func (f *Formatter) columns() int {
	return f.width.Columns()
}

// detail renders one aligned detail line: the key is padded or truncated to
// a fixed column width, followed by ": " and the value.
func (f *Formatter) detail(buf *bytes.Buffer, key, value string) {
	if len(key) > detailKeyWidth {
		key = key[:detailKeyWidth]
	}
	buf.Write(escpos.Line(fmt.Sprintf("%-*s: %s", detailKeyWidth, key, value)))
}

func (f *Formatter) header(buf *bytes.Buffer, t *Ticket) {
	buf.Write(escpos.Init())
	buf.Write(escpos.Align(escpos.AlignCenter))
	buf.Write(escpos.Bold(true))
	buf.Write(escpos.TextSize(1, 1))
	buf.Write(escpos.Line(fmt.Sprintf("%s - %s", t.RouteFrom, t.RouteTo)))
	buf.Write(escpos.TextSize(0, 0))
	buf.Write(escpos.Bold(false))
	if t.CarrierCode != "" || t.FlightNumber != "" {
		buf.Write(escpos.Line(fmt.Sprintf("%s %s", t.CarrierCode, t.FlightNumber)))
	}
	buf.Write(escpos.Align(escpos.AlignLeft))
	buf.Write(escpos.Divider(f.columns()))
}

func (f *Formatter) essentials(buf *bytes.Buffer, t *Ticket) {
	f.detail(buf, "Date", t.TravelDate)
	f.detail(buf, "Departure", t.DepartureTime)
	f.detail(buf, "Arrival", t.ArrivalTime)
	f.detail(buf, "Passenger", t.PassengerName)
	f.detail(buf, "PNR", t.PNR)
}

func (f *Formatter) scanCode(buf *bytes.Buffer, t *Ticket) {
	if t.ScanPayload == "" {
		return
	}
	buf.Write(escpos.Align(escpos.AlignCenter))
	symbology := DetectSymbology(t.ScanPayload)
	code, err := escpos.Barcode(t.ScanPayload, symbology, barcodeHeight)
	if err != nil {
		// Payload too long for a barcode block; fall back to plain text so
		// the ticket still carries the reference.
		buf.Write(escpos.Line(t.ScanPayload))
	} else {
		buf.Write(code)
		buf.Write(escpos.BlankLines(1))
	}
	buf.Write(escpos.Align(escpos.AlignLeft))
}

func (f *Formatter) footer(buf *bytes.Buffer, full bool) {
	buf.Write(escpos.Align(escpos.AlignCenter))
	buf.Write(escpos.Line("Have a pleasant journey"))
	buf.Write(escpos.Align(escpos.AlignLeft))
	buf.Write(escpos.FeedAndCut(full))
}

// FullTicket renders the complete ticket: header, essentials, boarding,
// baggage and payment blocks, scan code (QR plus barcode) and footer.
func (f *Formatter) FullTicket(t *Ticket) []byte {
	var buf bytes.Buffer
	f.header(&buf, t)
	f.essentials(&buf, t)
	f.detail(&buf, "Booking ref", t.BookingRef)

	buf.Write(escpos.Divider(f.columns()))
	f.detail(&buf, "Seat", t.Seat)
	f.detail(&buf, "Gate", t.Gate)
	f.detail(&buf, "Terminal", t.Terminal)
	f.detail(&buf, "Boarding", t.BoardingTime)

	buf.Write(escpos.Divider(f.columns()))
	f.detail(&buf, "Cabin bag", t.CabinBaggage)
	f.detail(&buf, "Checked bag", t.CheckedBaggage)

	buf.Write(escpos.Divider(f.columns()))
	f.detail(&buf, "Amount", fmt.Sprintf("%s %s", t.Currency, t.Amount))
	f.detail(&buf, "Payment", t.PaymentStatus)

	buf.Write(escpos.DoubleDivider(f.columns()))
	if t.ScanPayload != "" {
		buf.Write(escpos.Align(escpos.AlignCenter))
		if qr, err := escpos.QRCode(t.ScanPayload, qrModuleSize); err == nil {
			buf.Write(qr)
			buf.Write(escpos.BlankLines(1))
		}
		buf.Write(escpos.Align(escpos.AlignLeft))
	}
	f.scanCode(&buf, t)
	f.footer(&buf, true)
	return buf.Bytes()
}

// CompactTicket renders the short form: header, essentials, scan code and
// footer with a partial cut.
func (f *Formatter) CompactTicket(t *Ticket) []byte {
	var buf bytes.Buffer
	f.header(&buf, t)
	f.essentials(&buf, t)
	f.detail(&buf, "Seat", t.Seat)
	buf.Write(escpos.DoubleDivider(f.columns()))
	f.scanCode(&buf, t)
	f.footer(&buf, false)
	return buf.Bytes()
}

// Receipt renders the payment receipt only.
func (f *Formatter) Receipt(t *Ticket) []byte {
	var buf bytes.Buffer
	buf.Write(escpos.Init())
	buf.Write(escpos.Align(escpos.AlignCenter))
	buf.Write(escpos.Bold(true))
	buf.Write(escpos.Line("PAYMENT RECEIPT"))
	buf.Write(escpos.Bold(false))
	buf.Write(escpos.Align(escpos.AlignLeft))
	buf.Write(escpos.Divider(f.columns()))
	f.detail(&buf, "Passenger", t.PassengerName)
	f.detail(&buf, "PNR", t.PNR)
	f.detail(&buf, "Amount", fmt.Sprintf("%s %s", t.Currency, t.Amount))
	f.detail(&buf, "Payment", t.PaymentStatus)
	buf.Write(escpos.Divider(f.columns()))
	f.scanCode(&buf, t)
	f.footer(&buf, false)
	return buf.Bytes()
}

// TestPage exercises alignment, sizing, dividers and both scan-code
// commands so a technician can verify the printer end to end.
func (f *Formatter) TestPage() []byte {
	var buf bytes.Buffer
	buf.Write(escpos.Init())
	buf.Write(escpos.Align(escpos.AlignCenter))
	buf.Write(escpos.Bold(true))
	buf.Write(escpos.TextSize(1, 1))
	buf.Write(escpos.Line("PRINTER TEST"))
	buf.Write(escpos.TextSize(0, 0))
	buf.Write(escpos.Bold(false))

	buf.Write(escpos.Align(escpos.AlignLeft))
	buf.Write(escpos.Line("left"))
	buf.Write(escpos.Align(escpos.AlignCenter))
	buf.Write(escpos.Line("center"))
	buf.Write(escpos.Align(escpos.AlignRight))
	buf.Write(escpos.Line("right"))
	buf.Write(escpos.Align(escpos.AlignLeft))

	buf.Write(escpos.Divider(f.columns()))
	buf.Write(escpos.Line(fmt.Sprintf("paper width: %d columns", f.columns())))
	buf.Write(escpos.DoubleDivider(f.columns()))

	buf.Write(escpos.Align(escpos.AlignCenter))
	if code, err := escpos.Barcode("1234567890128", escpos.SymbologyEAN13, barcodeHeight); err == nil {
		buf.Write(code)
		buf.Write(escpos.BlankLines(1))
	}
	if qr, err := escpos.QRCode("printd test page", qrModuleSize); err == nil {
		buf.Write(qr)
		buf.Write(escpos.BlankLines(1))
	}
	buf.Write(escpos.Align(escpos.AlignLeft))
	buf.Write(escpos.FeedAndCut(false))
	return buf.Bytes()
}
