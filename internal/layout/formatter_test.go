package layout

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTicket() *Ticket {
	return &Ticket{
		RouteFrom:      "DEL",
		RouteTo:        "BOM",
		CarrierCode:    "FB",
		FlightNumber:   "204",
		DepartureTime:  "08:45",
		ArrivalTime:    "10:55",
		TravelDate:     "2026-09-14",
		PassengerName:  "A SHARMA",
		PNR:            "X9K42L",
		BookingRef:     "FB-2219034",
		Seat:           "12A",
		Gate:           "B7",
		Terminal:       "T2",
		BoardingTime:   "08:05",
		CabinBaggage:   "7 kg",
		CheckedBaggage: "15 kg",
		Amount:         "4350.00",
		Currency:       "INR",
		PaymentStatus:  "PAID",
		ScanPayload:    "X9K42L",
	}
}

func TestDividersUseConfiguredPaperWidth(t *testing.T) {
	wide := NewFormatter(PaperWide).FullTicket(sampleTicket())
	assert.True(t, bytes.Contains(wide, []byte(strings.Repeat("-", 48)+"\n")))
	assert.True(t, bytes.Contains(wide, []byte(strings.Repeat("=", 48)+"\n")))

	narrow := NewFormatter(PaperNarrow).FullTicket(sampleTicket())
	assert.True(t, bytes.Contains(narrow, []byte(strings.Repeat("-", 32)+"\n")))
	assert.False(t, bytes.Contains(narrow, []byte(strings.Repeat("-", 48))))
}

func TestDetailLinesAligned(t *testing.T) {
	out := NewFormatter(PaperWide).FullTicket(sampleTicket())
	assert.True(t, bytes.Contains(out, []byte("Seat          : 12A\n")))
	assert.True(t, bytes.Contains(out, []byte("PNR           : X9K42L\n")))
	assert.True(t, bytes.Contains(out, []byte("Amount        : INR 4350.00\n")))
}

func TestFullTicketCarriesScanCode(t *testing.T) {
	out := NewFormatter(PaperWide).FullTicket(sampleTicket())

	// Barcode block with the detected symbology and exact payload.
	idx := bytes.Index(out, []byte{0x1D, 'k'})
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, byte(72), out[idx+2]) // CODE93 for uppercase alnum
	assert.Equal(t, byte(6), out[idx+3])
	assert.Equal(t, "X9K42L", string(out[idx+4:idx+10]))

	// QR store block is present too.
	assert.True(t, bytes.Contains(out, []byte{0x1D, '(', 'k'}))

	// Full format ends in a full cut.
	assert.Equal(t, []byte{0x1D, 'V', 0}, out[len(out)-3:])
}

func TestCompactTicketUsesPartialCut(t *testing.T) {
	out := NewFormatter(PaperNarrow).CompactTicket(sampleTicket())
	assert.Equal(t, []byte{0x1D, 'V', 1}, out[len(out)-3:])
}

func TestOversizeScanPayloadFallsBackToText(t *testing.T) {
	tk := sampleTicket()
	tk.ScanPayload = strings.Repeat("7", 300)

	out := NewFormatter(PaperWide).CompactTicket(tk)
	assert.False(t, bytes.Contains(out, []byte{0x1D, 'k'}))
	assert.True(t, bytes.Contains(out, []byte(tk.ScanPayload+"\n")))
}

func TestReceiptSkipsBoardingDetail(t *testing.T) {
	out := NewFormatter(PaperWide).Receipt(sampleTicket())
	assert.True(t, bytes.Contains(out, []byte("PAYMENT RECEIPT\n")))
	assert.True(t, bytes.Contains(out, []byte("Payment       : PAID\n")))
	assert.False(t, bytes.Contains(out, []byte("Gate")))
}

func TestTestPageExercisesBothScanCommands(t *testing.T) {
	out := NewFormatter(PaperWide).TestPage()
	assert.True(t, bytes.Contains(out, []byte{0x1D, 'k'}))
	assert.True(t, bytes.Contains(out, []byte{0x1D, '(', 'k'}))
	assert.True(t, bytes.Contains(out, []byte("paper width: 48 columns\n")))
}

func TestPaperWidthParsing(t *testing.T) {
	assert.Equal(t, PaperNarrow, ParsePaperWidth("narrow"))
	assert.Equal(t, PaperWide, ParsePaperWidth("wide"))
	assert.Equal(t, PaperWide, ParsePaperWidth("a4"))
	assert.Equal(t, PaperWide, ParsePaperWidth(""))

	assert.Equal(t, 32, PaperNarrow.Columns())
	assert.Equal(t, 48, PaperWide.Columns())
}
