package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/farebox/printd/internal/escpos"
)

func TestDetectSymbology(t *testing.T) {
	tests := []struct {
		payload string
		want    escpos.BarcodeSymbology
	}{
		{"123456789012", escpos.SymbologyUPCA},
		{"1234567890123", escpos.SymbologyEAN13},
		{"12345678", escpos.SymbologyUPCE},
		{"ABC-123", escpos.SymbologyCode39},
		{"TKT 42/7", escpos.SymbologyCode39},
		{"123456", escpos.SymbologyITF},
		{"1234567890", escpos.SymbologyITF},
		{"A123456A", escpos.SymbologyCodabar},
		{"B12:34.5B", escpos.SymbologyCodabar},
		{"IND123456", escpos.SymbologyCode93},
		{"PNR42", escpos.SymbologyCode93},
		{"abc123", escpos.SymbologyCode128},
		{"hello world!", escpos.SymbologyCode128},
		{"ABC_123", escpos.SymbologyCode128},
		{"", escpos.SymbologyCode128},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectSymbology(tt.payload), "payload %q", tt.payload)
	}
}

// The EAN-8 rule sits behind the UPC-E rule, which already claims every
// 8-digit payload. The ordering is deliberate and this pins it.
func TestEAN8RuleIsShadowed(t *testing.T) {
	assert.Equal(t, escpos.SymbologyUPCE, DetectSymbology("01234567"))
}

func TestOddLengthDigitsFallThrough(t *testing.T) {
	// 7 digits: not 8/12/13 long, no CODE39 symbol, odd length rules out
	// ITF, so it lands on CODE93.
	assert.Equal(t, escpos.SymbologyCode93, DetectSymbology("1234567"))
}
