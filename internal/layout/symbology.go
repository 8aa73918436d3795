package layout

import (
	"regexp"
	"strings"

	"github.com/farebox/printd/internal/escpos"
)

// Detection rules, applied first-match-wins. The order is load-bearing:
// rule 2 claims every 8-digit payload before the EAN-8 rule can see it, so
// the EAN-8 rule never fires. That ordering is kept as-is because no other
// part of the system defines the intended precedence.
var (
	reDigits       = regexp.MustCompile(`^[0-9]+$`)
	reCode39       = regexp.MustCompile(`^[A-Z0-9 \-.$/%+]+$`)
	reCode39Symbol = regexp.MustCompile(`[ \-.$/%+]`)
	reCodabar      = regexp.MustCompile(`^[A-D][0-9\-$:/.+]*[A-D]$`)
	reCode93       = regexp.MustCompile(`^[A-Z0-9]+$`)
)

// DetectSymbology picks a barcode symbology from the shape of the payload.
func DetectSymbology(payload string) escpos.BarcodeSymbology {
	allDigits := reDigits.MatchString(payload)

	switch {
	case allDigits && len(payload) == 12:
		return escpos.SymbologyUPCA
	case allDigits && len(payload) == 8:
		return escpos.SymbologyUPCE
	case allDigits && len(payload) == 13:
		return escpos.SymbologyEAN13
	case allDigits && len(payload) == 8 && strings.HasPrefix(payload, "0"):
		// Unreachable: the UPC-E rule above already claims all 8-digit
		// payloads. Kept in order.
		return escpos.SymbologyEAN8
	case reCode39.MatchString(payload) && reCode39Symbol.MatchString(payload):
		return escpos.SymbologyCode39
	case allDigits && len(payload)%2 == 0:
		return escpos.SymbologyITF
	case len(payload) >= 2 && payload[0] == payload[len(payload)-1] && reCodabar.MatchString(payload):
		return escpos.SymbologyCodabar
	case reCode93.MatchString(payload):
		return escpos.SymbologyCode93
	default:
		return escpos.SymbologyCode128
	}
}
