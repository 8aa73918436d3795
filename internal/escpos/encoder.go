// Package escpos emits ESC/POS command bytes for thermal receipt printers.
// Every function returns a self-contained byte sequence; the printer keeps
// formatting mode between commands, so callers emit explicit resets.
package escpos

import (
	"errors"
	"fmt"
	"image"
	"strings"
)

const (
	esc = 0x1B
	gs  = 0x1D
	dle = 0x10
	eot = 0x04
	dc2 = 0x12
)

var ErrPayloadTooLong = errors.New("payload exceeds command length field")

// Alignment selects horizontal text alignment.
type Alignment byte

const (
	AlignLeft   Alignment = 0
	AlignCenter Alignment = 1
	AlignRight  Alignment = 2
)

// BarcodeSymbology is the GS k function-B symbology code.
type BarcodeSymbology byte

const (
	SymbologyUPCA    BarcodeSymbology = 65
	SymbologyUPCE    BarcodeSymbology = 66
	SymbologyEAN13   BarcodeSymbology = 67
	SymbologyEAN8    BarcodeSymbology = 68
	SymbologyCode39  BarcodeSymbology = 69
	SymbologyITF     BarcodeSymbology = 70
	SymbologyCodabar BarcodeSymbology = 71
	SymbologyCode93  BarcodeSymbology = 72
	SymbologyCode128 BarcodeSymbology = 73
)

func (s BarcodeSymbology) String() string {
	switch s {
	case SymbologyUPCA:
		return "UPC-A"
	case SymbologyUPCE:
		return "UPC-E"
	case SymbologyEAN13:
		return "EAN-13"
	case SymbologyEAN8:
		return "EAN-8"
	case SymbologyCode39:
		return "CODE39"
	case SymbologyITF:
		return "ITF"
	case SymbologyCodabar:
		return "CODABAR"
	case SymbologyCode93:
		return "CODE93"
	case SymbologyCode128:
		return "CODE128"
	default:
		return "unknown"
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Init resets the printer to its power-on state.
func Init() []byte {
	return []byte{esc, '@'}
}

// Reset is the bare protocol reset probe, identical to Init.
func Reset() []byte {
	return []byte{esc, '@'}
}

func Align(a Alignment) []byte {
	if a > AlignRight {
		a = AlignLeft
	}
	return []byte{esc, 'a', byte(a)}
}

func Bold(on bool) []byte {
	n := byte(0)
	if on {
		n = 1
	}
	return []byte{esc, 'E', n}
}

// TextSize sets character width and height multipliers, each clamped to
// [0,7] so the emitted byte never leaves the valid nibble range.
func TextSize(width, height int) []byte {
	w := clamp(width, 0, 7)
	h := clamp(height, 0, 7)
	return []byte{gs, '!', byte(w<<4 | h)}
}

// Density sets the print density, clamped to [0,15]. Write-only command;
// printers that do not support it ignore it.
func Density(n int) []byte {
	return []byte{dc2, '#', byte(clamp(n, 0, 15))}
}

// Text emits s as UTF-8 with no trailing feed.
func Text(s string) []byte {
	return []byte(s)
}

// Line emits s followed by a line feed.
func Line(s string) []byte {
	return append([]byte(s), '\n')
}

// Divider emits width dash characters and a line feed.
func Divider(width int) []byte {
	if width < 0 {
		width = 0
	}
	return append([]byte(strings.Repeat("-", width)), '\n')
}

// DoubleDivider emits width '=' characters and a line feed.
func DoubleDivider(width int) []byte {
	if width < 0 {
		width = 0
	}
	return append([]byte(strings.Repeat("=", width)), '\n')
}

func BlankLines(n int) []byte {
	if n < 0 {
		n = 0
	}
	return []byte(strings.Repeat("\n", n))
}

// Barcode emits the height/width/HRI-position/font sub-commands followed by
// the GS k function-B block: [GS k symbology length payload]. The payload
// must fit the single-byte length field.
func Barcode(payload string, symbology BarcodeSymbology, heightDots int) ([]byte, error) {
	data := []byte(payload)
	if len(data) > 255 {
		return nil, fmt.Errorf("%w: barcode payload is %d bytes, limit 255", ErrPayloadTooLong, len(data))
	}

	h := clamp(heightDots, 1, 255)
	buf := make([]byte, 0, 16+len(data))
	buf = append(buf, gs, 'h', byte(h)) // bar height in dots
	buf = append(buf, gs, 'w', 2)       // module width
	buf = append(buf, gs, 'H', 2)       // HRI below the bars
	buf = append(buf, gs, 'f', 0)       // HRI font A
	buf = append(buf, gs, 'k', byte(symbology), byte(len(data)))
	buf = append(buf, data...)
	return buf, nil
}

// QRCode emits the four-part model 2 QR sequence: set model, set module
// size, set error correction, store data, print. The store block carries a
// little-endian two-byte length, so the payload is capped at 65535 bytes.
func QRCode(payload string, moduleSize int) ([]byte, error) {
	data := []byte(payload)
	if len(data) > 65535 {
		return nil, fmt.Errorf("%w: QR payload is %d bytes, limit 65535", ErrPayloadTooLong, len(data))
	}

	size := clamp(moduleSize, 1, 16)
	k := len(data) + 3
	pL := byte(k % 256)
	pH := byte(k / 256)

	buf := make([]byte, 0, 32+len(data))
	buf = append(buf, gs, '(', 'k', 4, 0, 49, 65, 50, 0)          // model 2
	buf = append(buf, gs, '(', 'k', 3, 0, 49, 67, byte(size))     // module size
	buf = append(buf, gs, '(', 'k', 3, 0, 49, 69, 48)             // EC level L
	buf = append(buf, gs, '(', 'k', pL, pH, 49, 80, 48)           // store
	buf = append(buf, data...)
	buf = append(buf, gs, '(', 'k', 3, 0, 49, 81, 48)             // print
	return buf, nil
}

// RasterImage converts img to column-major 24-dot-band raster commands.
// A pixel prints as ink when its perceptual luminance falls below the
// midpoint of the channel range. Bands shorter than 24 rows are zero
// padded. Line spacing is pinned to 24 dots for the block and reset after.
func RasterImage(img image.Image) []byte {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil
	}

	nL := byte(width % 256)
	nH := byte(width / 256)

	var buf []byte
	buf = append(buf, esc, '3', 24) // 24-dot line spacing

	for bandTop := 0; bandTop < height; bandTop += 24 {
		buf = append(buf, esc, '*', 33, nL, nH)
		for x := 0; x < width; x++ {
			for chunk := 0; chunk < 3; chunk++ {
				var b byte
				for bit := 0; bit < 8; bit++ {
					y := bandTop + chunk*8 + bit
					if y >= height {
						break
					}
					if inked(img, bounds.Min.X+x, bounds.Min.Y+y) {
						b |= 0x80 >> uint(bit)
					}
				}
				buf = append(buf, b)
			}
		}
		buf = append(buf, '\n')
	}

	buf = append(buf, esc, '2') // restore default line spacing
	return buf
}

func inked(img image.Image, x, y int) bool {
	r, g, b, _ := img.At(x, y).RGBA()
	lum := (299*r + 587*g + 114*b) / 1000
	return lum < 0x8000
}

// FeedAndCut feeds a few lines past the tear bar and cuts the paper.
func FeedAndCut(full bool) []byte {
	m := byte(1)
	if full {
		m = 0
	}
	return []byte{esc, 'd', 3, gs, 'V', m}
}

func FeedLines(n int) []byte {
	return []byte{esc, 'd', byte(clamp(n, 0, 255))}
}

// CashDrawerKick pulses drawer pin 2.
func CashDrawerKick() []byte {
	return []byte{esc, 'p', 0, 25, 250}
}

func Beep(times, durationUnits int) []byte {
	return []byte{esc, 'B', byte(clamp(times, 1, 9)), byte(clamp(durationUnits, 1, 9))}
}

// QueryStatus requests the real-time printer status byte.
func QueryStatus() []byte {
	return []byte{dle, eot, 1}
}

// QueryPaperStatus requests the real-time paper sensor status byte.
func QueryPaperStatus() []byte {
	return []byte{dle, eot, 4}
}
