package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farebox/printd/internal/core"
	"github.com/farebox/printd/internal/layout"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPrinterConfigRoundTrip(t *testing.T) {
	s := openTestStore(t)

	saved := core.PrinterConfig{
		Transport:     core.TransportRadio,
		Address:       "192.168.1.50",
		Port:          9101,
		RadioAddress:  "00:11:22:33:44:55",
		RadioName:     "TicketPrinter",
		Paper:         layout.PaperNarrow,
		Protocol:      "escpos",
		Density:       12,
		Speed:         3,
		AutoReconnect: true,
	}
	require.NoError(t, s.SavePrinterConfig(saved))

	loaded, err := s.PrinterConfig()
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestEmptyStoreYieldsDefaults(t *testing.T) {
	s := openTestStore(t)

	cfg, err := s.PrinterConfig()
	require.NoError(t, err)

	assert.Equal(t, core.TransportNetwork, cfg.Transport)
	assert.Equal(t, layout.PaperWide, cfg.Paper)
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "escpos", cfg.Protocol)
	assert.Equal(t, defaultDensity, cfg.Density)
	assert.False(t, cfg.AutoReconnect)
}

func TestCorruptEnumValuesFallBack(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Set(keyTransport, "usb"))
	require.NoError(t, s.Set(keyPaper, "a4"))
	require.NoError(t, s.Set(keyPort, "not-a-number"))

	cfg, err := s.PrinterConfig()
	require.NoError(t, err)

	assert.Equal(t, core.TransportNetwork, cfg.Transport)
	assert.Equal(t, layout.PaperWide, cfg.Paper)
	assert.Equal(t, 9100, cfg.Port)
}

func TestSaveReplacesWholesale(t *testing.T) {
	s := openTestStore(t)

	first := core.PrinterConfig{Transport: core.TransportRadio, RadioAddress: "/dev/rfcomm0", Paper: layout.PaperNarrow, Protocol: "escpos", Port: 9100, Density: 8, Speed: 2}
	require.NoError(t, s.SavePrinterConfig(first))

	second := core.PrinterConfig{Transport: core.TransportNetwork, Address: "10.0.0.9", Paper: layout.PaperWide, Protocol: "escpos", Port: 9100, Density: 8, Speed: 2}
	require.NoError(t, s.SavePrinterConfig(second))

	loaded, err := s.PrinterConfig()
	require.NoError(t, err)
	assert.Equal(t, second, loaded)
}

func TestGetUnsetKeyIsEmpty(t *testing.T) {
	s := openTestStore(t)

	v, err := s.Get("auth.jwt_secret")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, s.Set("auth.jwt_secret", "abc"))
	v, err = s.Get("auth.jwt_secret")
	require.NoError(t, err)
	assert.Equal(t, "abc", v)
}
