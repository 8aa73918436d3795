package core

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"go.bug.st/serial"

	"github.com/farebox/printd/internal/layout"
)

var (
	ErrInvalidConfig        = errors.New("invalid printer configuration")
	ErrTransport            = errors.New("transport failure")
	ErrNotConnected         = errors.New("printer is not connected")
	ErrUnsupportedTransport = errors.New("unsupported transport kind")
)

// SPPProfileUUID identifies the serial-port profile used by the radio link.
const SPPProfileUUID = "00001101-0000-1000-8000-00805F9B34FB"

const (
	defaultTCPPort  = 9100
	connectTimeout  = 10 * time.Second
	radioBaudRate   = 9600
	radioReadWindow = 2 * time.Second
)

// TransportKind is the closed set of supported transports, dispatched once
// at connect time.
type TransportKind string

const (
	TransportNetwork TransportKind = "network"
	TransportRadio   TransportKind = "radio"
)

// ParseTransportKind maps a stored value to a transport kind, falling back
// to network for unknown values.
func ParseTransportKind(s string) TransportKind {
	switch TransportKind(s) {
	case TransportNetwork:
		return TransportNetwork
	case TransportRadio:
		return TransportRadio
	default:
		return TransportNetwork
	}
}

// PrinterConfig describes how to reach the printer. It is an immutable
// value: callers replace it wholesale, never mutate it in place.
type PrinterConfig struct {
	Transport     TransportKind
	Address       string
	Port          int
	RadioAddress  string
	RadioName     string
	Paper         layout.PaperWidth
	Protocol      string
	Density       int
	Speed         int
	AutoReconnect bool
}

// Transport is a live byte channel to the printer. The Manager owns the
// only instance and never hands it out.
type Transport interface {
	Write(data []byte) (int, error)
	Read(buf []byte) (int, error)
	Close() error
}

// openTransport dispatches on the configured transport kind.
func openTransport(cfg PrinterConfig) (Transport, error) {
	switch cfg.Transport {
	case TransportNetwork:
		return openNetwork(cfg)
	case TransportRadio:
		return openRadio(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedTransport, cfg.Transport)
	}
}

func openNetwork(cfg PrinterConfig) (Transport, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("%w: network address is empty", ErrInvalidConfig)
	}
	port := cfg.Port
	if port == 0 {
		port = defaultTCPPort
	}

	address := net.JoinHostPort(cfg.Address, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", address, connectTimeout)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrTransport, address, err)
	}

	if tcp, ok := conn.(*net.TCPConn); ok {
		// Small command bursts want low latency, not coalescing.
		_ = tcp.SetKeepAlive(true)
		_ = tcp.SetNoDelay(true)
	}
	return conn, nil
}

func openRadio(cfg PrinterConfig) (Transport, error) {
	device, err := resolveRadioDevice(cfg)
	if err != nil {
		return nil, err
	}

	mode := &serial.Mode{
		BaudRate: radioBaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrTransport, device, err)
	}
	_ = port.SetReadTimeout(radioReadWindow)
	return port, nil
}

// resolveRadioDevice picks the paired device's serial channel, preferring
// the configured address over the name. An address that is already a
// device path is used as-is; otherwise the bound serial ports are scanned
// for a match.
func resolveRadioDevice(cfg PrinterConfig) (string, error) {
	if cfg.RadioAddress == "" && cfg.RadioName == "" {
		return "", fmt.Errorf("%w: no radio device selected", ErrInvalidConfig)
	}

	if isDevicePath(cfg.RadioAddress) {
		return cfg.RadioAddress, nil
	}

	ports, err := serial.GetPortsList()
	if err != nil {
		return "", fmt.Errorf("%w: list serial ports: %v", ErrTransport, err)
	}

	for _, needle := range []string{cfg.RadioAddress, cfg.RadioName} {
		if needle == "" {
			continue
		}
		for _, p := range ports {
			if strings.Contains(p, needle) {
				return p, nil
			}
		}
	}
	return "", fmt.Errorf("%w: no serial channel matches device %q/%q", ErrTransport, cfg.RadioAddress, cfg.RadioName)
}

func isDevicePath(s string) bool {
	return strings.HasPrefix(s, "/dev/") || strings.HasPrefix(strings.ToUpper(s), "COM")
}
