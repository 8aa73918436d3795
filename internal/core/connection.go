package core

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/farebox/printd/internal/escpos"
)

const sendSettleDelay = 100 * time.Millisecond

// Manager owns the live transport and the status state machine:
// Disconnected -> Connecting -> Connected -> Printing -> Connected, with
// Error reachable on any transport fault and teardown always ending in
// Disconnected.
type Manager struct {
	mu         sync.Mutex
	status     Status
	transport  Transport
	lastConfig *PrinterConfig
	hub        *statusHub

	// open is swapped out by tests.
	open func(PrinterConfig) (Transport, error)
}

func NewManager() *Manager {
	return &Manager{
		status: StatusDisconnected,
		hub:    newStatusHub(StatusDisconnected),
		open:   openTransport,
	}
}

// setStatus must be called with mu held.
func (m *Manager) setStatus(s Status) {
	m.status = s
	m.hub.publish(s)
}

// Connect opens a transport per the config. Any existing transport is torn
// down first, so at most one transport is ever open.
func (m *Manager) Connect(cfg PrinterConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeTransportLocked()
	m.setStatus(StatusConnecting)

	t, err := m.open(cfg)
	if err != nil {
		m.setStatus(StatusError)
		log.Printf("core: connect failed: %v", err)
		return err
	}

	m.transport = t
	cfgCopy := cfg
	m.lastConfig = &cfgCopy
	m.setStatus(StatusConnected)
	log.Printf("core: connected via %s transport", cfg.Transport)
	return nil
}

// Send writes the full buffer to the printer. It fails immediately when
// not Connected and performs no I/O in that case. A partial write is a
// failure; nothing is retried here.
func (m *Manager) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status != StatusConnected || m.transport == nil {
		return fmt.Errorf("%w: status is %s", ErrNotConnected, m.status)
	}

	m.setStatus(StatusPrinting)

	n, err := m.transport.Write(data)
	if err != nil {
		m.closeTransportLocked()
		m.setStatus(StatusError)
		return fmt.Errorf("%w: wrote %d of %d bytes: %v", ErrTransport, n, len(data), err)
	}
	if n != len(data) {
		m.closeTransportLocked()
		m.setStatus(StatusError)
		return fmt.Errorf("%w: short write, %d of %d bytes", ErrTransport, n, len(data))
	}

	// Let the mechanism drain its buffer before the next burst.
	time.Sleep(sendSettleDelay)
	m.setStatus(StatusConnected)
	return nil
}

// Disconnect tears down the transport. Close errors are swallowed;
// teardown always ends in Disconnected.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeTransportLocked()
	m.setStatus(StatusDisconnected)
}

func (m *Manager) closeTransportLocked() {
	if m.transport != nil {
		if err := m.transport.Close(); err != nil {
			log.Printf("core: close transport: %v", err)
		}
		m.transport = nil
	}
}

// TestConnection reports reachability: connect, push a bare reset probe,
// disconnect. The underlying error is logged, not propagated.
func (m *Manager) TestConnection(cfg PrinterConfig) bool {
	if err := m.Connect(cfg); err != nil {
		return false
	}
	err := m.Send(escpos.Reset())
	m.Disconnect()
	if err != nil {
		log.Printf("core: connection test probe failed: %v", err)
		return false
	}
	return true
}

// CheckStatus polls the real-time status bytes and updates the state for
// offline and paper-out conditions.
func (m *Manager) CheckStatus() (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status != StatusConnected || m.transport == nil {
		return m.status, fmt.Errorf("%w: status is %s", ErrNotConnected, m.status)
	}

	probe := func(cmd []byte) (byte, error) {
		if _, err := m.transport.Write(cmd); err != nil {
			return 0, err
		}
		buf := make([]byte, 1)
		if _, err := m.transport.Read(buf); err != nil {
			return 0, err
		}
		return buf[0], nil
	}

	b, err := probe(escpos.QueryStatus())
	if err != nil {
		m.closeTransportLocked()
		m.setStatus(StatusError)
		return m.status, fmt.Errorf("%w: status query: %v", ErrTransport, err)
	}
	if b&0x08 != 0 {
		m.setStatus(StatusOffline)
		return m.status, nil
	}

	b, err = probe(escpos.QueryPaperStatus())
	if err != nil {
		m.closeTransportLocked()
		m.setStatus(StatusError)
		return m.status, fmt.Errorf("%w: paper query: %v", ErrTransport, err)
	}
	if b&0x60 != 0 {
		m.setStatus(StatusPaperOut)
		return m.status, nil
	}

	m.setStatus(StatusConnected)
	return m.status, nil
}

func (m *Manager) Status() Status {
	return m.hub.current()
}

// Subscribe returns a status stream primed with the current value. The
// second return value unsubscribes.
func (m *Manager) Subscribe() (<-chan Status, func()) {
	return m.hub.subscribe()
}

// LastConfig returns a copy of the config from the most recent successful
// connect, or nil if there has been none.
func (m *Manager) LastConfig() *PrinterConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastConfig == nil {
		return nil
	}
	cfg := *m.lastConfig
	return &cfg
}
