package core

import (
	"fmt"

	"github.com/farebox/printd/internal/layout"
)

// ConfigStore persists the printer configuration between runs.
type ConfigStore interface {
	ConfigSource
	SavePrinterConfig(cfg PrinterConfig) error
}

// PrintService is the single service object callers hold. It wires the
// connection manager, the job queue and the settings store together and is
// constructed once at process start.
type PrintService struct {
	manager *Manager
	queue   *Queue
	store   ConfigStore
}

func NewPrintService(manager *Manager, queue *Queue, store ConfigStore) *PrintService {
	return &PrintService{
		manager: manager,
		queue:   queue,
		store:   store,
	}
}

// Connect opens the printer connection using the saved configuration.
func (s *PrintService) Connect() error {
	cfg, err := s.store.PrinterConfig()
	if err != nil {
		return fmt.Errorf("%w: load printer config: %v", ErrInvalidConfig, err)
	}
	return s.manager.Connect(cfg)
}

// ConnectWith opens the printer connection using an explicit configuration
// without persisting it.
func (s *PrintService) ConnectWith(cfg PrinterConfig) error {
	return s.manager.Connect(cfg)
}

func (s *PrintService) Disconnect() {
	s.manager.Disconnect()
}

// SendData passes raw protocol bytes straight to the printer.
func (s *PrintService) SendData(data []byte) error {
	return s.manager.Send(data)
}

// PrintTicket queues a single copy of the ticket.
func (s *PrintService) PrintTicket(t *layout.Ticket, fullFormat bool) (*PrintJob, error) {
	return s.queue.Enqueue(t, 1, fullFormat)
}

// PrintTicketMultiple queues copies sequential prints of the ticket.
func (s *PrintService) PrintTicketMultiple(t *layout.Ticket, copies int, fullFormat bool) (*PrintJob, error) {
	return s.queue.Enqueue(t, copies, fullFormat)
}

// PrintTestPage prints the diagnostic page immediately, auto-connecting
// with the saved configuration if needed.
func (s *PrintService) PrintTestPage() error {
	cfg, err := s.store.PrinterConfig()
	if err != nil {
		return fmt.Errorf("%w: load printer config: %v", ErrInvalidConfig, err)
	}
	if s.manager.Status() != StatusConnected {
		if err := s.manager.Connect(cfg); err != nil {
			return err
		}
	}
	return s.manager.Send(layout.NewFormatter(cfg.Paper).TestPage())
}

// TestConnection reports whether the printer described by cfg is
// reachable.
func (s *PrintService) TestConnection(cfg PrinterConfig) bool {
	return s.manager.TestConnection(cfg)
}

func (s *PrintService) Status() Status {
	return s.manager.Status()
}

func (s *PrintService) Subscribe() (<-chan Status, func()) {
	return s.manager.Subscribe()
}

func (s *PrintService) ClearQueue() {
	s.queue.ClearQueue()
}

func (s *PrintService) PendingJobs() int {
	return s.queue.Pending()
}

func (s *PrintService) JobResults() []*JobResult {
	return s.queue.Results()
}

// PrinterConfig returns the persisted configuration.
func (s *PrintService) PrinterConfig() (PrinterConfig, error) {
	return s.store.PrinterConfig()
}

// SavePrinterConfig replaces the persisted configuration wholesale.
func (s *PrintService) SavePrinterConfig(cfg PrinterConfig) error {
	return s.store.SavePrinterConfig(cfg)
}
