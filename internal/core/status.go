package core

import "sync"

// Status is the single authoritative connection state, owned by the
// Manager and observed by the queue and any external subscriber.
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
	StatusPrinting
	StatusError
	StatusPaperOut
	StatusOffline
)

func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusPrinting:
		return "printing"
	case StatusError:
		return "error"
	case StatusPaperOut:
		return "paper_out"
	case StatusOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// statusHub broadcasts status values to subscribers. Delivery is
// last-value-wins: each subscriber channel holds one value, and a slow
// reader sees only the most recent status, never a backlog.
type statusHub struct {
	mu   sync.Mutex
	subs map[chan Status]struct{}
	last Status
}

func newStatusHub(initial Status) *statusHub {
	return &statusHub{
		subs: make(map[chan Status]struct{}),
		last: initial,
	}
}

func (h *statusHub) publish(s Status) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = s
	for ch := range h.subs {
		select {
		case ch <- s:
		default:
			// Drop the stale value so the latest always lands.
			select {
			case <-ch:
			default:
			}
			ch <- s
		}
	}
}

func (h *statusHub) current() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last
}

// subscribe registers a new reader. The channel is primed with the latest
// status so late subscribers observe the current value immediately. The
// returned func unsubscribes.
func (h *statusHub) subscribe() (<-chan Status, func()) {
	ch := make(chan Status, 1)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	ch <- h.last
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}
	return ch, cancel
}
