package core

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farebox/printd/internal/layout"
)

type stubConn struct {
	mu       sync.Mutex
	status   Status
	sendErrs []error
	sends    int
	gate     chan struct{}
}

func (s *stubConn) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *stubConn) Connect(PrinterConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusConnected
	return nil
}

func (s *stubConn) Send([]byte) error {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sends++
	if len(s.sendErrs) > 0 {
		err := s.sendErrs[0]
		s.sendErrs = s.sendErrs[1:]
		if err != nil {
			s.status = StatusError
		}
		return err
	}
	return nil
}

type stubConfigSource struct {
	err error
}

func (s *stubConfigSource) PrinterConfig() (PrinterConfig, error) {
	if s.err != nil {
		return PrinterConfig{}, s.err
	}
	return PrinterConfig{Transport: TransportNetwork, Address: "10.0.0.9", Paper: layout.PaperWide}, nil
}

func fastQueue(conn Connection) *Queue {
	return NewQueue(conn, &stubConfigSource{}, &QueueConfig{
		CopyDelay: time.Millisecond,
		JobDelay:  time.Millisecond,
	})
}

func ticket() *layout.Ticket {
	return &layout.Ticket{RouteFrom: "DEL", RouteTo: "BOM", PNR: "X9K42L", ScanPayload: "X9K42L"}
}

func TestQueueDrainsJobsInOrder(t *testing.T) {
	conn := &stubConn{}
	q := fastQueue(conn)

	first, err := q.Enqueue(ticket(), 1, true)
	require.NoError(t, err)
	second, err := q.Enqueue(ticket(), 2, false)
	require.NoError(t, err)

	require.True(t, q.Wait(5*time.Second))

	results := q.Results()
	require.Len(t, results, 2)
	assert.Equal(t, first.ID, results[0].JobID)
	assert.Equal(t, second.ID, results[1].JobID)
	assert.Equal(t, 1, results[0].Printed)
	assert.Equal(t, 2, results[1].Printed)
	assert.Equal(t, 3, conn.sends)
}

func TestFailedJobDoesNotAbortQueue(t *testing.T) {
	conn := &stubConn{sendErrs: []error{errors.New("write failed")}}
	q := fastQueue(conn)

	job1, err := q.Enqueue(ticket(), 1, true)
	require.NoError(t, err)
	job2, err := q.Enqueue(ticket(), 1, true)
	require.NoError(t, err)

	require.True(t, q.Wait(5*time.Second))

	results := q.Results()
	require.Len(t, results, 2)

	assert.Equal(t, job1.ID, results[0].JobID)
	assert.Equal(t, 0, results[0].Printed)
	assert.Equal(t, 1, results[0].Copies)
	assert.NotEmpty(t, results[0].Error)

	// The second job still got its attempt.
	assert.Equal(t, job2.ID, results[1].JobID)
	assert.Equal(t, 1, results[1].Printed)
	assert.Empty(t, results[1].Error)
}

func TestCopyFailureAbortsRemainingCopies(t *testing.T) {
	conn := &stubConn{sendErrs: []error{nil, errors.New("paper jam")}}
	q := fastQueue(conn)

	_, err := q.Enqueue(ticket(), 3, true)
	require.NoError(t, err)
	require.True(t, q.Wait(5*time.Second))

	results := q.Results()
	require.Len(t, results, 1)
	assert.Equal(t, 3, results[0].Copies)
	assert.Equal(t, 1, results[0].Printed)
	assert.NotEmpty(t, results[0].Error)
	assert.Equal(t, 2, conn.sends)
}

func TestQueueAutoConnects(t *testing.T) {
	conn := &stubConn{status: StatusDisconnected}
	q := fastQueue(conn)

	_, err := q.Enqueue(ticket(), 1, false)
	require.NoError(t, err)
	require.True(t, q.Wait(5*time.Second))

	assert.Equal(t, StatusConnected, conn.Status())
	assert.Equal(t, 1, conn.sends)
}

func TestQueueReportsConfigError(t *testing.T) {
	q := NewQueue(&stubConn{}, &stubConfigSource{err: errors.New("no saved config")}, &QueueConfig{
		CopyDelay: time.Millisecond,
		JobDelay:  time.Millisecond,
	})

	_, err := q.Enqueue(ticket(), 1, false)
	require.NoError(t, err)
	require.True(t, q.Wait(5*time.Second))

	results := q.Results()
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Error, "no saved config")
}

func TestClearQueueDiscardsPendingOnly(t *testing.T) {
	conn := &stubConn{gate: make(chan struct{})}
	q := fastQueue(conn)

	_, err := q.Enqueue(ticket(), 1, false)
	require.NoError(t, err)

	// Wait for the worker to block inside the first send, then stack up
	// two more jobs and discard them.
	time.Sleep(50 * time.Millisecond)
	q.Enqueue(ticket(), 1, false)
	q.Enqueue(ticket(), 1, false)
	assert.Equal(t, 2, q.Pending())

	q.ClearQueue()
	assert.Equal(t, 0, q.Pending())

	close(conn.gate)
	require.True(t, q.Wait(5*time.Second))

	assert.Len(t, q.Results(), 1)
	assert.Equal(t, 1, conn.sends)
}

func TestEnqueueValidation(t *testing.T) {
	q := fastQueue(&stubConn{})

	_, err := q.Enqueue(nil, 1, false)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	job, err := q.Enqueue(ticket(), 0, false)
	require.NoError(t, err)
	assert.Equal(t, 1, job.Copies)
	q.Wait(5 * time.Second)
}
