package core

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/farebox/printd/internal/layout"
)

const (
	defaultCopyDelay = 500 * time.Millisecond
	defaultJobDelay  = time.Second
	jobResultsToKeep = 50
)

// Connection is the slice of the Manager the queue drives.
type Connection interface {
	Status() Status
	Connect(cfg PrinterConfig) error
	Send(data []byte) error
}

// ConfigSource yields the last saved printer configuration, used to
// auto-connect before an attempt.
type ConfigSource interface {
	PrinterConfig() (PrinterConfig, error)
}

// PrintJob is one queued print request. It is dequeued once all copies
// have been attempted, successfully or not.
type PrintJob struct {
	ID          string
	Ticket      *layout.Ticket
	Copies      int
	FullFormat  bool
	SubmittedAt time.Time
}

// JobResult records the outcome of a drained job, including partial
// success when a copy failed mid-job.
type JobResult struct {
	JobID       string
	Copies      int
	Printed     int
	Error       string
	CompletedAt time.Time
}

// QueueConfig tunes the worker delays.
type QueueConfig struct {
	CopyDelay time.Duration
	JobDelay  time.Duration
}

// Queue is a FIFO of print jobs drained by a single worker. A failed copy
// aborts the rest of that job only; the worker always proceeds to the next
// job after the inter-job delay.
type Queue struct {
	mu      sync.Mutex
	jobs    []*PrintJob
	results []*JobResult
	running bool

	conn      Connection
	cfgSource ConfigSource
	copyDelay time.Duration
	jobDelay  time.Duration
}

func NewQueue(conn Connection, cfgSource ConfigSource, cfg *QueueConfig) *Queue {
	q := &Queue{
		conn:      conn,
		cfgSource: cfgSource,
		copyDelay: defaultCopyDelay,
		jobDelay:  defaultJobDelay,
	}
	if cfg != nil {
		if cfg.CopyDelay > 0 {
			q.copyDelay = cfg.CopyDelay
		}
		if cfg.JobDelay > 0 {
			q.jobDelay = cfg.JobDelay
		}
	}
	return q
}

// Enqueue appends a job and starts the worker if it is idle.
func (q *Queue) Enqueue(t *layout.Ticket, copies int, fullFormat bool) (*PrintJob, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil ticket", ErrInvalidConfig)
	}
	if copies < 1 {
		copies = 1
	}

	job := &PrintJob{
		ID:          uuid.NewString(),
		Ticket:      t,
		Copies:      copies,
		FullFormat:  fullFormat,
		SubmittedAt: time.Now(),
	}

	q.mu.Lock()
	q.jobs = append(q.jobs, job)
	start := !q.running
	if start {
		q.running = true
	}
	q.mu.Unlock()

	if start {
		go q.worker()
	}
	return job, nil
}

// ClearQueue discards all pending jobs without attempting them. A job
// already being printed runs to completion.
func (q *Queue) ClearQueue() {
	q.mu.Lock()
	n := len(q.jobs)
	q.jobs = nil
	q.mu.Unlock()
	if n > 0 {
		log.Printf("queue: cleared %d pending jobs", n)
	}
}

func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Results returns the most recent job outcomes, newest last.
func (q *Queue) Results() []*JobResult {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*JobResult, len(q.results))
	copy(out, q.results)
	return out
}

// Wait blocks until the worker has drained the queue or the timeout
// passes.
func (q *Queue) Wait(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		q.mu.Lock()
		idle := !q.running
		q.mu.Unlock()
		if idle {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func (q *Queue) pop() *PrintJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		q.running = false
		return nil
	}
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	return job
}

func (q *Queue) worker() {
	for {
		job := q.pop()
		if job == nil {
			return
		}
		q.process(job)
		time.Sleep(q.jobDelay)
	}
}

func (q *Queue) process(job *PrintJob) {
	printed := 0
	var failure error

	for i := 0; i < job.Copies; i++ {
		if i > 0 {
			time.Sleep(q.copyDelay)
		}
		if err := q.printOnce(job); err != nil {
			failure = err
			break
		}
		printed++
	}

	result := &JobResult{
		JobID:       job.ID,
		Copies:      job.Copies,
		Printed:     printed,
		CompletedAt: time.Now(),
	}
	if failure != nil {
		result.Error = failure.Error()
		log.Printf("queue: job %s printed %d of %d copies: %v", job.ID, printed, job.Copies, failure)
	} else {
		log.Printf("queue: job %s printed %d copies", job.ID, printed)
	}

	q.mu.Lock()
	q.results = append(q.results, result)
	if len(q.results) > jobResultsToKeep {
		q.results = q.results[len(q.results)-jobResultsToKeep:]
	}
	q.mu.Unlock()
}

func (q *Queue) printOnce(job *PrintJob) error {
	cfg, err := q.ensureConnected()
	if err != nil {
		return err
	}

	formatter := layout.NewFormatter(cfg.Paper)
	var data []byte
	if job.FullFormat {
		data = formatter.FullTicket(job.Ticket)
	} else {
		data = formatter.CompactTicket(job.Ticket)
	}
	return q.conn.Send(data)
}

func (q *Queue) ensureConnected() (PrinterConfig, error) {
	cfg, err := q.cfgSource.PrinterConfig()
	if err != nil {
		return PrinterConfig{}, fmt.Errorf("%w: load printer config: %v", ErrInvalidConfig, err)
	}
	if q.conn.Status() == StatusConnected {
		return cfg, nil
	}
	if err := q.conn.Connect(cfg); err != nil {
		return PrinterConfig{}, err
	}
	return cfg, nil
}
