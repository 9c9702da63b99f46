package generation

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Manager is the entry point of the package: callers Submit requests and
// Cancel jobs from any goroutine while Run drives the single Worker.
type Manager struct {
	queue     *Queue
	cancels   *CancelRegistry
	worker    *Worker
	publisher EventPublisher
	log       zerolog.Logger
	startTime time.Time
	closed    atomic.Bool
}

// New constructs a Manager around adapter with default settings.
func New(adapter InferenceAdapter) *Manager {
	return NewWithConfig(ManagerConfig{Adapter: adapter})
}

// Submit enqueues req. It never blocks; it fails only after Close.
func (m *Manager) Submit(req *Request) error {
	if err := m.queue.Submit(req); err != nil {
		return err
	}
	m.publisher.Publish(Event{Name: "job_queued", JobID: req.JobID, Fields: map[string]any{}})
	return nil
}

// Cancel requests cancellation of jobID. A job still waiting in the queue is
// marked and ends as soon as it is dequeued; otherwise the request goes to the
// registry polled by the running job. Unknown or finished jobs are a no-op.
func (m *Manager) Cancel(jobID string) {
	if m.queue.MarkCancelled(jobID) {
		cancelRequestsTotal.WithLabelValues("queued").Inc()
		m.log.Debug().Str("job_id", jobID).Msg("cancel queued job")
		return
	}
	m.cancels.RequestCancel(jobID)
	cancelRequestsTotal.WithLabelValues("running").Inc()
	m.log.Debug().Str("job_id", jobID).Msg("cancel requested")
}

// Run executes queued jobs until ctx is done or Close is called.
func (m *Manager) Run(ctx context.Context) error {
	return m.worker.Run(ctx)
}

// Close shuts the queue down. Jobs that never started end with a backend failure.
func (m *Manager) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	for _, req := range m.queue.Close() {
		req.send(Failure(ErrBackend("generation queue shut down")))
		close(req.tokens)
	}
	return nil
}

// Ready reports whether jobs can be accepted.
func (m *Manager) Ready() bool {
	return !m.closed.Load() && m.worker.adapter != nil
}

// SetEventPublisher installs p for lifecycle events. Call before Run.
func (m *Manager) SetEventPublisher(p EventPublisher) {
	if p == nil {
		p = noopPublisher{}
	}
	m.publisher = p
	m.worker.publisher = p
}
