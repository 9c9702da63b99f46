package generation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Worker executes queued requests one at a time against the adapter. The
// backend context is never shared between two jobs.
type Worker struct {
	adapter   InferenceAdapter
	queue     *Queue
	cancels   *CancelRegistry
	publisher EventPublisher
	log       zerolog.Logger
	threads   int
	maxTokens int

	mu      sync.RWMutex
	current string
	totals  map[string]uint64
}

// Run consumes the queue until it is closed or ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	for {
		req, err := w.queue.Next(ctx)
		if err != nil {
			if IsQueueClosed(err) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		w.process(ctx, req)
	}
}

// process runs req to completion and closes its channel. At most one Failure
// is sent, always last.
func (w *Worker) process(ctx context.Context, req *Request) {
	start := time.Now()
	defer close(req.tokens)
	w.setCurrent(req.JobID)
	defer w.setCurrent("")
	inflight.Set(1)
	defer inflight.Set(0)

	w.publisher.Publish(Event{Name: "job_start", JobID: req.JobID, Fields: map[string]any{}})
	w.log.Info().Str("job_id", req.JobID).Int("batch_size", req.BatchSize).Msg("job start")

	var frags int
	err := w.execute(ctx, req, &frags)

	outcome := OutcomeDone
	switch {
	case err == nil:
	case errors.Is(err, errReceiverGone):
		outcome = OutcomeAbandoned
	case IsCancelled(err):
		outcome = OutcomeCancelled
		req.send(Failure(ErrCancelled))
	default:
		outcome = OutcomeFailed
		if !IsBackendFailure(err) {
			err = ErrBackend(err.Error())
		}
		req.send(Failure(err))
	}

	dur := time.Since(start)
	w.record(outcome)
	jobsTotal.WithLabelValues(outcome).Inc()
	jobDuration.WithLabelValues(outcome).Observe(dur.Seconds())
	w.publisher.Publish(Event{Name: eventForOutcome(outcome), JobID: req.JobID, Fields: map[string]any{"fragments": frags}})

	lvl := zerolog.InfoLevel
	switch outcome {
	case OutcomeFailed:
		lvl = zerolog.WarnLevel
	case OutcomeCancelled, OutcomeAbandoned:
		lvl = zerolog.DebugLevel
	}
	ev := w.log.WithLevel(lvl)
	if outcome == OutcomeFailed {
		ev = ev.Err(err)
	}
	ev.Str("job_id", req.JobID).Str("outcome", outcome).Int("fragments", frags).Dur("dur", dur).Msg("job end")
}

// execute drives one generation. Cancellation is polled before every fragment
// is forwarded; nothing is sent once it has been observed.
func (w *Worker) execute(ctx context.Context, req *Request, frags *int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrBackend(fmt.Sprintf("backend panic: %v", r))
		}
	}()
	if req.cancelled.Load() {
		return ErrCancelled
	}
	if w.adapter == nil {
		return ErrBackend("no inference adapter configured")
	}
	sess, err := w.adapter.Start(InferParams{
		Seed:      resolveSeed(req.Seed),
		BatchSize: req.BatchSize,
		Threads:   w.threads,
		MaxTokens: w.maxTokens,
	})
	if err != nil {
		return ErrBackend(err.Error())
	}
	defer func() { _ = sess.Close() }()

	// The adapter is asked to return onToken's error, but the callback's
	// verdict wins regardless of what it reports.
	var cbErr error
	genErr := sess.Generate(ctx, req.Prompt, func(frag string) error {
		if w.cancels.DrainAndCheck(req.JobID) {
			cbErr = ErrCancelled
			return cbErr
		}
		if !req.send(Fragment(frag)) {
			cbErr = errReceiverGone
			return cbErr
		}
		*frags++
		fragmentsTotal.Inc()
		return nil
	})
	if cbErr != nil {
		return cbErr
	}
	return genErr
}

// resolveSeed returns the requested seed or one drawn from system entropy.
func resolveSeed(seed *uint64) uint64 {
	if seed != nil {
		return *seed
	}
	return rand.Uint64()
}

// Current returns the id of the running job, or "" when idle.
func (w *Worker) Current() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

func (w *Worker) setCurrent(id string) {
	w.mu.Lock()
	w.current = id
	w.mu.Unlock()
}

func (w *Worker) record(outcome string) {
	w.mu.Lock()
	w.totals[outcome]++
	w.mu.Unlock()
}

func (w *Worker) snapshotTotals() map[string]uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make(map[string]uint64, len(w.totals))
	for k, v := range w.totals {
		out[k] = v
	}
	return out
}

func eventForOutcome(outcome string) string {
	switch outcome {
	case OutcomeCancelled:
		return "job_cancelled"
	case OutcomeFailed:
		return "job_failed"
	case OutcomeAbandoned:
		return "job_abandoned"
	default:
		return "job_done"
	}
}
