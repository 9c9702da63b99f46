package generation

import (
	"context"
	"sync/atomic"
)

// tokenBuffer is the capacity of each job's Token channel. It keeps a slow
// consumer from stalling the backend between renderer updates.
const tokenBuffer = 256

// Request is one generation job. Once submitted, the Worker owns the result
// channel and closes it when the job reaches a terminal state.
type Request struct {
	// Prompt is the fully resolved prompt (template already substituted).
	Prompt string
	// BatchSize is passed through to the backend untouched.
	BatchSize int
	// Seed selects deterministic sampling; nil lets the worker draw one from entropy.
	Seed *uint64
	// JobID identifies the job for cancellation.
	JobID string

	ctx       context.Context //nolint:containedctx
	tokens    chan Token
	cancelled atomic.Bool
}

// NewRequest builds a Request and returns the receiving side of its result
// channel. ctx represents the receiver: once it is done the Worker stops
// delivering and abandons the job silently.
func NewRequest(ctx context.Context, jobID, prompt string, batchSize int, seed *uint64) (*Request, <-chan Token) {
	if ctx == nil {
		ctx = context.Background()
	}
	ch := make(chan Token, tokenBuffer)
	return &Request{
		Prompt:    prompt,
		BatchSize: batchSize,
		Seed:      seed,
		JobID:     jobID,
		ctx:       ctx,
		tokens:    ch,
	}, ch
}

// send delivers t unless the receiver went away.
func (r *Request) send(t Token) bool {
	select {
	case r.tokens <- t:
		return true
	case <-r.ctx.Done():
		return false
	}
}

// Token is one item on a job's result channel: a text fragment, or a terminal
// failure when Err is set.
type Token struct {
	Text string
	Err  error
}

// Fragment wraps a piece of generated text.
func Fragment(text string) Token { return Token{Text: text} }

// Failure wraps a terminal error (cancellation or backend failure).
func Failure(err error) Token { return Token{Err: err} }

// IsFailure reports whether the token terminates the job.
func (t Token) IsFailure() bool { return t.Err != nil }

// Outcome labels used by metrics, events and status.
const (
	OutcomeDone      = "done"
	OutcomeCancelled = "cancelled"
	OutcomeFailed    = "failed"
	OutcomeAbandoned = "abandoned"
)
