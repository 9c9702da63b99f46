package generation

import "context"

// InferenceAdapter abstracts the model runtime used by the Worker.
// Concrete implementations (e.g., llama.cpp) should satisfy this interface.
type InferenceAdapter interface {
	// Start opens a fresh generation context for one job.
	Start(params InferParams) (InferSession, error)
}

// InferSession is the generation context of a single job.
type InferSession interface {
	// Generate streams text fragments for prompt to onToken in order, starting
	// with the echo of the prompt itself. When
	// onToken returns an error, generation must stop and Generate must return
	// that error. Implementations must return when ctx is canceled.
	Generate(ctx context.Context, prompt string, onToken func(string) error) error
	// Close releases any resources associated with the session.
	Close() error
}

// InferParams captures generation parameters passed to the adapter.
type InferParams struct {
	// Seed is always resolved; the worker draws one from entropy when the
	// request has none.
	Seed      uint64
	BatchSize int
	Threads   int
	MaxTokens int
}
