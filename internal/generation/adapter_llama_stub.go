//go:build !llama

package generation

// This file provides a no-CGO stub for the llama adapter. It is compiled when
// the 'llama' build tag is NOT set, keeping default builds and CI CGO-free.

var llamaBuilt = false

const stubMessage = "llama support not built (missing 'llama' build tag)"

type llamaAdapter struct {
	cfg LlamaConfig
}

// NewLlamaAdapter returns an adapter whose Start always fails; every job
// ends with a backend failure explaining the missing build tag.
func NewLlamaAdapter(cfg LlamaConfig) (InferenceAdapter, error) {
	return &llamaAdapter{cfg: cfg}, nil
}

func (a *llamaAdapter) Start(params InferParams) (InferSession, error) {
	return nil, ErrDependencyUnavailable(stubMessage)
}
