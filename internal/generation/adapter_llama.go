//go:build llama

package generation

import (
	"context"
	"errors"
	"strings"

	llama "github.com/go-skynet/go-llama.cpp"
)

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = true

// allGPULayers offloads every layer; llama.cpp clamps it to the model's depth.
const allGPULayers = 9999

// llamaAdapter owns the loaded model. Sessions share it, which is only safe
// because the Worker runs one job at a time.
type llamaAdapter struct {
	model   *llama.LLama
	ctxSize int
	threads int
}

// NewLlamaAdapter loads the model described by cfg.
func NewLlamaAdapter(cfg LlamaConfig) (InferenceAdapter, error) {
	if strings.TrimSpace(cfg.ModelPath) == "" {
		return nil, errors.New("model path is empty")
	}
	mo := []llama.ModelOption{
		llama.SetContext(cfg.ContextSize),
		llama.SetMMap(cfg.PreferMMap),
	}
	if cfg.BatchSize > 0 {
		mo = append(mo, llama.SetNBatch(cfg.BatchSize))
	}
	if cfg.UseGPU {
		layers := cfg.GPULayers
		if layers <= 0 {
			layers = allGPULayers
		}
		mo = append(mo, llama.SetGPULayers(layers))
	}
	m, err := llama.New(cfg.ModelPath, mo...)
	if err != nil {
		return nil, err
	}
	return &llamaAdapter{model: m, ctxSize: cfg.ContextSize, threads: cfg.Threads}, nil
}

type llamaSession struct {
	a      *llamaAdapter
	params InferParams
}

func (a *llamaAdapter) Start(params InferParams) (InferSession, error) {
	if a.model == nil {
		return nil, errors.New("llama model not initialized")
	}
	return &llamaSession{a: a, params: params}, nil
}

// Generate echoes the prompt as the first fragment, then streams the
// predicted tokens. go-llama.cpp only reports generated tokens.
func (s *llamaSession) Generate(ctx context.Context, prompt string, onToken func(string) error) error {
	if err := onToken(prompt); err != nil {
		return err
	}
	var cbErr error
	s.a.model.SetTokenCallback(func(tok string) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		if err := onToken(tok); err != nil {
			cbErr = err
			return false
		}
		return true
	})
	defer s.a.model.SetTokenCallback(nil)

	_, err := s.a.model.Predict(prompt, mapInferParamsToPredictOptions(s.params, s.a.threads, s.a.ctxSize)...)
	if cbErr != nil {
		return cbErr
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (s *llamaSession) Close() error { return nil }

// Close frees the model. Not part of InferenceAdapter; callers type-assert io.Closer.
func (a *llamaAdapter) Close() error {
	if a.model != nil {
		a.model.Free()
		a.model = nil
	}
	return nil
}

// mapInferParamsToPredictOptions converts our adapter params into go-llama.cpp options
func mapInferParamsToPredictOptions(params InferParams, threads, ctxSize int) []llama.PredictOption {
	tokens := params.MaxTokens
	if tokens <= 0 {
		tokens = ctxSize
	}
	if params.Threads > 0 {
		threads = params.Threads
	}
	po := []llama.PredictOption{
		llama.SetTokens(max(1, tokens)),
		llama.SetThreads(max(1, threads)),
		llama.SetSeed(int(params.Seed & 0x7fffffff)),
	}
	if params.BatchSize > 0 {
		po = append(po, llama.SetBatch(params.BatchSize))
	}
	return po
}
