package generation

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeAdapter is an in-memory adapter used for tests.
type fakeAdapter struct {
	startErr error
	genErr   error
	tokens   []string
	panicMsg string

	// When gate is set, Generate signals paused after emitting pauseAfter
	// tokens and waits for gate to be closed.
	pauseAfter int
	paused     chan struct{}
	gate       chan struct{}

	mu      sync.Mutex
	starts  int
	prompts []string
	seeds   []uint64
	active  int
	overlap bool
}

func (f *fakeAdapter) Start(params InferParams) (InferSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	f.seeds = append(f.seeds, params.Seed)
	if f.startErr != nil {
		return nil, f.startErr
	}
	f.active++
	if f.active > 1 {
		f.overlap = true
	}
	return &fakeSession{f: f}, nil
}

func (f *fakeAdapter) startCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts
}

type fakeSession struct{ f *fakeAdapter }

func (s *fakeSession) Generate(ctx context.Context, prompt string, onToken func(string) error) error {
	s.f.mu.Lock()
	s.f.prompts = append(s.f.prompts, prompt)
	s.f.mu.Unlock()
	if s.f.panicMsg != "" {
		panic(s.f.panicMsg)
	}
	for i, tok := range s.f.tokens {
		if s.f.gate != nil && i == s.f.pauseAfter {
			close(s.f.paused)
			<-s.f.gate
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := onToken(tok); err != nil {
			return err
		}
	}
	return s.f.genErr
}

func (s *fakeSession) Close() error {
	s.f.mu.Lock()
	s.f.active--
	s.f.mu.Unlock()
	return nil
}

// runManager starts m.Run and stops it when the test ends.
func runManager(t *testing.T, m *Manager) {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- m.Run(context.Background()) }()
	t.Cleanup(func() {
		_ = m.Close()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Run: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Errorf("Run did not return after Close")
		}
	})
}

// collect reads ch until it is closed.
func collect(t *testing.T, ch <-chan Token) []Token {
	t.Helper()
	var out []Token
	timeout := time.After(2 * time.Second)
	for {
		select {
		case tok, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, tok)
		case <-timeout:
			t.Fatalf("timed out collecting tokens; got %+v", out)
		}
	}
}

func texts(toks []Token) []string {
	var out []string
	for _, tok := range toks {
		if !tok.IsFailure() {
			out = append(out, tok.Text)
		}
	}
	return out
}

// checkFailureLast fails the test unless toks holds at most one failure, in last position.
func checkFailureLast(t *testing.T, toks []Token) {
	t.Helper()
	for i, tok := range toks {
		if tok.IsFailure() && i != len(toks)-1 {
			t.Fatalf("failure at %d of %d: %+v", i, len(toks), toks)
		}
	}
}
