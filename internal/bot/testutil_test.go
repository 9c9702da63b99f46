package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"llmcord/internal/config"
	"llmcord/internal/delivery"
	"llmcord/internal/generation"
)

// echoAdapter echoes the prompt, then emits tokens. With gate set it waits
// after the echo until gate is closed.
type echoAdapter struct {
	tokens []string
	genErr error
	gate   chan struct{}
	echoed chan struct{}
}

func (a *echoAdapter) Start(generation.InferParams) (generation.InferSession, error) {
	return a, nil
}

func (a *echoAdapter) Generate(ctx context.Context, prompt string, onToken func(string) error) error {
	if err := onToken(prompt); err != nil {
		return err
	}
	if a.gate != nil {
		close(a.echoed)
		select {
		case <-a.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	for _, tok := range a.tokens {
		if err := onToken(tok); err != nil {
			return err
		}
	}
	return a.genErr
}

func (a *echoAdapter) Close() error { return nil }

// fakeInteraction records units in a MemorySink; CreateOrEdit targets the first unit.
type fakeInteraction struct {
	*delivery.MemorySink
	user string

	mu       sync.Mutex
	response string
}

func newInteraction(user string) *fakeInteraction {
	return &fakeInteraction{MemorySink: delivery.NewMemorySink(), user: user}
}

func (f *fakeInteraction) CreateOrEdit(ctx context.Context, text string) error {
	f.mu.Lock()
	f.response = text
	f.mu.Unlock()
	if units := f.Units(); len(units) > 0 {
		return f.EditUnit(ctx, units[0].ID, text)
	}
	_, err := f.CreateUnit(ctx, text)
	return err
}

func (f *fakeInteraction) UserID() string { return f.user }

func (f *fakeInteraction) contents() []string {
	var out []string
	for _, u := range f.Units() {
		out = append(out, u.Content)
	}
	return out
}

// recordingSubmitter captures calls without running anything.
type recordingSubmitter struct {
	mu        sync.Mutex
	submitted []*generation.Request
	cancelled []string
	err       error
}

func (r *recordingSubmitter) Submit(req *generation.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.submitted = append(r.submitted, req)
	return nil
}

func (r *recordingSubmitter) Cancel(jobID string) {
	r.mu.Lock()
	r.cancelled = append(r.cancelled, jobID)
	r.mu.Unlock()
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Inference.MessageUpdateIntervalMS = 0
	cfg.Commands["echo"] = config.Command{Enabled: true, Description: "Echo", Prompt: "{{PROMPT}}"}
	cfg.Commands["off"] = config.Command{Enabled: false, Prompt: "{{PROMPT}}"}
	return cfg
}

// startManager runs a generation manager over adapter for the duration of the test.
func startManager(t *testing.T, adapter generation.InferenceAdapter) *generation.Manager {
	t.Helper()
	m := generation.New(adapter)
	done := make(chan struct{})
	go func() {
		_ = m.Run(context.Background())
		close(done)
	}()
	t.Cleanup(func() {
		_ = m.Close()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Errorf("manager did not stop")
		}
	})
	return m
}

func nopLogger() zerolog.Logger { return zerolog.Nop() }

// cancelSpy records Cancel calls before forwarding them to the manager.
type cancelSpy struct {
	*generation.Manager

	mu        sync.Mutex
	cancelled []string
}

func (c *cancelSpy) Cancel(jobID string) {
	c.mu.Lock()
	c.cancelled = append(c.cancelled, jobID)
	c.mu.Unlock()
	c.Manager.Cancel(jobID)
}

func (c *cancelSpy) ids() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.cancelled...)
}
