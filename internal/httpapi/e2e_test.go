package httpapi

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"llmcord/internal/bot"
	"llmcord/internal/config"
	"llmcord/internal/generation"
	"llmcord/pkg/types"
)

// echoAdapter echoes the prompt and then emits its tokens.
type echoAdapter struct{ tokens []string }

func (a echoAdapter) Start(generation.InferParams) (generation.InferSession, error) { return a, nil }

func (a echoAdapter) Generate(ctx context.Context, prompt string, onToken func(string) error) error {
	if err := onToken(prompt); err != nil {
		return err
	}
	for _, tok := range a.tokens {
		if err := onToken(tok); err != nil {
			return err
		}
	}
	return nil
}

func (a echoAdapter) Close() error { return nil }

func TestEndToEnd_CommandStream(t *testing.T) {
	m := generation.New(echoAdapter{tokens: []string{", world!"}})
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

	cfg := config.Default()
	cfg.Inference.MessageUpdateIntervalMS = 0
	cfg.Commands["echo"] = config.Command{Enabled: true, Prompt: "{{PROMPT}}"}
	h := bot.New(cfg, m, zerolog.Nop())
	r := NewMux(h, m)

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/commands/{name}", http.MethodPost, "200"))
	w := post(r, "/commands/echo", `{"prompt":"Hello","user_id":"u1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	evs := decodeEvents(t, w.Body)
	if len(evs) == 0 || evs[0].Type != types.EventCreate || evs[0].Content != "~~Hello~~" {
		t.Fatalf("first event: %+v", evs)
	}
	root := evs[0].Unit

	final := map[string]string{}
	affordance := map[string]bool{}
	for _, ev := range evs {
		switch ev.Type {
		case types.EventCreate, types.EventEdit, types.EventReply:
			final[ev.Unit] = ev.Content
		case types.EventCancelSet:
			affordance[ev.Unit] = true
			if !strings.HasPrefix(ev.CustomID, "cancel#"+root+"#u1") {
				t.Fatalf("custom id %q", ev.CustomID)
			}
		case types.EventCancelClear:
			delete(affordance, ev.Unit)
		case types.EventError:
			t.Fatalf("unexpected error event %+v", ev)
		}
	}
	if final[root] != "**Hello**, world!" || len(final) != 1 {
		t.Fatalf("final units: %v", final)
	}
	if len(affordance) != 0 {
		t.Fatalf("affordance left: %v", affordance)
	}

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/commands/{name}", http.MethodPost, "200"))
	if after != before+1 {
		t.Fatalf("requests_total %v -> %v", before, after)
	}
	if st := m.Status(); st.JobsTotal[generation.OutcomeDone] != 1 {
		t.Fatalf("status: %+v", st)
	}
}
