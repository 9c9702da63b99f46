package httpapi

import (
	"bufio"
	"context"
	"io"
	"testing"

	json "github.com/goccy/go-json"

	"llmcord/internal/bot"
	"llmcord/pkg/types"
)

type fakeBot struct {
	commands []types.CommandInfo
	run      func(ctx context.Context, it bot.Interaction, name string, opts bot.Options) error
	cancel   func(customID, userID string) error
}

func (f *fakeBot) Commands() []types.CommandInfo { return f.commands }

func (f *fakeBot) Hallucinate(ctx context.Context, it bot.Interaction, name string, opts bot.Options) error {
	if f.run == nil {
		return nil
	}
	return f.run(ctx, it, name, opts)
}

func (f *fakeBot) HandleCancel(customID, userID string) error {
	if f.cancel == nil {
		return nil
	}
	return f.cancel(customID, userID)
}

type fakeGen struct {
	status types.StatusResponse
	ready  bool
}

func (f *fakeGen) Status() types.StatusResponse { return f.status }
func (f *fakeGen) Ready() bool                  { return f.ready }

// decodeEvents parses an NDJSON body into unit events.
func decodeEvents(t *testing.T, r io.Reader) []types.UnitEvent {
	t.Helper()
	var out []types.UnitEvent
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		var ev types.UnitEvent
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			t.Fatalf("decode %q: %v", sc.Text(), err)
		}
		out = append(out, ev)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	return out
}

func eventTypes(evs []types.UnitEvent) []string {
	out := make([]string, len(evs))
	for i, ev := range evs {
		out[i] = ev.Type
	}
	return out
}
