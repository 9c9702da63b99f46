package httpapi

import (
	"context"
	"io"
	"net/http"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"llmcord/internal/delivery"
	"llmcord/pkg/types"
)

// streamInteraction delivers units to an HTTP client as a stream of NDJSON
// unit events. The 200 status and headers are sent with the first event, so
// a request can still fail with a JSON error until then.
type streamInteraction struct {
	w     http.ResponseWriter
	out   io.Writer
	flush func()
	user  string

	mu      sync.Mutex
	enc     *json.Encoder
	seq     int
	root    delivery.UnitID
	started bool
}

func newStreamInteraction(w http.ResponseWriter, out io.Writer, userID string) *streamInteraction {
	s := &streamInteraction{w: w, out: out, user: userID, enc: json.NewEncoder(out)}
	if f, ok := w.(http.Flusher); ok {
		s.flush = f.Flush
	}
	return s
}

func (s *streamInteraction) emit(ctx context.Context, ev types.UnitEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		s.w.Header().Set("Content-Type", "application/x-ndjson")
		s.w.Header().Set("Cache-Control", "no-cache")
		s.w.WriteHeader(http.StatusOK)
		s.started = true
	}
	s.seq++
	ev.Seq = s.seq
	if err := s.enc.Encode(ev); err != nil {
		return err
	}
	if s.flush != nil {
		s.flush()
	}
	unitEventsTotal.WithLabelValues(ev.Type).Inc()
	return nil
}

func (s *streamInteraction) CreateUnit(ctx context.Context, text string) (delivery.UnitID, error) {
	id := delivery.UnitID(uuid.NewString())
	if err := s.emit(ctx, types.UnitEvent{Type: types.EventCreate, Unit: string(id), Content: text}); err != nil {
		return "", err
	}
	s.mu.Lock()
	if s.root == "" {
		s.root = id
	}
	s.mu.Unlock()
	return id, nil
}

func (s *streamInteraction) EditUnit(ctx context.Context, unit delivery.UnitID, text string) error {
	return s.emit(ctx, types.UnitEvent{Type: types.EventEdit, Unit: string(unit), Content: text})
}

func (s *streamInteraction) ReplyAsNewUnit(ctx context.Context, anchor delivery.UnitID, text string) (delivery.UnitID, error) {
	id := delivery.UnitID(uuid.NewString())
	err := s.emit(ctx, types.UnitEvent{Type: types.EventReply, Unit: string(id), Anchor: string(anchor), Content: text})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *streamInteraction) SetCancelAffordance(ctx context.Context, unit delivery.UnitID, a delivery.CancelAffordance) error {
	return s.emit(ctx, types.UnitEvent{Type: types.EventCancelSet, Unit: string(unit), CustomID: a.CustomID()})
}

func (s *streamInteraction) ClearCancelAffordance(ctx context.Context, unit delivery.UnitID) error {
	return s.emit(ctx, types.UnitEvent{Type: types.EventCancelClear, Unit: string(unit)})
}

// CreateOrEdit rewrites the root unit, creating it if the stream is empty.
func (s *streamInteraction) CreateOrEdit(ctx context.Context, text string) error {
	s.mu.Lock()
	root := s.root
	s.mu.Unlock()
	if root == "" {
		_, err := s.CreateUnit(ctx, text)
		return err
	}
	return s.EditUnit(ctx, root, text)
}

func (s *streamInteraction) UserID() string { return s.user }

// fail ends the stream with an error event.
func (s *streamInteraction) fail(ctx context.Context, msg string) error {
	return s.emit(ctx, types.UnitEvent{Type: types.EventError, Content: msg})
}

// Started reports whether any event has been written.
func (s *streamInteraction) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// loggingLineWriter logs complete NDJSON lines at debug level.
type loggingLineWriter struct {
	path string
	buf  []byte
}

func (lw *loggingLineWriter) Write(p []byte) (int, error) {
	lw.buf = append(lw.buf, p...)
	for {
		idx := indexByte(lw.buf, '\n')
		if idx < 0 {
			break
		}
		if line := string(lw.buf[:idx]); len(line) > 0 {
			logger().Debug().Str("path", lw.path).RawJSON("event", []byte(line)).Msg("unit event")
		}
		lw.buf = lw.buf[idx+1:]
	}
	return len(p), nil
}

func indexByte(b []byte, c byte) int {
	for i := range b {
		if b[i] == c {
			return i
		}
	}
	return -1
}
