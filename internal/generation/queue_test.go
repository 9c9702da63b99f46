package generation

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newReq(id string) *Request {
	r, _ := NewRequest(context.Background(), id, "p", 8, nil)
	return r
}

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue()
	for _, id := range []string{"1", "2", "3"} {
		if err := q.Submit(newReq(id)); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	if q.Len() != 3 {
		t.Fatalf("Len = %d", q.Len())
	}
	for _, want := range []string{"1", "2", "3"} {
		r, ok := q.TryNext()
		if !ok || r.JobID != want {
			t.Fatalf("TryNext = %v,%v want %s", r, ok, want)
		}
	}
	if _, ok := q.TryNext(); ok {
		t.Fatalf("expected empty queue")
	}
}

func TestQueue_NextWaitsForSubmit(t *testing.T) {
	q := NewQueue()
	got := make(chan string, 1)
	go func() {
		r, err := q.Next(context.Background())
		if err != nil {
			got <- "err: " + err.Error()
			return
		}
		got <- r.JobID
	}()
	time.Sleep(20 * time.Millisecond)
	_ = q.Submit(newReq("late"))
	select {
	case id := <-got:
		if id != "late" {
			t.Fatalf("Next = %q", id)
		}
	case <-time.After(time.Second):
		t.Fatalf("Next did not wake up")
	}
}

func TestQueue_NextContextDone(t *testing.T) {
	q := NewQueue()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := q.Next(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Next err = %v", err)
	}
}

func TestQueue_CloseReturnsLeftovers(t *testing.T) {
	q := NewQueue()
	_ = q.Submit(newReq("a"))
	_ = q.Submit(newReq("b"))
	left := q.Close()
	if len(left) != 2 || left[0].JobID != "a" || left[1].JobID != "b" {
		t.Fatalf("leftovers = %v", left)
	}
	if err := q.Submit(newReq("c")); !IsQueueClosed(err) {
		t.Fatalf("Submit after Close: %v", err)
	}
	if _, err := q.Next(context.Background()); !IsQueueClosed(err) {
		t.Fatalf("Next after Close: %v", err)
	}
	if q.Close() != nil {
		t.Fatalf("second Close returned requests")
	}
}

func TestQueue_MarkCancelled(t *testing.T) {
	q := NewQueue()
	r := newReq("a")
	_ = q.Submit(r)
	if q.MarkCancelled("missing") {
		t.Fatalf("marked a job that is not queued")
	}
	if !q.MarkCancelled("a") || !r.cancelled.Load() {
		t.Fatalf("queued job not marked")
	}
}
