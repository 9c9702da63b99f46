package generation

import (
	"context"
	"sync"

	"github.com/emirpasic/gods/v2/queues/linkedlistqueue"
)

// Queue is the FIFO of pending requests. Any number of goroutines may Submit;
// a single Worker consumes with Next.
type Queue struct {
	mu     sync.Mutex
	items  *linkedlistqueue.Queue[*Request]
	closed bool
	// notify has capacity 1: a pending wake-up is never lost and Submit never blocks.
	notify chan struct{}
	done   chan struct{}
}

func NewQueue() *Queue {
	return &Queue{
		items:  linkedlistqueue.New[*Request](),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Submit enqueues req. It never blocks and fails only after Close.
func (q *Queue) Submit(req *Request) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.items.Enqueue(req)
	queueDepth.Set(float64(q.items.Size()))
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return nil
}

// TryNext dequeues the oldest request without blocking.
func (q *Queue) TryNext() (*Request, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil, false
	}
	req, ok := q.items.Dequeue()
	if ok {
		queueDepth.Set(float64(q.items.Size()))
	}
	return req, ok
}

// Next blocks until a request is available, the queue is closed
// (ErrQueueClosed) or ctx is done.
func (q *Queue) Next(ctx context.Context) (*Request, error) {
	for {
		if req, ok := q.TryNext(); ok {
			return req, nil
		}
		if q.isClosed() {
			return nil, ErrQueueClosed
		}
		select {
		case <-q.notify:
		case <-q.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// MarkCancelled flags a still-queued request so the Worker ends it without
// running the backend. It reports false when jobID is not waiting in the queue.
func (q *Queue) MarkCancelled(jobID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, req := range q.items.Values() {
		if req.JobID == jobID {
			req.cancelled.Store(true)
			return true
		}
	}
	return false
}

// Len returns the number of queued requests.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Size()
}

// Close shuts the queue down and returns the requests that were never
// dequeued. The caller owns them from then on.
func (q *Queue) Close() []*Request {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	close(q.done)
	left := q.items.Values()
	q.items.Clear()
	queueDepth.Set(0)
	return left
}

func (q *Queue) isClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
