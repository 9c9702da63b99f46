package generation

import "sync"

// CancelRegistry is the set of job IDs with a pending cancel request.
//
// The Worker polls it with DrainAndCheck between fragments. Every poll empties
// the set, so requests for jobs the Worker never runs again (already finished,
// unknown) are dropped on the next poll instead of accumulating.
type CancelRegistry struct {
	mu      sync.Mutex
	pending map[string]struct{}
}

func NewCancelRegistry() *CancelRegistry {
	return &CancelRegistry{pending: make(map[string]struct{})}
}

// RequestCancel records a cancel request for jobID. Duplicate requests are
// idempotent; requests for finished or unknown jobs are harmless.
func (r *CancelRegistry) RequestCancel(jobID string) {
	r.mu.Lock()
	r.pending[jobID] = struct{}{}
	r.mu.Unlock()
}

// DrainAndCheck removes all pending entries and reports whether jobID was
// among them.
func (r *CancelRegistry) DrainAndCheck(jobID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.pending) == 0 {
		return false
	}
	_, ok := r.pending[jobID]
	r.pending = make(map[string]struct{})
	return ok
}

// Len returns the number of pending entries.
func (r *CancelRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
