package delivery

import (
	"context"
	"fmt"
	"sync"
)

// MemoryUnit is the state of one unit held by a MemorySink.
type MemoryUnit struct {
	ID         UnitID
	Anchor     UnitID
	Content    string
	Affordance *CancelAffordance
}

// MemorySink is an in-memory Sink for tests and dry runs. It records every
// operation and can be told to fail a given operation.
type MemorySink struct {
	mu      sync.Mutex
	next    int
	units   map[UnitID]*MemoryUnit
	order   []UnitID
	ops     []string
	failOp  string
	failErr error
}

func NewMemorySink() *MemorySink {
	return &MemorySink{units: make(map[UnitID]*MemoryUnit)}
}

// FailOn makes every later call of op ("create", "edit", "reply",
// "cancel_set", "cancel_clear") return err.
func (s *MemorySink) FailOn(op string, err error) {
	s.mu.Lock()
	s.failOp, s.failErr = op, err
	s.mu.Unlock()
}

// Units returns a copy of all units in creation order.
func (s *MemorySink) Units() []MemoryUnit {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]MemoryUnit, 0, len(s.order))
	for _, id := range s.order {
		u := *s.units[id]
		if u.Affordance != nil {
			a := *u.Affordance
			u.Affordance = &a
		}
		out = append(out, u)
	}
	return out
}

// Ops returns the recorded operations, e.g. "edit unit-1".
func (s *MemorySink) Ops() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ops...)
}

func (s *MemorySink) CreateUnit(ctx context.Context, text string) (UnitID, error) {
	return s.add("create", "", text)
}

func (s *MemorySink) ReplyAsNewUnit(ctx context.Context, anchor UnitID, text string) (UnitID, error) {
	return s.add("reply", anchor, text)
}

func (s *MemorySink) EditUnit(ctx context.Context, unit UnitID, text string) error {
	return s.update("edit", unit, func(u *MemoryUnit) { u.Content = text })
}

func (s *MemorySink) SetCancelAffordance(ctx context.Context, unit UnitID, a CancelAffordance) error {
	return s.update("cancel_set", unit, func(u *MemoryUnit) { u.Affordance = &a })
}

func (s *MemorySink) ClearCancelAffordance(ctx context.Context, unit UnitID) error {
	return s.update("cancel_clear", unit, func(u *MemoryUnit) { u.Affordance = nil })
}

func (s *MemorySink) add(op string, anchor UnitID, text string) (UnitID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOp == op {
		return "", s.failErr
	}
	if anchor != "" {
		if _, ok := s.units[anchor]; !ok {
			return "", fmt.Errorf("unknown anchor %s", anchor)
		}
	}
	s.next++
	id := UnitID(fmt.Sprintf("unit-%d", s.next))
	s.units[id] = &MemoryUnit{ID: id, Anchor: anchor, Content: text}
	s.order = append(s.order, id)
	s.ops = append(s.ops, op+" "+string(id))
	return id, nil
}

func (s *MemorySink) update(op string, unit UnitID, fn func(*MemoryUnit)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOp == op {
		return s.failErr
	}
	u, ok := s.units[unit]
	if !ok {
		return fmt.Errorf("unknown unit %s", unit)
	}
	fn(u)
	s.ops = append(s.ops, op+" "+string(unit))
	return nil
}
