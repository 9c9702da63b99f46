package delivery

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UnitID is an opaque handle of a delivered unit, assigned by the Sink.
type UnitID string

// Sink is the chat transport. Every method may fail; a failure aborts the
// synchronization pass in progress.
type Sink interface {
	CreateUnit(ctx context.Context, text string) (UnitID, error)
	EditUnit(ctx context.Context, unit UnitID, text string) error
	ReplyAsNewUnit(ctx context.Context, anchor UnitID, text string) (UnitID, error)
	SetCancelAffordance(ctx context.Context, unit UnitID, a CancelAffordance) error
	ClearCancelAffordance(ctx context.Context, unit UnitID) error
}

// CancelAffordance is the cancel control attached to the newest unit. It
// names the job (the id of its root unit) and the only user allowed to use it.
type CancelAffordance struct {
	JobID  string
	UserID string
}

const affordancePrefix = "cancel"

// CustomID encodes the affordance as "cancel#<job>#<user>".
func (a CancelAffordance) CustomID() string {
	return affordancePrefix + "#" + a.JobID + "#" + a.UserID
}

// ParseCancelAffordance decodes a custom id produced by CustomID.
func ParseCancelAffordance(customID string) (CancelAffordance, error) {
	parts := strings.Split(customID, "#")
	if len(parts) != 3 || parts[0] != affordancePrefix || parts[1] == "" || parts[2] == "" {
		return CancelAffordance{}, fmt.Errorf("malformed cancel id %q", customID)
	}
	return CancelAffordance{JobID: parts[1], UserID: parts[2]}, nil
}

// Authorizes reports whether userID may activate the affordance. The receiver
// must come from the job's own record, not from a parsed custom id.
func (a CancelAffordance) Authorizes(userID string) bool {
	return userID != "" && userID == a.UserID
}

// TransportError wraps a failed Sink operation.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransportError reports whether err came from the Sink.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

func transportErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{Op: op, Err: err}
}
