package bot

import (
	"errors"
	"fmt"
)

// commandNotFoundError is returned for unknown or disabled commands.
type commandNotFoundError struct{ name string }

func (e commandNotFoundError) Error() string { return fmt.Sprintf("command not found: %s", e.name) }

// ErrCommandNotFound constructs a commandNotFoundError.
func ErrCommandNotFound(name string) error { return commandNotFoundError{name: name} }

// IsCommandNotFound reports whether err is a commandNotFoundError.
func IsCommandNotFound(err error) bool {
	var ce commandNotFoundError
	return errors.As(err, &ce)
}

// notAuthorizedError rejects a cancel activated by someone other than the requester.
type notAuthorizedError struct{}

func (notAuthorizedError) Error() string { return "only the requesting user may cancel this generation" }

// ErrNotAuthorized is returned by HandleCancel for a foreign user.
var ErrNotAuthorized error = notAuthorizedError{}

// IsNotAuthorized reports whether err is an authorization failure.
func IsNotAuthorized(err error) bool {
	var ne notAuthorizedError
	return errors.As(err, &ne)
}

// invalidInputError flags a malformed command or cancel request.
type invalidInputError struct{ msg string }

func (e invalidInputError) Error() string { return e.msg }

// ErrInvalidInput constructs an invalidInputError.
func ErrInvalidInput(msg string) error { return invalidInputError{msg: msg} }

// IsInvalidInput reports whether err is an invalidInputError.
func IsInvalidInput(err error) bool {
	var ie invalidInputError
	return errors.As(err, &ie)
}
