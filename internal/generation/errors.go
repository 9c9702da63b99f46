package generation

import "errors"

// cancelledError terminates a job whose cancellation was observed.
type cancelledError struct{}

func (cancelledError) Error() string { return "generation cancelled" }

// ErrCancelled is the terminal error of a cancelled job.
var ErrCancelled error = cancelledError{}

// IsCancelled reports whether err is a cancellation.
func IsCancelled(err error) bool {
	var ce cancelledError
	return errors.As(err, &ce)
}

// backendError carries the backend's message verbatim; it is shown to end users as-is.
type backendError struct{ msg string }

func (e backendError) Error() string { return e.msg }

// ErrBackend constructs a backend failure with the given message.
func ErrBackend(msg string) error { return backendError{msg: msg} }

// IsBackendFailure reports whether err is a backend failure.
func IsBackendFailure(err error) bool {
	var be backendError
	return errors.As(err, &be)
}

// queueClosedError is returned by Submit after shutdown.
type queueClosedError struct{}

func (queueClosedError) Error() string { return "job queue closed" }

// ErrQueueClosed is returned when submitting to a queue that has been shut down.
var ErrQueueClosed error = queueClosedError{}

// IsQueueClosed reports whether err indicates the queue was shut down.
func IsQueueClosed(err error) bool {
	var qe queueClosedError
	return errors.As(err, &qe)
}

// dependencyUnavailableError signals a missing runtime dependency (e.g., llama.cpp).
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing/failed runtime dependency.
func IsDependencyUnavailable(err error) bool {
	var de dependencyUnavailableError
	return errors.As(err, &de)
}

// errReceiverGone aborts a job whose consumer stopped listening. Not a failure.
var errReceiverGone = errors.New("receiver gone")
