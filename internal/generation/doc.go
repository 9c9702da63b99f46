// Package generation schedules inference jobs onto a single serialized worker
// and streams the produced text back to the submitting caller. It is
// structured into small files by concern:
//
//   - types.go: Request, Token and the job outcome labels.
//   - errors.go: error types and helpers (IsCancelled, IsBackendFailure, IsQueueClosed).
//   - adapter_iface.go: InferenceAdapter/InferSession, the token-producing backend.
//   - cancel.go: CancelRegistry, the drain-then-check cancellation set.
//   - queue.go: Queue, the FIFO of pending requests.
//   - worker.go: Worker, the execution loop (one job in flight at a time).
//   - manager.go, config.go: Manager composes the pieces; NewWithConfig applies defaults.
//   - events.go, eventpub_memory.go: lifecycle events.
//   - metrics.go: Prometheus collectors.
//   - status_report.go: Status for the HTTP layer.
//
// Build tags and runtimes:
//
//   - In-process llama: uses the go-llama.cpp adapter. Enabled with `-tags=llama`.
//     Files: adapter_llama.go, llama_cgo.go (linker rpath hints).
//     A no-CGO stub exists when the tag is not set: adapter_llama_stub.go.
//
// A job's Token channel carries zero or more fragments followed by at most one
// failure. The channel is closed by the Worker once the job is over; a closed
// channel without a failure means the backend finished normally.
package generation
