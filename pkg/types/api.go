package types

// CommandRequest is the body of POST /commands/{name}.
type CommandRequest struct {
	// Required prompt substituted into the command's template.
	// example: Write a haiku about the ocean.
	Prompt string `json:"prompt" example:"Write a haiku about the ocean."`
	// Optional sampling seed; omitted lets the backend choose.
	// example: 42
	Seed *int64 `json:"seed,omitempty" example:"42"`
	// Identity of the requesting user; only this user may cancel the job.
	// example: 80351110224678912
	UserID string `json:"user_id" example:"80351110224678912"`
}

// CancelRequest is the body of POST /interactions/cancel.
type CancelRequest struct {
	// Custom id of the activated cancel control.
	// example: cancel#1c9f1f0e-5d4e-4a52-9a43-d1f1f0a3c2b1#80351110224678912
	CustomID string `json:"custom_id" example:"cancel#1c9f1f0e-5d4e-4a52-9a43-d1f1f0a3c2b1#80351110224678912"`
	// Identity of the user who activated the control.
	// example: 80351110224678912
	UserID string `json:"user_id" example:"80351110224678912"`
}

// Unit event types streamed by POST /commands/{name}.
const (
	EventCreate      = "create"
	EventEdit        = "edit"
	EventReply       = "reply"
	EventCancelSet   = "cancel_set"
	EventCancelClear = "cancel_clear"
	EventError       = "error"
)

// UnitEvent is one NDJSON line of an interaction stream.
type UnitEvent struct {
	// Event type: create, edit, reply, cancel_set, cancel_clear or error.
	// example: edit
	Type string `json:"type" example:"edit"`
	// Sequence number of the event within the stream, starting at 1.
	// example: 3
	Seq int `json:"seq" example:"3"`
	// Delivery unit the event applies to.
	Unit string `json:"unit,omitempty"`
	// Unit a reply is anchored to.
	Anchor string `json:"anchor,omitempty"`
	// Full content of the unit after the event.
	Content string `json:"content,omitempty"`
	// Custom id of the cancel control (cancel_set only).
	CustomID string `json:"custom_id,omitempty"`
}

// CommandsResponse wraps the list of commands returned by GET /commands.
type CommandsResponse struct {
	Commands []CommandInfo `json:"commands"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Overall pipeline state (ready or closed).
	// example: ready
	State string `json:"state" example:"ready"`
	// Requests waiting for the worker.
	// example: 2
	QueueLen int `json:"queue_len" example:"2"`
	// Number of jobs currently generating (0 or 1).
	// example: 1
	Inflight int `json:"inflight" example:"1"`
	// Job id of the running job, if any.
	CurrentJob string `json:"current_job,omitempty"`
	// Cancel requests not yet observed by the worker.
	// example: 0
	PendingCancels int `json:"pending_cancels" example:"0"`
	// Finished jobs by outcome (done, cancelled, failed, abandoned).
	JobsTotal map[string]uint64 `json:"jobs_total"`
	// Whether the binary was built with the in-process llama runtime.
	// example: true
	LlamaBuilt bool `json:"llama_built" example:"true"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
