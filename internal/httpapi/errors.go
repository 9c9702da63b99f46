package httpapi

import (
	"net/http"

	json "github.com/goccy/go-json"

	"llmcord/internal/bot"
	"llmcord/internal/generation"
	"llmcord/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusForError maps pipeline errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case bot.IsCommandNotFound(err):
		return http.StatusNotFound
	case bot.IsInvalidInput(err):
		return http.StatusBadRequest
	case bot.IsNotAuthorized(err):
		return http.StatusForbidden
	case generation.IsQueueClosed(err), generation.IsDependencyUnavailable(err):
		return http.StatusServiceUnavailable
	}
	if he, ok := err.(HTTPError); ok {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}
