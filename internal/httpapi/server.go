package httpapi

import (
	"context"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"llmcord/internal/bot"
	"llmcord/pkg/types"
)

// Bot is the interaction side of the service; *bot.Handler implements it.
type Bot interface {
	Commands() []types.CommandInfo
	Hallucinate(ctx context.Context, it bot.Interaction, name string, opts bot.Options) error
	HandleCancel(customID, userID string) error
}

// Generator reports on the generation pipeline; *generation.Manager implements it.
type Generator interface {
	Status() types.StatusResponse
	Ready() bool
}

// NewMux builds the HTTP transport.
func NewMux(b Bot, g Generator) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: orDefault(corsAllowedOrigins, []string{"*"}),
			AllowedMethods: orDefault(corsAllowedMethods, []string{http.MethodGet, http.MethodPost, http.MethodOptions}),
			AllowedHeaders: orDefault(corsAllowedHeaders, []string{"Content-Type", "X-Log-Level"}),
			MaxAge:         300,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/commands", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, types.CommandsResponse{Commands: b.Commands()})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, g.Status())
	})

	r.Group(func(r chi.Router) {
		r.Use(inflightMiddleware)
		r.Post("/commands/{name}", commandHandler(b, g))
	})

	r.Post("/interactions/cancel", func(w http.ResponseWriter, r *http.Request) {
		var req types.CancelRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := b.HandleCancel(req.CustomID, req.UserID); err != nil {
			writeJSONError(w, statusForError(err), err.Error())
			return
		}
		w.WriteHeader(http.StatusAccepted)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if g.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("unavailable"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

// commandHandler runs a command and streams its units as NDJSON. Requests that
// cannot start are answered with a JSON error; failures after the stream has
// started are reported in-band, on the root unit and as a final error event.
func commandHandler(b Bot, g Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		var req types.CommandRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		switch {
		case strings.TrimSpace(req.UserID) == "":
			incRejected("bad_request")
			writeJSONError(w, http.StatusBadRequest, "user_id is required")
			return
		case strings.TrimSpace(req.Prompt) == "":
			incRejected("bad_request")
			writeJSONError(w, http.StatusBadRequest, "prompt is required")
			return
		case req.Seed != nil && *req.Seed < 0:
			incRejected("bad_request")
			writeJSONError(w, http.StatusBadRequest, "seed must not be negative")
			return
		}
		if !slices.ContainsFunc(b.Commands(), func(c types.CommandInfo) bool { return c.Name == name }) {
			incRejected("not_found")
			writeJSONError(w, http.StatusNotFound, bot.ErrCommandNotFound(name).Error())
			return
		}
		if !g.Ready() {
			incRejected("unavailable")
			writeJSONError(w, http.StatusServiceUnavailable, "generation is unavailable")
			return
		}

		lvl := requestLogLevel(r)
		out := io.Writer(w)
		if lvl >= LevelDebug {
			out = io.MultiWriter(w, &loggingLineWriter{path: r.URL.Path})
		}
		it := newStreamInteraction(w, out, req.UserID)
		rid := middleware.GetReqID(r.Context())
		log := logger().With().Str("command", name).Str("user_id", req.UserID).Str("request_id", rid).Logger()
		if lvl >= LevelInfo {
			log.Info().Msg("command start")
		}
		start := time.Now()

		// Join server base context with request context so shutdown cancels work too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		err := bot.RunAndReportError(ctx, it, log, func(ctx context.Context) error {
			return b.Hallucinate(ctx, it, name, bot.Options{Prompt: req.Prompt, Seed: req.Seed})
		})
		switch {
		case err == nil:
		case ctx.Err() != nil:
			// client went away or server is shutting down
		case !it.Started():
			writeJSONError(w, statusForError(err), err.Error())
		default:
			_ = it.fail(ctx, err.Error())
		}
		if lvl >= LevelInfo || (err != nil && lvl >= LevelError) {
			ev := log.Info()
			if err != nil {
				ev = log.Warn().Err(err)
			}
			ev.Dur("dur", time.Since(start)).Msg("command end")
		}
	}
}

// decodeJSON enforces the content type and body limit, then decodes into v.
// It writes the error response and reports false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// MaxBytesReader errors land here too; report them as a bad body.
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
	}
}

func orDefault(v, def []string) []string {
	if len(v) == 0 {
		return def
	}
	return v
}
