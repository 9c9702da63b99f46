package bot

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"llmcord/internal/config"
	"llmcord/internal/delivery"
	"llmcord/internal/generation"
	"llmcord/internal/render"
	"llmcord/pkg/types"
)

// TimeoutMessage replaces the output of a job that exceeded the request timeout.
const TimeoutMessage = "The generation timed out."

// Submitter is the generation side of the pipeline; *generation.Manager implements it.
type Submitter interface {
	Submit(req *generation.Request) error
	Cancel(jobID string)
}

// Options are the arguments of a command invocation.
type Options struct {
	Prompt string
	// Seed fixes sampling; nil draws one at random.
	Seed *int64
}

// Handler turns command invocations into generation jobs and streams their
// output to the interaction.
type Handler struct {
	commands  map[string]config.Command
	inference config.Inference
	gen       Submitter
	log       zerolog.Logger

	mu     sync.Mutex
	owners map[string]string // job id -> initiating user, while the job is delivered
}

// New builds a Handler serving the enabled commands of cfg.
func New(cfg config.Config, gen Submitter, log zerolog.Logger) *Handler {
	cmds := make(map[string]config.Command, len(cfg.Commands))
	for name, c := range cfg.Commands {
		if c.Enabled {
			cmds[name] = c
		}
	}
	return &Handler{
		commands:  cmds,
		inference: cfg.Inference,
		gen:       gen,
		log:       log.With().Str("component", "bot").Logger(),
		owners:    make(map[string]string),
	}
}

// Commands lists the enabled commands sorted by name.
func (h *Handler) Commands() []types.CommandInfo {
	out := make([]types.CommandInfo, 0, len(h.commands))
	for name, c := range h.commands {
		out = append(out, types.CommandInfo{Name: name, Description: c.Description, Template: c.Prompt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Hallucinate runs command name for the interaction: it creates the root
// unit, submits the job and delivers its output until the job ends. Transport
// failures are returned after the job has been asked to stop.
func (h *Handler) Hallucinate(ctx context.Context, it Interaction, name string, opts Options) error {
	cmd, ok := h.commands[name]
	if !ok {
		return ErrCommandNotFound(name)
	}
	if opts.Prompt == "" {
		return ErrInvalidInput("no prompt specified")
	}
	var seed *uint64
	if opts.Seed != nil {
		if *opts.Seed < 0 {
			return ErrInvalidInput("seed must not be negative")
		}
		s := uint64(*opts.Seed)
		seed = &s
	}

	user := opts.Prompt
	if h.inference.ReplaceNewlines {
		user = strings.ReplaceAll(user, `\n`, "\n")
	}
	prompts := render.NewPrompts(cmd.Prompt, user, h.inference.ShowPromptTemplate)

	out, err := delivery.New(ctx, it, delivery.Options{
		UserID:         it.UserID(),
		Prompts:        prompts,
		ChunkSize:      h.inference.ChunkSize,
		UpdateInterval: h.inference.UpdateInterval(),
	})
	if err != nil {
		return err
	}
	jobID := out.JobID()
	log := h.log.With().Str("command", name).Str("job_id", jobID).Str("user_id", it.UserID()).Logger()
	h.setOwner(jobID, it.UserID())
	defer h.clearOwner(jobID)

	// The job's receiver lives as long as this call; leaving abandons it.
	recvCtx, stop := context.WithCancel(ctx)
	defer stop()
	req, tokens := generation.NewRequest(recvCtx, jobID, prompts.Processed, h.inference.BatchSize, seed)
	if err := h.gen.Submit(req); err != nil {
		return err
	}
	log.Debug().Msg("job submitted")

	var timeout <-chan time.Time
	if d := h.inference.RequestTimeout(); d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		timeout = t.C
	}

	for {
		select {
		case tok, ok := <-tokens:
			if !ok {
				return out.Finish(ctx)
			}
			if tok.IsFailure() {
				if generation.IsCancelled(tok.Err) {
					log.Debug().Msg("job cancelled")
					return out.Cancelled(ctx)
				}
				log.Warn().Err(tok.Err).Msg("job failed")
				return out.Error(ctx, tok.Err.Error())
			}
			if err := out.NewToken(ctx, tok.Text); err != nil {
				h.gen.Cancel(jobID)
				return err
			}
		case <-timeout:
			log.Info().Msg("job timed out")
			h.gen.Cancel(jobID)
			return out.Error(ctx, TimeoutMessage)
		case <-ctx.Done():
			h.gen.Cancel(jobID)
			return ctx.Err()
		}
	}
}

// HandleCancel activates a cancel affordance on behalf of userID. Only the
// user who started the job may cancel it; the user encoded in customID is not
// trusted. Jobs that are no longer being delivered are ignored.
func (h *Handler) HandleCancel(customID, userID string) error {
	a, err := delivery.ParseCancelAffordance(customID)
	if err != nil {
		return ErrInvalidInput(err.Error())
	}
	owner, ok := h.owner(a.JobID)
	if !ok {
		h.log.Debug().Str("job_id", a.JobID).Msg("cancel for unknown job ignored")
		return nil
	}
	if !(delivery.CancelAffordance{JobID: a.JobID, UserID: owner}).Authorizes(userID) {
		h.log.Warn().Str("job_id", a.JobID).Str("user_id", userID).Msg("cancel rejected")
		return ErrNotAuthorized
	}
	h.log.Debug().Str("job_id", a.JobID).Str("user_id", userID).Msg("cancel activated")
	h.gen.Cancel(a.JobID)
	return nil
}

func (h *Handler) setOwner(jobID, userID string) {
	h.mu.Lock()
	h.owners[jobID] = userID
	h.mu.Unlock()
}

func (h *Handler) clearOwner(jobID string) {
	h.mu.Lock()
	delete(h.owners, jobID)
	h.mu.Unlock()
}

func (h *Handler) owner(jobID string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	u, ok := h.owners[jobID]
	return u, ok
}
