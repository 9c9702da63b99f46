package bot

import (
	"context"

	"github.com/rs/zerolog"

	"llmcord/internal/delivery"
)

// Interaction is one command invocation on the chat platform: the Sink the
// job's units are delivered through, plus the invocation's own response slot.
type Interaction interface {
	delivery.Sink
	// CreateOrEdit writes text to the interaction's response, creating it if
	// nothing was sent yet.
	CreateOrEdit(ctx context.Context, text string) error
	// UserID identifies the invoking user.
	UserID() string
}

// RunAndReportError runs body and, when it fails, replaces the interaction's
// response with "Error: <err>". Nothing is reported once ctx is done. The
// body's error is returned either way.
func RunAndReportError(ctx context.Context, it Interaction, log zerolog.Logger, body func(context.Context) error) error {
	err := body(ctx)
	if err == nil || ctx.Err() != nil {
		return err
	}
	if rerr := it.CreateOrEdit(ctx, "Error: "+err.Error()); rerr != nil {
		log.Error().Err(rerr).AnErr("cause", err).Msg("report error to interaction")
	}
	return err
}
