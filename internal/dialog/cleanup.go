package dialog

import (
	"context"
	"fmt"
	"strings"

	"github.com/dfuchss/deltabot/internal/domain"
)

// Cleanup purges the stored message log. Admin-only, with a confirmation
// turn before anything is deleted.
type Cleanup struct {
	deps       Deps
	confirming bool
}

// NewCleanup creates the cleanup dialog.
func NewCleanup(deps Deps) *Cleanup {
	return &Cleanup{deps: deps}
}

func (d *Cleanup) ID() string { return IDCleanup }

func (d *Cleanup) Proceed(ctx context.Context, msg domain.InboundMessage, _ []domain.IntentResult, _ []domain.EntityResult) domain.DialogResult {
	if !d.confirming {
		if d.deps.IsAdmin == nil || !d.deps.IsAdmin(msg.From) {
			_ = d.deps.Sender.Send(ctx, msg, "You are not authorized to do that.", true)
			return domain.DialogDone
		}
		_ = d.deps.Sender.Send(ctx, msg, "This removes the stored message log. Continue? (yes/no)", true)
		d.confirming = true
		return domain.DialogWaitForInput
	}

	d.confirming = false
	if !strings.EqualFold(strings.TrimSpace(msg.Body), "yes") {
		_ = d.deps.Sender.Send(ctx, msg, "Cleanup cancelled.", true)
		return domain.DialogDone
	}

	count, err := d.deps.Purger.PurgeMessages(ctx)
	if err != nil {
		d.deps.Log.Error().Err(err).Msg("failed to purge message log")
		_ = d.deps.Sender.Send(ctx, msg, "Cleanup failed. Please check the logs.", true)
		return domain.DialogDone
	}

	_ = d.deps.Sender.Send(ctx, msg, fmt.Sprintf("Removed %d stored messages.", count), true)
	return domain.DialogDone
}
