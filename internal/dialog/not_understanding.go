package dialog

import (
	"context"

	"github.com/dfuchss/deltabot/internal/domain"
)

// NotUnderstanding is the fallback dialog: it answers whenever no intent is
// confidently recognized.
type NotUnderstanding struct {
	deps Deps
}

// NewNotUnderstanding creates the fallback dialog.
func NewNotUnderstanding(deps Deps) *NotUnderstanding {
	return &NotUnderstanding{deps: deps}
}

func (d *NotUnderstanding) ID() string { return IDNotUnderstanding }

func (d *NotUnderstanding) Proceed(ctx context.Context, msg domain.InboundMessage, _ []domain.IntentResult, _ []domain.EntityResult) domain.DialogResult {
	_ = d.deps.Sender.Send(ctx, msg, "Sorry, I did not understand that. Ask me \"What can you do?\" to see what I know.", true)
	return domain.DialogDone
}
