package dialog

import (
	"context"
	"math/rand/v2"

	"github.com/dfuchss/deltabot/internal/domain"
)

// Choose picks randomly among the options the classifier extracted from the
// message (e.g. "choose pizza or pasta").
type Choose struct {
	deps Deps
	pick func(n int) int
}

// NewChoose creates the choose dialog.
func NewChoose(deps Deps) *Choose {
	return &Choose{deps: deps, pick: rand.IntN}
}

func (d *Choose) ID() string { return IDChoose }

func (d *Choose) Proceed(ctx context.Context, msg domain.InboundMessage, _ []domain.IntentResult, entities []domain.EntityResult) domain.DialogResult {
	var options []string
	for _, e := range entities {
		if e.Kind == "choosable" || e.Kind == "option" {
			options = append(options, e.Value)
		}
	}

	if len(options) == 0 {
		_ = d.deps.Sender.Send(ctx, msg, "I did not find anything to choose from. Give me some options!", true)
		return domain.DialogDone
	}

	choice := options[d.pick(len(options))]
	_ = d.deps.Sender.Send(ctx, msg, "I choose: "+choice, true)
	return domain.DialogDone
}
