package dialog

import (
	"context"
	"strings"

	"github.com/dfuchss/deltabot/internal/domain"
)

// QnA answers taught questions. The routing key is the classified intent
// name (e.g. "QnA-Hours"), looked up case-insensitively in the QnA store.
type QnA struct {
	deps Deps
}

// NewQnA creates the question answering dialog.
func NewQnA(deps Deps) *QnA {
	return &QnA{deps: deps}
}

func (d *QnA) ID() string { return IDQnA }

func (d *QnA) Proceed(ctx context.Context, msg domain.InboundMessage, intents []domain.IntentResult, _ []domain.EntityResult) domain.DialogResult {
	if len(intents) == 0 {
		_ = d.deps.Sender.Send(ctx, msg, "I could not match your question to anything I know.", true)
		return domain.DialogDone
	}

	key := strings.ToLower(intents[0].Name)
	answer, ok := d.deps.QnA.Answer(key)
	if !ok {
		_ = d.deps.Sender.Send(ctx, msg, "I don't have an answer for that yet. An admin can teach me one.", true)
		return domain.DialogDone
	}

	_ = d.deps.Sender.Send(ctx, msg, answer, true)
	return domain.DialogDone
}

// qnaAnswerStage tracks the teach flow position across turns.
type qnaAnswerStage int

const (
	stageAskKey qnaAnswerStage = iota
	stageAwaitKey
	stageAwaitAnswer
)

// QnAAnswer teaches the bot a new answer over three turns: it asks for the
// question key, waits for it, asks for the answer, waits for it, stores the
// pair. The per-user state lives on the dialog instance, which belongs to
// exactly one session.
type QnAAnswer struct {
	deps  Deps
	stage qnaAnswerStage
	key   string
}

// NewQnAAnswer creates the answer teaching dialog.
func NewQnAAnswer(deps Deps) *QnAAnswer {
	return &QnAAnswer{deps: deps}
}

func (d *QnAAnswer) ID() string { return IDQnAAnswer }

func (d *QnAAnswer) Proceed(ctx context.Context, msg domain.InboundMessage, _ []domain.IntentResult, _ []domain.EntityResult) domain.DialogResult {
	switch d.stage {
	case stageAskKey:
		_ = d.deps.Sender.Send(ctx, msg, "Which question should I learn? Give me a short key, e.g. \"QnA-Hours\".", true)
		d.stage = stageAwaitKey
		return domain.DialogWaitForInput

	case stageAwaitKey:
		key := normalizeQnAKey(msg.Body)
		if key == "" {
			_ = d.deps.Sender.Send(ctx, msg, "That does not look like a usable key. Teaching cancelled.", true)
			d.reset()
			return domain.DialogDone
		}
		d.key = key
		_ = d.deps.Sender.Send(ctx, msg, "And what should I answer?", true)
		d.stage = stageAwaitAnswer
		return domain.DialogWaitForInput

	default:
		answer := strings.TrimSpace(msg.Body)
		key := d.key
		d.reset()
		if answer == "" {
			_ = d.deps.Sender.Send(ctx, msg, "An empty answer won't help anyone. Teaching cancelled.", true)
			return domain.DialogDone
		}
		if err := d.deps.QnA.SetAnswer(key, answer); err != nil {
			d.deps.Log.Error().Err(err).Str("key", key).Msg("failed to store answer")
			_ = d.deps.Sender.Send(ctx, msg, "I could not save that answer. Please try again later.", true)
			return domain.DialogDone
		}
		_ = d.deps.Sender.Send(ctx, msg, "Learned! I will answer \""+key+"\" from now on.", true)
		return domain.DialogDone
	}
}

func (d *QnAAnswer) reset() {
	d.stage = stageAskKey
	d.key = ""
}

// normalizeQnAKey lowercases a key and joins words with dashes so taught
// keys match classified intent names regardless of spacing.
func normalizeQnAKey(raw string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(raw)))
	return strings.Join(fields, "-")
}
