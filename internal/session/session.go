// Package session implements the per-user dialog dispatch engine: it routes
// each inbound message to a dialog based on intent classification and keeps
// the single pending-dialog slot per user.
package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/dfuchss/deltabot/internal/dialog"
	"github.com/dfuchss/deltabot/internal/domain"
	"github.com/dfuchss/deltabot/internal/logging"
	"github.com/dfuchss/deltabot/internal/nlu"
)

// Reserved intent names handled before the routing table.
const (
	// tasksIntent short-circuits to the static help message.
	tasksIntent = "QnA-Tasks"
	// qnaPrefix routes any other QnA-namespaced intent to the QnA dialog.
	qnaPrefix = "QnA"
)

const defaultHelp = "I can tell you the time (\"What time is it?\"), fetch the news, " +
	"choose between options, answer taught questions, and learn new answers. " +
	"Admins can additionally ask me to clean up."

const dialogNotFoundMsg = "Dialog not found. Please contact a bot admin!"

// Settings exposes the live, toggleable bot configuration the session reads
// each turn.
type Settings interface {
	// NLUThreshold is the confidence a top intent must exceed to be routed.
	NLUThreshold() float64

	// Debug reports whether classification traces are sent to the user.
	Debug() bool
}

// Session owns one user's pending-dialog slot and routing decisions.
//
// A session is not internally locked: the caller must never run two turns
// of the same session concurrently. Channel adapters deliver one user's
// messages in order, which gives that guarantee for free.
type Session struct {
	dialogs  []domain.Dialog
	table    map[string]string // lowercase intent name -> dialog id
	pending  string            // dialog id awaiting input, "" when idle
	nlu      nlu.Recognizer
	sender   domain.Sender
	settings Settings
	help     string
	log      *logging.Logger
}

// New creates a session from an already-loaded dialog registry. Table keys
// are normalized to lowercase. An empty help string selects the default
// help message.
func New(
	dialogs []domain.Dialog,
	table map[string]string,
	rec nlu.Recognizer,
	sender domain.Sender,
	settings Settings,
	help string,
	log *logging.Logger,
) *Session {
	normalized := make(map[string]string, len(table))
	for intent, id := range table {
		normalized[strings.ToLower(intent)] = id
	}
	if help == "" {
		help = defaultHelp
	}
	return &Session{
		dialogs:  dialogs,
		table:    normalized,
		nlu:      rec,
		sender:   sender,
		settings: settings,
		help:     help,
		log:      log.Sub("session"),
	}
}

// HasActiveDialog reports whether a dialog is awaiting this user's next
// message.
func (s *Session) HasActiveDialog() bool {
	return s.pending != ""
}

// Handle processes one inbound message through the routing algorithm.
//
// Resume beats everything: while a dialog is pending, the user's next
// message goes to it unconditionally and the classification result is only
// used for the debug trace. Otherwise the top intent decides, with the
// fallback dialog covering empty results and scores at or below the
// threshold. Error paths (unknown dialog id) leave the pending slot exactly
// as it was before the turn.
func (s *Session) Handle(ctx context.Context, msg domain.InboundMessage) {
	intents, entities, err := s.nlu.Recognize(ctx, msg.Body)
	if err != nil {
		// A failing classifier is routed like an empty result.
		s.log.Warn().Err(err).Str("user", msg.From).Msg("classification failed")
		intents, entities = nil, nil
	}

	s.sendDebug(ctx, msg, intents, entities)

	var id string
	switch {
	case s.pending != "":
		id = s.pending

	case len(intents) == 0:
		id = dialog.IDNotUnderstanding

	default:
		top := intents[0]
		id = s.table[strings.ToLower(top.Name)]

		switch {
		case top.Score <= s.settings.NLUThreshold():
			id = dialog.IDNotUnderstanding
		case top.Name == tasksIntent:
			_ = s.sender.Send(ctx, msg, s.help, true)
			return
		case strings.HasPrefix(top.Name, qnaPrefix):
			id = dialog.IDQnA
		}
	}

	d, ok := dialog.Find(s.dialogs, id)
	if !ok {
		s.log.Error().Str("dialogId", id).Str("user", msg.From).Msg("dialog not found")
		_ = s.sender.Send(ctx, msg, dialogNotFoundMsg, true)
		return
	}

	result := d.Proceed(ctx, msg, intents, entities)

	s.log.Debug().
		Str("dialogId", d.ID()).
		Str("user", msg.From).
		Stringer("result", result).
		Msg("dialog turn completed")

	if result == domain.DialogWaitForInput {
		s.pending = d.ID()
	} else {
		s.pending = ""
	}
}

// sendDebug reports the raw classification to the user when debugging is on.
// A side channel only: it never affects routing.
func (s *Session) sendDebug(ctx context.Context, msg domain.InboundMessage, intents []domain.IntentResult, entities []domain.EntityResult) {
	if !s.settings.Debug() {
		return
	}

	var b strings.Builder
	b.WriteString("------------\n")
	fmt.Fprintf(&b, "Intents(%d):\n", len(intents))
	for _, in := range intents {
		fmt.Fprintf(&b, "%s\n", in)
	}
	fmt.Fprintf(&b, "\nEntities(%d):\n", len(entities))
	for _, en := range entities {
		fmt.Fprintf(&b, "%s\n", en)
	}
	b.WriteString("------------")

	_ = s.sender.Send(ctx, msg, b.String(), false)
}
