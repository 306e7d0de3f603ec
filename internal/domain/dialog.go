package domain

import "context"

// DialogResult signals whether a dialog needs another turn.
type DialogResult int

const (
	// DialogDone returns the conversation to intent-driven routing.
	DialogDone DialogResult = iota
	// DialogWaitForInput routes the user's very next message back to the
	// same dialog, bypassing intent classification.
	DialogWaitForInput
)

func (r DialogResult) String() string {
	if r == DialogWaitForInput {
		return "wait-for-input"
	}
	return "done"
}

// Dialog is a stateful handler for one class of conversation.
//
// Proceed processes exactly one inbound turn and may send replies as a side
// effect. Failures on unexpected input are absorbed inside the dialog: it
// sends a user-visible error message and returns DialogDone, it never
// panics or leaks errors past the session boundary.
type Dialog interface {
	// ID returns the stable identifier used as the routing key.
	ID() string

	// Proceed handles one turn. Intents and entities are the full
	// classifier output for the message, passed through verbatim.
	Proceed(ctx context.Context, msg InboundMessage, intents []IntentResult, entities []EntityResult) DialogResult
}
