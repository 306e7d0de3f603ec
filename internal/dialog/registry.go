// Package dialog provides the built-in conversation dialogs and their registry.
package dialog

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dfuchss/deltabot/internal/domain"
	"github.com/dfuchss/deltabot/internal/logging"
)

// Dialog ids. Stable: they are used as routing keys and live in the
// pending slot across turns.
const (
	IDNotUnderstanding = "not-understanding"
	IDQnA              = "qna"
	IDQnAAnswer        = "qna-answer"
	IDClock            = "clock"
	IDNews             = "news"
	IDCleanup          = "cleanup"
	IDChoose           = "choose"
)

// QnAStore holds taught question/answer pairs.
type QnAStore interface {
	// Answer returns the stored answer for a question key.
	Answer(key string) (string, bool)

	// SetAnswer stores or replaces the answer for a question key.
	SetAnswer(key, answer string) error

	// Keys returns all known question keys.
	Keys() []string
}

// MessagePurger removes stored message history. Used by the Cleanup dialog.
type MessagePurger interface {
	PurgeMessages(ctx context.Context) (int64, error)
}

// Deps are the collaborators shared by the built-in dialogs.
type Deps struct {
	Sender  domain.Sender
	QnA     QnAStore
	Purger  MessagePurger
	IsAdmin func(userID string) bool
	Feeds   []string         // RSS feed URLs for the News dialog
	HTTP    *http.Client     // nil means a default client
	Now     func() time.Time // nil means time.Now
	Log     *logging.Logger
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) httpClient() *http.Client {
	if d.HTTP != nil {
		return d.HTTP
	}
	return &http.Client{Timeout: 15 * time.Second}
}

// intentTable maps intent names to dialog ids. Keys are lowercased at load
// time; lookups must lowercase as well.
var intentTable = map[string]string{
	"None":    IDNotUnderstanding,
	"QnA":     IDQnA,
	"Clock":   IDClock,
	"News":    IDNews,
	"Cleanup": IDCleanup,
	"Answer":  IDQnAAnswer,
	"Choose":  IDChoose,
}

// Load builds the fixed dialog list and the intent-to-dialog lookup table.
// Deterministic: the same deps always yield the same registry contents.
// Called once per session; dialog instances live as long as the session and
// may hold per-user state across turns.
func Load(deps Deps) ([]domain.Dialog, map[string]string) {
	dialogs := []domain.Dialog{
		NewNotUnderstanding(deps),
		NewQnA(deps),
		NewClock(deps),
		NewNews(deps),
		NewCleanup(deps),
		NewQnAAnswer(deps),
		NewChoose(deps),
	}

	table := make(map[string]string, len(intentTable))
	for intent, id := range intentTable {
		table[strings.ToLower(intent)] = id
	}
	return dialogs, table
}

// Find resolves a dialog id to its instance. A miss is a caller-visible
// condition, not a failure: the session reports it to the user.
func Find(dialogs []domain.Dialog, id string) (domain.Dialog, bool) {
	for _, d := range dialogs {
		if d.ID() == id {
			return d, true
		}
	}
	return nil, false
}
