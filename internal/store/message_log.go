package store

import (
	"context"
	"time"

	"github.com/dfuchss/deltabot/internal/domain"
)

// MessageLog keeps an audit trail of handled messages. The Cleanup dialog
// purges it via PurgeMessages.
type MessageLog struct {
	db *DB
}

// NewMessageLog creates a message log using the given database.
func NewMessageLog(db *DB) *MessageLog {
	return &MessageLog{db: db}
}

// Record stores an inbound message. Failures are logged, not returned;
// message handling must not stall on a broken audit trail.
func (l *MessageLog) Record(msg domain.InboundMessage) {
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := l.db.sql.Exec(
		`INSERT INTO message_log (message_id, channel_id, chat_id, sender_id, body, mentioned, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.ChannelID, msg.ChatID, msg.From, msg.Body, msg.Mentioned,
		ts.Format(time.DateTime),
	)
	if err != nil {
		l.db.log.Error().Err(err).Str("channel", msg.ChannelID).Msg("failed to record message")
	}
}

// PurgeMessages deletes the entire message log and returns the number of
// removed entries.
func (l *MessageLog) PurgeMessages(ctx context.Context) (int64, error) {
	res, err := l.db.sql.ExecContext(ctx, `DELETE FROM message_log`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Count returns the number of logged messages.
func (l *MessageLog) Count() (int64, error) {
	var n int64
	err := l.db.sql.QueryRow(`SELECT COUNT(*) FROM message_log`).Scan(&n)
	return n, err
}
