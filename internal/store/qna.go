package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// QnAStore persists taught question/answer pairs. It satisfies the QnA
// dialog's storage interface.
type QnAStore struct {
	db *DB
}

// NewQnAStore creates a QnA store using the given database.
func NewQnAStore(db *DB) *QnAStore {
	return &QnAStore{db: db}
}

// Answer returns the stored answer for a question key.
func (s *QnAStore) Answer(key string) (string, bool) {
	var answer string
	err := s.db.sql.QueryRow(`SELECT answer FROM qna_answers WHERE key = ?`, key).Scan(&answer)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.db.log.Error().Err(err).Str("key", key).Msg("failed to read answer")
		}
		return "", false
	}
	return answer, true
}

// SetAnswer stores or replaces the answer for a question key.
func (s *QnAStore) SetAnswer(key, answer string) error {
	_, err := s.db.sql.Exec(
		`INSERT INTO qna_answers (key, answer, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET answer = excluded.answer, updated_at = excluded.updated_at`,
		key, answer, time.Now().Format(time.DateTime),
	)
	if err != nil {
		return fmt.Errorf("storing answer %q: %w", key, err)
	}
	return nil
}

// Keys returns all known question keys.
func (s *QnAStore) Keys() []string {
	rows, err := s.db.sql.Query(`SELECT key FROM qna_answers ORDER BY key`)
	if err != nil {
		s.db.log.Error().Err(err).Msg("failed to list answer keys")
		return nil
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// Delete removes a taught answer.
func (s *QnAStore) Delete(key string) error {
	_, err := s.db.sql.Exec(`DELETE FROM qna_answers WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("deleting answer %q: %w", key, err)
	}
	return nil
}
