package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// SettingsStore persists runtime key/value settings such as the
// respond-all and keep-messages toggles.
type SettingsStore struct {
	db *DB
}

// NewSettingsStore creates a settings store using the given database.
func NewSettingsStore(db *DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// Get returns the value for a key. The second return is false when the
// key has never been set.
func (s *SettingsStore) Get(key string) (string, bool) {
	var value string
	err := s.db.sql.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.db.log.Error().Err(err).Str("key", key).Msg("failed to read setting")
		}
		return "", false
	}
	return value, true
}

// Set stores or replaces the value for a key.
func (s *SettingsStore) Set(key, value string) error {
	_, err := s.db.sql.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().Format(time.DateTime),
	)
	if err != nil {
		return fmt.Errorf("setting %q: %w", key, err)
	}
	return nil
}

// GetBool returns a boolean setting, or def when unset or unparseable.
func (s *SettingsStore) GetBool(key string, def bool) bool {
	raw, ok := s.Get(key)
	if !ok {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

// SetBool stores a boolean setting.
func (s *SettingsStore) SetBool(key string, value bool) error {
	return s.Set(key, strconv.FormatBool(value))
}
