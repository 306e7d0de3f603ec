package store

import "fmt"

// AdminStore persists the set of bot administrators.
type AdminStore struct {
	db *DB
}

// NewAdminStore creates an admin store using the given database.
func NewAdminStore(db *DB) *AdminStore {
	return &AdminStore{db: db}
}

// IsAdmin reports whether the user is an administrator.
func (s *AdminStore) IsAdmin(userID string) bool {
	var count int
	err := s.db.sql.QueryRow(`SELECT COUNT(*) FROM admins WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		s.db.log.Error().Err(err).Str("user", userID).Msg("failed to check admin")
		return false
	}
	return count > 0
}

// Add grants admin rights to a user. Adding an existing admin is a no-op.
func (s *AdminStore) Add(userID, addedBy string) error {
	_, err := s.db.sql.Exec(
		`INSERT INTO admins (user_id, added_by) VALUES (?, ?)
		 ON CONFLICT(user_id) DO NOTHING`,
		userID, addedBy,
	)
	if err != nil {
		return fmt.Errorf("adding admin %q: %w", userID, err)
	}
	return nil
}

// Remove revokes admin rights from a user.
func (s *AdminStore) Remove(userID string) error {
	_, err := s.db.sql.Exec(`DELETE FROM admins WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("removing admin %q: %w", userID, err)
	}
	return nil
}

// List returns all administrator user IDs.
func (s *AdminStore) List() []string {
	rows, err := s.db.sql.Query(`SELECT user_id FROM admins ORDER BY user_id`)
	if err != nil {
		s.db.log.Error().Err(err).Msg("failed to list admins")
		return nil
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// ChatStore persists the chats the bot actively listens in.
type ChatStore struct {
	db *DB
}

// NewChatStore creates a chat store using the given database.
func NewChatStore(db *DB) *ChatStore {
	return &ChatStore{db: db}
}

// Contains reports whether the chat is registered for the channel.
func (s *ChatStore) Contains(channelID, chatID string) bool {
	var count int
	err := s.db.sql.QueryRow(
		`SELECT COUNT(*) FROM bot_chats WHERE channel_id = ? AND chat_id = ?`,
		channelID, chatID,
	).Scan(&count)
	if err != nil {
		s.db.log.Error().Err(err).Str("chat", chatID).Msg("failed to check chat")
		return false
	}
	return count > 0
}

// Add registers a chat. Registering an existing chat is a no-op.
func (s *ChatStore) Add(channelID, chatID string) error {
	_, err := s.db.sql.Exec(
		`INSERT INTO bot_chats (channel_id, chat_id) VALUES (?, ?)
		 ON CONFLICT(channel_id, chat_id) DO NOTHING`,
		channelID, chatID,
	)
	if err != nil {
		return fmt.Errorf("adding chat %q: %w", chatID, err)
	}
	return nil
}

// Remove unregisters a chat.
func (s *ChatStore) Remove(channelID, chatID string) error {
	_, err := s.db.sql.Exec(
		`DELETE FROM bot_chats WHERE channel_id = ? AND chat_id = ?`,
		channelID, chatID,
	)
	if err != nil {
		return fmt.Errorf("removing chat %q: %w", chatID, err)
	}
	return nil
}

// List returns all registered chat IDs for a channel.
func (s *ChatStore) List(channelID string) []string {
	rows, err := s.db.sql.Query(
		`SELECT chat_id FROM bot_chats WHERE channel_id = ? ORDER BY chat_id`, channelID,
	)
	if err != nil {
		s.db.log.Error().Err(err).Msg("failed to list chats")
		return nil
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
