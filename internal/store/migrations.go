package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create settings and admins",
		SQL: `
			CREATE TABLE settings (
				key         TEXT PRIMARY KEY,
				value       TEXT NOT NULL,
				updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE TABLE admins (
				user_id     TEXT PRIMARY KEY,
				added_by    TEXT NOT NULL DEFAULT '',
				created_at  TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE TABLE bot_chats (
				channel_id  TEXT NOT NULL,
				chat_id     TEXT NOT NULL,
				created_at  TEXT NOT NULL DEFAULT (datetime('now')),
				PRIMARY KEY (channel_id, chat_id)
			);
		`,
	},
	{
		Version: 2,
		Name:    "create qna answers",
		SQL: `
			CREATE TABLE qna_answers (
				key         TEXT PRIMARY KEY,
				answer      TEXT NOT NULL,
				taught_by   TEXT NOT NULL DEFAULT '',
				created_at  TEXT NOT NULL DEFAULT (datetime('now')),
				updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
			);
		`,
	},
	{
		Version: 3,
		Name:    "create message log",
		SQL: `
			CREATE TABLE message_log (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				message_id  TEXT NOT NULL DEFAULT '',
				channel_id  TEXT NOT NULL,
				chat_id     TEXT NOT NULL,
				sender_id   TEXT NOT NULL,
				body        TEXT NOT NULL,
				mentioned   INTEGER NOT NULL DEFAULT 0,
				created_at  TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE INDEX idx_message_log_chat ON message_log (channel_id, chat_id, id);
		`,
	},
}
