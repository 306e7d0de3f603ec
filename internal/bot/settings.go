package bot

import (
	"github.com/dfuchss/deltabot/internal/config"
	"github.com/dfuchss/deltabot/internal/store"
)

// Setting keys persisted in the settings store.
const (
	settingRespondAll   = "respond_all"
	settingKeepMessages = "keep_messages"
	settingDebug        = "debug"
)

// Settings exposes the bot's runtime configuration. Static values come
// from the config file; toggles and rosters changed at runtime via system
// commands are persisted in the store and override the file.
type Settings struct {
	bot    config.BotConfig
	nlu    config.NLUConfig
	values *store.SettingsStore
	admins *store.AdminStore
	chats  *store.ChatStore
}

// NewSettings creates runtime settings over the given config and stores.
func NewSettings(cfg *config.Config, db *store.DB) *Settings {
	return &Settings{
		bot:    cfg.Bot,
		nlu:    cfg.NLU,
		values: store.NewSettingsStore(db),
		admins: store.NewAdminStore(db),
		chats:  store.NewChatStore(db),
	}
}

// NLUThreshold returns the intent confidence threshold.
func (s *Settings) NLUThreshold() float64 { return s.nlu.Threshold }

// Debug reports whether intent traces are sent to the chat.
func (s *Settings) Debug() bool {
	return s.values.GetBool(settingDebug, s.bot.Debug)
}

// SetDebug toggles intent traces.
func (s *Settings) SetDebug(v bool) error {
	return s.values.SetBool(settingDebug, v)
}

// RespondAll reports whether the bot reacts to group messages that do not
// mention it.
func (s *Settings) RespondAll() bool {
	return s.values.GetBool(settingRespondAll, s.bot.RespondAll)
}

// SetRespondAll toggles responding to unaddressed group messages.
func (s *Settings) SetRespondAll(v bool) error {
	return s.values.SetBool(settingRespondAll, v)
}

// KeepMessages reports whether handled messages are kept in the audit log.
func (s *Settings) KeepMessages() bool {
	return s.values.GetBool(settingKeepMessages, s.bot.KeepMessages)
}

// SetKeepMessages toggles the audit log.
func (s *Settings) SetKeepMessages(v bool) error {
	return s.values.SetBool(settingKeepMessages, v)
}

// IsAdmin reports whether the user is a bot administrator, either from the
// config file or granted at runtime.
func (s *Settings) IsAdmin(userID string) bool {
	for _, a := range s.bot.Admins {
		if a == userID {
			return true
		}
	}
	return s.admins.IsAdmin(userID)
}

// AddAdmin grants admin rights at runtime.
func (s *Settings) AddAdmin(userID, addedBy string) error {
	return s.admins.Add(userID, addedBy)
}

// RemoveAdmin revokes runtime admin rights. Config-file admins cannot be
// removed this way.
func (s *Settings) RemoveAdmin(userID string) error {
	return s.admins.Remove(userID)
}

// Admins returns all administrators, config-file and runtime combined.
func (s *Settings) Admins() []string {
	seen := make(map[string]bool)
	var all []string
	for _, a := range s.bot.Admins {
		if !seen[a] {
			seen[a] = true
			all = append(all, a)
		}
	}
	for _, a := range s.admins.List() {
		if !seen[a] {
			seen[a] = true
			all = append(all, a)
		}
	}
	return all
}

// ListensIn reports whether the bot actively listens in the given chat.
func (s *Settings) ListensIn(channelID, chatID string) bool {
	for _, c := range s.bot.Channels {
		if c == chatID {
			return true
		}
	}
	return s.chats.Contains(channelID, chatID)
}

// Listen registers a chat at runtime.
func (s *Settings) Listen(channelID, chatID string) error {
	return s.chats.Add(channelID, chatID)
}

// Unlisten unregisters a runtime chat. Config-file chats stay.
func (s *Settings) Unlisten(channelID, chatID string) error {
	return s.chats.Remove(channelID, chatID)
}

// NewsFeeds returns the configured RSS feed URLs.
func (s *Settings) NewsFeeds() []string { return s.bot.NewsFeeds }
