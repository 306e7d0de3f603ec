package config

// Config is the root configuration for DeltaBot.
type Config struct {
	NLU      NLUConfig      `yaml:"nlu,omitempty"`
	Bot      BotConfig      `yaml:"bot,omitempty"`
	Channels ChannelsConfig `yaml:"channels,omitempty"`
	Store    StoreConfig    `yaml:"store,omitempty"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
}

// NLUConfig configures the external intent classifier.
type NLUConfig struct {
	Endpoint   string  `yaml:"endpoint,omitempty"` // base URL of the classification service
	AppID      string  `yaml:"appId,omitempty"`    // application/model id at the service
	Key        string  `yaml:"key,omitempty"`      // subscription key, supports ${ENV_VAR}
	Threshold  float64 `yaml:"threshold,omitempty"`
	TTLMinutes int     `yaml:"ttlMinutes,omitempty"` // classification result cache TTL
}

// BotConfig defines bot-level behavior. The boolean flags and the channel
// and admin lists are initial values; runtime changes made through system
// commands are persisted in the store and win over these on restart.
type BotConfig struct {
	Debug        bool     `yaml:"debug,omitempty"`
	RespondAll   bool     `yaml:"respondAll,omitempty"`
	KeepMessages bool     `yaml:"keepMessages,omitempty"`
	Admins       []string `yaml:"admins,omitempty"`
	Channels     []string `yaml:"channels,omitempty"` // chat ids the bot responds in
	NewsFeeds    []string `yaml:"newsFeeds,omitempty"`
}

// ChannelsConfig defines transport adapter configurations.
type ChannelsConfig struct {
	IRC     *IRCConfig     `yaml:"irc,omitempty"`
	Gateway *GatewayConfig `yaml:"gateway,omitempty"`
}

// IRCConfig defines IRC transport settings.
type IRCConfig struct {
	Server   string   `yaml:"server"`
	Port     int      `yaml:"port,omitempty"`
	Nick     string   `yaml:"nick"`
	Password string   `yaml:"password,omitempty"`
	Channels []string `yaml:"channels"`
	UseTLS   bool     `yaml:"useTLS,omitempty"`
	SASL     bool     `yaml:"sasl,omitempty"`
}

// GatewayConfig defines the WebSocket chat gateway adapter settings.
type GatewayConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token,omitempty"`
}

// StoreConfig defines persistence settings.
type StoreConfig struct {
	Path string `yaml:"path,omitempty"` // SQLite file, ":memory:" for ephemeral
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
}
