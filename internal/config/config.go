package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		NLU: NLUConfig{
			Threshold:  0.7,
			TTLMinutes: 30,
		},
		Bot: BotConfig{
			NewsFeeds: []string{"https://www.tagesschau.de/xml/rss2/"},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
