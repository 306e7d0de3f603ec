package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	// NLU validation
	if cfg.NLU.Threshold < 0 || cfg.NLU.Threshold > 1 {
		issues = append(issues, ValidationIssue{
			Path:    "nlu.threshold",
			Message: fmt.Sprintf("threshold must be 0-1, got %v", cfg.NLU.Threshold),
		})
	}
	if cfg.NLU.TTLMinutes < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "nlu.ttlMinutes",
			Message: fmt.Sprintf("must not be negative, got %d", cfg.NLU.TTLMinutes),
		})
	}
	if cfg.NLU.Endpoint != "" && !strings.HasPrefix(cfg.NLU.Endpoint, "http://") && !strings.HasPrefix(cfg.NLU.Endpoint, "https://") {
		issues = append(issues, ValidationIssue{
			Path:    "nlu.endpoint",
			Message: fmt.Sprintf("must be an http(s) URL, got %q", cfg.NLU.Endpoint),
		})
	}

	// Logging validation
	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	// IRC validation (only if configured)
	if cfg.Channels.IRC != nil {
		irc := cfg.Channels.IRC
		if irc.Server == "" {
			issues = append(issues, ValidationIssue{
				Path:    "channels.irc.server",
				Message: "server is required",
			})
		}
		if irc.Nick == "" {
			issues = append(issues, ValidationIssue{
				Path:    "channels.irc.nick",
				Message: "nick is required",
			})
		}
		if irc.Port < 0 || irc.Port > 65535 {
			issues = append(issues, ValidationIssue{
				Path:    "channels.irc.port",
				Message: fmt.Sprintf("port must be 0-65535, got %d", irc.Port),
			})
		}
		if irc.SASL && irc.Password == "" {
			issues = append(issues, ValidationIssue{
				Path:    "channels.irc.sasl",
				Message: "SASL requires a password to be set",
			})
		}
	}

	// Gateway validation (only if configured)
	if cfg.Channels.Gateway != nil {
		gw := cfg.Channels.Gateway
		if gw.URL == "" {
			issues = append(issues, ValidationIssue{
				Path:    "channels.gateway.url",
				Message: "url is required",
			})
		} else if !strings.HasPrefix(gw.URL, "ws://") && !strings.HasPrefix(gw.URL, "wss://") {
			issues = append(issues, ValidationIssue{
				Path:    "channels.gateway.url",
				Message: fmt.Sprintf("must be a ws(s) URL, got %q", gw.URL),
			})
		}
	}

	return issues
}
