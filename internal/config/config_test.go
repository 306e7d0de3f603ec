package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 0.7, cfg.NLU.Threshold)
	assert.Equal(t, 30, cfg.NLU.TTLMinutes)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
nlu:
  endpoint: https://nlu.example.org
  appId: deltabot
  threshold: 0.5
  ttlMinutes: 10
bot:
  debug: true
  admins: ["100"]
  channels: ["#delta"]
channels:
  irc:
    server: irc.libera.chat
    nick: deltabot
    channels: ["#delta"]
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://nlu.example.org", cfg.NLU.Endpoint)
	assert.Equal(t, 0.5, cfg.NLU.Threshold)
	assert.Equal(t, 10, cfg.NLU.TTLMinutes)
	assert.True(t, cfg.Bot.Debug)
	assert.Equal(t, []string{"100"}, cfg.Bot.Admins)
	require.NotNil(t, cfg.Channels.IRC)
	assert.Equal(t, "irc.libera.chat", cfg.Channels.IRC.Server)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "nlu: [not a map")
	_, err := Load(path)
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestLoadAppliesDefaultsToPartialConfig(t *testing.T) {
	path := writeConfig(t, `
bot:
  respondAll: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Bot.RespondAll)
	assert.Equal(t, 0.7, cfg.NLU.Threshold)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DELTABOT_NLU_THRESHOLD", "0.42")
	t.Setenv("DELTABOT_DEBUG", "true")
	t.Setenv("DELTABOT_LOG_LEVEL", "WARN")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 0.42, cfg.NLU.Threshold)
	assert.True(t, cfg.Bot.Debug)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestExpandSensitiveFields(t *testing.T) {
	t.Setenv("TEST_NLU_KEY", "s3cret")
	path := writeConfig(t, `
nlu:
  key: ${TEST_NLU_KEY}
channels:
  gateway:
    url: wss://chat.example.org/gateway
    token: ${UNSET_VAR_FOR_TEST}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.NLU.Key)
	// Unset variables are left as-is
	assert.Equal(t, "${UNSET_VAR_FOR_TEST}", cfg.Channels.Gateway.Token)
}

func TestLoadRawAndSaveRaw(t *testing.T) {
	path := writeConfig(t, "bot:\n  debug: true\n")

	raw, err := LoadRaw(path)
	require.NoError(t, err)

	segments, err := ParseConfigPath("bot.debug")
	require.NoError(t, err)
	val, ok := GetValueAtPath(raw, segments)
	require.True(t, ok)
	assert.Equal(t, true, val)

	SetValueAtPath(raw, []string{"nlu", "threshold"}, 0.6)
	require.NoError(t, SaveRaw(path, raw))

	reloaded, err := LoadRaw(path)
	require.NoError(t, err)
	val, ok = GetValueAtPath(reloaded, []string{"nlu", "threshold"})
	require.True(t, ok)
	assert.Equal(t, 0.6, val)
}
