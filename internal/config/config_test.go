package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{
		"DB_DSN":     "postgres://localhost/academy",
		"JWT_SECRET": "secret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 60*time.Second, cfg.SweepInterval)
	assert.Equal(t, "https://meet.jit.si", cfg.VideoBaseURL)
	assert.False(t, cfg.TelegramEnabled())
}

func TestFromEnv_RequiredFields(t *testing.T) {
	_, err := FromEnv(envOf(map[string]string{"JWT_SECRET": "secret"}))
	assert.ErrorContains(t, err, "DB_DSN")

	_, err = FromEnv(envOf(map[string]string{"DB_DSN": "postgres://x"}))
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestFromEnv_SweepInterval(t *testing.T) {
	base := map[string]string{"DB_DSN": "postgres://x", "JWT_SECRET": "s"}

	base["SWEEP_INTERVAL"] = "15s"
	cfg, err := FromEnv(envOf(base))
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.SweepInterval)

	base["SWEEP_INTERVAL"] = "soon"
	_, err = FromEnv(envOf(base))
	assert.Error(t, err)

	base["SWEEP_INTERVAL"] = "-1s"
	_, err = FromEnv(envOf(base))
	assert.Error(t, err)
}

func TestFromEnv_Telegram(t *testing.T) {
	base := map[string]string{"DB_DSN": "postgres://x", "JWT_SECRET": "s", "TELEGRAM_TOKEN": "tok"}

	_, err := FromEnv(envOf(base))
	assert.Error(t, err)

	base["TELEGRAM_CHAT_ID"] = "-100500"
	cfg, err := FromEnv(envOf(base))
	require.NoError(t, err)
	assert.True(t, cfg.TelegramEnabled())
	assert.Equal(t, int64(-100500), cfg.TelegramChat())

	base["TELEGRAM_CHAT_ID"] = "@academy"
	cfg, err = FromEnv(envOf(base))
	require.NoError(t, err)
	assert.Equal(t, "@academy", cfg.TelegramChat())
}

func TestFromEnv_LogLevel(t *testing.T) {
	base := map[string]string{"DB_DSN": "postgres://x", "JWT_SECRET": "s"}

	cfg, err := FromEnv(envOf(base))
	require.NoError(t, err)
	assert.Empty(t, cfg.LogLevel, "empty means environment default")

	base["LOG_LEVEL"] = " WARN "
	cfg, err = FromEnv(envOf(base))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}
