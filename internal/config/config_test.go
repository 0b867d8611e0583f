package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, uint16(8080), cfg.HTTP.Port)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "X-Caller", cfg.HTTP.CallerHeader)
	assert.Equal(t, "postgres", cfg.Ledger.Backend)
	assert.Equal(t, 64, cfg.Ledger.SubscriberBuffer)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "vaquinha:events", cfg.Redis.Stream)
	assert.Equal(t, "localhost:5432", cfg.Psql.Addr.Host)
	assert.Equal(t, slog.LevelInfo, cfg.Log.SlogLevel())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ENV", "dev")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("HTTP_CALLER_HEADER", "X-Wallet")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "JSON")
	t.Setenv("LEDGER_BACKEND", "Memory")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_ADDRESS", "redis://cache:6380/2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, uint16(9090), cfg.HTTP.Port)
	assert.Equal(t, "X-Wallet", cfg.HTTP.CallerHeader)
	assert.Equal(t, slog.LevelDebug, cfg.Log.SlogLevel())
	assert.Equal(t, "json", cfg.Log.SlogFormat())
	backend, err := cfg.Ledger.BackendName()
	require.NoError(t, err)
	assert.Equal(t, "memory", backend)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr.Host)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("LEDGER_BACKEND", "mongo")
	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsBadPort(t *testing.T) {
	t.Setenv("HTTP_PORT", "99999")
	_, err := Load()
	require.Error(t, err)
}
