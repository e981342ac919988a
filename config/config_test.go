package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_FileWithDefaults(t *testing.T) {
	path := writeConfig(t, `
postgres:
  dsn: postgres://royale@localhost/royale
nats:
  url: nats://localhost:4222
reporting:
  poll_interval: 45s
  publish_rate: 0.5
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://royale@localhost/royale", cfg.Postgres.DSN)
	assert.Equal(t, 45*time.Second, cfg.Reporting.PollInterval)
	assert.Equal(t, 0.5, cfg.Reporting.PublishRate)
	assert.Equal(t, defaultPublishBurst, cfg.Reporting.PublishBurst)
	assert.Equal(t, defaultHTTPAddress, cfg.HTTP.Address)
	assert.Equal(t, defaultJWTTTL, cfg.JWT.DefaultTTL)
	assert.Equal(t, "info", cfg.Observability.LogLevel)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "postgres:\n  dsn: postgres://file\nnats:\n  url: nats://file\n")
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("REPORT_POLL_INTERVAL", "5s")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://env", cfg.Postgres.DSN)
	assert.Equal(t, "nats://file", cfg.NATS.URL)
	assert.Equal(t, 5*time.Second, cfg.Reporting.PollInterval)
}

func TestLoadConfig_EnvFallback(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	t.Run("requires database url", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		t.Setenv("NATS_URL", "nats://env")
		_, err := LoadConfig(missing)
		require.Error(t, err)
	})

	t.Run("loads from env", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://env")
		t.Setenv("NATS_URL", "nats://env")
		t.Setenv("REPORT_POLL_INTERVAL", "")
		cfg, err := LoadConfig(missing)
		require.NoError(t, err)
		assert.Equal(t, defaultPollInterval, cfg.Reporting.PollInterval)
		assert.Equal(t, float64(defaultPublishRate), cfg.Reporting.PublishRate)
		assert.Equal(t, defaultJWTIssuer, cfg.JWT.Issuer)
	})

	t.Run("splits allowed origins", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://env")
		t.Setenv("NATS_URL", "nats://env")
		t.Setenv("REPORT_POLL_INTERVAL", "")
		t.Setenv("HTTP_ALLOWED_ORIGINS", "https://a.example,https://b.example")
		cfg, err := LoadConfig(missing)
		require.NoError(t, err)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
	})

	t.Run("rejects bad interval", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://env")
		t.Setenv("NATS_URL", "nats://env")
		t.Setenv("REPORT_POLL_INTERVAL", "soon")
		_, err := LoadConfig(missing)
		require.Error(t, err)
	})
}
