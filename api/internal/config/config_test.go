package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"TELEGRAM_BOT_TOKEN", "WEBHOOK_URL", "PORT", "DATABASE_URL", "APP_ENV",
		"LOG_FILE_PATH", "SESSION_TTL", "NATS_URL", "REDIS_URL",
		"POSTGRES_USER", "POSTGRES_PASSWORD", "PGHOST", "PGPORT", "POSTGRES_DB",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("POSTGRES_PASSWORD", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Zero(t, cfg.SessionTTL)
	assert.False(t, cfg.IsProd())
	assert.Equal(t, "postgres://pedidos:s3cret@db:5432/pedidos?sslmode=disable", cfg.DatabaseURL)
	assert.Equal(t, "host=db port=5432 db=pedidos user=pedidos", SafeDSNSummary(cfg.DatabaseURL))
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("DATABASE_URL", "postgres://u:p@pg.internal/shop")
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_TTL", "45")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@pg.internal/shop", cfg.DatabaseURL)
	assert.True(t, cfg.IsProd())
	assert.Equal(t, 45*time.Minute, cfg.SessionTTL)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	_, err := Load()
	require.Error(t, err)

	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("SESSION_TTL", "soon")
	_, err = Load()
	require.Error(t, err)
}

func TestParseTTL(t *testing.T) {
	cases := map[string]time.Duration{
		"":    0,
		"0":   0,
		"30m": 30 * time.Minute,
		"2h":  2 * time.Hour,
		"15":  15 * time.Minute,
	}
	for in, want := range cases {
		got, err := parseTTL(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := parseTTL("-5m")
	assert.Error(t, err)
}
