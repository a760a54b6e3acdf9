package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://example.supabase.co/")
	t.Setenv("SUPABASE_ANON_KEY", " anon-key ")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, RemoteSupabase, cfg.RemoteMode)
	assert.Equal(t, "https://example.supabase.co", cfg.Supabase.URL)
	assert.Equal(t, "anon-key", cfg.Supabase.AnonKey)
	assert.Equal(t, "item_images", cfg.Supabase.Bucket)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "@ucdconnect.ie", cfg.Auth.EmailDomain)
	assert.Equal(t, time.Duration(0), cfg.PriceAlertInterval)
	assert.False(t, cfg.VisionEnabled())
}

func TestLoad_MissingSecret(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoad_PostgresModeRequiresDatabaseURL(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("REMOTE_MODE", "postgres")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://localhost/db")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, RemotePostgres, cfg.RemoteMode)
}

func TestLoad_InvalidDuration(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PRICE_ALERT_INTERVAL", "soon")

	_, err := Load()
	assert.ErrorContains(t, err, "PRICE_ALERT_INTERVAL")
}
