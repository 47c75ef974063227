package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{"APP_ENV", "SECRET_KEY", "JWT_SECRET", "HOST", "PORT", "DB_DRIVER",
		"DB_PATH", "SEED_EXAMPLE_ACCOUNTS", "DEBUG", "LOG_LEVEL", "TOKEN_TTL", "CORS_ORIGINS"} {
		t.Setenv(key, "")
	}
}

func TestFromEnv_DevelopmentDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "rrhh.db", cfg.DBPath)
	assert.Equal(t, devSecret, cfg.SecretKey)
	assert.True(t, cfg.SeedExampleAccounts)
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
}

func TestFromEnv_ProductionRequiresSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")

	_, err := FromEnv()
	assert.ErrorIs(t, err, ErrMissingSecret)

	t.Setenv("SECRET_KEY", "s3cr3t")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.False(t, cfg.Debug)
	assert.False(t, cfg.SeedExampleAccounts)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "testing")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("TOKEN_TTL", "90")
	t.Setenv("PORT", "9090")
	t.Setenv("DEBUG", "false")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, 90*time.Second, cfg.TokenTTL)
	assert.Equal(t, "9090", cfg.Port)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "file::memory:?cache=shared", cfg.DBPath)
}
