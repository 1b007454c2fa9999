package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "4000", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 7, cfg.Demo.DurationDays)
	assert.Equal(t, 30, cfg.Rewards.CodeTTLDays)
	assert.True(t, cfg.Payments.MockAPI)
	assert.Equal(t, "MOCK", cfg.Notifications.DefaultGateway)
}

func TestLoadPlatformOverrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, https://admin.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.Server.AllowedHosts)
}

func TestGetEnvAsSliceFallsBack(t *testing.T) {
	t.Setenv("EMPTY_LIST", "")
	assert.Equal(t, []string{"a"}, GetEnvAsSlice("EMPTY_LIST", ",", []string{"a"}))
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("SEED_ADMINEMAIL", "admin@example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "admin@example.com", cfg.Seed.AdminEmail)
}
