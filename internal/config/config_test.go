package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithoutJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("RAWG_API_KEY", "key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "key", cfg.RawgAPIKey)
	assert.EqualError(t, cfg.ValidateServer(), "JWT_SECRET is required")
}

func TestValidateServer(t *testing.T) {
	cfg := &Config{JWTSecret: "s3cret"}
	assert.NoError(t, cfg.ValidateServer())
}

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("RAWG_TIMEOUT", "3s")
	t.Setenv("APP_ENV", "Production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 3*time.Second, cfg.RawgTimeout)
	assert.Equal(t, "https://api.rawg.io/api", cfg.RawgBaseURL)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.True(t, cfg.IsProduction())
}

func TestAllowedOrigins(t *testing.T) {
	cfg := &Config{CORSAllowedOrigins: " https://a.example , https://b.example,"}
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins())

	cfg.CORSAllowedOrigins = ""
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins())
}
