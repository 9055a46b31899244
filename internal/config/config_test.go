package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("GIN_MODE", "")
	t.Setenv("ACTION_LOCK_SECONDS", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "debug", cfg.Mode)
	assert.Equal(t, 10, cfg.ActionLockSeconds)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("GIN_MODE", "release")
	t.Setenv("RENEWAL_REQUEST_LIMIT_MINUTES", "15")
	t.Setenv("ADMIN_API_KEY", "secret")
	t.Setenv("WEBHOOK_CALLBACK_URL", "https://hooks.example.com/subscriptions")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, 15, cfg.RenewalLimitMinutes)
	assert.Equal(t, "secret", cfg.AdminAPIKey)
	require.NoError(t, cfg.Validate())
}

func TestInvalidIntFallsBackToDefault(t *testing.T) {
	t.Setenv("ACTION_LOCK_SECONDS", "soon")

	assert.Equal(t, 10, Load().ActionLockSeconds)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Load()
	cfg.Mode = "production"
	assert.Error(t, cfg.Validate())

	cfg = Load()
	cfg.WebhookCallbackURL = "not a url"
	assert.Error(t, cfg.Validate())

	cfg = Load()
	cfg.BrevoFromEmail = "nobody"
	assert.Error(t, cfg.Validate())
}
