package config

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SIGNUP_URL", "https://api.example.org/signup")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "https://api.example.org/signup", cfg.SignupURL)
	assert.Equal(t, "sandbox", cfg.PlaidEnv)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.False(t, cfg.SecureCookies)
	assert.False(t, cfg.PlaidConfigured())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SIGNUP_URL", "https://api.example.org/signup")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("SECURE_COOKIES", "true")
	t.Setenv("PLAID_CLIENT_ID", "client")
	t.Setenv("PLAID_SECRET", "secret")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.True(t, cfg.SecureCookies)
	assert.True(t, cfg.PlaidConfigured())
}

func TestLoad_MissingSignupURL(t *testing.T) {
	t.Setenv("SIGNUP_URL", "")
	os.Unsetenv("SIGNUP_URL")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRequirements_Default(t *testing.T) {
	req, err := LoadRequirements("")

	require.NoError(t, err)
	assert.True(t, req.Required("first-name"))
	assert.True(t, req.Required("card-number"))
	assert.False(t, req.Required("address-line2"))
	assert.False(t, req.Required("department"))
}

func TestLoadRequirements_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requirements.yaml")
	require.NoError(t, os.WriteFile(path, []byte("required:\n  - email\n"), 0o600))

	req, err := LoadRequirements(path)

	require.NoError(t, err)
	assert.True(t, req.Required("email"))
	assert.False(t, req.Required("first-name"))
}

func TestParseRequirements_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty list", "required: []\n"},
		{"unknown field", "required:\n  - favourite-colour\n"},
		{"bad yaml", "required: [email\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRequirements([]byte(tt.raw))
			assert.Error(t, err)
		})
	}

	_, err := LoadRequirements(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
