package config

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://rcpolo.com", cfg.PortalURL)
	assert.Equal(t, "Europe/Madrid", cfg.PortalTimezone)
	assert.Equal(t, 7, cfg.OpenHour)
	assert.Equal(t, 0, cfg.OpenMinute)
	assert.True(t, cfg.Headless)
	assert.Equal(t, "clubsched.notifications", cfg.NotifyQueue)
	assert.NotEmpty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.CredentialsKey)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CLUBSCHED_PORTAL_TIMEZONE", "Europe/Lisbon")
	t.Setenv("CLUBSCHED_PORTAL_OPEN_HOUR", "8")
	t.Setenv("CLUBSCHED_CHROME_HEADLESS", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Europe/Lisbon", cfg.PortalTimezone)
	assert.Equal(t, 8, cfg.OpenHour)
	assert.False(t, cfg.Headless)
}

func TestLoadDecodesKeys(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	t.Setenv("CLUBSCHED_CREDENTIALS_KEY", base64.StdEncoding.EncodeToString(key))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, key, cfg.CredentialsKey)
	assert.NoError(t, cfg.RequireCredentialsKey())
}

func TestLoadRejectsBadKey(t *testing.T) {
	t.Setenv("CLUBSCHED_CREDENTIALS_KEY", "not base64 !!")
	_, err := Load()
	assert.Error(t, err)
}

func TestRequireCredentialsKey(t *testing.T) {
	assert.Error(t, Config{}.RequireCredentialsKey())
	assert.Error(t, Config{CredentialsKey: make([]byte, 10)}.RequireCredentialsKey())
	assert.NoError(t, Config{CredentialsKey: make([]byte, 16)}.RequireCredentialsKey())
	assert.NoError(t, Config{CredentialsKey: make([]byte, 32)}.RequireCredentialsKey())
}
