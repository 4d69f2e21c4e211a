package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /tmp/test.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, "x-api-key", cfg.API.Auth.HeaderAPIKey)
	assert.Equal(t, 365, cfg.Booking.MaxBookingDays)
	assert.Equal(t, "0.10", cfg.Fees.StandardRate)
	assert.Equal(t, "0.08", cfg.Fees.ProRate)
	assert.Equal(t, "0.0499", cfg.Fees.GatewayPercent)
	assert.Equal(t, "3.67", cfg.Fees.GatewayFixed)
	assert.Equal(t, 1800, cfg.Fees.CacheTTL)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_DB_PATH", "/tmp/expanded.db")
	path := writeConfig(t, `
database:
  path: ${TEST_DB_PATH}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/expanded.db", cfg.Database.Path)
}

func TestLoad_MissingDatabasePath(t *testing.T) {
	path := writeConfig(t, `
app:
  name: palco
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_AuthEnabledWithoutKeys(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /tmp/test.db
api:
  auth:
    enabled: true
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidRole(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /tmp/test.db
api:
  auth:
    enabled: true
    api_keys:
      - key: abc
        name: someone
        actor_id: 1
        role: superuser
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_NotificationsNeedToken(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /tmp/test.db
notifications:
  enabled: true
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /tmp/test.db
api:
  port: 9000
  auth:
    enabled: true
    api_keys:
      - key: artist-key
        name: Ana
        actor_id: 3
        role: artist
  rate_limit:
    rps: 5
    burst: 10
booking:
  max_booking_days: 180
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.API.Port)
	assert.Equal(t, 180, cfg.Booking.MaxBookingDays)
	require.Len(t, cfg.API.Auth.APIKeys, 1)
	assert.Equal(t, int64(3), cfg.API.Auth.APIKeys[0].ActorID)
	assert.Equal(t, float64(5), cfg.API.RateLimit.RPS)
}
