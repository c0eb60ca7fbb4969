package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
logger:
  level: debug
database:
  host: localhost
  user: econ
  name: econ
redis:
  addr: localhost:6379
discord:
  enabled: true
  token: abc
rate_limit:
  enabled: true
  per_user:
    limit: 20
    window: 1m
  commands:
    games:
      limit: 6
      window: 30s
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile_AppliesDefaults(t *testing.T) {
	cfg, v, err := LoadFile(writeConfig(t, sampleConfig), "test")
	require.NoError(t, err)
	require.NotNil(t, v)

	assert.Equal(t, "test", cfg.AppEnv)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "!", cfg.Discord.Prefix)
	assert.Equal(t, 15*time.Second, cfg.Sessions.CleanupInterval)
	assert.Equal(t, 6, cfg.RateLimit.Commands["games"].Limit)
	assert.Contains(t, cfg.Database.DSN(), "sslmode=disable")
}

func TestLoadFile_RejectsMissingToken(t *testing.T) {
	body := `
database:
  host: localhost
  user: econ
  name: econ
redis:
  addr: localhost:6379
discord:
  enabled: true
`
	_, _, err := LoadFile(writeConfig(t, body), "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate config")
}
