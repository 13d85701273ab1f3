package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/reel/internal/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.themoviedb.org/3", cfg.API.BaseURL)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500", cfg.API.ImageBaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, 20.0, cfg.API.RateLimit)
	assert.Equal(t, 3, cfg.API.MaxRetries)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 15*time.Second, cfg.Network.ProbeInterval)
	assert.Equal(t, cfg.API.BaseURL, cfg.Network.ProbeURL)
	assert.Equal(t, "INFO", cfg.Logging.Level)
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
api:
  key: abc123
  timeout: 3s
  rate_limit: 5
cache:
  dir: ~/reel-cache
  ttl: 1m
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	home, _ := os.UserHomeDir()
	assert.Equal(t, "abc123", cfg.API.Key)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, 5.0, cfg.API.RateLimit)
	assert.Equal(t, filepath.Join(home, "reel-cache"), cfg.Cache.Dir)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "api:\n  key: from-file\n")
	t.Setenv("REEL_API_KEY", "from-env")
	t.Setenv("REEL_METRICS_ADDR", ":9100")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.API.Key)
	assert.Equal(t, ":9100", cfg.Metrics.Addr)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfig(t, "api: [unterminated")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate_MissingKey(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.Validate()
	assert.ErrorIs(t, err, domain.ErrMissingAPIKey)

	cfg.API.Key = "k"
	cfg.API.BaseURL = ""
	assert.Error(t, cfg.Validate())
}
