package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 1500, cfg.Fingerprint.DynamicsPoints)
	assert.Equal(t, 2000, cfg.Fingerprint.HomeArticulationPoints)
	assert.Equal(t, 12.0, cfg.Filter.TempoMin)
	assert.Equal(t, 275.0, cfg.Filter.TempoMax)
	assert.Equal(t, 3, cfg.Recommend.K)
	assert.False(t, cfg.Spotify.Enabled)
}

func TestLoadFile_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  addr: ":9090"
  shutdown_timeout: 3s
recommend:
  k: 11
filter:
  tempo_min: 12.75
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("ACOUSTIC_RECOMMEND_K", "5")
	t.Setenv("ACOUSTIC_LOG_LEVEL", "debug")
	t.Setenv("ACOUSTIC_UNRELATED", "ignored")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 12.75, cfg.Filter.TempoMin)
	assert.Equal(t, 5, cfg.Recommend.K, "environment overrides the file")
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{name: "defaults", mutate: func(*Config) {}, ok: true},
		{name: "zero k", mutate: func(c *Config) { c.Recommend.K = 0 }},
		{name: "inverted tempo", mutate: func(c *Config) { c.Filter.TempoMin = 300 }},
		{name: "zero points", mutate: func(c *Config) { c.Fingerprint.ArticulationPoints = 0 }},
		{name: "spotify without credentials", mutate: func(c *Config) { c.Spotify.Enabled = true }},
		{name: "spotify with credentials", mutate: func(c *Config) {
			c.Spotify.Enabled = true
			c.Spotify.ClientID = "id"
			c.Spotify.ClientSecret = "secret"
		}, ok: true},
		{name: "no workers", mutate: func(c *Config) { c.Worker.Workers = 0 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := defaultConfig()
			tc.mutate(c)
			err := c.Validate()
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	assert.Equal(t, "spotify.client_id", envTransformFunc("ACOUSTIC_SPOTIFY_CLIENT_ID"))
	assert.Equal(t, "worker.workers", envTransformFunc("ACOUSTIC_WORKER_COUNT"))
	assert.Empty(t, envTransformFunc("ACOUSTIC_NOPE"))
}
