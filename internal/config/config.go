// Package config loads service configuration from defaults, an optional
// YAML file and ACOUSTIC_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config is the full service configuration.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Database    DatabaseConfig    `koanf:"database"`
	Logging     LoggingConfig     `koanf:"logging"`
	Fingerprint FingerprintConfig `koanf:"fingerprint"`
	Filter      FilterConfig      `koanf:"filter"`
	Recommend   RecommendConfig   `koanf:"recommend"`
	Spotify     SpotifyConfig     `koanf:"spotify"`
	Worker      WorkerConfig      `koanf:"worker"`
}

type ServerConfig struct {
	Addr              string        `koanf:"addr"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Path string `koanf:"path"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// FingerprintConfig sets curve resolution per view.
type FingerprintConfig struct {
	DynamicsPoints         int `koanf:"dynamics_points"`
	ArticulationPoints     int `koanf:"articulation_points"`
	HomeArticulationPoints int `koanf:"home_articulation_points"`
}

// FilterConfig holds the bounds of the default catalogue filter.
type FilterConfig struct {
	TempoMin           float64 `koanf:"tempo_min"`
	TempoMax           float64 `koanf:"tempo_max"`
	DurationMaxMinutes float64 `koanf:"duration_max_minutes"`
}

type RecommendConfig struct {
	K int `koanf:"k"`
}

type SpotifyConfig struct {
	Enabled      bool          `koanf:"enabled"`
	ClientID     string        `koanf:"client_id"`
	ClientSecret string        `koanf:"client_secret"`
	TokenURL     string        `koanf:"token_url"`
	BaseURL      string        `koanf:"base_url"`
	MaxRetries   int           `koanf:"max_retries"`
	RetryBackoff time.Duration `koanf:"retry_backoff"`
}

type WorkerConfig struct {
	Workers   int `koanf:"workers"`
	QueueSize int `koanf:"queue_size"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Database: DatabaseConfig{Path: "acoustic.db"},
		Logging:  LoggingConfig{Level: "info", Format: "json"},
		Fingerprint: FingerprintConfig{
			DynamicsPoints:         1500,
			ArticulationPoints:     1500,
			HomeArticulationPoints: 2000,
		},
		Filter: FilterConfig{
			TempoMin:           12.0,
			TempoMax:           275.0,
			DurationMaxMinutes: 60,
		},
		Recommend: RecommendConfig{K: 3},
		Spotify: SpotifyConfig{
			TokenURL:     "https://accounts.spotify.com/api/token",
			BaseURL:      "https://api.spotify.com/v1",
			MaxRetries:   3,
			RetryBackoff: 500 * time.Millisecond,
		},
		Worker: WorkerConfig{Workers: 4, QueueSize: 256},
	}
}

var ErrInvalidConfig = errors.New("invalid configuration")

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is required", ErrInvalidConfig)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path is required", ErrInvalidConfig)
	}
	if c.Fingerprint.DynamicsPoints < 1 || c.Fingerprint.ArticulationPoints < 1 || c.Fingerprint.HomeArticulationPoints < 1 {
		return fmt.Errorf("%w: fingerprint points must be positive", ErrInvalidConfig)
	}
	if c.Filter.TempoMin >= c.Filter.TempoMax {
		return fmt.Errorf("%w: filter.tempo_min (%g) must be below filter.tempo_max (%g)", ErrInvalidConfig, c.Filter.TempoMin, c.Filter.TempoMax)
	}
	if c.Filter.DurationMaxMinutes <= 0 {
		return fmt.Errorf("%w: filter.duration_max_minutes must be positive", ErrInvalidConfig)
	}
	if c.Recommend.K < 1 {
		return fmt.Errorf("%w: recommend.k must be positive", ErrInvalidConfig)
	}
	if c.Worker.Workers < 1 || c.Worker.QueueSize < 1 {
		return fmt.Errorf("%w: worker.workers and worker.queue_size must be positive", ErrInvalidConfig)
	}
	if c.Spotify.Enabled {
		if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
			return fmt.Errorf("%w: spotify.client_id and spotify.client_secret are required when spotify is enabled", ErrInvalidConfig)
		}
		if c.Spotify.MaxRetries < 0 {
			return fmt.Errorf("%w: spotify.max_retries must not be negative", ErrInvalidConfig)
		}
	}
	return nil
}
