package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	ConfigPathEnvVar  = "CONFIG_PATH"
	DefaultConfigPath = "config.yaml"
	EnvPrefix         = "ACOUSTIC_"
)

// Load layers struct defaults, the config file and the environment, then
// validates the result.
func Load() (*Config, error) {
	return LoadFile(findConfigFile())
}

// LoadFile is Load with an explicit config file. An empty path skips the file.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	if _, err := os.Stat(DefaultConfigPath); err == nil {
		return DefaultConfigPath
	}
	return ""
}

var envMappings = map[string]string{
	"server_addr":                          "server.addr",
	"server_read_header_timeout":           "server.read_header_timeout",
	"server_shutdown_timeout":              "server.shutdown_timeout",
	"database_path":                        "database.path",
	"log_level":                            "logging.level",
	"log_format":                           "logging.format",
	"fingerprint_dynamics_points":          "fingerprint.dynamics_points",
	"fingerprint_articulation_points":      "fingerprint.articulation_points",
	"fingerprint_home_articulation_points": "fingerprint.home_articulation_points",
	"filter_tempo_min":                     "filter.tempo_min",
	"filter_tempo_max":                     "filter.tempo_max",
	"filter_duration_max_minutes":          "filter.duration_max_minutes",
	"recommend_k":                          "recommend.k",
	"spotify_enabled":                      "spotify.enabled",
	"spotify_client_id":                    "spotify.client_id",
	"spotify_client_secret":                "spotify.client_secret",
	"spotify_token_url":                    "spotify.token_url",
	"spotify_base_url":                     "spotify.base_url",
	"spotify_max_retries":                  "spotify.max_retries",
	"spotify_retry_backoff":                "spotify.retry_backoff",
	"worker_count":                         "worker.workers",
	"worker_queue_size":                    "worker.queue_size",
}

// envTransformFunc maps ACOUSTIC_* variables to config paths. Unknown
// variables map to "" and are skipped.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return envMappings[key]
}
