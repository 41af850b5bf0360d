// Package config loads the optional YAML configuration file. Application
// credentials never live here; they come from the environment so the file
// can be committed or shared safely.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/harmoni-labs/mixtape/internal/knn"
)

// DefaultPath is where Load looks when no -config flag is given.
const DefaultPath = "mixtape.yaml"

type Config struct {
	// LogLevel follows slog's numeric levels: -4 debug, 0 info, 4 warn,
	// 8 error.
	LogLevel int `yaml:"log_level"`

	Cache   CacheConfig   `yaml:"cache"`
	Auth    AuthConfig    `yaml:"auth"`
	Spotify SpotifyConfig `yaml:"spotify"`

	// Weights overrides individual distance weights; zero fields keep
	// the defaults.
	Weights knn.Weights `yaml:"weights"`
}

type CacheConfig struct {
	// Driver of the snapshot cache: "sqlite", "csv" or "off".
	Driver string `yaml:"driver"`

	// Dir holds the sqlite database or the exported CSV files.
	Dir string `yaml:"dir"`
}

type AuthConfig struct {
	RedirectPort int    `yaml:"redirect_port"`
	TokenFile    string `yaml:"token_file"`
}

type SpotifyConfig struct {
	MaxRetries    int `yaml:"max_retries"`
	BackoffBaseMS int `yaml:"backoff_base_ms"`
}

// Load reads the config file at path. A missing file is not an error: every
// setting has a default.
func Load(path string) (*Config, error) {
	config := defaults()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	// Re-apply defaults for anything the file left empty
	if config.Cache.Driver == "" {
		config.Cache.Driver = "sqlite"
	}
	if config.Cache.Dir == "" {
		config.Cache.Dir = "."
	}
	if config.Auth.RedirectPort == 0 {
		config.Auth.RedirectPort = 8000
	}
	if config.Spotify.MaxRetries == 0 {
		config.Spotify.MaxRetries = 5
	}
	if config.Spotify.BackoffBaseMS == 0 {
		config.Spotify.BackoffBaseMS = 1000
	}

	switch config.Cache.Driver {
	case "sqlite", "csv", "off":
	default:
		return nil, fmt.Errorf("config: unknown cache driver %q", config.Cache.Driver)
	}

	return config, nil
}

// DistanceWeights merges the file's overrides onto the calibrated defaults.
func (c *Config) DistanceWeights() knn.Weights {
	return knn.Merge(knn.DefaultWeights(), c.Weights)
}

func defaults() *Config {
	return &Config{
		LogLevel: 0,
		Cache: CacheConfig{
			Driver: "sqlite",
			Dir:    ".",
		},
		Auth: AuthConfig{
			RedirectPort: 8000,
		},
		Spotify: SpotifyConfig{
			MaxRetries:    5,
			BackoffBaseMS: 1000,
		},
	}
}
