// Package config loads the settings of the searchbox demo from an optional
// YAML file and environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the name of the optional configuration file.
const FileName = "searchbox.yaml"

// Environment variables that override file values.
const (
	EnvLogLevel   = "RXCORE_LOG_LEVEL"
	EnvLogFormat  = "RXCORE_LOG_FORMAT"
	EnvDebounce   = "RXCORE_DEBOUNCE"
	EnvMinQuery   = "RXCORE_MIN_QUERY"
	EnvReplaySize = "RXCORE_REPLAY_SIZE"
)

// Config represents searchbox.yaml.
type Config struct {
	Log    LogConfig    `yaml:"log"`
	Search SearchConfig `yaml:"search"`
}

// LogConfig selects the log output.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// SearchConfig tunes the search pipeline.
type SearchConfig struct {
	Debounce       time.Duration `yaml:"debounce,omitempty"`
	MinQueryLength int           `yaml:"min_query_length,omitempty"`
	ReplaySize     int           `yaml:"replay_size,omitempty"`
	Latency        time.Duration `yaml:"latency,omitempty"`
	Corpus         []string      `yaml:"corpus,omitempty"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info", Format: "console"},
		Search: SearchConfig{
			Debounce:       150 * time.Millisecond,
			MinQueryLength: 2,
			ReplaySize:     5,
			Latency:        40 * time.Millisecond,
			Corpus: []string{
				"observable", "observer", "operator", "producer", "replay",
				"scheduler", "subject", "subscription", "switch", "throttle",
				"debounce", "sample", "merge", "concat", "catch",
			},
		},
	}
}

// LoadOptional reads searchbox.yaml from dir if present and applies it over
// the defaults.
func LoadOptional(dir string) (Config, error) {
	cfg := Default()

	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	return cfg, nil
}

// Load reads the optional file in dir and then applies environment
// overrides.
func Load(dir string) (Config, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return cfg, err
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLogLevel); ok && strings.TrimSpace(v) != "" {
		c.Log.Level = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvLogFormat); ok && strings.TrimSpace(v) != "" {
		c.Log.Format = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvDebounce); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvDebounce, err)
		}
		c.Search.Debounce = d
	}
	if v, ok := lookup(EnvMinQuery); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvMinQuery, err)
		}
		c.Search.MinQueryLength = n
	}
	if v, ok := lookup(EnvReplaySize); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvReplaySize, err)
		}
		c.Search.ReplaySize = n
	}
	return nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if c.Search.Debounce < 0 {
		return fmt.Errorf("debounce must not be negative, got %s", c.Search.Debounce)
	}
	if c.Search.MinQueryLength < 0 {
		return fmt.Errorf("min_query_length must not be negative, got %d", c.Search.MinQueryLength)
	}
	return nil
}
