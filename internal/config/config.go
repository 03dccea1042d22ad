// Package config loads the TOML configuration file with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config is the full service configuration.
type Config struct {
	// DataDir holds the sqlite database. Defaults to ~/.jobscout/data.
	DataDir string `toml:"data_dir"`

	Log  LogConfig  `toml:"log"`
	Scan ScanConfig `toml:"scan"`
	Rank RankConfig `toml:"rank"`
}

// LogConfig controls logger construction.
type LogConfig struct {
	JSON  bool `toml:"json"`
	Debug bool `toml:"debug"`
}

// ScanConfig controls payload fetching and the scheduled scan cadence.
type ScanConfig struct {
	// FetchTimeoutSeconds bounds one remote payload fetch.
	FetchTimeoutSeconds int `toml:"fetch_timeout_seconds"`

	// RatePerSecond throttles remote fetches.
	RatePerSecond float64 `toml:"rate_per_second"`

	// Schedule is the cron expression for scheduled batch scans.
	Schedule string `toml:"schedule"`
}

// RankConfig controls ranking behaviour.
type RankConfig struct {
	// StoredFallbackLimit bounds how many stored postings a rank call
	// scores when the request supplies none.
	StoredFallbackLimit int `toml:"stored_fallback_limit"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: LogConfig{},
		Scan: ScanConfig{
			FetchTimeoutSeconds: 15,
			RatePerSecond:       2.0,
			Schedule:            "@every 30m",
		},
		Rank: RankConfig{
			StoredFallbackLimit: 100,
		},
	}
}

// Load reads the config file at path, or ~/.jobscout/config.toml when path
// is empty. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".jobscout", "config.toml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
