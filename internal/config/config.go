// Package config handles TOML-based configuration loading and validation.
// Settings are parsed as data only; the EdgeStream access key is a secret
// and comes from the environment, never the config file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// EnvAccessKey is the environment variable holding the EdgeStream
// management API key.
const EnvAccessKey = "EDGESTREAM_ACCESS_KEY"

// Config holds all application configuration.
type Config struct {
	CDNHostname       string `toml:"cdn_hostname"`       // custom EdgeStream CDN hostname, optional
	LibraryID         string `toml:"library_id"`         // EdgeStream video library ID
	Watermark         string `toml:"watermark"`          // overlay text; empty disables the overlay
	WatermarkInterval int    `toml:"watermark_interval"` // seconds between overlay moves
	DatabasePath      string `toml:"database_path"`
	Listen            string `toml:"listen"` // serve address, e.g. ":8320"
	Debug             bool   `toml:"debug"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		WatermarkInterval: 30,
		DatabasePath:      "", // resolved lazily by CatalogPath
		Listen:            ":8320",
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "coursecast"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "coursecast"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file and merges with defaults. A missing config
// file is not an error; defaults are returned.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err != nil {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	if c.WatermarkInterval < 5 {
		return fmt.Errorf("watermark_interval must be at least 5 seconds, got %d", c.WatermarkInterval)
	}
	if c.Listen == "" {
		return fmt.Errorf("listen address cannot be empty")
	}
	return nil
}

// AccessKey returns the EdgeStream API key from the environment, or "".
func (c *Config) AccessKey() string {
	return os.Getenv(EnvAccessKey)
}

// CatalogPath returns the catalog database path, defaulting to the XDG
// data directory.
func (c *Config) CatalogPath() (string, error) {
	if c.DatabasePath != "" {
		return c.DatabasePath, nil
	}
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "coursecast", "catalog.db"), nil
}
