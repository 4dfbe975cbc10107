// Package config handles loading and managing receiptdex configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// RemoteConfig holds the connection settings for the receipt service.
type RemoteConfig struct {
	URL            string `toml:"url"`             // Service base URL
	APIKey         string `toml:"api_key"`         // API authentication key
	AllowInsecure  bool   `toml:"allow_insecure"`  // Permit plain http:// URLs
	TimeoutSeconds int    `toml:"timeout_seconds"` // Request timeout (default: 30)
}

// BrowseConfig holds search and listing behavior.
type BrowseConfig struct {
	PageSize   int `toml:"page_size"`   // Results per page (default: 20)
	DebounceMS int `toml:"debounce_ms"` // Keystroke debounce in milliseconds (default: 300)
}

// ServerConfig holds fixture server configuration.
type ServerConfig struct {
	Addr        string `toml:"addr"`         // Listen address (default: 127.0.0.1:8173)
	APIKey      string `toml:"api_key"`      // API authentication key
	FixturePath string `toml:"fixture_path"` // Optional JSON catalog; demo data when empty
}

// DataConfig holds local data storage configuration.
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

type Config struct {
	Data   DataConfig   `toml:"data"`
	Remote RemoteConfig `toml:"remote"`
	Browse BrowseConfig `toml:"browse"`
	Server ServerConfig `toml:"server"`

	// Computed paths (not from config file)
	HomeDir string `toml:"-"`
}

// DefaultHome returns the default receiptdex home directory.
// Respects RECEIPTDEX_HOME environment variable.
func DefaultHome() string {
	if h := os.Getenv("RECEIPTDEX_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".receiptdex"
	}
	return filepath.Join(home, ".receiptdex")
}

// Load reads the configuration from the specified file.
// If path is empty, uses the default location (~/.receiptdex/config.toml).
func Load(path string) (*Config, error) {
	homeDir := DefaultHome()

	if path == "" {
		path = filepath.Join(homeDir, "config.toml")
	}

	cfg := &Config{
		HomeDir: homeDir,
		// Defaults
		Data: DataConfig{
			DataDir: homeDir,
		},
		Remote: RemoteConfig{
			TimeoutSeconds: 30,
		},
		Browse: BrowseConfig{
			PageSize:   20,
			DebounceMS: 300,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8173",
		},
	}

	// Config file is optional - use defaults if not present
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// Expand ~ in paths
	cfg.Data.DataDir = expandPath(cfg.Data.DataDir)
	cfg.Server.FixturePath = expandPath(cfg.Server.FixturePath)

	return cfg, nil
}

// RemoteTimeout returns the configured request timeout as a duration.
func (c *Config) RemoteTimeout() time.Duration {
	if c.Remote.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Remote.TimeoutSeconds) * time.Second
}

// Debounce returns the configured keystroke debounce as a duration.
func (c *Config) Debounce() time.Duration {
	if c.Browse.DebounceMS <= 0 {
		return 300 * time.Millisecond
	}
	return time.Duration(c.Browse.DebounceMS) * time.Millisecond
}

// ViewsDir returns the path to the persisted view-state directory.
func (c *Config) ViewsDir() string {
	return c.Data.DataDir
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
