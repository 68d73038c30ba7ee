// Package config handles configuration loading and validation for taskdeck.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Statistics sources.
const (
	StatisticsLocal  = "local"
	StatisticsRemote = "remote"
)

// Config holds the application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Validation    ValidationConfig    `yaml:"validation"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Statistics    StatisticsConfig    `yaml:"statistics"`
	TUI           TUIConfig           `yaml:"tui"`
	DataDir       string              `yaml:"-"` // set by caller, not from config file
}

// ServerConfig locates the remote task store.
type ServerConfig struct {
	BaseURL   string        `yaml:"base_url"`
	APIPrefix string        `yaml:"api_prefix"`
	Timeout   time.Duration `yaml:"timeout"`
}

// ValidationConfig tunes the task form rules.
type ValidationConfig struct {
	DescriptionRequired bool `yaml:"description_required"`
}

// NotificationsConfig controls outcome messages.
type NotificationsConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// StatisticsConfig selects where counts come from: "local" aggregates the
// cached tasks, "remote" asks the store.
type StatisticsConfig struct {
	Source string `yaml:"source"`
}

// TUIConfig holds interactive UI settings.
type TUIConfig struct {
	Theme string `yaml:"theme"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			BaseURL:   "http://localhost:3001",
			APIPrefix: "/api",
			Timeout:   10 * time.Second,
		},
		Notifications: NotificationsConfig{
			TTL: 6 * time.Second,
		},
		Statistics: StatisticsConfig{
			Source: StatisticsLocal,
		},
		TUI: TUIConfig{
			Theme: "tokyo-night",
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
// The result is not validated so callers can apply flag overrides first.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg.DataDir = dataDir
	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = defaults.Server.BaseURL
	}
	if c.Server.Timeout == 0 {
		c.Server.Timeout = defaults.Server.Timeout
	}
	if c.Notifications.TTL == 0 {
		c.Notifications.TTL = defaults.Notifications.TTL
	}
	if c.Statistics.Source == "" {
		c.Statistics.Source = defaults.Statistics.Source
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
}

// SessionFile returns the path to the persisted session.
func (c *Config) SessionFile() string {
	return filepath.Join(c.DataDir, "session.json")
}
