package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath returns ~/.config/tidewm/config.yaml.
func DefaultConfigPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tidewm", "config.yaml"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "tidewm", "config.yaml"), nil
}

// Load reads the config from the standard location, merged over defaults.
// A missing file is not an error: the defaults stand alone.
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads and validates a config file merged over defaults.
// The TIDEWM_MOD environment variable overrides the configured mod key.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var user Config
		if err := yaml.Unmarshal(data, &user); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		cfg.merge(&user)
	case os.IsNotExist(err):
		// Defaults stand alone.
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	// TIDEWM_MOD wins over the file, so a session can pick the modifier
	// without editing the config (handy under a nested X server where
	// Super is taken by the outer session).
	if env := os.Getenv("TIDEWM_MOD"); env != "" {
		cfg.ModKey = env
	}
	cfg.ModKey = strings.ToLower(cfg.ModKey)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// merge overlays user-set fields onto the defaults. Bindings merge
// per-chord so users only list what they change.
func (c *Config) merge(user *Config) {
	if user.ModKey != "" {
		c.ModKey = user.ModKey
	}
	for chord, action := range user.Bindings {
		c.Bindings[chord] = action
	}
	if user.Layout.Default != "" {
		c.Layout.Default = user.Layout.Default
	}
	if user.Layout.MasterRatio != 0 {
		c.Layout.MasterRatio = user.Layout.MasterRatio
	}
	if user.Layout.MasterCount != 0 {
		c.Layout.MasterCount = user.Layout.MasterCount
	}
	if user.Bar.Visible != nil {
		c.Bar.Visible = user.Bar.Visible
	}
	if user.Bar.Font != "" {
		c.Bar.Font = user.Bar.Font
	}
	if user.Bar.Clock != nil {
		c.Bar.Clock = user.Bar.Clock
	}
	if user.Logging.Level != "" {
		c.Logging.Level = user.Logging.Level
	}
	if user.Logging.File != "" {
		c.Logging.File = user.Logging.File
	}
}
