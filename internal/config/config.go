// Package config loads the tidewm YAML configuration and turns the
// keybinding table into parsed bindings the X11 layer can grab. Defaults
// keep the manager usable with no config file at all.
package config

import (
	"fmt"
	"strings"

	"github.com/1broseidon/tidewm/internal/layout"
	"github.com/1broseidon/tidewm/internal/wm"
)

// Config is the full user-facing configuration.
type Config struct {
	// ModKey is the primary modifier: "super" (default) or "alt".
	ModKey string `yaml:"mod_key"`

	// Bindings maps key chords ("mod+shift+q") to action strings
	// ("close-focused"). Entries merge over the defaults; binding a
	// chord to "" removes the default.
	Bindings map[string]string `yaml:"bindings"`

	Layout  LayoutConfig  `yaml:"layout"`
	Bar     BarConfig     `yaml:"bar"`
	Logging LoggingConfig `yaml:"logging"`
}

// LayoutConfig sets the initial per-workspace layout parameters.
type LayoutConfig struct {
	// Default is the starting mode: master-stack, vstack, dwindle or
	// monocle.
	Default string `yaml:"default"`
	// MasterRatio is the master column's width fraction, in (0,1).
	MasterRatio float64 `yaml:"master_ratio"`
	// MasterCount is how many windows share the master column.
	MasterCount int `yaml:"master_count"`
}

// BarConfig controls the status bar.
type BarConfig struct {
	// Visible sets the initial bar visibility per workspace.
	Visible *bool `yaml:"visible"`
	// Font is the X core font name used for bar text.
	Font string `yaml:"font"`
	// Clock toggles the clock module on the right edge.
	Clock *bool `yaml:"clock"`
}

// LoggingConfig configures the slog sink.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// File, when set, receives the log stream instead of stderr.
	File string `yaml:"file"`
}

// Default returns the built-in configuration. The binding table covers
// every action so the manager is fully driveable out of the box.
func Default() *Config {
	bindings := map[string]string{
		"mod+return":          "spawn kitty",
		"mod+p":               "spawn dmenu_run",
		"mod+shift+q":         "close-focused",
		"mod+control+q":       "quit",
		"mod+j":               "focus-next",
		"mod+k":               "focus-prev",
		"mod+shift+j":         "swap-next",
		"mod+shift+k":         "swap-prev",
		"mod+shift+return":    "promote-master",
		"mod+space":           "cycle-layout",
		"mod+b":               "toggle-bar",
		"mod+minus":           "split-horizontal",
		"mod+shift+backslash": "split-vertical",
	}
	for i := 1; i <= wm.NumWorkspaces; i++ {
		bindings[fmt.Sprintf("mod+%d", i)] = fmt.Sprintf("workspace %d", i)
		bindings[fmt.Sprintf("mod+shift+%d", i)] = fmt.Sprintf("move-to-workspace %d", i)
	}
	visible := true
	clock := true
	return &Config{
		ModKey:   "super",
		Bindings: bindings,
		Layout: LayoutConfig{
			Default:     string(layout.ModeMasterStack),
			MasterRatio: 0.55,
			MasterCount: 1,
		},
		Bar: BarConfig{
			Visible: &visible,
			Font:    "fixed",
			Clock:   &clock,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks everything that cannot be expressed in the YAML schema.
func (c *Config) Validate() error {
	switch strings.ToLower(c.ModKey) {
	case "super", "alt":
	default:
		return fmt.Errorf("mod_key must be super or alt, got %q", c.ModKey)
	}
	if _, err := c.DefaultMode(); err != nil {
		return err
	}
	if r := c.Layout.MasterRatio; r <= 0 || r >= 1 {
		return fmt.Errorf("layout.master_ratio must be in (0,1), got %v", r)
	}
	if c.Layout.MasterCount < 1 {
		return fmt.Errorf("layout.master_count must be >= 1, got %d", c.Layout.MasterCount)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	if _, err := c.ResolveBindings(); err != nil {
		return err
	}
	return nil
}

// DefaultMode parses the configured starting layout mode.
func (c *Config) DefaultMode() (layout.Mode, error) {
	m := layout.Mode(c.Layout.Default)
	switch m {
	case layout.ModeMasterStack, layout.ModeVStack, layout.ModeDwindle, layout.ModeMonocle:
		return m, nil
	}
	return "", fmt.Errorf("layout.default must be a known mode, got %q", c.Layout.Default)
}

// DefaultParams builds the layout parameters fresh workspaces start with.
func (c *Config) DefaultParams() layout.Params {
	return layout.Params{
		Ratio:       c.Layout.MasterRatio,
		MasterCount: c.Layout.MasterCount,
	}
}

// BarVisible reports the configured initial bar visibility.
func (c *Config) BarVisible() bool {
	return c.Bar.Visible == nil || *c.Bar.Visible
}

// ClockEnabled reports whether the bar clock module is on.
func (c *Config) ClockEnabled() bool {
	return c.Bar.Clock == nil || *c.Bar.Clock
}

// Binding is one parsed keybinding: modifier names, a keysym name, and the
// action to dispatch. Keycode resolution happens in the X11 layer.
type Binding struct {
	Mods   []string
	Key    string
	Action wm.Action
}

// ResolveBindings parses the binding table. Chords mapped to an empty
// action are dropped, which is how users disable a default.
func (c *Config) ResolveBindings() ([]Binding, error) {
	out := make([]Binding, 0, len(c.Bindings))
	for chord, actionStr := range c.Bindings {
		if strings.TrimSpace(actionStr) == "" {
			continue
		}
		mods, key, err := parseChord(chord)
		if err != nil {
			return nil, err
		}
		action, err := wm.ParseAction(actionStr)
		if err != nil {
			return nil, fmt.Errorf("binding %q: %w", chord, err)
		}
		out = append(out, Binding{Mods: mods, Key: key, Action: action})
	}
	return out, nil
}

func parseChord(chord string) (mods []string, key string, err error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(chord)), "+")
	for i, part := range parts {
		part = strings.TrimSpace(part)
		switch part {
		case "mod", "shift", "control", "alt":
			mods = append(mods, part)
		case "":
			return nil, "", fmt.Errorf("binding %q has an empty component", chord)
		default:
			if i != len(parts)-1 {
				return nil, "", fmt.Errorf("binding %q: key %q must come last", chord, part)
			}
			key = part
		}
	}
	if key == "" {
		return nil, "", fmt.Errorf("binding %q has no key", chord)
	}
	return mods, key, nil
}
