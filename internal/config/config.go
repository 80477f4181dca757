// Package config loads the planrun driver configuration.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Config holds the driver settings.
type Config struct {
	// Device
	Backend string `json:"backend"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`

	// Output
	Output     string `json:"output"`
	Background string `json:"background"`
	Frames     int    `json:"frames"`

	// LogLevel is one of debug, info, warn, error. Empty disables logging.
	LogLevel string `json:"log_level"`

	// Settings overrides component settings by name.
	Settings map[string]json.RawMessage `json:"settings"`
}

// Default returns the configuration used without a config file.
func Default() Config {
	return Config{
		Width:  640,
		Height: 480,
		Output: "frame.png",
		Frames: 1,
	}
}

// Load reads a JSON config file over Default.
// Fields not set in the file keep their default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Backend    string
	Width      int
	Height     int
	Output     string
	Background string
	Frames     int
	Verbose    bool
}

// Resolve applies flag overrides and fills invalid fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.Backend != "" {
		c.Backend = flags.Backend
	}
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.Output != "" {
		c.Output = flags.Output
	}
	if flags.Background != "" {
		c.Background = flags.Background
	}
	if flags.Frames > 0 {
		c.Frames = flags.Frames
	}
	if flags.Verbose {
		c.LogLevel = "debug"
	}

	def := Default()
	if c.Width <= 0 {
		c.Width = def.Width
	}
	if c.Height <= 0 {
		c.Height = def.Height
	}
	if c.Output == "" {
		c.Output = def.Output
	}
	if c.Frames <= 0 {
		c.Frames = def.Frames
	}
}

// Level parses LogLevel. ok is false when logging should stay disabled.
func (c *Config) Level() (level slog.Level, ok bool, err error) {
	if c.LogLevel == "" {
		return 0, false, nil
	}
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, false, fmt.Errorf("config: log_level: %w", err)
	}
	return level, true, nil
}
