package core

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/hubastard/arbor/engine/colors"
	"github.com/hubastard/arbor/engine/logging"
)

// Config for the engine run. It is loaded from and saved to YAML.
type Config struct {
	Title      string       `yaml:"title"`
	Width      int          `yaml:"width"`
	Height     int          `yaml:"height"`
	VSync      bool         `yaml:"vsync"`
	ClearColor colors.Color `yaml:"clear_color,flow"`
	Locale     string       `yaml:"locale"`
	LogLevel   string       `yaml:"log_level"`

	// MinWidth and MinHeight bound how small the user can make the window.
	// Zero leaves the dimension unbounded.
	MinWidth  int `yaml:"min_width,omitempty"`
	MinHeight int `yaml:"min_height,omitempty"`

	// Renderer limits.
	MaxQuads     int `yaml:"max_quads"`
	AtlasSize    int `yaml:"atlas_size"`
	AtlasMaxSize int `yaml:"atlas_max_size"`

	// Window is the last window geometry, restored at start.
	Window *WindowConfig `yaml:"window,omitempty"`
}

type WindowConfig struct {
	X         int  `yaml:"x"`
	Y         int  `yaml:"y"`
	Width     int  `yaml:"width"`
	Height    int  `yaml:"height"`
	Maximized bool `yaml:"maximized"`
}

func DefaultConfig() Config {
	return Config{
		Title:        "arbor",
		Width:        1280,
		Height:       720,
		VSync:        true,
		ClearColor:   colors.DarkGray,
		Locale:       "en-US",
		LogLevel:     "info",
		MaxQuads:     10000,
		AtlasSize:    512,
		AtlasMaxSize: 4096,
	}
}

// Level parses LogLevel, defaulting to info.
func (c Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Size returns the initial window size, preferring the saved geometry and
// never smaller than the minimum size.
func (c Config) Size() (int, int) {
	w, h := c.Width, c.Height
	if g := c.Window; g != nil && g.Width > 0 && g.Height > 0 {
		w, h = g.Width, g.Height
	}
	return max(w, c.MinWidth), max(h, c.MinHeight)
}

func (c *Config) normalize() {
	d := DefaultConfig()
	if c.Width <= 0 || c.Height <= 0 {
		c.Width, c.Height = d.Width, d.Height
	}
	if c.Locale == "" {
		c.Locale = d.Locale
	}
	c.MinWidth, c.MinHeight = max(c.MinWidth, 0), max(c.MinHeight, 0)
	if c.MaxQuads <= 0 {
		c.MaxQuads = d.MaxQuads
	}
	if c.AtlasSize <= 0 {
		c.AtlasSize = d.AtlasSize
	}
	if c.AtlasMaxSize < c.AtlasSize {
		c.AtlasMaxSize = max(c.AtlasSize, d.AtlasMaxSize)
	}
}

// DefaultConfigPath returns <user config dir>/<app>/config.yaml.
func DefaultConfigPath(app string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config dir: %w", err)
	}
	return filepath.Join(dir, app, "config.yaml"), nil
}

// LoadConfig reads the config at path. A missing file is created with the
// defaults. A file that fails to parse is left alone and the defaults are
// used. Keys absent from the file keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logging.Logger().Info("creating config", "path", path)
		return cfg, SaveConfig(path, cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("load config %q: %w", path, err)
	}

	if err := yaml.Unmarshal(b, &cfg); err != nil {
		logging.Logger().Warn("config unreadable, using defaults", "path", path, "err", err)
		return DefaultConfig(), nil
	}
	cfg.normalize()
	return cfg, nil
}

// SaveConfig writes cfg to path, creating parent directories.
func SaveConfig(path string, cfg Config) error {
	b, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("save config %q: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("save config %q: %w", path, err)
	}
	return os.Rename(tmp, path)
}
