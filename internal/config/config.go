// Package config loads the petal field configuration.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds every tunable of the program.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Field    FieldConfig    `yaml:"field"`
	Palette  []string       `yaml:"palette"`
	Audio    AudioConfig    `yaml:"audio"`
	Terminal TerminalConfig `yaml:"terminal"`
	Log      LogConfig      `yaml:"log"`
}

// WindowConfig holds the initial window settings.
type WindowConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Title      string `yaml:"title"`
	TPS        int    `yaml:"tps"`
	Background string `yaml:"background"`
	Resizable  bool   `yaml:"resizable"`
}

// FieldConfig holds pool sizing and the motion variant toggles.
type FieldConfig struct {
	Breakpoint  int  `yaml:"breakpoint"`   // viewport width switching narrow/wide
	NarrowCount int  `yaml:"narrow_count"` // petals below the breakpoint
	WideCount   int  `yaml:"wide_count"`   // petals at or above it
	Buoyancy    bool `yaml:"buoyancy"`
	TopClamp    bool `yaml:"top_clamp"`
}

// AudioConfig tunes the ambient track's effect on the wind.
type AudioConfig struct {
	RingSize  int     `yaml:"ring_size"`
	Window    int     `yaml:"window"`    // samples per loudness reading
	Smoothing float64 `yaml:"smoothing"` // weight kept from the previous reading
	Gain      float64 `yaml:"gain"`      // loudness to gust boost
	MaxBoost  float64 `yaml:"max_boost"`
}

// TerminalConfig sizes the terminal preview.
type TerminalConfig struct {
	FPS        int `yaml:"fps"`
	CellWidth  int `yaml:"cell_width"`  // virtual pixels per cell
	CellHeight int `yaml:"cell_height"` // virtual pixels per cell
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads the embedded defaults and overlays the file at path, if any.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the field or renderers cannot work with.
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Window.TPS <= 0 {
		errs = append(errs, fmt.Errorf("window.tps %d must be positive", c.Window.TPS))
	}
	if _, err := colorful.Hex(c.Window.Background); err != nil {
		errs = append(errs, fmt.Errorf("window.background %q: %w", c.Window.Background, err))
	}
	if c.Field.Breakpoint <= 0 {
		errs = append(errs, fmt.Errorf("field.breakpoint %d must be positive", c.Field.Breakpoint))
	}
	if c.Field.NarrowCount < 0 || c.Field.WideCount < 0 {
		errs = append(errs, fmt.Errorf("field counts %d/%d must not be negative", c.Field.NarrowCount, c.Field.WideCount))
	}
	if len(c.Palette) == 0 {
		errs = append(errs, errors.New("palette is empty"))
	}
	for i, hex := range c.Palette {
		if _, err := colorful.Hex(hex); err != nil {
			errs = append(errs, fmt.Errorf("palette[%d] %q: %w", i, hex, err))
		}
	}
	if c.Audio.RingSize <= 0 || c.Audio.Window <= 0 {
		errs = append(errs, fmt.Errorf("audio ring %d / window %d must be positive", c.Audio.RingSize, c.Audio.Window))
	}
	if c.Audio.Smoothing < 0 || c.Audio.Smoothing >= 1 {
		errs = append(errs, fmt.Errorf("audio.smoothing %v must be in [0, 1)", c.Audio.Smoothing))
	}
	if c.Audio.Gain < 0 {
		errs = append(errs, fmt.Errorf("audio.gain %v must not be negative", c.Audio.Gain))
	}
	if c.Audio.MaxBoost < 0 {
		errs = append(errs, fmt.Errorf("audio.max_boost %v must not be negative", c.Audio.MaxBoost))
	}
	if c.Terminal.FPS <= 0 || c.Terminal.CellWidth <= 0 || c.Terminal.CellHeight <= 0 {
		errs = append(errs, errors.New("terminal fps and cell size must be positive"))
	}
	return errors.Join(errs...)
}

// Colors parses the palette. Validate has already checked every entry.
func (c *Config) Colors() []colorful.Color {
	out := make([]colorful.Color, 0, len(c.Palette))
	for _, hex := range c.Palette {
		col, err := colorful.Hex(hex)
		if err != nil {
			continue
		}
		out = append(out, col)
	}
	return out
}

// BackgroundColor parses window.background.
func (c *Config) BackgroundColor() colorful.Color {
	col, err := colorful.Hex(c.Window.Background)
	if err != nil {
		return colorful.Color{}
	}
	return col
}
