// Package config loads codonvm.toml
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/samber/lo"

	"codonvm/internal/render"
	"codonvm/internal/render/raster"
	"codonvm/internal/tui"
	"codonvm/internal/vm"
)

// FileName is the configuration file FindAndLoad looks for
const FileName = "codonvm.toml"

// FormatCalls writes the recorded renderer calls instead of an image
const FormatCalls = "calls"

type Config struct {
	VM     VMConfig     `toml:"vm"`
	Canvas CanvasConfig `toml:"canvas"`
	Output OutputConfig `toml:"output"`
	Store  StoreConfig  `toml:"store"`
	Log    LogConfig    `toml:"log"`
	TUI    TUIConfig    `toml:"tui"`

	// Path is the file the configuration was read from, empty for defaults
	Path string `toml:"-"`
}

type VMConfig struct {
	InstructionLimit int   `toml:"instruction_limit"`
	Seed             int64 `toml:"seed"`
	MaxStackDepth    int   `toml:"max_stack_depth"`
}

type CanvasConfig struct {
	Width      int     `toml:"width"`
	Height     int     `toml:"height"`
	MinScale   float64 `toml:"min_scale"`
	Background string  `toml:"background"`
}

type OutputConfig struct {
	Format   string `toml:"format"`
	Encoding string `toml:"encoding"`
}

type StoreConfig struct {
	Path string `toml:"path"`
}

type TUIConfig struct {
	Theme string `toml:"theme"`
}

type LogConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		VM: VMConfig{
			InstructionLimit: vm.DefaultInstructionLimit,
			Seed:             vm.DefaultSeed,
			MaxStackDepth:    vm.DefaultMaxStackDepth,
		},
		Canvas: CanvasConfig{
			Width:      400,
			Height:     400,
			MinScale:   render.DefaultMinScale,
			Background: "#ffffff",
		},
		Output: OutputConfig{
			Format:   string(raster.FormatPNG),
			Encoding: "utf-8",
		},
		Log: LogConfig{
			Level: "info",
		},
		TUI: TUIConfig{
			Theme: tui.TelixTheme.Name,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}

	cfg.Path = path
	if cfg.Store.Path != "" && !filepath.IsAbs(cfg.Store.Path) {
		cfg.Store.Path = filepath.Join(filepath.Dir(path), cfg.Store.Path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return cfg, nil
}

// FindAndLoad looks for FileName in startDir and its parents. Without one it
// returns the defaults.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

var logLevels = []string{"debug", "info", "warn", "error"}

var encodings = []string{"utf-8", "utf8", "latin1", "iso-8859-1", "cp437"}

// Validate reports every invalid setting
func (c *Config) Validate() error {
	var errs []error
	if c.VM.InstructionLimit <= 0 {
		errs = append(errs, fmt.Errorf("vm.instruction_limit must be positive, got %d", c.VM.InstructionLimit))
	}
	if c.VM.MaxStackDepth < 0 {
		errs = append(errs, fmt.Errorf("vm.max_stack_depth must not be negative, got %d", c.VM.MaxStackDepth))
	}
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		errs = append(errs, fmt.Errorf("canvas size must be positive, got %dx%d", c.Canvas.Width, c.Canvas.Height))
	}
	if c.Canvas.MinScale <= 0 {
		errs = append(errs, fmt.Errorf("canvas.min_scale must be positive, got %g", c.Canvas.MinScale))
	}
	if c.Output.Format != FormatCalls {
		if _, err := raster.ParseFormat(c.Output.Format); err != nil {
			errs = append(errs, fmt.Errorf("output.format: %w", err))
		}
	}
	if !lo.Contains(encodings, strings.ToLower(c.Output.Encoding)) {
		errs = append(errs, fmt.Errorf("output.encoding: unknown encoding %q", c.Output.Encoding))
	}
	if !lo.Contains(logLevels, strings.ToLower(c.Log.Level)) {
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	if _, err := tui.ThemeByName(c.TUI.Theme); err != nil {
		errs = append(errs, fmt.Errorf("tui.theme: %w", err))
	}
	return errors.Join(errs...)
}

// VMSettings returns the virtual machine limits
func (c *Config) VMSettings() vm.Config {
	return vm.Config{
		InstructionLimit: c.VM.InstructionLimit,
		Seed:             c.VM.Seed,
		MaxStackDepth:    c.VM.MaxStackDepth,
	}
}

// RasterOptions returns the canvas options for an image run
func (c *Config) RasterOptions() raster.Options {
	opts := raster.Options{
		Width:      c.Canvas.Width,
		Height:     c.Canvas.Height,
		MinScale:   c.Canvas.MinScale,
		Background: c.Canvas.Background,
		Format:     raster.FormatPNG,
	}
	if f, err := raster.ParseFormat(c.Output.Format); err == nil {
		opts.Format = f
	}
	return opts
}
