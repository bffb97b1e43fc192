// Package config loads and validates tinsel settings from a TOML file
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/tinsel/scene"
	"github.com/lixenwraith/tinsel/terminal"
)

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("invalid config")

// Backend names
const (
	BackendANSI  = "ansi"
	BackendTcell = "tcell"
)

// Layers selects which scene layers start enabled
type Layers struct {
	Stars  bool `toml:"stars"`
	Snow   bool `toml:"snow"`
	Tree   bool `toml:"tree"`
	Lights bool `toml:"lights"`
}

// ThemeColors holds tcell color names or #rrggbb strings
type ThemeColors struct {
	TreeDark  string `toml:"tree_dark"`
	TreeLight string `toml:"tree_light"`
	Trunk     string `toml:"trunk"`
	Star      string `toml:"star"`
}

// Config is the full runtime configuration
type Config struct {
	FPS     int    `toml:"fps"`
	Color   string `toml:"color"` // auto, truecolor, 256
	Backend string `toml:"backend"`
	Sound   bool   `toml:"sound"`
	HUD     bool   `toml:"hud"`
	Seed    uint64 `toml:"seed"` // 0 picks a time-based seed

	Stars         int     `toml:"stars"`
	StarLayers    int     `toml:"star_layers"`
	ParallaxSpeed float64 `toml:"parallax_speed"`
	Snowflakes    int     `toml:"snowflakes"`
	SnowSpeed     float64 `toml:"snow_speed"`
	TreeLights    int     `toml:"tree_lights"`
	TreeScale     float64 `toml:"tree_scale"`
	RotationSpeed float64 `toml:"rotation_speed"`
	HueCycle      bool    `toml:"hue_cycle"`

	Layers Layers      `toml:"layers"`
	Theme  ThemeColors `toml:"theme"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		FPS:           30,
		Color:         "auto",
		Backend:       BackendANSI,
		HUD:           true,
		Stars:         scene.DefaultStarfieldOptions.Stars,
		StarLayers:    scene.DefaultStarfieldOptions.Layers,
		ParallaxSpeed: scene.DefaultStarfieldOptions.Speed,
		Snowflakes:    scene.DefaultSnowOptions.Flakes,
		SnowSpeed:     scene.DefaultSnowOptions.Speed,
		TreeLights:    scene.DefaultLightsOptions.Count,
		TreeScale:     scene.DefaultTreeOptions.Scale,
		RotationSpeed: scene.DefaultTreeOptions.RotationSpeed,
		Layers:        Layers{Stars: true, Snow: true, Tree: true, Lights: true},
		Theme: ThemeColors{
			TreeDark:  hexOf(scene.DefaultTheme.TreeDark),
			TreeLight: hexOf(scene.DefaultTheme.TreeLight),
			Trunk:     hexOf(scene.DefaultTheme.Trunk),
			Star:      hexOf(scene.DefaultTheme.Star),
		},
	}
}

func hexOf(c terminal.RGB) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Load reads path over the defaults; keys absent from the file keep their default
// A missing file is not an error when path is empty
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("%w: unknown keys %s", ErrInvalid, strings.Join(keys, ", "))
	}

	return cfg, cfg.Validate()
}

// Save writes cfg as TOML, creating the parent directory
func Save(path string, cfg Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// Validate checks ranges and resolves every theme color
func (c Config) Validate() error {
	switch {
	case c.FPS < 1 || c.FPS > 120:
		return fmt.Errorf("%w: fps %d outside 1-120", ErrInvalid, c.FPS)
	case c.Stars < 0 || c.Snowflakes < 0 || c.TreeLights < 0:
		return fmt.Errorf("%w: particle counts must not be negative", ErrInvalid)
	case c.StarLayers < 1 || c.StarLayers > 8:
		return fmt.Errorf("%w: star_layers %d outside 1-8", ErrInvalid, c.StarLayers)
	case c.TreeScale <= 0 || c.TreeScale > 1:
		return fmt.Errorf("%w: tree_scale %v outside (0, 1]", ErrInvalid, c.TreeScale)
	case c.SnowSpeed < 0 || c.ParallaxSpeed < 0:
		return fmt.Errorf("%w: speeds must not be negative", ErrInvalid)
	}

	if _, err := c.ColorMode(); err != nil {
		return err
	}
	if c.Backend != BackendANSI && c.Backend != BackendTcell {
		return fmt.Errorf("%w: backend %q, want %s or %s", ErrInvalid, c.Backend, BackendANSI, BackendTcell)
	}
	if _, err := c.SceneTheme(); err != nil {
		return err
	}
	return nil
}

// ColorMode resolves the color setting; "auto" probes the environment
func (c Config) ColorMode() (terminal.ColorMode, error) {
	switch strings.ToLower(c.Color) {
	case "", "auto", "256", "truecolor", "true", "24bit":
		return terminal.ParseColorMode(c.Color), nil
	}
	return 0, fmt.Errorf("%w: color %q, want auto, truecolor or 256", ErrInvalid, c.Color)
}

// SceneTheme parses the theme table into scene colors
func (c Config) SceneTheme() (scene.Theme, error) {
	var th scene.Theme
	for _, f := range []struct {
		key string
		val string
		dst *terminal.RGB
	}{
		{"tree_dark", c.Theme.TreeDark, &th.TreeDark},
		{"tree_light", c.Theme.TreeLight, &th.TreeLight},
		{"trunk", c.Theme.Trunk, &th.Trunk},
		{"star", c.Theme.Star, &th.Star},
	} {
		rgb, err := parseColor(f.val)
		if err != nil {
			return th, fmt.Errorf("%w: theme.%s: %v", ErrInvalid, f.key, err)
		}
		*f.dst = rgb
	}
	return th, nil
}

// parseColor accepts any name tcell knows and #rrggbb
func parseColor(s string) (terminal.RGB, error) {
	col := tcell.GetColor(strings.ToLower(strings.TrimSpace(s)))
	if col == tcell.ColorDefault {
		return terminal.RGB{}, fmt.Errorf("unknown color %q", s)
	}
	r, g, b := col.RGB()
	if r < 0 {
		return terminal.RGB{}, fmt.Errorf("color %q has no RGB value", s)
	}
	return terminal.RGB{R: uint8(r), G: uint8(g), B: uint8(b)}, nil
}
