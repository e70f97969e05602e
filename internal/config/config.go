// Package config loads xrdesk's YAML configuration and environment overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/1broseidon/xrdesk/internal/hotkeys"
)

const (
	DefaultTerminal      = "alacritty"
	DefaultModifier      = "alt"
	DefaultLogLevel      = "info"
	DefaultRuntime       = "sim"
	DefaultInputBackend  = "none"
	DefaultSpawnDistance = 2.0
	DefaultSensitivity   = 0.001
	DefaultAnglePadding  = 20.0
	DefaultImageWait     = time.Second

	maxDemoViews = 16
)

type Config struct {
	Terminal       string `yaml:"terminal"`
	StartupCommand string `yaml:"startup_command"`
	LogLevel       string `yaml:"log_level"`
	// LogFormat is auto, text or json. Auto picks text on a terminal.
	LogFormat string `yaml:"log_format"`

	Keybindings KeybindingsConfig `yaml:"keybindings"`
	Pointer     PointerConfig     `yaml:"pointer"`
	Scene       SceneConfig       `yaml:"scene"`
	Render      RenderConfig      `yaml:"render"`
	XR          XRConfig          `yaml:"xr"`
	Sim         SimConfig         `yaml:"sim"`
	Demo        DemoConfig        `yaml:"demo"`
	Input       InputConfig       `yaml:"input"`
}

type KeybindingsConfig struct {
	Modifier string `yaml:"modifier"`
	// Keys maps an action name (exit, cycle_focus, spawn_terminal,
	// close_view) to a key name.
	Keys map[string]string `yaml:"keys,omitempty"`
}

type PointerConfig struct {
	// Sensitivity is radians of ray rotation per unit of relative motion.
	Sensitivity         float64 `yaml:"sensitivity"`
	AnglePaddingDegrees float64 `yaml:"angle_padding_degrees"`
}

type SceneConfig struct {
	SpawnDistance float64 `yaml:"spawn_distance"`
	// Background is an RGB or RGBA clear color with components in [0,1].
	Background []float64 `yaml:"background"`
	GridColor  []float64 `yaml:"grid_color"`
}

type RenderConfig struct {
	Near float64 `yaml:"near"`
	Far  float64 `yaml:"far"`
}

type XRConfig struct {
	Runtime          string        `yaml:"runtime"`
	ImageWaitTimeout time.Duration `yaml:"image_wait_timeout"`
	// FrameDumpPath, when set, receives a PNG of the left eye on exit.
	FrameDumpPath string `yaml:"frame_dump_path"`
}

type SimConfig struct {
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	FovDegrees  float64 `yaml:"fov_degrees"`
	IPD         float64 `yaml:"ipd"`
	RefreshRate float64 `yaml:"refresh_rate"`
	Images      int     `yaml:"images"`
}

type DemoConfig struct {
	Views  int  `yaml:"views"`
	XRView bool `yaml:"xr_view"`
}

type InputConfig struct {
	// Backend is none or x11.
	Backend string `yaml:"backend"`
}

func DefaultConfig() *Config {
	return &Config{
		Terminal:  DefaultTerminal,
		LogLevel:  DefaultLogLevel,
		LogFormat: "auto",
		Keybindings: KeybindingsConfig{
			Modifier: DefaultModifier,
		},
		Pointer: PointerConfig{
			Sensitivity:         DefaultSensitivity,
			AnglePaddingDegrees: DefaultAnglePadding,
		},
		Scene: SceneConfig{
			SpawnDistance: DefaultSpawnDistance,
			Background:    []float64{0.08, 0.07, 0.16, 1},
			GridColor:     []float64{1, 1, 1, 1},
		},
		Render: RenderConfig{
			Near: 0.05,
			Far:  100,
		},
		XR: XRConfig{
			Runtime:          DefaultRuntime,
			ImageWaitTimeout: DefaultImageWait,
		},
		Sim: SimConfig{
			Width:       800,
			Height:      800,
			FovDegrees:  45,
			IPD:         0.064,
			RefreshRate: 90,
			Images:      3,
		},
		Demo: DemoConfig{
			Views: 2,
		},
		Input: InputConfig{
			Backend: DefaultInputBackend,
		},
	}
}

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Source.Kind == SourceEnv && e.Source.Name != "" {
		return fmt.Sprintf("%s (from $%s): %v", e.Path, e.Source.Name, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(path string, format string, args ...any) error {
	return &ValidationError{Path: path, Err: fmt.Errorf(format, args...)}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Terminal) == "" {
		return invalid("terminal", "must not be empty")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return &ValidationError{Path: "log_level", Err: err}
	}
	switch c.LogFormat {
	case "auto", "text", "json":
	default:
		return invalid("log_format", "must be auto, text or json (got %q)", c.LogFormat)
	}

	if _, err := hotkeys.ParseModifier(c.Keybindings.Modifier); err != nil {
		return &ValidationError{Path: "keybindings.modifier", Err: err}
	}
	if _, err := hotkeys.Parse(c.Keybindings.Modifier, c.Keybindings.Keys); err != nil {
		return &ValidationError{Path: "keybindings.keys", Err: err}
	}

	if c.Pointer.Sensitivity <= 0 {
		return invalid("pointer.sensitivity", "must be > 0")
	}
	if c.Pointer.AnglePaddingDegrees < 0 || c.Pointer.AnglePaddingDegrees >= 90 {
		return invalid("pointer.angle_padding_degrees", "must be in [0, 90)")
	}

	if c.Scene.SpawnDistance <= 0 {
		return invalid("scene.spawn_distance", "must be > 0")
	}
	if err := validateColor(c.Scene.Background); err != nil {
		return &ValidationError{Path: "scene.background", Err: err}
	}
	if err := validateColor(c.Scene.GridColor); err != nil {
		return &ValidationError{Path: "scene.grid_color", Err: err}
	}

	if c.Render.Near <= 0 {
		return invalid("render.near", "must be > 0")
	}
	if c.Render.Far <= c.Render.Near {
		return invalid("render.far", "must be greater than render.near")
	}

	if c.XR.Runtime != DefaultRuntime {
		return invalid("xr.runtime", "unsupported runtime %q (only %q is built in)", c.XR.Runtime, DefaultRuntime)
	}
	if c.XR.ImageWaitTimeout <= 0 {
		return invalid("xr.image_wait_timeout", "must be > 0")
	}

	if c.Sim.Width <= 0 || c.Sim.Height <= 0 {
		return invalid("sim", "eye resolution must be positive (got %dx%d)", c.Sim.Width, c.Sim.Height)
	}
	if c.Sim.FovDegrees <= 0 || c.Sim.FovDegrees >= 90 {
		return invalid("sim.fov_degrees", "must be in (0, 90)")
	}
	if c.Sim.IPD < 0 {
		return invalid("sim.ipd", "must be >= 0")
	}
	if c.Sim.RefreshRate < 0 {
		return invalid("sim.refresh_rate", "must be >= 0")
	}
	if c.Sim.Images < 1 {
		return invalid("sim.images", "must be >= 1")
	}

	if c.Demo.Views < 0 || c.Demo.Views > maxDemoViews {
		return invalid("demo.views", "must be in [0, %d]", maxDemoViews)
	}

	switch c.Input.Backend {
	case "none", "x11":
	default:
		return invalid("input.backend", "must be none or x11 (got %q)", c.Input.Backend)
	}
	return nil
}

func validateColor(c []float64) error {
	if len(c) != 3 && len(c) != 4 {
		return fmt.Errorf("expected 3 or 4 components, got %d", len(c))
	}
	for i, v := range c {
		if v < 0 || v > 1 {
			return fmt.Errorf("component %d out of range [0,1]: %v", i, v)
		}
	}
	return nil
}

func parseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errors.New("must be debug, info, warn or error")
	}
}

// SlogLevel is the configured log level; invalid names fall back to info.
func (c *Config) SlogLevel() slog.Level {
	lvl, _ := parseLevel(c.LogLevel)
	return lvl
}

// Hotkeys builds the binding table.
func (c *Config) Hotkeys() (*hotkeys.Table, error) {
	return hotkeys.Parse(c.Keybindings.Modifier, c.Keybindings.Keys)
}

// BackgroundColor is the clear color; alpha defaults to 1.
func (c *Config) BackgroundColor() gputypes.Color {
	return toColor(c.Scene.Background)
}

func (c *Config) GridColor() gputypes.Color {
	return toColor(c.Scene.GridColor)
}

func toColor(c []float64) gputypes.Color {
	out := gputypes.Color{A: 1}
	if len(c) >= 3 {
		out.R, out.G, out.B = c[0], c[1], c[2]
	}
	if len(c) == 4 {
		out.A = c[3]
	}
	return out
}
