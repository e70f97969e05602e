package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/xrdesk/internal/hotkeys"
	"github.com/1broseidon/xrdesk/internal/input"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.Terminal != "alacritty" {
		t.Fatalf("expected default terminal alacritty, got %q", cfg.Terminal)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.File != "" {
		t.Fatalf("expected no file, got %q", res.File)
	}
	if res.Config.Scene.SpawnDistance != DefaultSpawnDistance {
		t.Fatalf("expected spawn distance %v, got %v", DefaultSpawnDistance, res.Config.Scene.SpawnDistance)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(writeConfig(t, "# empty\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Keybindings.Modifier != DefaultModifier {
		t.Fatalf("expected modifier %q, got %q", DefaultModifier, res.Config.Keybindings.Modifier)
	}
}

func TestLoadFromPath_OverridesKeepOtherDefaults(t *testing.T) {
	path := writeConfig(t, strings.Join([]string{
		"terminal: foot",
		"pointer:",
		"  sensitivity: 0.002",
		"xr:",
		"  image_wait_timeout: 250ms",
		"sim:",
		"  width: 640",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Terminal != "foot" {
		t.Fatalf("expected terminal foot, got %q", cfg.Terminal)
	}
	if cfg.Pointer.Sensitivity != 0.002 {
		t.Fatalf("expected sensitivity 0.002, got %v", cfg.Pointer.Sensitivity)
	}
	if cfg.Pointer.AnglePaddingDegrees != DefaultAnglePadding {
		t.Fatalf("expected default padding to survive, got %v", cfg.Pointer.AnglePaddingDegrees)
	}
	if cfg.XR.ImageWaitTimeout != 250*time.Millisecond {
		t.Fatalf("expected 250ms image wait, got %v", cfg.XR.ImageWaitTimeout)
	}
	if cfg.Sim.Width != 640 || cfg.Sim.Height != 800 {
		t.Fatalf("expected 640x800 eyes, got %dx%d", cfg.Sim.Width, cfg.Sim.Height)
	}

	src, ok := res.Sources["pointer.sensitivity"]
	if !ok {
		t.Fatalf("expected a source for pointer.sensitivity")
	}
	if src.Kind != SourceFile || src.Line != 3 {
		t.Fatalf("expected file source at line 3, got %+v", src)
	}
}

func TestLoadFromPath_UnknownKeyRejected(t *testing.T) {
	_, err := LoadFromPath(writeConfig(t, "pointer:\n  speed: 3\n"))
	if err == nil {
		t.Fatalf("expected unknown key to fail")
	}
	if !strings.Contains(err.Error(), "speed") {
		t.Fatalf("expected error to name the key, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorCarriesLine(t *testing.T) {
	path := writeConfig(t, "log_level: info\nscene:\n  spawn_distance: -1\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "scene.spawn_distance" {
		t.Fatalf("expected path scene.spawn_distance, got %q", verr.Path)
	}
	if verr.Source.Line != 3 {
		t.Fatalf("expected line 3, got %d", verr.Source.Line)
	}
	if !strings.Contains(err.Error(), ":3:") {
		t.Fatalf("expected file:line prefix, got %v", err)
	}
}

func TestLoadFromPath_EnvOverridesFile(t *testing.T) {
	t.Setenv("TERMINAL", "kitty")
	t.Setenv("XRDESK_LOG_LEVEL", "debug")
	t.Setenv("XRDESK_STARTUP", "foot --server")
	t.Setenv("XRDESK_MODIFIER", "super")

	res, err := LoadFromPath(writeConfig(t, "terminal: foot\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Terminal != "kitty" {
		t.Fatalf("expected TERMINAL to win, got %q", cfg.Terminal)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Fatalf("expected debug level, got %v", cfg.SlogLevel())
	}
	if cfg.StartupCommand != "foot --server" {
		t.Fatalf("expected startup command from env, got %q", cfg.StartupCommand)
	}
	if src := res.Sources["terminal"]; src.Kind != SourceEnv || src.Name != "TERMINAL" {
		t.Fatalf("expected env source for terminal, got %+v", src)
	}

	table, err := cfg.Hotkeys()
	if err != nil {
		t.Fatalf("hotkeys: %v", err)
	}
	if table.Modifier() != input.ModSuper {
		t.Fatalf("expected super modifier, got %v", table.Modifier())
	}
}

func TestLoadFromPath_BadEnvNamesVariable(t *testing.T) {
	t.Setenv("XRDESK_INPUT", "wayland")

	_, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected invalid backend to fail")
	}
	if !strings.Contains(err.Error(), "XRDESK_INPUT") {
		t.Fatalf("expected error to name the variable, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		path   string
	}{
		{"empty terminal", func(c *Config) { c.Terminal = " " }, "terminal"},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"log format", func(c *Config) { c.LogFormat = "xml" }, "log_format"},
		{"modifier", func(c *Config) { c.Keybindings.Modifier = "hyper" }, "keybindings.modifier"},
		{"unknown action", func(c *Config) { c.Keybindings.Keys = map[string]string{"jump": "j"} }, "keybindings.keys"},
		{"sensitivity", func(c *Config) { c.Pointer.Sensitivity = 0 }, "pointer.sensitivity"},
		{"padding", func(c *Config) { c.Pointer.AnglePaddingDegrees = 90 }, "pointer.angle_padding_degrees"},
		{"background length", func(c *Config) { c.Scene.Background = []float64{1, 1} }, "scene.background"},
		{"background range", func(c *Config) { c.Scene.Background = []float64{0, 0, 2} }, "scene.background"},
		{"far", func(c *Config) { c.Render.Far = c.Render.Near }, "render.far"},
		{"runtime", func(c *Config) { c.XR.Runtime = "monado" }, "xr.runtime"},
		{"image wait", func(c *Config) { c.XR.ImageWaitTimeout = 0 }, "xr.image_wait_timeout"},
		{"eye size", func(c *Config) { c.Sim.Width = 0 }, "sim"},
		{"fov", func(c *Config) { c.Sim.FovDegrees = 90 }, "sim.fov_degrees"},
		{"images", func(c *Config) { c.Sim.Images = 0 }, "sim.images"},
		{"demo views", func(c *Config) { c.Demo.Views = 17 }, "demo.views"},
		{"input backend", func(c *Config) { c.Input.Backend = "evdev" }, "input.backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("expected path %q, got %q", tt.path, verr.Path)
			}
		})
	}
}

func TestHotkeysRebinding(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Keybindings.Keys = map[string]string{"close_view": "w"}

	table, err := cfg.Hotkeys()
	if err != nil {
		t.Fatalf("hotkeys: %v", err)
	}
	if got := table.Lookup(input.ModAlt, hotkeys.Keysym('w')); got != hotkeys.ActionCloseView {
		t.Fatalf("expected alt+w to close, got %v", got)
	}
	if got := table.Lookup(input.ModAlt, hotkeys.KeysymQ); got != hotkeys.ActionNone {
		t.Fatalf("expected alt+q to be unbound, got %v", got)
	}
}

func TestBackgroundColor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scene.Background = []float64{0.5, 0.25, 0}
	c := cfg.BackgroundColor()
	if c.R != 0.5 || c.G != 0.25 || c.B != 0 || c.A != 1 {
		t.Fatalf("expected (0.5,0.25,0,1), got %+v", c)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	path, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if path != "/tmp/xdg/xrdesk/config.yaml" {
		t.Fatalf("expected XDG path, got %q", path)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/tmp/home")
	path, err = DefaultConfigPath()
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if path != "/tmp/home/.config/xrdesk/config.yaml" {
		t.Fatalf("expected home fallback, got %q", path)
	}
}

func TestExplain(t *testing.T) {
	t.Setenv("TERMINAL", "")
	res, err := LoadFromPath(writeConfig(t, "scene:\n  background: [0, 0, 0]\nsim:\n  ipd: 0.07\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	value, src, err := Explain(res, "sim.ipd")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if value != 0.07 {
		t.Fatalf("expected 0.07, got %v", value)
	}
	if src.Kind != SourceFile || src.Line != 4 {
		t.Fatalf("expected file source at line 4, got %+v", src)
	}

	value, src, err = Explain(res, "terminal")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if value != "alacritty" || src.Kind != SourceDefault {
		t.Fatalf("expected default alacritty, got %v from %+v", value, src)
	}

	if _, _, err := Explain(res, "sim.nope"); err == nil {
		t.Fatalf("expected unknown path to fail")
	}
}

func TestMarshalRoundTripsThroughStrictDecode(t *testing.T) {
	data, err := Marshal(DefaultConfig())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	res, err := LoadFromPath(writeConfig(t, string(data)))
	if err != nil {
		t.Fatalf("expected printed config to load, got %v", err)
	}
	if res.Config.XR.ImageWaitTimeout != DefaultImageWait {
		t.Fatalf("expected image wait %v, got %v", DefaultImageWait, res.Config.XR.ImageWaitTimeout)
	}
}
