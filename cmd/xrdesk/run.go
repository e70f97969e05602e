package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/1broseidon/xrdesk/internal/compositor"
	"github.com/1broseidon/xrdesk/internal/config"
	"github.com/1broseidon/xrdesk/internal/demo"
	"github.com/1broseidon/xrdesk/internal/input"
	"github.com/1broseidon/xrdesk/internal/ipc"
	"github.com/1broseidon/xrdesk/internal/launcher"
	"github.com/1broseidon/xrdesk/internal/render"
	"github.com/1broseidon/xrdesk/internal/render/soft"
	"github.com/1broseidon/xrdesk/internal/runtimepath"
	"github.com/1broseidon/xrdesk/internal/server"
	"github.com/1broseidon/xrdesk/internal/x11"
	"github.com/1broseidon/xrdesk/internal/xr"
	"github.com/1broseidon/xrdesk/internal/xr/sim"
)

// dumpAuto asks for the frame dump in the runtime directory.
const dumpAuto = "auto"

func runCompositor(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	startup := fs.String("s", "", "Startup command, run through /bin/sh -c once the display is up")
	configPath := fs.String("config", "", "Config file path (default: $XDG_CONFIG_HOME/xrdesk/config.yaml)")
	frames := fs.Uint64("frames", 0, "Stop after N frames (0: run until quit)")
	dumpPath := fs.String("dump-frame", "", "Write the last left-eye image to this PNG on exit ('auto': runtime dir)")
	socketPath := fs.String("socket", "", "Control socket path (default: $XDG_RUNTIME_DIR/xrdesk.sock)")
	noIPC := fs.Bool("no-ipc", false, "Do not open the control socket")
	demoViews := fs.Int("demo", -1, "Number of demo windows (default: demo.views from config)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: xrdesk run [options]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Start the compositor against the simulated headset.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "run takes no arguments")
		fs.Usage()
		return 2
	}

	res, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	cfg := res.Config
	if *startup != "" {
		cfg.StartupCommand = *startup
	}
	if *demoViews >= 0 {
		cfg.Demo.Views = *demoViews
	}
	if *dumpPath != "" {
		cfg.XR.FrameDumpPath = *dumpPath
	}

	logger := newLogger(os.Stderr, cfg)
	if res.File != "" {
		logger.Info("configuration loaded", "file", res.File)
	}

	if err := serve(cfg, logger, runOptions{
		frames:     *frames,
		socketPath: *socketPath,
		noIPC:      *noIPC,
	}); err != nil {
		logger.Error("compositor failed", "error", err)
		return 1
	}
	return 0
}

type runOptions struct {
	frames     uint64
	socketPath string
	noIPC      bool
}

func serve(cfg *config.Config, logger *slog.Logger, opts runOptions) error {
	table, err := cfg.Hotkeys()
	if err != nil {
		return err
	}

	rt := sim.New(simConfig(cfg.Sim))
	disp := demo.NewDisplay("", logger)
	seat := demo.NewSeat(logger)

	var src input.Source = input.None{}
	if cfg.Input.Backend == "x11" {
		xsrc, err := x11.Open(x11.Config{
			Title:  "xrdesk",
			Width:  cfg.Sim.Width,
			Height: cfg.Sim.Height,
			Logger: logger,
		})
		if err != nil {
			return fmt.Errorf("open x11 input: %w", err)
		}
		defer xsrc.Close()
		src = xsrc
	}

	var control <-chan *ipc.Call
	if !opts.noIPC {
		path := opts.socketPath
		if path == "" {
			if path, err = runtimepath.SocketPath(); err != nil {
				return err
			}
		}
		ipcServer := ipc.NewServer(path, logger)
		if err := ipcServer.Start(); err != nil {
			return fmt.Errorf("start control socket: %w", err)
		}
		defer ipcServer.Stop()
		control = ipcServer.Calls()
	}

	sensitivity, padding := pointerTuning(cfg.Pointer)
	var srv *server.Server
	srv, err = server.New(server.Config{
		Runtime:        rt,
		Device:         soft.New(),
		Display:        disp,
		Seat:           seat,
		Input:          src,
		Launcher:       launcher.New(logger),
		Hotkeys:        table,
		Terminal:       cfg.Terminal,
		StartupCommand: cfg.StartupCommand,
		SpawnDistance:  float32(cfg.Scene.SpawnDistance),
		Sensitivity:    sensitivity,

		AnglePaddingDegrees: padding,

		Compositor: compositor.Config{
			Background: cfg.BackgroundColor(),
			GridColor:  cfg.GridColor(),
			Near:       float32(cfg.Render.Near),
			Far:        float32(cfg.Render.Far),
			Logger:     logger,
		},
		XR: xr.Config{
			ApplicationName:  "xrdesk",
			ImageWaitTimeout: cfg.XR.ImageWaitTimeout,
			Logger:           logger,
		},
		Control:   control,
		MaxFrames: opts.frames,
		Ready: func() {
			if _, err := demo.Populate(srv, disp, demo.Options{
				Windows: cfg.Demo.Views,
				XR:      cfg.Demo.XRView,
			}); err != nil {
				logger.Warn("demo views", "error", err)
			}
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := srv.Run(ctx)
	if errors.Is(runErr, x11.ErrWindowClosed) {
		logger.Info("input window closed")
		runErr = nil
	}

	if cfg.XR.FrameDumpPath != "" {
		if err := dumpFrame(cfg.XR.FrameDumpPath, rt.LastImage(0)); err != nil {
			runErr = errors.Join(runErr, err)
		} else {
			logger.Info("frame written", "path", resolveDumpPath(cfg.XR.FrameDumpPath))
		}
	}
	return runErr
}

// pointerTuning converts the pointer section for server.Config. The
// padding stays in degrees; the server converts it.
func pointerTuning(c config.PointerConfig) (sensitivity float32, paddingDegrees *float32) {
	padding := float32(c.AnglePaddingDegrees)
	return float32(c.Sensitivity), &padding
}

func simConfig(c config.SimConfig) sim.Config {
	return sim.Config{
		Width:       c.Width,
		Height:      c.Height,
		FovDegrees:  float32(c.FovDegrees),
		IPD:         float32(c.IPD),
		RefreshRate: c.RefreshRate,
		Images:      c.Images,
	}
}

func resolveDumpPath(path string) string {
	if path != dumpAuto {
		return path
	}
	p, err := runtimepath.FrameDumpPath()
	if err != nil {
		return path
	}
	return p
}

// dumpFrame writes img as a PNG.
func dumpFrame(path string, img *render.Image) error {
	if img == nil || img.RGBA == nil {
		return errors.New("no frame rendered")
	}
	f, err := os.Create(resolveDumpPath(path))
	if err != nil {
		return fmt.Errorf("create frame dump: %w", err)
	}
	if err := png.Encode(f, img.RGBA); err != nil {
		f.Close()
		return fmt.Errorf("encode frame dump: %w", err)
	}
	return f.Close()
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFromPath(path)
}

// newLogger builds the process logger: text on a terminal, JSON otherwise,
// unless the config pins a format.
func newLogger(f *os.File, cfg *config.Config) *slog.Logger {
	return slog.New(logHandler(f, cfg.LogFormat, term.IsTerminal(int(f.Fd())), cfg.SlogLevel()))
}

func logHandler(w io.Writer, format string, tty bool, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" || (format != "text" && !tty) {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}
