// Package server owns the compositor state and runs the frame loop: it
// ties the headset session, the scene, pointer resolution and the
// compositor together on one goroutine.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/1broseidon/xrdesk/internal/compositor"
	"github.com/1broseidon/xrdesk/internal/geom"
	"github.com/1broseidon/xrdesk/internal/hotkeys"
	"github.com/1broseidon/xrdesk/internal/input"
	"github.com/1broseidon/xrdesk/internal/ipc"
	"github.com/1broseidon/xrdesk/internal/movemode"
	"github.com/1broseidon/xrdesk/internal/output"
	"github.com/1broseidon/xrdesk/internal/pointer"
	"github.com/1broseidon/xrdesk/internal/render"
	"github.com/1broseidon/xrdesk/internal/scene"
	"github.com/1broseidon/xrdesk/internal/xr"
)

// DefaultSpawnDistance is how far in front of the eye new views appear.
const DefaultSpawnDistance = 2

// DispatchTimeout bounds each windowing dispatch so frames keep pace.
const DispatchTimeout = time.Millisecond

// DefaultTerminal is launched when no terminal is configured.
const DefaultTerminal = "alacritty"

// Config wires the server to its collaborators. Runtime and Device are
// required; the rest default to inert implementations.
type Config struct {
	Runtime  xr.Runtime
	Device   render.Device
	Display  Display
	Seat     Seat
	Input    input.Source
	Launcher Launcher
	Hotkeys  *hotkeys.Table

	Terminal       string
	StartupCommand string
	SpawnDistance  float32

	// Sensitivity overrides the pointer default when positive.
	Sensitivity float32
	// AnglePaddingDegrees keeps the pointer ray inside the field of view;
	// nil keeps the default and zero lets it reach the edge.
	AnglePaddingDegrees *float32

	Compositor compositor.Config
	XR         xr.Config

	// Control delivers IPC requests; nil disables control handling.
	Control <-chan *ipc.Call

	// MaxFrames stops the loop after that many rendered iterations.
	MaxFrames uint64
	// Ready runs once after the first rendered frame, when the eyes have
	// been located.
	Ready     func()
	Logger    *slog.Logger
	Now       func() time.Time
}

// Server is the single owned compositor context. All fields are touched
// only by the goroutine running the loop.
type Server struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time

	runtime  xr.Runtime
	device   render.Device
	display  Display
	seat     Seat
	input    input.Source
	launcher Launcher
	hotkeys  *hotkeys.Table
	control  <-chan *ipc.Call

	driver *xr.Driver
	comp   *compositor.Compositor
	views  *scene.List
	ptr    *pointer.State
	mode   *movemode.State

	// placed tracks views that already received their first-map placement.
	placed map[scene.ID]bool
	// swallowed holds keycodes whose press triggered a binding.
	swallowed map[uint32]bool
	mods      input.Modifiers
	// seatFocus is the surface the seat last entered, nil when cleared.
	seatFocus scene.Surface

	started    time.Time
	iterations uint64
	quit       bool
}

// New validates cfg and builds an unstarted server.
func New(cfg Config) (*Server, error) {
	if cfg.Runtime == nil {
		return nil, errors.New("server: runtime is required")
	}
	if cfg.Device == nil {
		return nil, errors.New("server: render device is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Display == nil {
		cfg.Display = nopDisplay{}
	}
	if cfg.Seat == nil {
		cfg.Seat = nopSeat{}
	}
	if cfg.Input == nil {
		cfg.Input = input.None{}
	}
	if cfg.Hotkeys == nil {
		cfg.Hotkeys = hotkeys.Default(input.ModAlt)
	}
	if cfg.Terminal == "" {
		cfg.Terminal = DefaultTerminal
	}
	if cfg.SpawnDistance <= 0 {
		cfg.SpawnDistance = DefaultSpawnDistance
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.XR.Logger == nil {
		cfg.XR.Logger = logger
	}
	if cfg.XR.ApplicationName == "" {
		cfg.XR.ApplicationName = "xrdesk"
	}
	if cfg.Compositor.Logger == nil {
		cfg.Compositor.Logger = logger
	}

	ptr := pointer.NewState()
	if cfg.Sensitivity > 0 {
		ptr.Sensitivity = cfg.Sensitivity
	}
	if cfg.AnglePaddingDegrees != nil {
		ptr.Padding = mgl32.DegToRad(*cfg.AnglePaddingDegrees)
	}

	return &Server{
		cfg:       cfg,
		logger:    logger,
		now:       cfg.Now,
		runtime:   cfg.Runtime,
		device:    cfg.Device,
		display:   cfg.Display,
		seat:      cfg.Seat,
		input:     cfg.Input,
		launcher:  cfg.Launcher,
		hotkeys:   cfg.Hotkeys,
		control:   cfg.Control,
		comp:      compositor.New(cfg.Compositor),
		views:     scene.NewList(),
		ptr:       ptr,
		mode:      movemode.NewState(),
		placed:    make(map[scene.ID]bool),
		swallowed: make(map[uint32]bool),
	}, nil
}

// Views is the scene list.
func (s *Server) Views() *scene.List { return s.views }

// Pointer is the pointer ray and cursor state.
func (s *Server) Pointer() *pointer.State { return s.ptr }

// Mode is the move/resize interaction state.
func (s *Server) Mode() *movemode.State { return s.mode }

// Driver is the headset session, nil before Start.
func (s *Server) Driver() *xr.Driver { return s.driver }

// Frames counts completed loop iterations.
func (s *Server) Frames() uint64 { return s.iterations }

// Logger is the server's structured logger.
func (s *Server) Logger() *slog.Logger { return s.logger }

// SpawnDistance is how far from the eye new views are placed.
func (s *Server) SpawnDistance() float32 { return s.cfg.SpawnDistance }

// Eye is the primary eye pose pointer rays start from.
func (s *Server) Eye() geom.Pose {
	eye, _ := s.eye()
	return eye
}

// SlotCount is the number of stereo slots, zero before Start.
func (s *Server) SlotCount() int {
	if s.driver == nil {
		return 0
	}
	return len(s.driver.Slots())
}

// Start brings the headset session up, advertises the output and runs the
// startup command.
func (s *Server) Start() error {
	if s.driver != nil {
		return nil
	}
	driver, err := xr.Start(s.runtime, s.cfg.XR)
	if err != nil {
		return fmt.Errorf("start xr session: %w", err)
	}
	s.driver = driver
	s.started = s.now()

	out := output.Synthetic()
	s.display.AdvertiseOutput(out)
	s.logger.Info("compositor started",
		"slots", len(driver.Slots()),
		"output", out.String(),
		"socket", s.display.SocketName())

	if s.cfg.StartupCommand != "" {
		s.launch(s.cfg.StartupCommand)
	}
	return nil
}

// Stop ends the loop after the current iteration.
func (s *Server) Stop() {
	s.quit = true
}

func (s *Server) running() bool {
	return !s.quit && s.driver != nil && s.driver.Running()
}

// Run starts the server if needed and iterates until the session ends,
// ctx is cancelled, Stop is called or MaxFrames is reached. The session is
// torn down before Run returns.
func (s *Server) Run(ctx context.Context) (err error) {
	if err := s.Start(); err != nil {
		return err
	}
	defer func() {
		if terr := s.driver.Teardown(); terr != nil {
			err = errors.Join(err, fmt.Errorf("teardown: %w", terr))
		}
		s.logger.Info("compositor stopped", "frames", s.iterations, "phase", s.driver.Phase())
	}()

	for {
		more, err := s.Step(ctx)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// Step runs one loop iteration and reports whether to keep going.
func (s *Server) Step(ctx context.Context) (bool, error) {
	fs, err := s.driver.WaitFrame()
	if err != nil {
		return false, fmt.Errorf("wait frame: %w", err)
	}
	if err := s.driver.PollEvents(); err != nil {
		return false, fmt.Errorf("poll events: %w", err)
	}

	s.display.Flush()
	if err := s.display.Dispatch(DispatchTimeout); err != nil {
		return false, fmt.Errorf("dispatch display: %w", err)
	}
	if err := s.input.Poll(s); err != nil {
		return false, fmt.Errorf("poll input: %w", err)
	}
	s.drainControl()

	if ctx.Err() != nil || !s.running() {
		return false, nil
	}

	if err := s.driver.Frame(fs, s.located, s.drawSlot); err != nil {
		return false, fmt.Errorf("frame %d: %w", s.iterations, err)
	}

	now := s.now()
	for _, v := range s.views.Mapped() {
		v.ForEachSurface(func(surf scene.Surface, _, _ int) {
			surf.SendFrameDone(now)
		})
	}

	s.iterations++
	if s.iterations == 1 && s.cfg.Ready != nil {
		s.cfg.Ready()
	}
	if s.cfg.MaxFrames > 0 && s.iterations >= s.cfg.MaxFrames {
		s.logger.Info("frame limit reached", "frames", s.iterations)
		s.quit = true
	}
	return s.running(), nil
}

// located runs once the views are located for this frame: head motion
// moves the ray, so pointer focus and any carried view follow it.
func (s *Server) located(primary *xr.Slot) {
	if primary == nil {
		return
	}
	s.follow(s.frameTime())
}

func (s *Server) drawSlot(slot *xr.Slot, target render.Target) error {
	eye := compositor.Eye{Slot: slot.Index, Pose: slot.Pose, Fov: slot.Fov}
	return s.comp.RenderEye(s.device, target, eye, s.views.All(), s.ptr)
}

// eye is the primary eye pose pointer rays start from.
func (s *Server) eye() (geom.Pose, geom.Fov) {
	if s.driver == nil || s.driver.Primary() == nil {
		return geom.IdentityPose(), geom.SymmetricFov(math.Pi / 4)
	}
	p := s.driver.Primary()
	return p.Pose, p.Fov
}

func (s *Server) frameTime() uint32 {
	return uint32(s.now().Sub(s.started).Milliseconds())
}
