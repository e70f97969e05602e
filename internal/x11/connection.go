// Package x11 provides host input for the simulated headset: a window that
// captures the pointer and keyboard of an X11 desktop.
package x11

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/xrdesk/internal/input"
)

// ErrWindowClosed is returned by Poll once the input window is destroyed.
var ErrWindowClosed = errors.New("x11 input window closed")

// Config describes the input window.
type Config struct {
	Title  string
	Width  int
	Height int
	Logger *slog.Logger
}

// Source captures host input through an X11 window. Clicking the window
// grabs pointer and keyboard; Ctrl+Alt with any key releases the grab.
type Source struct {
	xu     *xgbutil.XUtil
	win    *xwindow.Window
	logger *slog.Logger

	centerX int16
	centerY int16
	grabbed bool
	// lockMask holds Caps/Num/Scroll lock bits stripped from event state.
	lockMask uint16
}

const windowEvents = xproto.EventMaskKeyPress | xproto.EventMaskKeyRelease |
	xproto.EventMaskButtonPress | xproto.EventMaskButtonRelease |
	xproto.EventMaskPointerMotion | xproto.EventMaskFocusChange |
	xproto.EventMaskStructureNotify

// Open connects to the X11 server and maps the input window.
func Open(cfg Config) (*Source, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 640, 480
	}

	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	// Initialize keybind module (required for keysym lookup)
	keybind.Initialize(xu)

	win, err := xwindow.Generate(xu)
	if err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("failed to allocate input window: %w", err)
	}
	win.Create(xu.RootWin(), 0, 0, cfg.Width, cfg.Height,
		xproto.CwBackPixel|xproto.CwEventMask, 0, uint32(windowEvents))
	if cfg.Title != "" {
		if err := ewmh.WmNameSet(xu, win.Id, cfg.Title); err != nil {
			logger.Warn("failed to set input window title", "error", err)
		}
	}
	win.Map()

	return &Source{
		xu:       xu,
		win:      win,
		logger:   logger,
		centerX:  int16(cfg.Width / 2),
		centerY:  int16(cfg.Height / 2),
		lockMask: lockMask(xu),
	}, nil
}

// Poll drains pending X events into h without blocking.
func (s *Source) Poll(h input.Handler) error {
	for {
		ev, xerr := s.xu.Conn().PollForEvent()
		if ev == nil && xerr == nil {
			return nil
		}
		if xerr != nil {
			s.logger.Warn("x11 error", "error", xerr)
			continue
		}
		if err := s.handle(ev, h); err != nil {
			return err
		}
	}
}

func (s *Source) handle(ev any, h input.Handler) error {
	switch e := ev.(type) {
	case xproto.ButtonPressEvent:
		if !s.grabbed {
			s.grab()
			return nil
		}
		h.Modifiers(modifiers(e.State &^ s.lockMask))
		if axis, delta, ok := scrollFor(e.Detail); ok {
			h.PointerAxis(uint32(e.Time), axis, delta)
			return nil
		}
		if b, ok := buttonFor(e.Detail); ok {
			h.PointerButton(uint32(e.Time), b, true)
		}
	case xproto.ButtonReleaseEvent:
		if !s.grabbed {
			return nil
		}
		if b, ok := buttonFor(e.Detail); ok {
			h.PointerButton(uint32(e.Time), b, false)
		}
	case xproto.MotionNotifyEvent:
		if !s.grabbed {
			return nil
		}
		dx, dy := e.EventX-s.centerX, e.EventY-s.centerY
		if dx == 0 && dy == 0 {
			return nil
		}
		h.PointerMotion(uint32(e.Time), float64(dx), float64(dy))
		s.warp()
	case xproto.KeyPressEvent:
		state := e.State &^ s.lockMask
		mods := modifiers(state)
		if s.grabbed && mods.Has(input.ModCtrl|input.ModAlt) {
			s.ungrab()
			return nil
		}
		h.Modifiers(mods)
		h.Key(uint32(e.Time), evdevKeycode(e.Detail), uint32(keybind.KeysymGet(s.xu, e.Detail, 0)), true)
	case xproto.KeyReleaseEvent:
		h.Modifiers(modifiers(e.State &^ s.lockMask))
		h.Key(uint32(e.Time), evdevKeycode(e.Detail), uint32(keybind.KeysymGet(s.xu, e.Detail, 0)), false)
	case xproto.FocusOutEvent:
		if s.grabbed {
			s.ungrab()
		}
	case xproto.DestroyNotifyEvent:
		if e.Window == s.win.Id {
			return ErrWindowClosed
		}
	}
	return nil
}

func (s *Source) grab() {
	c := s.xu.Conn()
	reply, err := xproto.GrabPointer(c, false, s.win.Id,
		uint16(xproto.EventMaskButtonPress|xproto.EventMaskButtonRelease|xproto.EventMaskPointerMotion),
		xproto.GrabModeAsync, xproto.GrabModeAsync, s.win.Id, xproto.CursorNone,
		xproto.TimeCurrentTime).Reply()
	if err != nil || reply.Status != xproto.GrabStatusSuccess {
		s.logger.Warn("pointer grab failed", "error", err)
		return
	}
	if _, err := xproto.GrabKeyboard(c, false, s.win.Id, xproto.TimeCurrentTime,
		xproto.GrabModeAsync, xproto.GrabModeAsync).Reply(); err != nil {
		s.logger.Warn("keyboard grab failed", "error", err)
	}
	s.grabbed = true
	s.warp()
	s.logger.Info("host input grabbed", "release", "ctrl+alt+key")
}

func (s *Source) ungrab() {
	c := s.xu.Conn()
	xproto.UngrabPointer(c, xproto.TimeCurrentTime)
	xproto.UngrabKeyboard(c, xproto.TimeCurrentTime)
	s.grabbed = false
	s.logger.Info("host input released")
}

func (s *Source) warp() {
	xproto.WarpPointer(s.xu.Conn(), xproto.WindowNone, s.win.Id, 0, 0, 0, 0, s.centerX, s.centerY)
}

// Close destroys the window and disconnects from the X11 server.
func (s *Source) Close() error {
	if s.grabbed {
		s.ungrab()
	}
	s.win.Destroy()
	s.xu.Conn().Close()
	return nil
}

var _ input.Source = (*Source)(nil)

func lockMask(xu *xgbutil.XUtil) uint16 {
	// Always ignore CapsLock.
	mask := uint16(xproto.ModMaskLock)
	mask |= modMaskForKeysym(xu, "Num_Lock")
	mask |= modMaskForKeysym(xu, "Scroll_Lock")
	return mask
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
