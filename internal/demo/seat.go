package demo

import (
	"log/slog"

	"github.com/1broseidon/xrdesk/internal/input"
	"github.com/1broseidon/xrdesk/internal/scene"
	"github.com/1broseidon/xrdesk/internal/server"
)

var _ server.Seat = (*Seat)(nil)

// Clicker is implemented by surfaces that react to button presses at a
// surface-local point.
type Clicker interface {
	Click(x, y float64, button input.Button)
}

// Seat routes pointer and keyboard events to in-process surfaces and logs
// them at debug level.
type Seat struct {
	logger *slog.Logger

	pointer  scene.Surface
	keyboard scene.Surface
	x, y     float64
	mods     input.Modifiers
}

func NewSeat(logger *slog.Logger) *Seat {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Seat{logger: logger}
}

// PointerFocus is the surface holding pointer focus, or nil.
func (s *Seat) PointerFocus() scene.Surface { return s.pointer }

// KeyboardFocus is the surface holding keyboard focus, or nil.
func (s *Seat) KeyboardFocus() scene.Surface { return s.keyboard }

// PointerPosition is the last surface-local pointer position.
func (s *Seat) PointerPosition() (float64, float64) { return s.x, s.y }

func (s *Seat) PointerEnter(surf scene.Surface, x, y float64) {
	s.pointer, s.x, s.y = surf, x, y
	s.logger.Debug("pointer enter", "x", x, "y", y)
}

func (s *Seat) PointerMotion(_ uint32, x, y float64) {
	s.x, s.y = x, y
}

func (s *Seat) PointerButton(_ uint32, button input.Button, pressed bool) {
	s.logger.Debug("pointer button", "button", uint32(button), "pressed", pressed, "x", s.x, "y", s.y)
	if !pressed || s.pointer == nil {
		return
	}
	if c, ok := s.pointer.(Clicker); ok {
		c.Click(s.x, s.y, button)
	}
}

func (s *Seat) PointerAxis(_ uint32, axis input.Axis, delta float64) {
	s.logger.Debug("pointer axis", "axis", axis, "delta", delta)
}

func (s *Seat) PointerFrame() {}

func (s *Seat) PointerClearFocus() {
	if s.pointer != nil {
		s.logger.Debug("pointer leave")
	}
	s.pointer = nil
}

func (s *Seat) KeyboardEnter(surf scene.Surface) {
	s.keyboard = surf
}

func (s *Seat) KeyboardClearFocus() {
	s.keyboard = nil
}

func (s *Seat) KeyboardKey(_ uint32, keycode uint32, pressed bool) {
	s.logger.Debug("key", "keycode", keycode, "pressed", pressed, "modifiers", s.mods.String())
}

func (s *Seat) KeyboardModifiers(mods input.Modifiers) {
	s.mods = mods
}
