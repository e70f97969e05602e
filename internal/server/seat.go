package server

import (
	"time"

	"github.com/1broseidon/xrdesk/internal/input"
	"github.com/1broseidon/xrdesk/internal/output"
	"github.com/1broseidon/xrdesk/internal/scene"
)

// Seat delivers pointer and keyboard events to client surfaces. Pointer
// coordinates are surface-local pixels.
type Seat interface {
	PointerEnter(s scene.Surface, x, y float64)
	PointerMotion(t uint32, x, y float64)
	PointerButton(t uint32, button input.Button, pressed bool)
	PointerAxis(t uint32, axis input.Axis, delta float64)
	PointerFrame()
	PointerClearFocus()
	KeyboardEnter(s scene.Surface)
	KeyboardClearFocus()
	KeyboardKey(t uint32, keycode uint32, pressed bool)
	KeyboardModifiers(mods input.Modifiers)
}

// Display is the windowing protocol server clients connect to.
type Display interface {
	// SocketName is exported to launched clients.
	SocketName() string
	AdvertiseOutput(o output.Output)
	Flush()
	// Dispatch handles pending client requests, waiting at most timeout.
	Dispatch(timeout time.Duration) error
}

// Launcher starts a client command line against the display socket.
type Launcher interface {
	Launch(commandLine, socket string) (int, error)
}

type nopSeat struct{}

func (nopSeat) PointerEnter(scene.Surface, float64, float64) {}
func (nopSeat) PointerMotion(uint32, float64, float64) {}
func (nopSeat) PointerButton(uint32, input.Button, bool) {}
func (nopSeat) PointerAxis(uint32, input.Axis, float64) {}
func (nopSeat) PointerFrame() {}
func (nopSeat) PointerClearFocus() {}
func (nopSeat) KeyboardEnter(scene.Surface) {}
func (nopSeat) KeyboardClearFocus() {}
func (nopSeat) KeyboardKey(uint32, uint32, bool) {}
func (nopSeat) KeyboardModifiers(input.Modifiers) {}

type nopDisplay struct{}

func (nopDisplay) SocketName() string { return "" }
func (nopDisplay) AdvertiseOutput(output.Output) {}
func (nopDisplay) Flush() {}
func (nopDisplay) Dispatch(time.Duration) error { return nil }
