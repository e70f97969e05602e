// Package input defines the host input events the compositor consumes.
package input

import "strings"

// Button is a Linux evdev button code.
type Button uint32

const (
	ButtonLeft   Button = 0x110
	ButtonRight  Button = 0x111
	ButtonMiddle Button = 0x112
)

// Axis is a scroll axis.
type Axis int

const (
	AxisVertical Axis = iota
	AxisHorizontal
)

// Modifiers is a set of held modifier keys.
type Modifiers uint32

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModSuper
)

// Has reports whether every modifier in m is held.
func (mods Modifiers) Has(m Modifiers) bool {
	return m != 0 && mods&m == m
}

func (mods Modifiers) String() string {
	if mods == 0 {
		return "none"
	}
	var parts []string
	for _, m := range []struct {
		bit  Modifiers
		name string
	}{
		{ModShift, "shift"},
		{ModCtrl, "ctrl"},
		{ModAlt, "alt"},
		{ModSuper, "super"},
	} {
		if mods&m.bit != 0 {
			parts = append(parts, m.name)
		}
	}
	return strings.Join(parts, "+")
}

// Handler receives input events. Motion is relative, in host pixels.
type Handler interface {
	PointerMotion(t uint32, dx, dy float64)
	PointerButton(t uint32, button Button, pressed bool)
	PointerAxis(t uint32, axis Axis, delta float64)
	Key(t uint32, keycode uint32, keysym uint32, pressed bool)
	Modifiers(mods Modifiers)
}

// Source delivers pending host input without blocking.
type Source interface {
	Poll(h Handler) error
	Close() error
}

// None is a Source that never produces events.
type None struct{}

func (None) Poll(Handler) error { return nil }

func (None) Close() error { return nil }
