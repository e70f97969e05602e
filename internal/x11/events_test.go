package x11

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/xrdesk/internal/input"
)

func TestModifiers(t *testing.T) {
	tests := []struct {
		name  string
		state uint16
		want  input.Modifiers
	}{
		{name: "none", state: 0, want: 0},
		{name: "alt", state: xproto.ModMask1, want: input.ModAlt},
		{name: "ctrl shift", state: xproto.ModMaskControl | xproto.ModMaskShift, want: input.ModCtrl | input.ModShift},
		{name: "super", state: xproto.ModMask4, want: input.ModSuper},
		{name: "lock ignored", state: xproto.ModMaskLock, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := modifiers(tt.state); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestButtons(t *testing.T) {
	if b, ok := buttonFor(xproto.ButtonIndex1); !ok || b != input.ButtonLeft {
		t.Fatalf("expected left button, got %v %v", b, ok)
	}
	if b, ok := buttonFor(xproto.ButtonIndex3); !ok || b != input.ButtonRight {
		t.Fatalf("expected right button, got %v %v", b, ok)
	}
	if _, ok := buttonFor(4); ok {
		t.Fatalf("expected wheel button not mapped to a button")
	}
	axis, delta, ok := scrollFor(5)
	if !ok || axis != input.AxisVertical || delta <= 0 {
		t.Fatalf("expected downward vertical scroll, got %v %v %v", axis, delta, ok)
	}
}

func TestEvdevKeycode(t *testing.T) {
	if got := evdevKeycode(9); got != 1 {
		t.Fatalf("expected escape evdev code 1, got %d", got)
	}
	if got := evdevKeycode(3); got != 0 {
		t.Fatalf("expected 0 for invalid keycode, got %d", got)
	}
}
