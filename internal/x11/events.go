package x11

import (
	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/xrdesk/internal/input"
)

// modifiers converts an X modifier state to input modifiers.
func modifiers(state uint16) input.Modifiers {
	var mods input.Modifiers
	if state&xproto.ModMaskShift != 0 {
		mods |= input.ModShift
	}
	if state&xproto.ModMaskControl != 0 {
		mods |= input.ModCtrl
	}
	if state&xproto.ModMask1 != 0 {
		mods |= input.ModAlt
	}
	if state&xproto.ModMask4 != 0 {
		mods |= input.ModSuper
	}
	return mods
}

// buttonFor maps core X buttons 1-3 to evdev codes.
func buttonFor(b xproto.Button) (input.Button, bool) {
	switch b {
	case xproto.ButtonIndex1:
		return input.ButtonLeft, true
	case xproto.ButtonIndex2:
		return input.ButtonMiddle, true
	case xproto.ButtonIndex3:
		return input.ButtonRight, true
	}
	return 0, false
}

// scrollStep is the axis delta of one wheel click.
const scrollStep = 15

// scrollFor maps wheel buttons 4-7 to axis motion.
func scrollFor(b xproto.Button) (input.Axis, float64, bool) {
	switch b {
	case 4:
		return input.AxisVertical, -scrollStep, true
	case 5:
		return input.AxisVertical, scrollStep, true
	case 6:
		return input.AxisHorizontal, -scrollStep, true
	case 7:
		return input.AxisHorizontal, scrollStep, true
	}
	return 0, 0, false
}

// evdevKeycode converts an X keycode to the evdev code clients expect.
func evdevKeycode(k xproto.Keycode) uint32 {
	if k < 8 {
		return 0
	}
	return uint32(k) - 8
}
