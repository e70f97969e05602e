package server

import (
	"github.com/1broseidon/xrdesk/internal/hotkeys"
	"github.com/1broseidon/xrdesk/internal/input"
	"github.com/1broseidon/xrdesk/internal/movemode"
	"github.com/1broseidon/xrdesk/internal/pointer"
	"github.com/1broseidon/xrdesk/internal/scene"
)

var _ input.Handler = (*Server)(nil)

// PointerMotion turns relative motion into ray yaw/pitch and follows it.
func (s *Server) PointerMotion(t uint32, dx, dy float64) {
	_, fov := s.eye()
	s.ptr.ApplyMotion(dx, dy, fov)
	if s.mode.Phase == movemode.PhaseResize {
		s.resize(dx, dy)
		return
	}
	s.follow(t)
}

// follow re-resolves the pointer ray in the current mode.
func (s *Server) follow(t uint32) {
	switch s.mode.Phase {
	case movemode.PhaseMove:
		s.carry()
	case movemode.PhaseResize:
	default:
		s.updatePointer(t)
	}
}

// updatePointer routes focus and motion to the surface under the ray.
func (s *Server) updatePointer(t uint32) {
	eye, _ := s.eye()
	r, ok := pointer.ResolveHeld(s.views.All(), eye, s.ptr.Offset, s.ptr.Held())
	if !ok {
		if s.ptr.HasFocus || s.seatFocus != nil {
			s.ptr.ClearFocus()
			s.clearSeatPointer()
		}
		return
	}
	s.ptr.SetFocus(r)
	if s.seatFocus != r.Surface {
		s.seatFocus = r.Surface
		s.seat.PointerEnter(r.Surface, r.LocalX, r.LocalY)
	}
	s.seat.PointerMotion(t, r.LocalX, r.LocalY)
	s.seat.PointerFrame()
}

// carry keeps the grabbed view on the ray at its current distance.
func (s *Server) carry() {
	v, ok := s.views.Get(s.mode.View)
	if !ok {
		s.mode.Reset()
		return
	}
	s.clearSeatPointer()

	eye, _ := s.eye()
	distance := v.Position.Sub(eye.Position).Len()
	v.Position, v.Rotation = movemode.Carry(eye, s.ptr.Offset, distance)

	// The cursor stays drawn on whatever the ray now hits.
	if r, ok := pointer.ResolveHeld(s.views.All(), eye, s.ptr.Offset, s.ptr.Held()); ok {
		s.ptr.SetFocus(r)
	} else {
		s.ptr.ClearFocus()
	}
}

func (s *Server) resize(dx, dy float64) {
	v, ok := s.views.Get(s.mode.View)
	if !ok {
		s.mode.Reset()
		return
	}
	w, h := s.mode.Drag(dx, dy)
	v.SetSize(w, h)
}

// PointerButton focuses the view under the ray and starts grabs when the
// binding modifier is held. Grabs swallow their press and release.
func (s *Server) PointerButton(t uint32, button input.Button, pressed bool) {
	if !pressed {
		if s.mode.Release() {
			s.seat.PointerButton(t, button, false)
			s.seat.PointerFrame()
		}
		return
	}

	// Resolve afresh: the scene may have changed since the last motion.
	var hit *scene.View
	eye, _ := s.eye()
	if r, ok := pointer.ResolveHeld(s.views.All(), eye, s.ptr.Offset, s.ptr.Held()); ok {
		hit = r.View
	}

	res := s.mode.Press(hit, grabButton(button), s.mods.Has(s.hotkeys.Modifier()))
	if res.Focus {
		if err := s.FocusView(res.Target); err != nil {
			s.logger.Debug("focus on press", "error", err)
		}
	}
	if !res.Forward {
		s.clearSeatPointer()
		return
	}
	s.seat.PointerButton(t, button, true)
	s.seat.PointerFrame()
}

func grabButton(b input.Button) movemode.Button {
	switch b {
	case input.ButtonLeft:
		return movemode.ButtonLeft
	case input.ButtonRight:
		return movemode.ButtonRight
	default:
		return movemode.ButtonOther
	}
}

// PointerAxis forwards scrolling to the focused pointer surface.
func (s *Server) PointerAxis(t uint32, axis input.Axis, delta float64) {
	if s.mode.Active() || !s.ptr.HasFocus {
		return
	}
	s.seat.PointerAxis(t, axis, delta)
	s.seat.PointerFrame()
}

// Modifiers records the held modifiers and forwards them.
func (s *Server) Modifiers(mods input.Modifiers) {
	s.mods = mods
	s.seat.KeyboardModifiers(mods)
}

// Key runs bindings in the default mode and forwards everything else to
// the keyboard focus. The release of a bound key is swallowed too.
func (s *Server) Key(t uint32, keycode uint32, keysym uint32, pressed bool) {
	if !pressed && s.swallowed[keycode] {
		delete(s.swallowed, keycode)
		return
	}
	if pressed && s.mode.Phase == movemode.PhaseDefault {
		if action := s.hotkeys.Lookup(s.mods, hotkeys.Keysym(keysym)); action != hotkeys.ActionNone {
			s.swallowed[keycode] = true
			s.perform(action)
			return
		}
	}
	s.seat.KeyboardKey(t, keycode, pressed)
}

func (s *Server) perform(action hotkeys.Action) {
	s.logger.Debug("binding triggered", "action", action)
	switch action {
	case hotkeys.ActionExit:
		s.Stop()
	case hotkeys.ActionCycleFocus:
		if v := s.views.CycleFocus(); v != nil && v.Surface != nil {
			s.seat.KeyboardEnter(v.Surface)
		}
	case hotkeys.ActionSpawnTerminal:
		s.launch(s.cfg.Terminal)
	case hotkeys.ActionCloseView:
		if v := s.views.Focused(); v != nil {
			v.Close()
		}
	}
}

// launch runs a command line against the display; failures are logged.
func (s *Server) launch(commandLine string) error {
	if s.launcher == nil {
		s.logger.Warn("no launcher configured", "command", commandLine)
		return errNoLauncher
	}
	if _, err := s.launcher.Launch(commandLine, s.display.SocketName()); err != nil {
		s.logger.Error("launch failed", "command", commandLine, "error", err)
		return err
	}
	return nil
}

// clearSeatPointer takes pointer focus away from every client surface.
func (s *Server) clearSeatPointer() {
	s.seatFocus = nil
	s.seat.PointerClearFocus()
}
