package server

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/1broseidon/xrdesk/internal/movemode"
	"github.com/1broseidon/xrdesk/internal/pointer"
	"github.com/1broseidon/xrdesk/internal/scene"
)

// xrViewPosition is where XR-native views sit; their content is composited
// full screen per eye, so the placement only orders them.
var xrViewPosition = mgl32.Vec3{0, 0, -1}

// NewView registers an unmapped view backed by surface. shell may implement
// any of the scene capability interfaces.
func (s *Server) NewView(kind scene.Kind, surface scene.Surface, shell any) *scene.View {
	v := scene.NewView(kind, surface, shell)
	s.views.Add(v)
	s.logger.Debug("view created", "view", v.ID, "kind", v.Kind)
	return v
}

// MapView shows a view. The first map places it in front of the primary
// eye (planar) or at the XR-native spot, and every map focuses it.
func (s *Server) MapView(id scene.ID) error {
	v, ok := s.views.Get(id)
	if !ok {
		return fmt.Errorf("unknown view %s", id)
	}
	if !s.placed[id] {
		switch v.Kind {
		case scene.KindXR:
			v.Position = xrViewPosition
			v.Rotation = mgl32.Vec3{}
		default:
			eye, _ := s.eye()
			v.Position, v.Rotation = movemode.SpawnPlacement(eye, s.cfg.SpawnDistance)
		}
		s.placed[id] = true
	}
	v.Mapped = true
	s.focus(v)
	s.logger.Info("view mapped", "view", v.ID, "kind", v.Kind, "position", v.Position)
	return nil
}

// UnmapView hides a view. Focus passes to the frontmost mapped view and
// pointer focus on the view is dropped.
func (s *Server) UnmapView(id scene.ID) error {
	v, ok := s.views.Get(id)
	if !ok {
		return fmt.Errorf("unknown view %s", id)
	}
	wasFocused := s.views.Focused() == v
	v.Mapped = false
	s.mode.Forget(id)

	if s.ptr.HasFocus && s.ptr.Focus.View == v {
		s.ptr.ClearFocus()
		s.clearSeatPointer()
	}
	if wasFocused {
		v.SetActivated(false)
		if next := s.views.FirstMapped(); next != nil {
			s.focus(next)
		} else {
			s.seat.KeyboardClearFocus()
		}
	}
	s.logger.Info("view unmapped", "view", v.ID)
	return nil
}

// DestroyView drops a view whose backing surface is gone.
func (s *Server) DestroyView(id scene.ID) error {
	v, ok := s.views.Get(id)
	if !ok {
		return fmt.Errorf("unknown view %s", id)
	}
	if v.Mapped {
		if err := s.UnmapView(id); err != nil {
			return err
		}
	}
	s.views.Remove(id)
	delete(s.placed, id)
	s.logger.Debug("view destroyed", "view", id)
	return nil
}

// FocusView focuses a mapped view by id.
func (s *Server) FocusView(id scene.ID) error {
	v, ok := s.views.Get(id)
	if !ok {
		return fmt.Errorf("unknown view %s", id)
	}
	if !v.Mapped {
		return fmt.Errorf("view %s is not mapped", id)
	}
	s.focus(v)
	return nil
}

// focus moves v to the front and gives it keyboard focus.
func (s *Server) focus(v *scene.View) {
	s.views.Focus(v.ID)
	if v.Surface != nil {
		s.seat.KeyboardEnter(v.Surface)
	}
}

// RequestMove starts a client-requested move of the focused view.
func (s *Server) RequestMove(id scene.ID) bool {
	return s.beginGrab(movemode.PhaseMove, id)
}

// RequestResize starts a client-requested resize of the focused view.
func (s *Server) RequestResize(id scene.ID) bool {
	return s.beginGrab(movemode.PhaseResize, id)
}

func (s *Server) beginGrab(phase movemode.Phase, id scene.ID) bool {
	v := s.views.Focused()
	if v == nil || v.ID != id {
		return false
	}
	if !s.mode.Begin(phase, v) {
		return false
	}
	s.clearSeatPointer()
	s.logger.Debug("grab started", "view", id, "phase", phase)
	return true
}

// SetCursor installs a client cursor surface, or the built-in arrow when
// surface is nil.
func (s *Server) SetCursor(surface scene.Surface, hotspotX, hotspotY int) {
	if surface == nil {
		s.ptr.Cursor = pointer.DefaultCursor()
		return
	}
	s.ptr.Cursor = pointer.ClientCursor(surface, hotspotX, hotspotY)
}

// MoveView places a view directly.
func (s *Server) MoveView(id scene.ID, position mgl32.Vec3, rotation *mgl32.Vec3) error {
	v, ok := s.views.Get(id)
	if !ok {
		return fmt.Errorf("unknown view %s", id)
	}
	v.Position = position
	if rotation != nil {
		v.Rotation = *rotation
	}
	s.placed[id] = true
	return nil
}

// CloseView asks the client behind a view to close it.
func (s *Server) CloseView(id scene.ID) error {
	v, ok := s.views.Get(id)
	if !ok {
		return fmt.Errorf("unknown view %s", id)
	}
	v.Close()
	return nil
}
