// Package movemode tracks the interactive move and resize grabs of the
// pointer.
package movemode

import (
	"github.com/1broseidon/xrdesk/internal/scene"
)

// Phase is the pointer interaction mode.
type Phase int

const (
	// PhaseDefault routes pointer focus and events to client surfaces.
	PhaseDefault Phase = iota
	// PhaseMove carries the grabbed view with the pointer ray.
	PhaseMove
	// PhaseResize resizes the grabbed view from relative pointer motion.
	PhaseResize
)

// String returns the string representation of the phase
func (p Phase) String() string {
	switch p {
	case PhaseDefault:
		return "default"
	case PhaseMove:
		return "move"
	case PhaseResize:
		return "resize"
	default:
		return "unknown"
	}
}

// Button identifies which pointer button started an interaction.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonOther
)

// PressResult is the outcome of a button press.
type PressResult struct {
	// Focus asks the caller to focus Target.
	Focus  bool
	Target scene.ID
	// Forward asks the caller to deliver the press to the client.
	Forward bool
}

// State holds the current interaction
type State struct {
	Phase Phase
	// View is the grabbed view while Phase is not PhaseDefault.
	View scene.ID

	// Resize bookkeeping: size at grab time and accumulated motion.
	StartWidth  int
	StartHeight int
	DeltaX      float64
	DeltaY      float64
}

// NewState creates a state in PhaseDefault
func NewState() *State {
	return &State{Phase: PhaseDefault}
}

// Reset returns to PhaseDefault and forgets the grab.
func (s *State) Reset() {
	s.Phase = PhaseDefault
	s.View = ""
	s.StartWidth = 0
	s.StartHeight = 0
	s.DeltaX = 0
	s.DeltaY = 0
}

// Active reports whether a grab suspends normal pointer routing.
func (s *State) Active() bool {
	return s.Phase != PhaseDefault
}

// Begin starts a grab of view in phase p. Grabs only start from
// PhaseDefault; it reports whether the grab began.
func (s *State) Begin(p Phase, view *scene.View) bool {
	if s.Phase != PhaseDefault || p == PhaseDefault || view == nil {
		return false
	}
	s.Reset()
	s.Phase = p
	s.View = view.ID
	if p == PhaseResize {
		s.StartWidth, s.StartHeight = view.Size()
	}
	return true
}

// Press handles a button press. hit is the view under the pointer, or nil.
// A press on a view focuses it; with the modifier held it also starts a
// move (left button) or resize (right button) and is not forwarded.
// Presses during a grab are swallowed.
func (s *State) Press(hit *scene.View, button Button, modifier bool) PressResult {
	if s.Phase != PhaseDefault {
		return PressResult{}
	}
	if hit == nil {
		return PressResult{Forward: true}
	}
	res := PressResult{Focus: true, Target: hit.ID, Forward: true}
	if !modifier {
		return res
	}

	phase := PhaseMove
	if button == ButtonRight {
		phase = PhaseResize
	}
	if s.Begin(phase, hit) {
		res.Forward = false
	}
	return res
}

// Release handles a button release. Ending a grab swallows the release;
// it reports whether the release should reach the client.
func (s *State) Release() bool {
	if s.Phase == PhaseDefault {
		return true
	}
	s.Reset()
	return false
}

// Forget drops the grab if it holds view, for views that go away mid-grab.
func (s *State) Forget(id scene.ID) {
	if s.Phase != PhaseDefault && s.View == id {
		s.Reset()
	}
}
