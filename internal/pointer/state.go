package pointer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/1broseidon/xrdesk/internal/geom"
	"github.com/1broseidon/xrdesk/internal/scene"
)

// State is the pointer ray offset and what it last resolved to.
type State struct {
	// Offset is the accumulated pitch (X) and yaw (Y) in radians.
	Offset      mgl32.Vec3
	Sensitivity float32
	Padding     float32

	// Focus is the last resolved hit, valid while HasFocus.
	Focus    Result
	HasFocus bool

	Cursor *Cursor
	// CursorMatrix is where the cursor was last placed.
	CursorMatrix  mgl32.Mat4
	CursorVisible bool
}

// NewState creates a centered pointer with the built-in cursor.
func NewState() *State {
	return &State{
		Sensitivity:  Sensitivity,
		Padding:      AnglePadding,
		Cursor:       DefaultCursor(),
		CursorMatrix: mgl32.Ident4(),
	}
}

// ApplyMotion turns relative motion into yaw and pitch, clamped to fov.
func (s *State) ApplyMotion(dx, dy float64, fov geom.Fov) {
	s.Offset[1] += float32(-dx) * s.Sensitivity
	s.Offset[0] += float32(-dy) * s.Sensitivity
	s.Offset = Clamp(s.Offset, fov, s.Padding)
}

// SetFocus records a hit and places the cursor on it.
func (s *State) SetFocus(r Result) {
	s.Focus = r
	s.HasFocus = true
	s.CursorMatrix = CursorMatrix(r)
	s.CursorVisible = true
}

// Held is the view holding pointer focus, or empty.
func (s *State) Held() scene.ID {
	if !s.HasFocus || s.Focus.View == nil {
		return ""
	}
	return s.Focus.View.ID
}

// ClearFocus forgets the hit and hides the cursor.
func (s *State) ClearFocus() {
	s.Focus = Result{}
	s.HasFocus = false
	s.CursorVisible = false
}
