package movemode

import (
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/1broseidon/xrdesk/internal/geom"
	"github.com/1broseidon/xrdesk/internal/render"
	"github.com/1broseidon/xrdesk/internal/scene"
)

type sizedSurface struct{ w, h int }

func (s sizedSurface) Size() (int, int) { return s.w, s.h }
func (s sizedSurface) Texture() (render.Texture, bool) { return nil, false }
func (s sizedSurface) SendFrameDone(time.Time) {}

func newView() *scene.View {
	v := scene.NewView(scene.KindPlanar, sizedSurface{w: 400, h: 300}, nil)
	v.Mapped = true
	return v
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseDefault, "default"},
		{PhaseMove, "move"},
		{PhaseResize, "resize"},
		{Phase(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}

func TestPress(t *testing.T) {
	tests := []struct {
		name        string
		hit         bool
		button      Button
		modifier    bool
		wantPhase   Phase
		wantFocus   bool
		wantForward bool
	}{
		{"miss forwards", false, ButtonLeft, false, PhaseDefault, false, true},
		{"miss with modifier forwards", false, ButtonLeft, true, PhaseDefault, false, true},
		{"plain press focuses and forwards", true, ButtonLeft, false, PhaseDefault, true, true},
		{"modifier left starts move", true, ButtonLeft, true, PhaseMove, true, false},
		{"modifier right starts resize", true, ButtonRight, true, PhaseResize, true, false},
		{"modifier middle starts move", true, ButtonOther, true, PhaseMove, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState()
			var hit *scene.View
			if tt.hit {
				hit = newView()
			}
			res := s.Press(hit, tt.button, tt.modifier)
			if s.Phase != tt.wantPhase {
				t.Fatalf("expected phase %s, got %s", tt.wantPhase, s.Phase)
			}
			if res.Focus != tt.wantFocus {
				t.Fatalf("expected focus %v, got %v", tt.wantFocus, res.Focus)
			}
			if res.Forward != tt.wantForward {
				t.Fatalf("expected forward %v, got %v", tt.wantForward, res.Forward)
			}
			if tt.hit && res.Target != hit.ID {
				t.Fatalf("expected target %s, got %s", hit.ID, res.Target)
			}
		})
	}
}

func TestReleaseEndsGrab(t *testing.T) {
	s := NewState()
	v := newView()
	s.Press(v, ButtonLeft, true)
	if !s.Active() || s.View != v.ID {
		t.Fatalf("expected move grab of %s, got %s on %q", v.ID, s.Phase, s.View)
	}
	if s.Release() {
		t.Fatal("expected release ending a grab to be swallowed")
	}
	if s.Phase != PhaseDefault || s.View != "" {
		t.Fatalf("expected default with no view, got %s on %q", s.Phase, s.View)
	}
	if !s.Release() {
		t.Fatal("expected release in default to be forwarded")
	}
}

func TestBeginOnlyFromDefault(t *testing.T) {
	s := NewState()
	a, b := newView(), newView()
	if !s.Begin(PhaseMove, a) {
		t.Fatal("expected first grab to begin")
	}
	if s.Begin(PhaseResize, b) {
		t.Fatal("expected second grab to be refused")
	}
	if s.Phase != PhaseMove || s.View != a.ID {
		t.Fatalf("expected move of %s, got %s of %s", a.ID, s.Phase, s.View)
	}
	if s.Begin(PhaseDefault, b) {
		t.Fatal("expected begin of default to be refused")
	}
}

func TestPressDuringGrabIsSwallowed(t *testing.T) {
	tests := []struct {
		name     string
		grab     Button
		button   Button
		modifier bool
	}{
		{"right during move", ButtonLeft, ButtonRight, false},
		{"middle during move", ButtonLeft, ButtonOther, false},
		{"left with modifier during move", ButtonLeft, ButtonLeft, true},
		{"left during resize", ButtonRight, ButtonLeft, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState()
			a, b := newView(), newView()
			s.Press(a, tt.grab, true)
			want := s.Phase

			res := s.Press(b, tt.button, tt.modifier)
			if res.Forward || res.Focus {
				t.Fatalf("expected press during %s to be swallowed, got %+v", want, res)
			}
			if s.Phase != want || s.View != a.ID {
				t.Fatalf("expected %s of %s to continue, got %s of %s", want, a.ID, s.Phase, s.View)
			}
		})
	}
}

func TestForget(t *testing.T) {
	s := NewState()
	a, b := newView(), newView()
	s.Begin(PhaseMove, a)
	s.Forget(b.ID)
	if s.Phase != PhaseMove {
		t.Fatalf("expected grab kept for unrelated view, got %s", s.Phase)
	}
	s.Forget(a.ID)
	if s.Phase != PhaseDefault {
		t.Fatalf("expected grab dropped, got %s", s.Phase)
	}
}

func TestDragClampsToMinimum(t *testing.T) {
	s := NewState()
	s.Begin(PhaseResize, newView())
	if s.StartWidth != 400 || s.StartHeight != 300 {
		t.Fatalf("expected start 400x300, got %dx%d", s.StartWidth, s.StartHeight)
	}
	w, h := s.Drag(10.5, -20)
	if w != 410 || h != 280 {
		t.Fatalf("expected 410x280, got %dx%d", w, h)
	}
	w, h = s.Drag(0.5, 0)
	if w != 411 {
		t.Fatalf("expected fractional motion to accumulate to 411, got %d", w)
	}
	w, h = s.Drag(-1000, -1000)
	if w != MinimumSize || h != MinimumSize {
		t.Fatalf("expected %dx%d, got %dx%d", MinimumSize, MinimumSize, w, h)
	}
}

func TestCarry(t *testing.T) {
	eye := geom.IdentityPose()
	eye.Position = mgl32.Vec3{0, 1.6, 0}

	pos, rot := Carry(eye, mgl32.Vec3{}, 2)
	if !pos.ApproxEqualThreshold(mgl32.Vec3{0, 1.6, -2}, 1e-5) {
		t.Fatalf("expected (0,1.6,-2) in front of the eye, got %v", pos)
	}
	if !rot.ApproxEqualThreshold(mgl32.Vec3{}, 1e-5) {
		t.Fatalf("expected zero rotation, got %v", rot)
	}

	yaw := float32(0.7)
	pos, rot = Carry(eye, mgl32.Vec3{0, yaw, 0}, 3)
	want := mgl32.Vec3{-3 * float32(math.Sin(0.7)), 1.6, -3 * float32(math.Cos(0.7))}
	if !pos.ApproxEqualThreshold(want, 1e-5) {
		t.Fatalf("expected %v after a left yaw, got %v", want, pos)
	}
	if math.Abs(float64(rot[1]-yaw)) > 1e-4 {
		t.Fatalf("expected yaw %v, got %v", yaw, rot[1])
	}
}

func TestCarriedViewFacesRay(t *testing.T) {
	eye := geom.Pose{Orientation: mgl32.QuatRotate(0.3, mgl32.Vec3{0, 1, 0}), Position: mgl32.Vec3{0.5, 1.6, 0}}
	offset := mgl32.Vec3{0.2, -0.4, 0}
	pos, rot := Carry(eye, offset, 2)

	dir := eye.Matrix().Mul4(geom.RotationMatrix(offset)).Mul4x1(mgl32.Vec4{0, 0, -1, 0}).Vec3()
	hit, ok := geom.SurfaceHit(pos, rot, 300, 300, eye.Position, dir)
	if !ok {
		t.Fatal("expected the pointer ray to hit the carried view")
	}
	if math.Abs(hit.SX-150) > 1e-2 || math.Abs(hit.SY-150) > 1e-2 {
		t.Fatalf("expected hit at view center, got (%v, %v)", hit.SX, hit.SY)
	}
}
