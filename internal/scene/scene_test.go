package scene

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/1broseidon/xrdesk/internal/render"
)

type fakeSurface struct {
	w, h   int
	frames int
}

func (s *fakeSurface) Size() (int, int) { return s.w, s.h }
func (s *fakeSurface) Texture() (render.Texture, bool) { return nil, false }
func (s *fakeSurface) SendFrameDone(time.Time) { s.frames++ }

type fakeShell struct {
	activated []bool
	closed    bool
}

func (s *fakeShell) SetActivated(a bool) { s.activated = append(s.activated, a) }
func (s *fakeShell) Close() { s.closed = true }

func vecNear(a, b mgl32.Vec3, eps float32) bool {
	return a.ApproxEqualThreshold(b, eps)
}

func TestModelMatrixMapsOriginToPosition(t *testing.T) {
	tests := []struct {
		pos mgl32.Vec3
		rot mgl32.Vec3
	}{
		{mgl32.Vec3{0, 0, -2}, mgl32.Vec3{}},
		{mgl32.Vec3{1, 2, 3}, mgl32.Vec3{0.5, -1, 2}},
		{mgl32.Vec3{-4, 0.5, -1}, mgl32.Vec3{math.Pi, math.Pi / 2, 0}},
	}
	for _, tt := range tests {
		v := &View{Position: tt.pos, Rotation: tt.rot}
		got := ModelMatrix(v).Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
		if !vecNear(got, tt.pos, 1e-5) {
			t.Fatalf("ModelMatrix(%v, %v) origin = %v, want %v", tt.pos, tt.rot, got, tt.pos)
		}
	}
}

func TestSurfaceQuadMatrixCorners(t *testing.T) {
	v := &View{Position: mgl32.Vec3{0, 0, -2}, Surface: &fakeSurface{w: 300, h: 300}}
	m := RootQuadMatrix(v)

	bottomLeft := m.Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
	topRight := m.Mul4x1(mgl32.Vec4{1, 1, 0, 1}).Vec3()
	if !vecNear(bottomLeft, mgl32.Vec3{-0.5, -0.5, -2}, 1e-5) {
		t.Fatalf("expected (-0.5,-0.5,-2), got %v", bottomLeft)
	}
	if !vecNear(topRight, mgl32.Vec3{0.5, 0.5, -2}, 1e-5) {
		t.Fatalf("expected (0.5,0.5,-2), got %v", topRight)
	}
}

func TestSurfaceQuadMatrixSubsurfaceOffset(t *testing.T) {
	v := &View{Position: mgl32.Vec3{0, 0, -2}}
	m := SurfaceQuadMatrix(v, 100, 50, 10, 20, 300, 300)

	// Quad (0,1) is the sub-surface's top-left pixel, root pixel (10,20).
	got := m.Mul4x1(mgl32.Vec4{0, 1, 0, 1}).Vec3()
	want := mgl32.Vec3{(10 - 150) / 300.0, -(20 - 150) / 300.0, -2}
	if !vecNear(got, want, 1e-5) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestQuadAndHitAgree(t *testing.T) {
	v := &View{
		Position: mgl32.Vec3{0.3, 0.1, -2.5},
		Rotation: mgl32.Vec3{0.2, -0.4, 0.1},
		Surface:  &fakeSurface{w: 640, h: 480},
	}
	m := RootQuadMatrix(v)

	// Quad (u, v) = (0.25, 0.75) is pixel (160, 120) from the top-left.
	target := m.Mul4x1(mgl32.Vec4{0.25, 0.75, 0, 1}).Vec3()
	hit, ok := Hit(v, mgl32.Vec3{}, target.Normalize())
	if !ok {
		t.Fatal("expected hit")
	}
	if math.Abs(hit.SX-160) > 0.05 || math.Abs(hit.SY-120) > 0.05 {
		t.Fatalf("expected (160,120), got (%v,%v)", hit.SX, hit.SY)
	}
}

func TestDefaultCapabilities(t *testing.T) {
	surf := &fakeSurface{w: 200, h: 100}
	v := NewView(KindPlanar, surf, nil)

	var visited []Surface
	v.ForEachSurface(func(s Surface, sx, sy int) {
		if sx != 0 || sy != 0 {
			t.Fatalf("expected root offset 0,0, got %d,%d", sx, sy)
		}
		visited = append(visited, s)
	})
	if len(visited) != 1 || visited[0] != surf {
		t.Fatalf("expected only the root surface, got %v", visited)
	}

	if _, _, _, ok := v.SurfaceAt(199, 99); !ok {
		t.Fatal("expected default hit test to accept inside point")
	}
	if _, _, _, ok := v.SurfaceAt(200, 50); ok {
		t.Fatal("expected default hit test to reject the right edge")
	}
	if w, h := v.Size(); w != 200 || h != 100 {
		t.Fatalf("expected 200x100, got %dx%d", w, h)
	}

	// No-ops must not panic.
	v.SetActivated(true)
	v.Close()
	v.SetSize(10, 10)
}

func TestIDs(t *testing.T) {
	id := NewID()
	if !strings.HasPrefix(string(id), IDPrefix+"_") {
		t.Fatalf("expected %s_ prefix, got %s", IDPrefix, id)
	}
	if _, err := ParseID(string(id)); err != nil {
		t.Fatalf("ParseID(%s): %v", id, err)
	}
	if _, err := ParseID("not-an-id"); err == nil {
		t.Fatal("expected error for malformed id")
	}
}

func TestListFocus(t *testing.T) {
	l := NewList()
	shells := []*fakeShell{{}, {}, {}}
	views := make([]*View, len(shells))
	for i, sh := range shells {
		views[i] = NewView(KindPlanar, &fakeSurface{w: 10, h: 10}, sh)
		views[i].Mapped = true
		l.Add(views[i])
	}

	if l.Focused() != views[0] {
		t.Fatal("expected first added view at the front")
	}
	if !l.Focus(views[2].ID) {
		t.Fatal("expected focus change")
	}
	if l.Focus(views[2].ID) {
		t.Fatal("expected refocusing the front to be a no-op")
	}

	order := l.All()
	if order[0] != views[2] || order[1] != views[0] || order[2] != views[1] {
		t.Fatalf("unexpected order after focus: %v", order)
	}
	if got := shells[0].activated; len(got) != 1 || got[0] {
		t.Fatalf("expected previous focus deactivated, got %v", got)
	}
	if got := shells[2].activated; len(got) != 1 || !got[0] {
		t.Fatalf("expected new focus activated, got %v", got)
	}
}

func TestListFocusedRequiresMapped(t *testing.T) {
	l := NewList()
	v := NewView(KindPlanar, &fakeSurface{}, nil)
	l.Add(v)
	if l.Focused() != nil {
		t.Fatal("expected no focus for an unmapped front view")
	}
	v.Mapped = true
	if l.Focused() != v {
		t.Fatal("expected mapped front view to be focused")
	}
}

func TestListCycleFocus(t *testing.T) {
	l := NewList()
	if l.CycleFocus() != nil {
		t.Fatal("expected nil with an empty list")
	}

	a := NewView(KindPlanar, &fakeSurface{}, nil)
	b := NewView(KindPlanar, &fakeSurface{}, nil)
	c := NewView(KindPlanar, &fakeSurface{}, nil)
	for _, v := range []*View{a, b, c} {
		v.Mapped = true
		l.Add(v)
	}

	if got := l.CycleFocus(); got != b {
		t.Fatalf("expected b focused, got %v", got)
	}
	order := l.All()
	if order[0] != b || order[1] != c || order[2] != a {
		t.Fatalf("expected b, c, a; got %v", order)
	}
}

func TestListCycleFocusSkipsUnmapped(t *testing.T) {
	l := NewList()
	hidden := NewView(KindPlanar, &fakeSurface{}, nil)
	a := NewView(KindPlanar, &fakeSurface{}, nil)
	a.Mapped = true
	l.Add(a)
	l.Add(hidden)

	if got := l.CycleFocus(); got != nil {
		t.Fatalf("expected no cycle with one mapped view, got %v", got)
	}
	if l.Focused() != a || l.Front() != a {
		t.Fatalf("expected a to stay focused, got %v", l.All())
	}

	b := NewView(KindPlanar, &fakeSurface{}, nil)
	b.Mapped = true
	l.Add(b)
	if got := l.CycleFocus(); got != b {
		t.Fatalf("expected b focused past the hidden view, got %v", got)
	}
	order := l.All()
	if order[0] != b || order[1] != hidden || order[2] != a {
		t.Fatalf("expected b, hidden, a; got %v", order)
	}
	if l.Focused() != b {
		t.Fatalf("expected b focused, got %v", l.Focused())
	}
}

func TestListRemoveAndFirstMapped(t *testing.T) {
	l := NewList()
	a := NewView(KindPlanar, &fakeSurface{}, nil)
	b := NewView(KindPlanar, &fakeSurface{}, nil)
	l.Add(a)
	l.Add(b)
	b.Mapped = true

	if l.FirstMapped() != b {
		t.Fatal("expected b to be the first mapped view")
	}
	if got := l.Mapped(); len(got) != 1 || got[0] != b {
		t.Fatalf("expected only b mapped, got %v", got)
	}
	if _, ok := l.Remove(b.ID); !ok {
		t.Fatal("expected b removed")
	}
	if _, ok := l.Get(b.ID); ok {
		t.Fatal("expected b gone")
	}
	if l.FirstMapped() != nil {
		t.Fatal("expected no mapped view left")
	}
	if l.Len() != 1 {
		t.Fatalf("expected 1 view, got %d", l.Len())
	}
}

func TestXRViewsAreNotPickable(t *testing.T) {
	v := NewView(KindXR, &fakeSurface{w: 10, h: 10}, nil)
	v.Mapped = true
	if v.Pickable() {
		t.Fatal("expected XR-native view to be skipped by picking")
	}
	v.Kind = KindPlanar
	if !v.Pickable() {
		t.Fatal("expected mapped planar view to be pickable")
	}
}
