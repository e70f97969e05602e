package geom

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func near(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func vecNear(a, b mgl32.Vec3, eps float64) bool {
	for i := range a {
		if !near(float64(a[i]), float64(b[i]), eps) {
			return false
		}
	}
	return true
}

func TestIntersectPlaneRay(t *testing.T) {
	tests := []struct {
		name   string
		point  mgl32.Vec3
		normal mgl32.Vec3
		origin mgl32.Vec3
		dir    mgl32.Vec3
		want   mgl32.Vec3
		hit    bool
	}{
		{
			name:   "straight ahead",
			point:  mgl32.Vec3{0, 0, -2},
			normal: mgl32.Vec3{0, 0, -1},
			dir:    mgl32.Vec3{0, 0, -1},
			want:   mgl32.Vec3{0, 0, -2},
			hit:    true,
		},
		{
			name:   "oblique",
			point:  mgl32.Vec3{0, 0, -1},
			normal: mgl32.Vec3{0, 0, 1},
			dir:    mgl32.Vec3{1, 0, -1},
			want:   mgl32.Vec3{1, 0, -1},
			hit:    true,
		},
		{
			name:   "parallel",
			point:  mgl32.Vec3{0, 0, -2},
			normal: mgl32.Vec3{1, 0, 0},
			dir:    mgl32.Vec3{0, 0, -1},
		},
		{
			name:   "behind origin",
			point:  mgl32.Vec3{0, 0, 2},
			normal: mgl32.Vec3{0, 0, -1},
			dir:    mgl32.Vec3{0, 0, -1},
		},
		{
			name:   "plane through origin",
			point:  mgl32.Vec3{0, 0, 0},
			normal: mgl32.Vec3{0, 0, -1},
			dir:    mgl32.Vec3{0, 0, -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := IntersectPlaneRay(tt.point, tt.normal, tt.origin, tt.dir)
			if ok != tt.hit {
				t.Fatalf("expected hit=%v, got %v", tt.hit, ok)
			}
			if ok && !vecNear(got, tt.want, 1e-5) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRotateAxisOrder(t *testing.T) {
	// X then Y: (0,1,0) goes to (0,0,1) about X, then to (1,0,0) about Y.
	angles := mgl32.Vec3{math.Pi / 2, math.Pi / 2, 0}
	got := Rotate(angles, mgl32.Vec3{0, 1, 0})
	if !vecNear(got, mgl32.Vec3{1, 0, 0}, 1e-5) {
		t.Fatalf("expected (1,0,0), got %v", got)
	}

	// The Z term turns clockwise.
	got = Rotate(mgl32.Vec3{0, 0, math.Pi / 2}, mgl32.Vec3{1, 0, 0})
	if !vecNear(got, mgl32.Vec3{0, -1, 0}, 1e-5) {
		t.Fatalf("expected (0,-1,0), got %v", got)
	}
}

func TestEulerAnglesRoundTrip(t *testing.T) {
	cases := []mgl32.Vec3{
		{0, 0, 0},
		{0.3, -0.7, 0.2},
		{-1.1, 0.4, -2.5},
		{0.9, 1.2, 0.1},
	}
	for _, angles := range cases {
		m := RotationMatrix(angles)
		back := RotationMatrix(EulerAngles(m))
		for i := 0; i < 16; i++ {
			if !near(float64(m[i]), float64(back[i]), 1e-4) {
				t.Fatalf("angles %v: matrices differ at %d: %v vs %v", angles, i, m, back)
			}
		}
	}
}

func TestSurfaceHitCenter(t *testing.T) {
	hit, ok := SurfaceHit(mgl32.Vec3{0, 0, -2}, mgl32.Vec3{}, 300, 300, mgl32.Vec3{}, Forward)
	if !ok {
		t.Fatal("expected hit")
	}
	if !vecNear(hit.Point, mgl32.Vec3{0, 0, -2}, 1e-5) {
		t.Fatalf("expected point (0,0,-2), got %v", hit.Point)
	}
	if !near(hit.SX, 150, 1e-3) || !near(hit.SY, 150, 1e-3) {
		t.Fatalf("expected (150,150), got (%v,%v)", hit.SX, hit.SY)
	}
}

func TestSurfaceHitRotatedAwayMisses(t *testing.T) {
	rot := mgl32.Vec3{0, math.Pi / 2, 0}
	if _, ok := SurfaceHit(mgl32.Vec3{0, 0, -2}, rot, 300, 300, mgl32.Vec3{}, Forward); ok {
		t.Fatal("expected miss for a view turned edge-on")
	}
}

func TestSurfaceHitLocalAxes(t *testing.T) {
	// Up and to the right of center: sx grows right, sy grows down.
	dir := mgl32.Vec3{0.2, 0.2, -2}.Normalize()
	hit, ok := SurfaceHit(mgl32.Vec3{0, 0, -2}, mgl32.Vec3{}, 300, 300, mgl32.Vec3{}, dir)
	if !ok {
		t.Fatal("expected hit")
	}
	if !near(hit.SX, 210, 1e-2) || !near(hit.SY, 90, 1e-2) {
		t.Fatalf("expected (210,90), got (%v,%v)", hit.SX, hit.SY)
	}
}

func TestSurfaceHitOutsideBounds(t *testing.T) {
	dir := mgl32.Vec3{0.6, 0, -2}.Normalize()
	if _, ok := SurfaceHit(mgl32.Vec3{0, 0, -2}, mgl32.Vec3{}, 300, 300, mgl32.Vec3{}, dir); ok {
		t.Fatal("expected miss outside the surface rectangle")
	}
}

func TestSurfaceHitOnPlane(t *testing.T) {
	origin := mgl32.Vec3{0.1, 0.2, 0}
	placements := []struct {
		pos mgl32.Vec3
		rot mgl32.Vec3
	}{
		{mgl32.Vec3{0, 0, -2}, mgl32.Vec3{}},
		{mgl32.Vec3{0.5, 0.3, -1.5}, mgl32.Vec3{0.1, 0.3, 0}},
		{mgl32.Vec3{-0.4, 0, -3}, mgl32.Vec3{-0.2, -0.5, 0.4}},
	}
	for _, p := range placements {
		dir := p.pos.Sub(origin).Normalize()
		hit, ok := SurfaceHit(p.pos, p.rot, 800, 600, origin, dir)
		if !ok {
			t.Fatalf("placement %v: expected hit", p)
		}
		normal := Rotate(p.rot, Forward)
		if d := normal.Dot(hit.Point.Sub(p.pos)); !near(float64(d), 0, 1e-4) {
			t.Fatalf("placement %v: point off plane by %v", p, d)
		}
	}
}

func TestPoseMatrix(t *testing.T) {
	p := Pose{
		Orientation: mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{0, 1, 0}),
		Position:    mgl32.Vec3{1, 2, 3},
	}
	fwd := p.Matrix().Mul4x1(mgl32.Vec4{0, 0, -1, 1}).Vec3()
	if !vecNear(fwd, mgl32.Vec3{0, 2, 3}, 1e-5) {
		t.Fatalf("expected (0,2,3), got %v", fwd)
	}
	back := p.ViewMatrix().Mul4x1(fwd.Vec4(1)).Vec3()
	if !vecNear(back, mgl32.Vec3{0, 0, -1}, 1e-5) {
		t.Fatalf("expected (0,0,-1), got %v", back)
	}
}

func TestProjectionFromFov(t *testing.T) {
	fov := SymmetricFov(math.Pi / 4)
	proj := ProjectionFromFov(fov, 0.05, 100)

	// A point on the right edge of the frustum lands on x = 1 in NDC.
	clip := proj.Mul4x1(mgl32.Vec4{1, 0, -1, 1})
	if !near(float64(clip[0]/clip[3]), 1, 1e-4) {
		t.Fatalf("expected ndc x 1, got %v", clip[0]/clip[3])
	}
	clip = proj.Mul4x1(mgl32.Vec4{0, 0, -0.05, 1})
	if !near(float64(clip[2]/clip[3]), -1, 1e-4) {
		t.Fatalf("expected near plane at ndc z -1, got %v", clip[2]/clip[3])
	}
}
