// Package pointer turns head pose plus relative mouse motion into a ray and
// resolves it against the placed views.
package pointer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/1broseidon/xrdesk/internal/geom"
	"github.com/1broseidon/xrdesk/internal/scene"
)

const (
	// Sensitivity converts relative motion units to radians.
	Sensitivity = 0.001
	// TieEpsilon is how much nearer another view must be to take pointer
	// focus from the view that holds it.
	TieEpsilon = 0.01
)

// AnglePadding keeps the pointer this far inside the field of view.
var AnglePadding = mgl32.DegToRad(20)

// Ray returns the pointer ray: from the eye position along the eye
// orientation turned by the pitch/yaw offset.
func Ray(eye geom.Pose, offset mgl32.Vec3) (origin, dir mgl32.Vec3) {
	m := eye.Orientation.Normalize().Mat4().Mul4(geom.RotationMatrix(offset))
	dir = m.Mul4x1(geom.Forward.Vec4(0)).Vec3()
	return eye.Position, dir
}

// Result is the view under the pointer.
type Result struct {
	View *scene.View
	// Surface accepts input at LocalX, LocalY.
	Surface scene.Surface
	LocalX  float64
	LocalY  float64
	// SX, SY are root-surface coordinates.
	SX, SY float64
	Point  mgl32.Vec3
	Dist   float32
}

// Resolve finds the nearest pickable view hit by the pointer ray,
// independent of list order.
func Resolve(views []*scene.View, eye geom.Pose, offset mgl32.Vec3) (Result, bool) {
	return ResolveHeld(views, eye, offset, "")
}

// ResolveHeld is Resolve with hysteresis: the view held keeps the pointer
// unless another hit is nearer by more than TieEpsilon, so near ties do
// not flicker focus between frames. An empty held is plain Resolve.
func ResolveHeld(views []*scene.View, eye geom.Pose, offset mgl32.Vec3, held scene.ID) (Result, bool) {
	origin, dir := Ray(eye, offset)

	var best, kept Result
	found, hasKept := false, false
	for _, v := range views {
		if !v.Pickable() {
			continue
		}
		r, ok := resolveView(v, origin, dir)
		if !ok {
			continue
		}
		if held != "" && v.ID == held {
			kept, hasKept = r, true
		}
		if !found || r.Dist < best.Dist {
			best, found = r, true
		}
	}
	if hasKept && kept.Dist <= best.Dist+TieEpsilon {
		return kept, true
	}
	return best, found
}

func resolveView(v *scene.View, origin, dir mgl32.Vec3) (Result, bool) {
	hit, ok := scene.Hit(v, origin, dir)
	if !ok {
		return Result{}, false
	}
	surface, lx, ly, ok := v.SurfaceAt(hit.SX, hit.SY)
	if !ok {
		return Result{}, false
	}
	return Result{
		View:    v,
		Surface: surface,
		LocalX:  lx,
		LocalY:  ly,
		SX:      hit.SX,
		SY:      hit.SY,
		Point:   hit.Point,
		Dist:    hit.Point.Sub(origin).Len(),
	}, true
}

// Clamp keeps yaw (offset[1]) and pitch (offset[0]) padding inside the
// given field of view. A field of view narrower than twice the padding
// pins the axis to its center.
func Clamp(offset mgl32.Vec3, fov geom.Fov, padding float32) mgl32.Vec3 {
	offset[1] = clampAxis(offset[1], fov.AngleLeft, fov.AngleRight, padding)
	offset[0] = clampAxis(offset[0], fov.AngleDown, fov.AngleUp, padding)
	return offset
}

func clampAxis(v, a, b, padding float32) float32 {
	lo := min(a, b) + padding
	hi := max(a, b) - padding
	if lo > hi {
		return (a + b) / 2
	}
	return max(lo, min(v, hi))
}

// CursorMatrix orients the cursor flat on the hit view at the hit point.
func CursorMatrix(r Result) mgl32.Mat4 {
	t := mgl32.Translate3D(r.Point[0], r.Point[1], r.Point[2])
	return t.Mul4(geom.RotationMatrix(r.View.Rotation))
}
