package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/1broseidon/xrdesk/internal/geom"
)

// ModelMatrix places the view's local frame in the world:
// translate(Position) * rotate(Rotation). Rendering and picking both derive
// placement from here.
func ModelMatrix(v *View) mgl32.Mat4 {
	t := mgl32.Translate3D(v.Position[0], v.Position[1], v.Position[2])
	return t.Mul4(geom.RotationMatrix(v.Rotation))
}

// SurfaceQuadMatrix maps the unit quad (0,0)-(1,1) onto the world footprint
// of a width x height surface drawn at offset (sx, sy) from the view's root
// surface of rootW x rootH pixels.
func SurfaceQuadMatrix(v *View, width, height, sx, sy, rootW, rootH int) mgl32.Mat4 {
	const scale = 1.0 / geom.SurfaceScale

	m := ModelMatrix(v)
	m = m.Mul4(mgl32.Scale3D(scale, -scale, 1))
	m = m.Mul4(mgl32.Translate3D(
		float32(sx)-float32(rootW)/2+float32(width)/2,
		float32(sy)-float32(rootH)/2+float32(height)/2,
		0,
	))
	m = m.Mul4(mgl32.Scale3D(float32(width), -float32(height), 1))
	return m.Mul4(mgl32.Translate3D(-0.5, -0.5, 0))
}

// RootQuadMatrix is SurfaceQuadMatrix for the root surface itself.
func RootQuadMatrix(v *View) mgl32.Mat4 {
	w, h := 0, 0
	if v.Surface != nil {
		w, h = v.Surface.Size()
	}
	return SurfaceQuadMatrix(v, w, h, 0, 0, w, h)
}

// Hit intersects the ray with the view's root surface.
func Hit(v *View, origin, dir mgl32.Vec3) (geom.Hit, bool) {
	if v.Surface == nil {
		return geom.Hit{}, false
	}
	w, h := v.Surface.Size()
	return geom.SurfaceHit(v.Position, v.Rotation, w, h, origin, dir)
}
