// Package geom holds the ray, plane and rotation math shared by picking and
// rendering.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// SurfaceScale is the number of surface pixels per world unit.
	SurfaceScale = 300

	// ParallelEpsilon is the smallest |dot(normal, dir)| still treated as
	// crossing a plane.
	ParallelEpsilon = 1e-4
)

var (
	// Forward is the direction a view faces and a pose looks along.
	Forward = mgl32.Vec3{0, 0, -1}

	unitX = mgl32.Vec3{1, 0, 0}
	unitY = mgl32.Vec3{0, 1, 0}
)

// IntersectPlaneRay returns the point where the ray starting at origin with
// direction dir crosses the plane. It reports false when the ray runs
// parallel to the plane or the plane lies behind the origin.
func IntersectPlaneRay(planePoint, planeNormal, origin, dir mgl32.Vec3) (mgl32.Vec3, bool) {
	denom := planeNormal.Dot(dir)
	if math.Abs(float64(denom)) <= ParallelEpsilon {
		return mgl32.Vec3{}, false
	}

	t := planeNormal.Dot(planePoint.Sub(origin)) / denom
	if t <= 0 {
		return mgl32.Vec3{}, false
	}

	return origin.Add(dir.Mul(t)), true
}

// RotationMatrix composes the rotation described by angles: first about X by
// angles[0], then about Y by angles[1], then about Z by -angles[2].
func RotationMatrix(angles mgl32.Vec3) mgl32.Mat4 {
	rx := mgl32.HomogRotate3DX(angles[0])
	ry := mgl32.HomogRotate3DY(angles[1])
	rz := mgl32.HomogRotate3DZ(-angles[2])
	return rz.Mul4(ry).Mul4(rx)
}

// Rotate applies RotationMatrix(angles) to v.
func Rotate(angles, v mgl32.Vec3) mgl32.Vec3 {
	return RotationMatrix(angles).Mul4x1(v.Vec4(0)).Vec3()
}

// EulerAngles recovers the angle triple that RotationMatrix would turn back
// into the rotational part of m.
func EulerAngles(m mgl32.Mat4) mgl32.Vec3 {
	sinY := -float64(m.At(2, 0))
	if sinY > 1 {
		sinY = 1
	} else if sinY < -1 {
		sinY = -1
	}
	y := math.Asin(sinY)

	var x, z float64
	if math.Abs(sinY) < 1-1e-6 {
		x = math.Atan2(float64(m.At(2, 1)), float64(m.At(2, 2)))
		z = math.Atan2(float64(m.At(1, 0)), float64(m.At(0, 0)))
	} else {
		// Gimbal lock: fold everything into the Z term.
		x = 0
		z = math.Atan2(-float64(m.At(0, 1)), float64(m.At(1, 1)))
	}

	return mgl32.Vec3{float32(x), float32(y), float32(-z)}
}

// Hit is a ray intersection with a placed surface.
type Hit struct {
	Point mgl32.Vec3
	// SX and SY are surface-local pixel coordinates.
	SX, SY float64
}

// SurfaceHit intersects the ray with a width x height pixel surface centered
// at position and oriented by rotation. It reports false when the plane is
// missed or the hit falls outside the surface bounds.
func SurfaceHit(position, rotation mgl32.Vec3, width, height int, origin, dir mgl32.Vec3) (Hit, bool) {
	normal := Rotate(rotation, Forward)
	point, ok := IntersectPlaneRay(position, normal, origin, dir)
	if !ok {
		return Hit{}, false
	}

	delta := point.Sub(position)
	x := Rotate(rotation, unitX).Dot(delta)
	y := -Rotate(rotation, unitY).Dot(delta)

	w, h := float64(width), float64(height)
	sx := float64(x)*SurfaceScale + 0.5*w
	sy := float64(y)*SurfaceScale + 0.5*h
	if sx < 0 || sy < 0 || sx >= w || sy >= h {
		return Hit{}, false
	}

	return Hit{Point: point, SX: sx, SY: sy}, true
}
