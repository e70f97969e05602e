package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Pose is a located eye or space: orientation plus position.
type Pose struct {
	Orientation mgl32.Quat
	Position    mgl32.Vec3
}

// IdentityPose sits at the origin looking down -Z.
func IdentityPose() Pose {
	return Pose{Orientation: mgl32.QuatIdent()}
}

// Matrix returns translate(Position) * rotate(Orientation).
func (p Pose) Matrix() mgl32.Mat4 {
	t := mgl32.Translate3D(p.Position[0], p.Position[1], p.Position[2])
	return t.Mul4(p.Orientation.Normalize().Mat4())
}

// ViewMatrix is the world-to-eye transform for the pose.
func (p Pose) ViewMatrix() mgl32.Mat4 {
	return p.Matrix().Inv()
}

// Fov holds the four half angles of an asymmetric frustum in radians.
// AngleLeft and AngleDown are usually negative.
type Fov struct {
	AngleLeft  float32
	AngleRight float32
	AngleUp    float32
	AngleDown  float32
}

// SymmetricFov builds a frustum with the same half angle on every side.
func SymmetricFov(halfAngle float32) Fov {
	return Fov{AngleLeft: -halfAngle, AngleRight: halfAngle, AngleUp: halfAngle, AngleDown: -halfAngle}
}

// ProjectionFromFov builds a GL-style projection for an asymmetric frustum.
func ProjectionFromFov(fov Fov, near, far float32) mgl32.Mat4 {
	tan := func(a float32) float32 { return float32(math.Tan(float64(a))) }
	return mgl32.Frustum(
		near*tan(fov.AngleLeft),
		near*tan(fov.AngleRight),
		near*tan(fov.AngleDown),
		near*tan(fov.AngleUp),
		near, far,
	)
}
