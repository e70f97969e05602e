package movemode

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/1broseidon/xrdesk/internal/geom"
)

// MinimumSize is the smallest edge a resize grab will request.
const MinimumSize = 64

// Carry places a grabbed view distance units along the pointer ray from the
// eye, facing back along it. offset is the accumulated pointer pitch/yaw.
func Carry(eye geom.Pose, offset mgl32.Vec3, distance float32) (position, rotation mgl32.Vec3) {
	m := eye.Matrix().Mul4(geom.RotationMatrix(offset))
	position = m.Mul4x1(mgl32.Vec4{0, 0, -distance, 1}).Vec3()
	rotation = geom.EulerAngles(m)
	return position, rotation
}

// SpawnPlacement is where a newly mapped view appears: distance units in
// front of the eye, facing it.
func SpawnPlacement(eye geom.Pose, distance float32) (position, rotation mgl32.Vec3) {
	return Carry(eye, mgl32.Vec3{}, distance)
}

// Drag accumulates relative motion for a resize grab and returns the size
// to request.
func (s *State) Drag(dx, dy float64) (width, height int) {
	s.DeltaX += dx
	s.DeltaY += dy
	width = s.StartWidth + int(s.DeltaX)
	height = s.StartHeight + int(s.DeltaY)
	if width < MinimumSize {
		width = MinimumSize
	}
	if height < MinimumSize {
		height = MinimumSize
	}
	return width, height
}
