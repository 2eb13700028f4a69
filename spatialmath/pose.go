package spatialmath

import "github.com/golang/geo/r3"

// Pose is a position with an orientation, the minimal slice of
// go.viam.com/rdk/spatialmath's Pose interface this library needs: a
// camera center plus its rotation.
type Pose interface {
	Point() r3.Vector
	Orientation() *RotationMatrix
}

type pose struct {
	point       r3.Vector
	orientation *RotationMatrix
}

// NewPose builds a Pose from a translation and rotation matrix.
func NewPose(point r3.Vector, orientation *RotationMatrix) Pose {
	return &pose{point: point, orientation: orientation}
}

// NewZeroPose returns the identity pose at the origin.
func NewZeroPose() Pose {
	return &pose{
		point:       r3.Vector{},
		orientation: &RotationMatrix{m: identityDense()},
	}
}

func (p *pose) Point() r3.Vector {
	return p.point
}

func (p *pose) Orientation() *RotationMatrix {
	return p.orientation
}
