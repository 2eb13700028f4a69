package transform

import "github.com/pkg/errors"

// BrownConrady implements the radial + tangential lens-distortion model
// parameterized (k1, k2, p1, p2, k3), per spec.md §3/§4.1. Transform
// maps an undistorted normalized coordinate to its distorted
// counterpart; the iterative inverse is undistortNormalized in
// intrinsics.go, applied after the camera's K has been removed.
type BrownConrady struct {
	RadialK1     float64
	RadialK2     float64
	RadialK3     float64
	TangentialP1 float64
	TangentialP2 float64
}

// NewBrownConrady builds a BrownConrady from the 5-element
// [k1, k2, p1, p2, k3] vector used throughout spec.md. A nil or short
// slice zero-fills the remainder; more than 5 elements is an error.
func NewBrownConrady(params []float64) (*BrownConrady, error) {
	if len(params) > 5 {
		return nil, errors.Errorf("BrownConrady distortion_parameters too long: got %d, want at most 5", len(params))
	}
	var p [5]float64
	copy(p[:], params)
	return &BrownConrady{
		RadialK1:     p[0],
		RadialK2:     p[1],
		TangentialP1: p[2],
		TangentialP2: p[3],
		RadialK3:     p[4],
	}, nil
}

// CheckValid reports whether the distortion is usable; a nil receiver
// (distortion_parameters not provided) is invalid.
func (bc *BrownConrady) CheckValid() error {
	if bc == nil {
		return errors.Wrap(errDistortionNotProvided, "BrownConrady shaped distortion_parameters not provided")
	}
	return nil
}

// Parameters returns [k1, k2, p1, p2, k3].
func (bc *BrownConrady) Parameters() []float64 {
	if bc == nil {
		return []float64{0, 0, 0, 0, 0}
	}
	return []float64{bc.RadialK1, bc.RadialK2, bc.TangentialP1, bc.TangentialP2, bc.RadialK3}
}

// Transform forward-distorts an undistorted normalized coordinate.
func (bc *BrownConrady) Transform(x, y float64) (float64, float64) {
	if bc == nil {
		return x, y
	}
	r2 := x*x + y*y
	radial := 1 + bc.RadialK1*r2 + bc.RadialK2*r2*r2 + bc.RadialK3*r2*r2*r2
	xDistorted := x*radial + 2*bc.TangentialP1*x*y + bc.TangentialP2*(r2+2*x*x)
	yDistorted := y*radial + bc.TangentialP1*(r2+2*y*y) + 2*bc.TangentialP2*x*y
	return xDistorted, yDistorted
}
