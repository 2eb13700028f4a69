// Package transform implements the Camera Model component (spec §4.1):
// lens distortion plus the pixel_bearing/project/undistorted
// primitives every other geometry operation in this repository
// composes. The shape of Distorter (CheckValid/Parameters/Transform)
// mirrors the teacher's rimage/transform distortion types.
package transform

import "github.com/pkg/errors"

// Distorter maps an undistorted normalized coordinate to its distorted
// counterpart (or the reverse, depending on caller convention).
type Distorter interface {
	Transform(x, y float64) (float64, float64)
	CheckValid() error
	Parameters() []float64
}

// NoDistortion is the identity Distorter of the zero-distortion camera
// returned by Camera.Undistorted(). NewPerspectiveCamera uses a
// BrownConrady with only k1, k2 set instead.
type NoDistortion struct{}

func (NoDistortion) Transform(x, y float64) (float64, float64) { return x, y }
func (NoDistortion) CheckValid() error                         { return nil }
func (NoDistortion) Parameters() []float64                     { return nil }

var errDistortionNotProvided = errors.New("invalid distortion_parameters")
