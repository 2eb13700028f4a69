package transform

import (
	"math"

	"github.com/golang/geo/r3"
)

const (
	// maxUndistortIterations bounds the fixed-point inverse of the
	// Brown-Conrady model, matching OpenCV's undistortPoints behavior
	// (spec.md §9).
	maxUndistortIterations = 20
	undistortConvergenceEps = 1e-10
)

// Camera is the shared capability set of spec.md §9: pixel_bearing,
// project, undistorted. Both projection families (perspective,
// Brown-Conrady) implement it via PinholeCameraIntrinsics.
type Camera interface {
	PixelBearingMany(pixels [][2]float64) []r3.Vector
	ProjectMany(points []r3.Vector) [][2]float64
	Undistorted() Camera
	Width() int
	Height() int
	Focal() float64
}

// PinholeCameraIntrinsics is a pinhole camera with optional lens
// distortion, matching the Camera data model of spec.md §3: width,
// height, a normalized focal length, a principal point (cx,cy
// defaulting to 0), and a Distorter.
type PinholeCameraIntrinsics struct {
	W, H       int
	FocalNorm  float64
	Cx, Cy     float64
	Distortion Distorter
}

// NewPerspectiveCamera builds a camera with the perspective
// distortion vector [k1, k2, 0, 0, 0] (spec.md §3).
func NewPerspectiveCamera(width, height int, focal, k1, k2 float64) *PinholeCameraIntrinsics {
	return &PinholeCameraIntrinsics{
		W: width, H: height, FocalNorm: focal,
		Distortion: &BrownConrady{RadialK1: k1, RadialK2: k2},
	}
}

// NewBrownCamera builds a camera with the full 5-parameter
// Brown-Conrady distortion vector [k1, k2, p1, p2, k3] (spec.md §3).
func NewBrownCamera(width, height int, focal, cx, cy, k1, k2, p1, p2, k3 float64) *PinholeCameraIntrinsics {
	return &PinholeCameraIntrinsics{
		W: width, H: height, FocalNorm: focal, Cx: cx, Cy: cy,
		Distortion: &BrownConrady{
			RadialK1: k1, RadialK2: k2, RadialK3: k3,
			TangentialP1: p1, TangentialP2: p2,
		},
	}
}

func (c *PinholeCameraIntrinsics) Width() int       { return c.W }
func (c *PinholeCameraIntrinsics) Height() int      { return c.H }
func (c *PinholeCameraIntrinsics) Focal() float64   { return c.FocalNorm }

// normalizer is N = max(w, h), per spec.md §3.
func (c *PinholeCameraIntrinsics) normalizer() float64 {
	return math.Max(float64(c.W), float64(c.H))
}

// normalize maps a pixel to the half-pixel-shifted, N-normalized
// coordinate used internally by the distortion/undistortion math.
func (c *PinholeCameraIntrinsics) normalize(px, py float64) (float64, float64) {
	n := c.normalizer()
	u := (px + 0.5 - float64(c.W)/2.0) / n
	v := (py + 0.5 - float64(c.H)/2.0) / n
	return u, v
}

// denormalize is normalize's inverse.
func (c *PinholeCameraIntrinsics) denormalize(u, v float64) (float64, float64) {
	n := c.normalizer()
	px := u*n - 0.5 + float64(c.W)/2.0
	py := v*n - 0.5 + float64(c.H)/2.0
	return px, py
}

// undistortNormalized inverts the distortion model by fixed-point
// iteration (spec.md §4.1/§9), matching OpenCV's undistortPoints.
func undistortNormalized(d Distorter, x0, y0 float64) (float64, float64) {
	bc, ok := d.(*BrownConrady)
	if !ok || bc == nil {
		return x0, y0
	}
	x, y := x0, y0
	for i := 0; i < maxUndistortIterations; i++ {
		r2 := x*x + y*y
		icdist := 1.0 / (1 + bc.RadialK1*r2 + bc.RadialK2*r2*r2 + bc.RadialK3*r2*r2*r2)
		deltaX := 2*bc.TangentialP1*x*y + bc.TangentialP2*(r2+2*x*x)
		deltaY := bc.TangentialP1*(r2+2*y*y) + 2*bc.TangentialP2*x*y
		nx := (x0 - deltaX) * icdist
		ny := (y0 - deltaY) * icdist
		if math.Abs(nx-x) < undistortConvergenceEps && math.Abs(ny-y) < undistortConvergenceEps {
			x, y = nx, ny
			break
		}
		x, y = nx, ny
	}
	return x, y
}

// PixelBearingMany undistorts each pixel and returns the unit ray from
// the optical center through it, in camera frame (spec.md §4.1).
func (c *PinholeCameraIntrinsics) PixelBearingMany(pixels [][2]float64) []r3.Vector {
	out := make([]r3.Vector, len(pixels))
	for i, px := range pixels {
		u, v := c.normalize(px[0], px[1])
		x0 := (u - c.Cx) / c.FocalNorm
		y0 := (v - c.Cy) / c.FocalNorm
		x, y := undistortNormalized(c.Distortion, x0, y0)
		ray := r3.Vector{X: x, Y: y, Z: 1}
		out[i] = ray.Normalize()
	}
	return out
}

// ProjectMany forward-projects camera-frame points through K and the
// distortion model, returning pixel-space coordinates (spec.md §4.1).
func (c *PinholeCameraIntrinsics) ProjectMany(points []r3.Vector) [][2]float64 {
	out := make([][2]float64, len(points))
	for i, p := range points {
		x := p.X / p.Z
		y := p.Y / p.Z
		xd, yd := c.Distortion.Transform(x, y)
		u := c.FocalNorm*xd + c.Cx
		v := c.FocalNorm*yd + c.Cy
		px, py := c.denormalize(u, v)
		out[i] = [2]float64{px, py}
	}
	return out
}

// Undistorted returns a zero-distortion perspective camera with the
// same width/height/focal, used to linearize sub-pixel geometry
// (spec.md §4.1).
func (c *PinholeCameraIntrinsics) Undistorted() Camera {
	return &PinholeCameraIntrinsics{
		W: c.W, H: c.H, FocalNorm: c.FocalNorm,
		Distortion: NoDistortion{},
	}
}

// MapPixels computes to.ProjectMany(from.PixelBearingMany(pixels)),
// the convenience composition spec.md §4.1 calls map_pixels.
func MapPixels(from, to Camera, pixels [][2]float64) [][2]float64 {
	return to.ProjectMany(from.PixelBearingMany(pixels))
}
