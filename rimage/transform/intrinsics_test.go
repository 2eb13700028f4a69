package transform

import (
	"math"
	"testing"

	"go.viam.com/test"
)

// TestCameraIdentity is the Camera identity property of spec.md §8: for
// a perspective camera with zero distortion, project(pixel_bearing(p))
// reproduces p's pixel location.
func TestCameraIdentity(t *testing.T) {
	cam := NewPerspectiveCamera(1920, 1080, 0.85, 0, 0)
	px := [2]float64{640, 480}
	rays := cam.PixelBearingMany([][2]float64{px})
	pixelsOut := cam.ProjectMany(rays)
	test.That(t, pixelsOut[0][0], test.ShouldAlmostEqual, px[0], 1e-6)
	test.That(t, pixelsOut[0][1], test.ShouldAlmostEqual, px[1], 1e-6)
}

// TestBrownRedistortionInverse is spec.md §8's Brown redistortion
// inverse law: map_pixels(undistorted, c, map_pixels(c, undistorted, p)) ≈ p.
func TestBrownRedistortionInverse(t *testing.T) {
	cam := NewBrownCamera(1920, 1080, 0.83, 0.01, -0.02, -0.28, 0.12, 0.001, -0.0005, -0.02)
	undist := cam.Undistorted()

	p := [2]float64{900, 500}
	toUndistorted := MapPixels(cam, undist, [][2]float64{p})
	back := MapPixels(undist, cam, toUndistorted)

	test.That(t, back[0][0], test.ShouldAlmostEqual, p[0], 1e-4)
	test.That(t, back[0][1], test.ShouldAlmostEqual, p[1], 1e-4)
}

func TestPixelBearingIsUnitNorm(t *testing.T) {
	cam := NewBrownCamera(800, 600, 0.9, 0, 0, -0.1, 0.05, 0.001, -0.001, 0.01)
	rays := cam.PixelBearingMany([][2]float64{{0, 0}, {400, 300}, {799, 599}})
	for _, r := range rays {
		test.That(t, r.Norm(), test.ShouldAlmostEqual, 1.0, 1e-9)
	}
}

func TestUndistortedHasNoDistortion(t *testing.T) {
	cam := NewBrownCamera(800, 600, 0.9, 0, 0, -0.1, 0.05, 0.001, -0.001, 0.01)
	u := cam.Undistorted()
	pin, ok := u.(*PinholeCameraIntrinsics)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, pin.Distortion.CheckValid(), test.ShouldBeNil)
	x, y := pin.Distortion.Transform(0.3, 0.1)
	test.That(t, x, test.ShouldAlmostEqual, 0.3, 1e-12)
	test.That(t, y, test.ShouldAlmostEqual, 0.1, 1e-12)
	test.That(t, u.Width(), test.ShouldEqual, cam.Width())
	test.That(t, u.Height(), test.ShouldEqual, cam.Height())
	test.That(t, u.Focal(), test.ShouldEqual, cam.Focal())
}

func TestNormalizeDenormalizeRoundTrip(t *testing.T) {
	cam := NewPerspectiveCamera(640, 480, 0.8, 0, 0)
	u, v := cam.normalize(123.4, 55.6)
	px, py := cam.denormalize(u, v)
	test.That(t, px, test.ShouldAlmostEqual, 123.4, 1e-9)
	test.That(t, py, test.ShouldAlmostEqual, 55.6, 1e-9)
}

func TestPixelBearingVectorPointsForward(t *testing.T) {
	cam := NewPerspectiveCamera(640, 480, 0.8, 0, 0)
	rays := cam.PixelBearingMany([][2]float64{{319.5, 239.5}})
	r := rays[0]
	test.That(t, math.Abs(r.X), test.ShouldBeLessThan, 1e-6)
	test.That(t, math.Abs(r.Y), test.ShouldBeLessThan, 1e-6)
	test.That(t, r.Z, test.ShouldBeGreaterThan, 0)
}
