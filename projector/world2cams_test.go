package projector

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/viam-labs/odm-projector/rimage/transform"
	"github.com/viam-labs/odm-projector/spatialmath"
)

func identityShot(filename, camID string, w, h int, focal float64, tx, ty, tz float64) Shot {
	rot, _ := spatialmath.NewRotationMatrix([]float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	return Shot{
		Filename:    filename,
		CamID:       camID,
		Focal:       focal,
		Translation: r3.Vector{X: tx, Y: ty, Z: tz},
		Rotation:    rot,
		Width:       w,
		Height:      h,
	}
}

// TestFrameRejectionNeverEmitsOutOfBounds is spec.md §8's frame
// rejection property: world2cams never emits pixels outside [0,w]x[0,h].
func TestFrameRejectionNeverEmitsOutOfBounds(t *testing.T) {
	s := identityShot("a.jpg", "cam1", 100, 100, 0.5, 0, 0, 100)
	cam := transform.NewPerspectiveCamera(100, 100, 0.5, 0, 0)
	cameras := map[string]transform.Camera{"cam1": cam}

	for _, pt := range [][3]float64{{0, 0, 0}, {1000, 1000, 0}, {0, 0, 100}, {-500, -500, 0}} {
		m, ok := projectShot(s, pt[0], pt[1], pt[2], cameras, false)
		if !ok {
			continue
		}
		test.That(t, m.X, test.ShouldBeGreaterThanOrEqualTo, 0)
		test.That(t, m.X, test.ShouldBeLessThanOrEqualTo, float64(s.Width))
		test.That(t, m.Y, test.ShouldBeGreaterThanOrEqualTo, 0)
		test.That(t, m.Y, test.ShouldBeLessThanOrEqualTo, float64(s.Height))
	}
}

// TestProjectShotCenterPoint checks a point directly below the camera
// center lands near the image center.
func TestProjectShotCenterPoint(t *testing.T) {
	s := identityShot("a.jpg", "cam1", 100, 100, 0.5, 0, 0, 100)
	cam := transform.NewPerspectiveCamera(100, 100, 0.5, 0, 0)
	cameras := map[string]transform.Camera{"cam1": cam}

	m, ok := projectShot(s, 0, 0, 0, cameras, false)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, m.X, test.ShouldAlmostEqual, 49.5, 1.0)
	test.That(t, m.Y, test.ShouldAlmostEqual, 49.5, 1.0)
}

// TestProjectShotUnknownCameraStillEmitsPinholePixel verifies an
// unrecognized cam_id still yields the undistorted pinhole pixel
// (spec.md §4.4 step 3's "if the shot's camera is known" guard).
func TestProjectShotUnknownCameraStillEmitsPinholePixel(t *testing.T) {
	s := identityShot("a.jpg", "unknown-cam", 100, 100, 0.5, 0, 0, 100)
	m, ok := projectShot(s, 0, 0, 0, map[string]transform.Camera{}, false)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, m.Filename, test.ShouldEqual, "a.jpg")
}

// TestProjectShotAtCameraCenterRejected checks a point at the camera
// center (den == 0, so the pinhole pixel is 0/0 = NaN) is rejected
// rather than propagating a NaN/Inf pixel.
func TestProjectShotAtCameraCenterRejected(t *testing.T) {
	s := identityShot("a.jpg", "cam1", 100, 100, 0.5, 0, 0, 100)
	cameras := map[string]transform.Camera{"cam1": transform.NewPerspectiveCamera(100, 100, 0.5, 0, 0)}
	_, ok := projectShot(s, 0, 0, 100, cameras, false)
	test.That(t, ok, test.ShouldBeFalse)
}
