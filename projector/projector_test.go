package projector

import (
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"

	"github.com/viam-labs/odm-projector/dem"
)

func writeMinimalProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	test.That(t, os.MkdirAll(filepath.Join(root, "odm_dem"), 0o755), test.ShouldBeNil)
	test.That(t, os.MkdirAll(filepath.Join(root, "odm_report"), 0o755), test.ShouldBeNil)

	writeTinyGeoTIFF(t, filepath.Join(root, "odm_dem", "dsm.tif"), 5, 5, flatRasterWithSpike(5, 5, 0, 10, 2, 2))

	shotsGeoJSON := `{
		"type": "FeatureCollection",
		"features": [{
			"type": "Feature",
			"properties": {
				"camera": "v2 cam1",
				"filename": "a.jpg",
				"focal": 0.5,
				"translation": [2, -2, 50],
				"rotation": [0, 0, 0],
				"width": 100,
				"height": 100
			},
			"geometry": {"type": "Point", "coordinates": [0,0]}
		}]
	}`
	test.That(t, os.WriteFile(filepath.Join(root, "odm_report", "shots.geojson"), []byte(shotsGeoJSON), 0o644), test.ShouldBeNil)

	camerasJSON := `{
		"cam1": {
			"projection_type": "perspective",
			"width": 100,
			"height": 100,
			"focal": 0.5,
			"k1": 0,
			"k2": 0
		},
		"cam2": {
			"projection_type": "fisheye",
			"width": 10,
			"height": 10
		}
	}`
	test.That(t, os.WriteFile(filepath.Join(root, "cameras.json"), []byte(camerasJSON), 0o644), test.ShouldBeNil)

	return root
}

func TestNewRejectsNonDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "does-not-exist"), DefaultOptions())
	test.That(t, err, test.ShouldNotBeNil)
}

func TestNewRejectsEvenWindow(t *testing.T) {
	root := writeMinimalProject(t)
	opts := DefaultOptions()
	opts.ZSampleWindow = 2
	_, err := New(root, opts)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "odd")
}

func TestNewRejectsUnknownZSampleTarget(t *testing.T) {
	root := writeMinimalProject(t)
	opts := DefaultOptions()
	opts.ZSampleTarget = "bogus"
	_, err := New(root, opts)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestNewLoadsShotsAndCamerasSkippingUnknownProjection(t *testing.T) {
	root := writeMinimalProject(t)
	p, err := New(root, DefaultOptions())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(p.shots), test.ShouldEqual, 1)
	test.That(t, p.shots[0].Filename, test.ShouldEqual, "a.jpg")
	test.That(t, p.shots[0].CamID, test.ShouldEqual, "v2 cam1")

	_, ok := p.cameras["cam1"]
	test.That(t, ok, test.ShouldBeTrue)
	_, ok = p.cameras["cam2"]
	test.That(t, ok, test.ShouldBeFalse)
}

func TestNewDefaultsToDSM(t *testing.T) {
	root := writeMinimalProject(t)
	p, err := New(root, DefaultOptions())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.demPath, test.ShouldEqual, filepath.Join(root, "odm_dem", "dsm.tif"))
	test.That(t, p.opts.ZSampleTarget, test.ShouldEqual, TargetDSM)
}

func TestEnsureDEMComputesMinZOnce(t *testing.T) {
	root := writeMinimalProject(t)
	p, err := New(root, DefaultOptions())
	test.That(t, err, test.ShouldBeNil)

	test.That(t, p.ensureDEM(), test.ShouldBeNil)
	test.That(t, p.minZ, test.ShouldEqual, float64(0))
	test.That(t, p.sampler, test.ShouldHaveSameTypeAs, &dem.Sampler{})
}
