package geo

import (
	"testing"

	"go.viam.com/test"
)

func TestNewTransformerRejectsEmptyCRS(t *testing.T) {
	_, err := NewTransformer("")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "no CRS")
}

// TestTransformerRoundTrip requires a real PROJ installation with EPSG
// data; it is skipped in environments without libproj, matching how
// the teacher gates hardware-backed component tests.
func TestTransformerRoundTrip(t *testing.T) {
	tr, err := NewTransformer("epsg:32615")
	if err != nil {
		t.Skipf("PROJ/EPSG data unavailable: %v", err)
	}
	lon, lat := -93.0, 45.0
	x, y, err := tr.ToRaster(lon, lat)
	test.That(t, err, test.ShouldBeNil)
	lat2, lon2, err := GetLatLon(tr, x, y)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, lat2, test.ShouldAlmostEqual, lat, 1e-6)
	test.That(t, lon2, test.ShouldAlmostEqual, lon, 1e-6)
}
