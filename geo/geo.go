// Package geo provides the thin plumbing between WGS84 lat/lon and a
// DEM raster's projected CRS, and between raster cells and world
// coordinates (spec.md §4.3).
package geo

import (
	"github.com/omniscale/go-proj/v2"
	"github.com/pkg/errors"

	"github.com/viam-labs/odm-projector/dem"
)

// wgs84Init is the well-known geographic CRS every shots.geojson ships
// coordinates in.
const wgs84Init = "epsg:4326"

// Transformer projects points between WGS84 and a raster's CRS. A
// Transformer is built once per raster and reused; proj.Transformer
// owns its own cgo-backed PJ context, so it is not safe to share
// across raster CRS definitions.
type Transformer struct {
	toRaster   proj.Transformer
	fromRaster proj.Transformer
}

// NewTransformer builds a bidirectional WGS84<->rasterCRS transformer.
// rasterCRS is a proj init string such as "epsg:32615"; the DEM loader
// does not itself infer a CRS from GeoTIFF keys (see dem.Raster.CRSDef)
// so callers must supply it explicitly when it isn't already known.
func NewTransformer(rasterCRS string) (*Transformer, error) {
	if rasterCRS == "" {
		return nil, GeoError("raster has no CRS; cannot transform coordinates")
	}
	toRaster, err := proj.NewTransformer(wgs84Init, rasterCRS)
	if err != nil {
		return nil, GeoError("building WGS84 -> %s transformer: %v", rasterCRS, err)
	}
	fromRaster, err := proj.NewTransformer(rasterCRS, wgs84Init)
	if err != nil {
		return nil, GeoError("building %s -> WGS84 transformer: %v", rasterCRS, err)
	}
	return &Transformer{toRaster: toRaster, fromRaster: fromRaster}, nil
}

// ToRaster transforms (lon,lat) in WGS84 to (easting,northing) in the
// raster's CRS.
func (t *Transformer) ToRaster(lon, lat float64) (easting, northing float64, err error) {
	pts := []proj.Coord{proj.XY(lon, lat)}
	if err := t.toRaster.Transform(pts); err != nil {
		return 0, 0, GeoError("WGS84 -> raster CRS transform: %v", err)
	}
	return pts[0].X, pts[0].Y, nil
}

// ToWGS84 transforms (easting,northing) in the raster's CRS to
// (lon,lat) in WGS84.
func (t *Transformer) ToWGS84(easting, northing float64) (lon, lat float64, err error) {
	pts := []proj.Coord{proj.XY(easting, northing)}
	if err := t.fromRaster.Transform(pts); err != nil {
		return 0, 0, GeoError("raster CRS -> WGS84 transform: %v", err)
	}
	return pts[0].X, pts[0].Y, nil
}

// GeoError wraps a CRS-transform failure (spec.md §7).
func GeoError(format string, args ...interface{}) error {
	return errors.Errorf("geo error: "+format, args...)
}

// GetUTMXYZ is spec.md §4.3's get_utm_xyz: open rasterPath, transform
// (lat,lon) to the raster's CRS, and sample z via the DEM sampler.
func GetUTMXYZ(rasterPath, rasterCRS string, lat, lon float64, window int, strategy dem.Strategy) (x, y, z float64, err error) {
	raster, err := dem.OpenRaster(rasterPath)
	if err != nil {
		return 0, 0, 0, err
	}
	t, err := NewTransformer(rasterCRS)
	if err != nil {
		return 0, 0, 0, err
	}
	x, y, err = t.ToRaster(lon, lat)
	if err != nil {
		return 0, 0, 0, err
	}
	z, err = dem.NewSampler(raster).Sample(x, y, window, strategy)
	if err != nil {
		return 0, 0, 0, err
	}
	return x, y, z, nil
}

// GetLatLon is spec.md §4.3's get_latlon: the inverse transform of a
// raster-CRS (easting,northing) back to WGS84.
func GetLatLon(t *Transformer, easting, northing float64) (lat, lon float64, err error) {
	lon, lat, err = t.ToWGS84(easting, northing)
	return lat, lon, err
}
