// Package projector implements the bidirectional cam<->world
// projection engine: loading a reconstruction's shots and cameras,
// lazily owning a DEM handle, and answering world2cams/cam2world
// queries (spec.md §4.4-§4.7).
package projector

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/viam-labs/odm-projector/dem"
	"github.com/viam-labs/odm-projector/geo"
	"github.com/viam-labs/odm-projector/logging"
	"github.com/viam-labs/odm-projector/rimage/transform"
)

// defaultRaycastResolutionMultiplier is 1/sqrt(2), the default k in
// Δ = |raster.transform[0]| * k (spec.md §4.5).
const defaultRaycastResolutionMultiplier = 0.70710678118

// ZSampleTarget selects which DEM the Projector samples against
// (spec.md §4.7).
type ZSampleTarget string

const (
	TargetDSM ZSampleTarget = "dsm"
	TargetDTM ZSampleTarget = "dtm"
)

// Options configures a Projector beyond its project path (spec.md §6).
type Options struct {
	ZSampleWindow               int
	ZSampleStrategy             dem.Strategy
	ZSampleTarget               ZSampleTarget
	RaycastResolutionMultiplier float64
	// RaycastMode selects cam2world's terrain-intersection algorithm;
	// the zero value is RaycastMidpoint (spec.md §4.5).
	RaycastMode RaycastMode
	// RasterCRS is a proj init string (e.g. "epsg:32615") for the DEM's
	// projected CRS. The bundled GeoTIFF reader does not parse
	// GeoKeyDirectoryTag, so callers supply this explicitly; see
	// DESIGN.md.
	RasterCRS string
	Logger    logging.Logger
}

// DefaultOptions mirrors the original reconstruction tool's defaults
// (spec.md §6).
func DefaultOptions() Options {
	return Options{
		ZSampleWindow:               1,
		ZSampleStrategy:             dem.StrategyMedian,
		ZSampleTarget:               TargetDSM,
		RaycastResolutionMultiplier: defaultRaycastResolutionMultiplier,
	}
}

// coordTransform is the subset of *geo.Transformer the projector needs;
// factored out so tests can substitute a fake and avoid depending on a
// live PROJ/EPSG installation.
type coordTransform interface {
	ToRaster(lon, lat float64) (easting, northing float64, err error)
	ToWGS84(easting, northing float64) (lon, lat float64, err error)
}

// Projector loads a reconstruction project's shots and cameras at
// construction time and lazily opens its DEM on first use (spec.md §4.7).
type Projector struct {
	opts Options
	log  logging.Logger

	shots     []Shot
	shotsMap  map[string]int
	cameras   map[string]transform.Camera
	demPath   string
	transform coordTransform

	demOnce sync.Once
	demErr  error
	raster  *dem.Raster
	sampler *dem.Sampler
	minZ    float64
}

// New constructs a Projector for the reconstruction rooted at
// projectPath, validating z_sample_window and z_sample_target and
// loading shots.geojson/cameras.json eagerly (spec.md §4.7).
func New(projectPath string, opts Options) (*Projector, error) {
	info, err := os.Stat(projectPath)
	if err != nil || !info.IsDir() {
		return nil, IOError("%q is not a valid path to a project directory", projectPath)
	}

	if opts.ZSampleWindow <= 0 || opts.ZSampleWindow%2 == 0 {
		return nil, InvalidArgError("z_sample_window must be a positive odd integer, got %d", opts.ZSampleWindow)
	}

	var demPath string
	switch opts.ZSampleTarget {
	case TargetDSM, "":
		demPath = filepath.Join(projectPath, "odm_dem", "dsm.tif")
		opts.ZSampleTarget = TargetDSM
	case TargetDTM:
		demPath = filepath.Join(projectPath, "odm_dem", "dtm.tif")
	default:
		return nil, InvalidArgError("invalid z_sample_target %q", opts.ZSampleTarget)
	}

	if opts.ZSampleStrategy == "" {
		opts.ZSampleStrategy = dem.StrategyMedian
	}
	if opts.RaycastResolutionMultiplier == 0 {
		opts.RaycastResolutionMultiplier = defaultRaycastResolutionMultiplier
	}

	log := opts.Logger
	if log == nil {
		var err error
		log, err = logging.NewLogger(logging.INFO)
		if err != nil {
			return nil, err
		}
	}

	shotsPath := filepath.Join(projectPath, "odm_report", "shots.geojson")
	shots, shotsMap, err := loadShots(shotsPath)
	if err != nil {
		return nil, err
	}

	camerasPath := filepath.Join(projectPath, "cameras.json")
	cameras, err := loadCameras(camerasPath, log)
	if err != nil {
		return nil, err
	}

	var trans coordTransform
	if opts.RasterCRS != "" {
		t, err := geo.NewTransformer(opts.RasterCRS)
		if err != nil {
			return nil, err
		}
		trans = t
	}

	return &Projector{
		opts:      opts,
		log:       log,
		shots:     shots,
		shotsMap:  shotsMap,
		cameras:   cameras,
		demPath:   demPath,
		transform: trans,
	}, nil
}

// Close releases the DEM handle, if one was opened (spec.md §3's
// lifecycle invariant).
func (p *Projector) Close() error {
	p.raster = nil
	p.sampler = nil
	return nil
}

// ensureDEM lazily opens the DEM raster and computes min_z exactly
// once, on first use of either public operation (spec.md §4.5, §4.7).
func (p *Projector) ensureDEM() error {
	p.demOnce.Do(func() {
		r, err := dem.OpenRaster(p.demPath)
		if err != nil {
			p.demErr = err
			return
		}
		p.raster = r
		p.sampler = dem.NewSampler(r)
		p.minZ = r.MinZ()
		if p.transform == nil && p.opts.RasterCRS != "" {
			t, err := geo.NewTransformer(p.opts.RasterCRS)
			if err != nil {
				p.demErr = err
				return
			}
			p.transform = t
		}
	})
	return p.demErr
}

// resolveGroundPoint is spec.md §4.3/§4.4 step 1: transform (lon,lat)
// to the DEM's CRS and sample its elevation.
func (p *Projector) resolveGroundPoint(lon, lat float64) (x, y, z float64, err error) {
	if err := p.ensureDEM(); err != nil {
		return 0, 0, 0, err
	}
	if p.transform == nil {
		return 0, 0, 0, geo.GeoError("no raster CRS configured; cannot resolve (%f, %f)", lon, lat)
	}
	x, y, err = p.transform.ToRaster(lon, lat)
	if err != nil {
		return 0, 0, 0, err
	}
	z, err = p.sampler.Sample(x, y, p.opts.ZSampleWindow, p.opts.ZSampleStrategy)
	if err != nil {
		return 0, 0, 0, err
	}
	return x, y, z, nil
}

// stepSize is Δ = |raster.transform[0]| * k (spec.md §4.5).
func (p *Projector) stepSize() float64 {
	return p.raster.PixelSizeX() * p.opts.RaycastResolutionMultiplier
}
