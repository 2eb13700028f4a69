package projector

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/viam-labs/odm-projector/dem"
)

// RaycastMode selects which terrain-intersection algorithm cam2world
// uses. Midpoint is the spec-distilled default; Triangle is the
// original reconstruction tool's cell-intersection method, kept as an
// opt-in for callers that want the tighter (and costlier) hit test.
// See DESIGN.md's Open Question decision.
type RaycastMode int

const (
	RaycastMidpoint RaycastMode = iota
	RaycastTriangle
)

// WorldHit is one cam2world result: a terrain intersection in
// geographic coordinates, or nil if the ray missed (spec.md §4.5, §7).
type WorldHit struct {
	Lat, Lon, Z float64
}

// Cam2World raycasts every pixel in coords through the named shot's
// camera and terrain, returning one result per input pixel in order —
// nil for rays that point up or never cross the DEM (spec.md §4.5).
func (p *Projector) Cam2World(image string, coords [][2]float64, normalized bool) ([]*WorldHit, error) {
	idx, ok := p.shotsMap[image]
	if !ok {
		return nil, InvalidArgError("image %q not found in shots", image)
	}
	s := p.shots[idx]

	cam, ok := p.cameras[s.resolvedCamID()]
	if !ok {
		return nil, InvalidArgError("camera %q referenced by shot %q not found", s.resolvedCamID(), image)
	}

	if err := p.ensureDEM(); err != nil {
		return nil, err
	}
	if p.transform == nil {
		return nil, InvalidArgError("no raster CRS configured; cannot convert hits to lat/lon")
	}

	pixels := make([][2]float64, len(coords))
	for i, c := range coords {
		px, py := c[0], c[1]
		if normalized {
			px *= float64(s.Width)
			py *= float64(s.Height)
		}
		pixels[i] = [2]float64{px, py}
	}

	raysCam := cam.PixelBearingMany(pixels)
	raysWorld := make([]r3.Vector, len(raysCam))
	rInv := s.Rotation.Transpose()
	for i, rc := range raysCam {
		raysWorld[i] = rInv.MulVec(rc)
	}

	delta := p.stepSize()

	results := make([]*WorldHit, len(raysWorld))
	for i, ray := range raysWorld {
		if ray.Z > 0 {
			if p.log != nil {
				p.log.Warnw("ray points up, cannot raycast", "image", image, "index", i)
			}
			continue
		}
		var hit *WorldHit
		switch p.opts.raycastMode() {
		case RaycastTriangle:
			hit = p.raycastTriangle(s, ray, delta)
		default:
			hit = p.raycastMidpoint(ray, s.Translation, delta)
		}
		results[i] = hit
	}
	return results, nil
}

// raycastMidpoint is spec.md §4.5's default algorithm: step along the
// ray at resolution delta, and once the sampled cell's elevation first
// meets or exceeds the ray's altitude, report the midpoint of the
// bracketing step as the hit location.
func (p *Projector) raycastMidpoint(ray, t r3.Vector, delta float64) *WorldHit {
	step := 0.0
	var prevPt *r3.Vector

	for {
		pt := t.Add(ray.Mul(step))
		step += delta

		if pt.Z < p.minZ {
			return nil
		}

		row, col := p.raster.Index(pt.X, pt.Y)
		if row < 0 || row >= p.raster.Height || col < 0 || col >= p.raster.Width {
			continue
		}

		pixZ, err := p.sampler.SampleCell(row, col, p.opts.ZSampleWindow, p.opts.ZSampleStrategy)
		if err != nil {
			continue
		}

		if prevPt == nil {
			cur := pt
			prevPt = &cur
			continue
		}

		if pt.Z <= pixZ {
			m := prevPt.Add(pt).Mul(0.5)
			lat, lon, err := geoLatLon(p, m.X, m.Y)
			if err != nil {
				return nil
			}
			return &WorldHit{Lat: lat, Lon: lon, Z: pixZ}
		}

		cur := pt
		prevPt = &cur
	}
}

// raycastTriangle is the original reconstruction tool's cell-as-two-
// triangles intersection test, adapted from projector.py's cam2world.
// It is more expensive per candidate cell but resolves the hit point
// directly from the ray-plane intersection instead of a bracketing
// midpoint.
func (p *Projector) raycastTriangle(s Shot, ray r3.Vector, delta float64) *WorldHit {
	const raycastThreshold = 1.0
	step := 0.0

	for {
		pt := s.Translation.Add(ray.Mul(step))
		step += delta

		if pt.Z < p.minZ {
			return nil
		}

		row, col := p.raster.Index(pt.X, pt.Y)
		if row < 0 || row >= p.raster.Height || col < 0 || col >= p.raster.Width {
			continue
		}

		pixZ, err := p.sampler.SampleCell(row, col, p.opts.ZSampleWindow, p.opts.ZSampleStrategy)
		if err != nil {
			continue
		}
		if math.Abs(pixZ-pt.Z) > raycastThreshold {
			continue
		}

		x0, y0 := p.raster.XY(row-1, col-1)
		x1, y1 := p.raster.XY(row-1, col+1)
		x2, y2 := p.raster.XY(row+1, col-1)
		cell0 := r3.Vector{X: x0, Y: y0, Z: pixZ}
		cell1 := r3.Vector{X: x1, Y: y1, Z: pixZ}
		cell2 := r3.Vector{X: x2, Y: y2, Z: pixZ}

		ds10 := cell1.Sub(cell0)
		ds20 := cell2.Sub(cell0)
		normal := ds10.Cross(ds20)

		delta3 := pt.Sub(s.Translation)
		ndotdelta := normal.Dot(delta3)
		if math.Abs(ndotdelta) < 1e-6 {
			continue
		}

		ts := -normal.Dot(pt.Sub(cell0)) / ndotdelta
		m := pt.Add(delta3.Mul(ts))
		dms0 := m.Sub(cell0)
		u := dms0.Dot(ds10)
		v := dms0.Dot(ds20)
		if u < 0 || u > ds10.Dot(ds10) || v < 0 || v > ds20.Dot(ds20) {
			continue
		}

		lat, lon, err := geoLatLon(p, m.X, m.Y)
		if err != nil {
			return nil
		}
		return &WorldHit{Lat: lat, Lon: lon, Z: pixZ}
	}
}

func geoLatLon(p *Projector, x, y float64) (lat, lon float64, err error) {
	lon, lat, err = p.transform.ToWGS84(x, y)
	return lat, lon, err
}

func (o Options) raycastMode() RaycastMode {
	return o.RaycastMode
}
