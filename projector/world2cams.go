package projector

import (
	"math"

	"github.com/viam-labs/odm-projector/rimage/transform"
)

// ShotMatch is one entry of a world2cams result: a shot that sees the
// queried point, and the pixel (distorted, original-image space) it
// projects to (spec.md §4.4).
type ShotMatch struct {
	Filename string
	X, Y     float64
}

// World2Cams resolves the ground point (lon,lat) on the configured DEM,
// then projects it through every loaded shot's collinearity equations,
// redistorting and frame-testing each candidate (spec.md §4.4).
func (p *Projector) World2Cams(lon, lat float64, normalized bool) ([]ShotMatch, error) {
	xa, ya, za, err := p.resolveGroundPoint(lon, lat)
	if err != nil {
		return nil, err
	}

	var matches []ShotMatch
	for _, s := range p.shots {
		m, ok := projectShot(s, xa, ya, za, p.cameras, normalized)
		if ok {
			matches = append(matches, m)
		}
	}
	return matches, nil
}

// projectShot implements one shot's pass of spec.md §4.4 steps 2-4.
func projectShot(s Shot, xa, ya, za float64, cameras map[string]transform.Camera, normalized bool) (ShotMatch, bool) {
	a1, b1, c1 := s.Rotation.Row(0)
	a2, b2, c2 := s.Rotation.Row(1)
	a3, b3, c3 := s.Rotation.Row(2)

	w, h := float64(s.Width), float64(s.Height)
	f := s.Focal * math.Max(w, h)

	dx := xa - s.Translation.X
	dy := ya - s.Translation.Y
	dz := za - s.Translation.Z

	den := a3*dx + b3*dy + c3*dz

	x := (w-1)/2 - f*(a1*dx+b1*dy+c1*dz)/den
	y := (h-1)/2 - f*(a2*dx+b2*dy+c2*dz)/den

	if !isFinite(x) || !isFinite(y) {
		return ShotMatch{}, false
	}
	if x < 0 || y < 0 || x > w-1 || y > h-1 {
		return ShotMatch{}, false
	}

	match := ShotMatch{Filename: s.Filename, X: x, Y: y}

	cam, ok := cameras[s.resolvedCamID()]
	if !ok {
		return match, true
	}

	xi := (w - 1) - math.Round(x)
	yi := (h - 1) - math.Round(y)
	out := transform.MapPixels(cam.Undistorted(), cam, [][2]float64{{xi, yi}})
	xu, yu := out[0][0], out[0][1]

	if !isFinite(xu) || !isFinite(yu) {
		return ShotMatch{}, false
	}
	if xu < 0 || xu > w || yu < 0 || yu > h {
		return ShotMatch{}, false
	}

	match.X, match.Y = xu, yu
	if normalized {
		match.X /= w
		match.Y /= h
	}
	return match, true
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
