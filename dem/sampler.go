package dem

import (
	"github.com/montanaflynn/stats"
)

// Strategy names a window reduction strategy for Sample, per spec.md
// §4.2. Names follow the spec's own naming rather than the original
// source's {minimum,maximum,average,median}; see DESIGN.md.
type Strategy string

const (
	StrategyMin    Strategy = "min"
	StrategyMax    Strategy = "max"
	StrategyMean   Strategy = "mean"
	StrategyMedian Strategy = "median"
)

// Sampler answers Z queries against a Raster using a cached circular
// window and one of the four reduction strategies (spec.md §4.2).
type Sampler struct {
	raster *Raster
}

// NewSampler wraps a Raster for windowed sampling.
func NewSampler(r *Raster) *Sampler {
	return &Sampler{raster: r}
}

// Sample returns the reduced elevation at world (x,y) over a window of
// diameter `window` pixels (an odd positive integer, spec.md §4.2),
// using the given strategy. Nodata cells within the window are
// excluded from the reduction; if every covered cell is nodata or
// off-raster, an OutOfBoundsError is returned.
func (s *Sampler) Sample(x, y float64, window int, strategy Strategy) (float64, error) {
	if window <= 0 || window%2 == 0 {
		return 0, InvalidArgError("window must be a positive odd integer, got %d", window)
	}
	row, col := s.raster.Index(x, y)
	return s.SampleCell(row, col, window, strategy)
}

// SampleCell is Sample addressed directly by raster cell, used by the
// raycaster which already operates in (row,col) space.
func (s *Sampler) SampleCell(row, col, window int, strategy Strategy) (float64, error) {
	if window <= 0 || window%2 == 0 {
		return 0, InvalidArgError("window must be a positive odd integer, got %d", window)
	}
	k := getCircleKernel(window)
	vals := make([]float64, 0, len(k.offsets))
	for _, off := range k.offsets {
		r, c := row+off[0], col+off[1]
		if r < 0 || r >= s.raster.Height || c < 0 || c >= s.raster.Width {
			continue
		}
		v := s.raster.At(r, c)
		if v == s.raster.NoData {
			continue
		}
		vals = append(vals, v)
	}
	if len(vals) == 0 {
		return 0, OutOfBoundsError("no valid DEM cells in window around (%d,%d)", row, col)
	}
	return reduce(vals, strategy)
}

func reduce(vals []float64, strategy Strategy) (float64, error) {
	data := stats.Float64Data(vals)
	switch strategy {
	case StrategyMin:
		return stats.Min(data)
	case StrategyMax:
		return stats.Max(data)
	case StrategyMean:
		return stats.Mean(data)
	case StrategyMedian:
		return stats.Median(data)
	default:
		return 0, InvalidArgError("unknown sampling strategy %q", strategy)
	}
}
