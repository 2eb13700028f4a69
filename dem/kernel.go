package dem

import (
	"math"
	"sync"
)

// circleKernel is the set of (drow, dcol) offsets covering a disc of
// diameter d centered on a cell, grounded on the original source's
// kernels.py circle_kernel(d): a cell belongs to the disc if its center
// lies within (d-1)/2 of the kernel's center.
type circleKernel struct {
	offsets [][2]int
}

var kernelCache sync.Map // map[int]*circleKernel

// getCircleKernel returns the disc kernel for diameter d, building and
// caching it on first use (spec.md §4.2: "the kernel for a given window
// is computed once and reused").
func getCircleKernel(d int) *circleKernel {
	if v, ok := kernelCache.Load(d); ok {
		return v.(*circleKernel)
	}
	k := buildCircleKernel(d)
	actual, _ := kernelCache.LoadOrStore(d, k)
	return actual.(*circleKernel)
}

func buildCircleKernel(d int) *circleKernel {
	radius := float64(d-1) / 2.0
	half := d / 2
	offsets := make([][2]int, 0, d*d)
	for dr := -half; dr <= half; dr++ {
		for dc := -half; dc <= half; dc++ {
			dist := math.Sqrt(float64(dr*dr + dc*dc))
			if dist <= radius {
				offsets = append(offsets, [2]int{dr, dc})
			}
		}
	}
	return &circleKernel{offsets: offsets}
}
