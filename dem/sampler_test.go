package dem

import (
	"testing"

	"go.viam.com/test"
)

// gradientRaster builds a w x h raster where cell (row,col) holds
// row*w+col as elevation, one unit per pixel, origin at (0,0).
func gradientRaster(w, h int) *Raster {
	data := make([]float32, w*h)
	for i := range data {
		data[i] = float32(i)
	}
	return &Raster{
		Width: w, Height: h,
		Transform: [6]float64{1, 0, 0, 0, 1, 0},
		NoData:    -9999,
		data:      data,
	}
}

func TestSampleCellMinMaxMeanMedianOrdering(t *testing.T) {
	r := gradientRaster(21, 21)
	s := NewSampler(r)

	row, col := 10, 10
	min, err := s.SampleCell(row, col, 9, StrategyMin)
	test.That(t, err, test.ShouldBeNil)
	max, err := s.SampleCell(row, col, 9, StrategyMax)
	test.That(t, err, test.ShouldBeNil)
	mean, err := s.SampleCell(row, col, 9, StrategyMean)
	test.That(t, err, test.ShouldBeNil)
	median, err := s.SampleCell(row, col, 9, StrategyMedian)
	test.That(t, err, test.ShouldBeNil)

	// spec.md §8: min <= median <= max and min <= mean <= max for any window.
	test.That(t, min <= median, test.ShouldBeTrue)
	test.That(t, median <= max, test.ShouldBeTrue)
	test.That(t, min <= mean, test.ShouldBeTrue)
	test.That(t, mean <= max, test.ShouldBeTrue)
}

func TestSampleCellWindowOne(t *testing.T) {
	r := gradientRaster(5, 5)
	s := NewSampler(r)
	for _, strat := range []Strategy{StrategyMin, StrategyMax, StrategyMean, StrategyMedian} {
		v, err := s.SampleCell(2, 2, 1, strat)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, v, test.ShouldEqual, float64(2*5+2))
	}
}

func TestSampleCellEvenWindowRejected(t *testing.T) {
	r := gradientRaster(5, 5)
	s := NewSampler(r)
	_, err := s.SampleCell(2, 2, 4, StrategyMean)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "odd")
}

func TestSampleCellAllNodataOutOfBounds(t *testing.T) {
	r := gradientRaster(3, 3)
	for i := range r.data {
		r.data[i] = float32(r.NoData)
	}
	s := NewSampler(r)
	_, err := s.SampleCell(1, 1, 1, StrategyMean)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSampleByWorldCoordinates(t *testing.T) {
	r := gradientRaster(10, 10)
	s := NewSampler(r)
	v, err := s.Sample(3.2, 4.4, 1, StrategyMean)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v, test.ShouldEqual, float64(4*10+3))
}

func TestSampleUnknownStrategy(t *testing.T) {
	r := gradientRaster(5, 5)
	s := NewSampler(r)
	_, err := s.SampleCell(2, 2, 1, Strategy("bogus"))
	test.That(t, err, test.ShouldNotBeNil)
}
