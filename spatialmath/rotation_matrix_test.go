package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestRodriguesIdentity(t *testing.T) {
	r := NewRotationMatrixFromRodrigues(r3.Vector{X: 0, Y: 0, Z: 0})
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			test.That(t, r.At(i, j), test.ShouldAlmostEqual, want, 1e-12)
		}
	}
}

func TestRodriguesOrthonormal(t *testing.T) {
	vecs := []r3.Vector{
		{X: 0.1, Y: 0.2, Z: 0.3},
		{X: 1.5, Y: -0.4, Z: 0.9},
		{X: math.Pi / 2, Y: 0, Z: 0},
		{X: 0, Y: 0, Z: math.Pi},
	}
	for _, v := range vecs {
		r := NewRotationMatrixFromRodrigues(v)
		test.That(t, r.IsOrthonormal(1e-9), test.ShouldBeTrue)
	}
}

func TestRodriguesKnownRotation(t *testing.T) {
	// Rotate 90 degrees about Z: x -> y, y -> -x.
	r := NewRotationMatrixFromRodrigues(r3.Vector{X: 0, Y: 0, Z: math.Pi / 2})
	out := r.MulVec(r3.Vector{X: 1, Y: 0, Z: 0})
	test.That(t, out.X, test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, out.Y, test.ShouldAlmostEqual, 1, 1e-9)
	test.That(t, out.Z, test.ShouldAlmostEqual, 0, 1e-9)
}

func TestTransposeIsInverseForOrthonormal(t *testing.T) {
	r := NewRotationMatrixFromRodrigues(r3.Vector{X: 0.3, Y: -0.6, Z: 1.1})
	rt := r.Transpose()
	v := r3.Vector{X: 2, Y: -1, Z: 0.5}
	roundTripped := rt.MulVec(r.MulVec(v))
	test.That(t, roundTripped.X, test.ShouldAlmostEqual, v.X, 1e-9)
	test.That(t, roundTripped.Y, test.ShouldAlmostEqual, v.Y, 1e-9)
	test.That(t, roundTripped.Z, test.ShouldAlmostEqual, v.Z, 1e-9)
}

func TestNewRotationMatrixWrongSize(t *testing.T) {
	_, err := NewRotationMatrix([]float64{1, 2, 3})
	test.That(t, err, test.ShouldNotBeNil)
}
