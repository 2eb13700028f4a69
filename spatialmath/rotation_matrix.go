// Package spatialmath provides the small set of rotation/pose
// primitives the projector needs: Rodrigues-vector to rotation-matrix
// conversion and a row-major 3x3 RotationMatrix backed by gonum, in the
// style of go.viam.com/rdk/spatialmath (NewRotationMatrix, Pose,
// Orientation) without importing the whole kinematics-oriented package.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// RotationMatrix is an orthonormal 3x3 rotation, row-major.
type RotationMatrix struct {
	m *mat.Dense
}

// NewRotationMatrix validates and wraps a 9-element row-major slice.
func NewRotationMatrix(rm []float64) (*RotationMatrix, error) {
	if len(rm) != 9 {
		return nil, errors.Errorf("RotationMatrix requires 9 elements, got %d", len(rm))
	}
	return &RotationMatrix{m: mat.NewDense(3, 3, append([]float64(nil), rm...))}, nil
}

// NewRotationMatrixFromDense wraps an already-built 3x3 *mat.Dense.
func NewRotationMatrixFromDense(m *mat.Dense) *RotationMatrix {
	return &RotationMatrix{m: m}
}

// At returns the (i,j) entry, i,j in [0,3).
func (r *RotationMatrix) At(i, j int) float64 {
	return r.m.At(i, j)
}

// Row returns row i as (a,b,c).
func (r *RotationMatrix) Row(i int) (float64, float64, float64) {
	return r.m.At(i, 0), r.m.At(i, 1), r.m.At(i, 2)
}

// Dense exposes the underlying matrix for composition with gonum ops.
func (r *RotationMatrix) Dense() *mat.Dense {
	return r.m
}

// Transpose returns R^T. Since R is orthonormal this equals R^-1.
func (r *RotationMatrix) Transpose() *RotationMatrix {
	var t mat.Dense
	t.CloneFrom(r.m.T())
	return &RotationMatrix{m: &t}
}

// MulVec computes R*v.
func (r *RotationMatrix) MulVec(v r3.Vector) r3.Vector {
	in := mat.NewVecDense(3, []float64{v.X, v.Y, v.Z})
	var out mat.VecDense
	out.MulVec(r.m, in)
	return r3.Vector{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}

// IsOrthonormal reports whether R^T*R is the identity within tol.
func (r *RotationMatrix) IsOrthonormal(tol float64) bool {
	var prod mat.Dense
	prod.Mul(r.m.T(), r.m)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if math.Abs(prod.At(i, j)-want) > tol {
				return false
			}
		}
	}
	return true
}

func identityDense() *mat.Dense {
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
}

// NewRotationMatrixFromRodrigues implements the Rodrigues-vector to
// rotation-matrix conversion of spec.md §4.1: given v with magnitude
// theta, R = cos(theta)*I + (1-cos(theta))*r*r^T + sin(theta)*[r]_x. A
// near-zero vector maps to the identity.
func NewRotationMatrixFromRodrigues(v r3.Vector) *RotationMatrix {
	theta := v.Norm()
	if theta < 1e-12 {
		return &RotationMatrix{m: mat.NewDense(3, 3, []float64{
			1, 0, 0,
			0, 1, 0,
			0, 0, 1,
		})}
	}
	r := v.Mul(1.0 / theta)
	cosT, sinT := math.Cos(theta), math.Sin(theta)

	rrT := mat.NewDense(3, 3, []float64{
		r.X * r.X, r.X * r.Y, r.X * r.Z,
		r.Y * r.X, r.Y * r.Y, r.Y * r.Z,
		r.Z * r.X, r.Z * r.Y, r.Z * r.Z,
	})
	cross := mat.NewDense(3, 3, []float64{
		0, -r.Z, r.Y,
		r.Z, 0, -r.X,
		-r.Y, r.X, 0,
	})

	out := mat.NewDense(3, 3, nil)
	ident := mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})

	var t1, t2 mat.Dense
	t1.Scale(cosT, ident)
	t2.Scale(1-cosT, rrT)
	var t3 mat.Dense
	t3.Scale(sinT, cross)

	out.Add(&t1, &t2)
	out.Add(out, &t3)

	return &RotationMatrix{m: out}
}
