package spatialmath

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Affine2D is a 2D affine transform stored as a 3x3 homogeneous matrix.
type Affine2D struct {
	m *mat.Dense
}

// NewIdentityAffine returns the identity transform.
func NewIdentityAffine() Affine2D {
	return Affine2D{m: mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})}
}

// NewRotationAffine returns a counter-clockwise rotation by theta radians about the origin.
func NewRotationAffine(theta float64) Affine2D {
	s, c := math.Sincos(theta)
	return Affine2D{m: mat.NewDense(3, 3, []float64{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	})}
}

// NewTranslationAffine returns a translation by d.
func NewTranslationAffine(d r2.Point) Affine2D {
	return Affine2D{m: mat.NewDense(3, 3, []float64{
		1, 0, d.X,
		0, 1, d.Y,
		0, 0, 1,
	})}
}

// Then returns the transform that applies a and then next.
func (a Affine2D) Then(next Affine2D) Affine2D {
	var out mat.Dense
	out.Mul(next.m, a.m)
	return Affine2D{m: &out}
}

// Apply transforms p.
func (a Affine2D) Apply(p r2.Point) r2.Point {
	return r2.Point{
		X: a.m.At(0, 0)*p.X + a.m.At(0, 1)*p.Y + a.m.At(0, 2),
		Y: a.m.At(1, 0)*p.X + a.m.At(1, 1)*p.Y + a.m.At(1, 2),
	}
}

// ApplyAll transforms every point in ps.
func (a Affine2D) ApplyAll(ps []r2.Point) []r2.Point {
	out := make([]r2.Point, len(ps))
	for i, p := range ps {
		out[i] = a.Apply(p)
	}
	return out
}

// Inverse returns the inverse transform.
func (a Affine2D) Inverse() (Affine2D, error) {
	var inv mat.Dense
	if err := inv.Inverse(a.m); err != nil {
		return Affine2D{}, errors.Wrap(err, "affine transform is not invertible")
	}
	return Affine2D{m: &inv}, nil
}

// NewCenteredRotationAffine translates center to the origin and then rotates by theta.
func NewCenteredRotationAffine(center r2.Point, theta float64) Affine2D {
	return NewTranslationAffine(r2.Point{X: -center.X, Y: -center.Y}).Then(NewRotationAffine(theta))
}
