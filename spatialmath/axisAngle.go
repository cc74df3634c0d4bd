package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// R4AA represents an R4 axis angle: a rotation of Theta radians about the
// axis (RX, RY, RZ).
type R4AA struct {
	Theta float64 `json:"th"`
	RX    float64 `json:"x"`
	RY    float64 `json:"y"`
	RZ    float64 `json:"z"`
}

// ToQuat converts an R4 axis angle to a unit quaternion.
func (r4 *R4AA) ToQuat() quat.Number {
	if r4.Theta == 0 {
		return quat.Number{Real: 1}
	}
	sinA := math.Sin(r4.Theta / 2)
	r4.Normalize()
	return quat.Number{
		Real: math.Cos(r4.Theta / 2),
		Imag: r4.RX * sinA,
		Jmag: r4.RY * sinA,
		Kmag: r4.RZ * sinA,
	}
}

// Normalize scales the x, y, and z components of a R4 axis angle to be on the unit sphere.
func (r4 *R4AA) Normalize() {
	norm := math.Sqrt(r4.RX*r4.RX + r4.RY*r4.RY + r4.RZ*r4.RZ)
	if norm == 0.0 {
		panic("cannot normalize R4AA, divide by zero")
	}
	r4.RX /= norm
	r4.RY /= norm
	r4.RZ /= norm
}

// RotateVector applies the unit quaternion q to v.
func RotateVector(q quat.Number, v r3.Vector) r3.Vector {
	p := quat.Mul(quat.Mul(q, quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}), quat.Conj(q))
	return r3.Vector{X: p.Imag, Y: p.Jmag, Z: p.Kmag}
}

// RotationBetween returns the shortest rotation taking the direction of from onto
// the direction of to. Zero vectors yield the identity.
func RotationBetween(from, to r3.Vector) quat.Number {
	if from.Norm() == 0 || to.Norm() == 0 {
		return quat.Number{Real: 1}
	}
	a, b := from.Normalize(), to.Normalize()
	dot := math.Max(-1, math.Min(1, a.Dot(b)))
	axis := a.Cross(b)
	if axis.Norm() < 1e-9 {
		if dot > 0 {
			return quat.Number{Real: 1}
		}
		// antiparallel: any perpendicular axis will do
		axis = a.Ortho()
	}
	r4 := &R4AA{Theta: math.Acos(dot), RX: axis.X, RY: axis.Y, RZ: axis.Z}
	return r4.ToQuat()
}
