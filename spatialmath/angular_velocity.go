package spatialmath

import (
	"github.com/golang/geo/r3"
)

// AngularVelocity contains angular velocity in rad/s across the device x/y/z axes.
type AngularVelocity r3.Vector

// Rotation returns the rotation vector accumulated over dt seconds, assuming
// the velocity is constant over the interval.
func (av AngularVelocity) Rotation(dt float64) r3.Vector {
	return r3.Vector(av).Mul(dt)
}

// About returns the signed rate of rotation about the given axis.
func (av AngularVelocity) About(axis r3.Vector) float64 {
	if axis.Norm() == 0 {
		return 0
	}
	return r3.Vector(av).Dot(axis.Normalize())
}
