package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

var (
	// DeviceNorth is the device axis the compass heading refers to: the top of the screen.
	DeviceNorth = r3.Vector{X: 0, Y: 1, Z: 0}
	// CameraAxis is the direction the rear camera looks along in device coordinates.
	CameraAxis = r3.Vector{X: 0, Y: 0, Z: -1}
	// WorldDown is gravity in the local east-north-up frame.
	WorldDown = r3.Vector{X: 0, Y: 0, Z: -1}
)

const degenerateProjection = 1e-6

// Tilt returns the in-plane angle of the image relative to gravity: rotating
// image coordinates by -tilt makes gravity point towards -Y. The boolean is false
// when gravity is (nearly) perpendicular to the image plane and no tilt exists.
func Tilt(gravity r3.Vector) (float64, bool) {
	if math.Hypot(gravity.X, gravity.Y) < degenerateProjection {
		return 0, false
	}
	return math.Atan2(gravity.X, -gravity.Y), true
}

// projectOntoPlane removes the component of v along normal.
func projectOntoPlane(v, normal r3.Vector) r3.Vector {
	n := normal.Normalize()
	return v.Sub(n.Mul(v.Dot(n)))
}

// NormalizedBearing converts a compass bearing (degrees, clockwise from north)
// of deviceNorth into the bearing of cameraAxis. Both axes are projected onto
// the horizontal plane defined by gravity. If either projection vanishes the
// bearing is returned unchanged.
func NormalizedBearing(bearing float64, deviceNorth, gravity, cameraAxis r3.Vector) float64 {
	if gravity.Norm() == 0 {
		return bearing
	}
	up := gravity.Mul(-1).Normalize()
	a := projectOntoPlane(deviceNorth, up)
	b := projectOntoPlane(cameraAxis, up)
	if a.Norm() < degenerateProjection || b.Norm() < degenerateProjection {
		return bearing
	}
	// counter-clockwise about up; compass bearings run clockwise
	ccw := math.Atan2(up.Dot(a.Cross(b)), a.Dot(b))
	return math.Mod(math.Mod(bearing-ccw*180/math.Pi, 360)+360, 360)
}

// compassBearing returns the clockwise-from-north bearing of a world vector's
// horizontal component.
func compassBearing(v r3.Vector) float64 {
	return math.Atan2(v.X, v.Y)
}

// LocalCameraTransform returns the rotation taking device coordinates into the
// local east-north-up frame, given gravity in device coordinates and the
// bearing (degrees) of the camera axis.
func LocalCameraTransform(gravity r3.Vector, bearing float64) quat.Number {
	level := RotationBetween(gravity, WorldDown)

	reference := RotateVector(level, CameraAxis)
	if math.Hypot(reference.X, reference.Y) < degenerateProjection {
		reference = RotateVector(level, DeviceNorth)
	}
	yaw := compassBearing(reference) - bearing*math.Pi/180
	heading := &R4AA{Theta: yaw, RX: 0, RY: 0, RZ: 1}
	return quat.Mul(heading.ToQuat(), level)
}

// WorldRotation is the inverse of LocalCameraTransform: it takes world
// coordinates back into the device frame.
func WorldRotation(gravity r3.Vector, bearing float64) quat.Number {
	return quat.Conj(LocalCameraTransform(gravity, bearing))
}
