package utils

import (
	"math"
)

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// AngleDiffDeg returns the closest difference from the two given
// angles. The arguments are commutative.
func AngleDiffDeg(a1, a2 float64) float64 {
	return float64(180) - math.Abs(math.Abs(ModAngDeg(a1)-ModAngDeg(a2))-float64(180))
}

// ModAngDeg wraps an angle into [0, 360).
func ModAngDeg(ang float64) float64 {
	return math.Mod(math.Mod(ang, 360)+360, 360)
}

// InterpolateAnglesRadians moves from a towards b by the fraction t along the
// shorter arc. The result is not wrapped into any particular range.
func InterpolateAnglesRadians(a, b, t float64) float64 {
	sinA, cosA := math.Sincos(a)
	sinB, cosB := math.Sincos(b)
	return math.Atan2(sinA-(sinA-sinB)*t, cosA-(cosA-cosB)*t)
}

// InterpolateAnglesDegrees is InterpolateAnglesRadians for degrees, wrapped into [0, 360).
func InterpolateAnglesDegrees(a, b, t float64) float64 {
	return ModAngDeg(RadToDeg(InterpolateAnglesRadians(DegToRad(a), DegToRad(b), t)))
}

// AbsInt returns the absolute value of n.
func AbsInt(n int) int {
	if n < 0 {
		return -1 * n
	}
	return n
}

// MaxInt returns the larger of a and b.
func MaxInt(a, b int) int {
	if a < b {
		return b
	}
	return a
}

// MinInt returns the smaller of a and b.
func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// SquareInt returns n*n.
func SquareInt(n int) int {
	return n * n
}
