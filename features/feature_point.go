// Package features detects vertical edges along gravity aligned scan lines and
// bins them by their horizontal position.
package features

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// FeaturePoint is an edge found while scanning: its position in the image
// (bottom-left origin) and the colors either side of it.
type FeaturePoint struct {
	Offset   r2.Point
	ColorA   r3.Vector
	ColorB   r3.Vector
	Gradient r3.Vector
}

func product(v r3.Vector) float64 {
	return v.X * v.Y * v.Z
}

// Difference compares the colors of two feature points. It is zero for
// identical points and symmetric in its arguments.
func (p FeaturePoint) Difference(other FeaturePoint) float64 {
	return product(p.ColorA.Sub(other.ColorA)) * product(p.ColorB.Sub(other.ColorB))
}
