package spatialmath

import (
	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
)

// BoundingBox returns the smallest axis aligned box containing every point.
// With no points it returns the empty rect.
func BoundingBox(points ...r2.Point) r2.Rect {
	return r2.RectFromPoints(points...)
}

// ScaleBox scales r about its centre by the given factor.
func ScaleBox(r r2.Rect, factor float64) r2.Rect {
	c := r.Center()
	half := r.Size().Mul(factor / 2)
	return r2.Rect{
		X: r1.Interval{Lo: c.X - half.X, Hi: c.X + half.X},
		Y: r1.Interval{Lo: c.Y - half.Y, Hi: c.Y + half.Y},
	}
}

// Corners returns the four corners of r counter-clockwise from the lower left.
func Corners(r r2.Rect) []r2.Point {
	v := r.Vertices()
	return v[:]
}
