package spatialmath

import (
	"github.com/golang/geo/r2"
)

// LineSegment is a directed segment from Start to End.
type LineSegment struct {
	Start r2.Point
	End   r2.Point
}

// Length returns the euclidean length of the segment.
func (s LineSegment) Length() float64 {
	return s.End.Sub(s.Start).Norm()
}

// Direction returns End - Start.
func (s LineSegment) Direction() r2.Point {
	return s.End.Sub(s.Start)
}

// PointAt returns Start + t*(End-Start).
func (s LineSegment) PointAt(t float64) r2.Point {
	return s.Start.Add(s.Direction().Mul(t))
}

// Clip clips the segment against box using Liang-Barsky. The boolean is false
// when nothing of the segment lies inside the box.
func (s LineSegment) Clip(box r2.Rect) (LineSegment, bool) {
	d := s.Direction()
	t0, t1 := 0.0, 1.0

	edges := [4][2]float64{
		{-d.X, s.Start.X - box.X.Lo},
		{d.X, box.X.Hi - s.Start.X},
		{-d.Y, s.Start.Y - box.Y.Lo},
		{d.Y, box.Y.Hi - s.Start.Y},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return LineSegment{}, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return LineSegment{}, false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return LineSegment{}, false
			}
			if r < t1 {
				t1 = r
			}
		}
	}
	return LineSegment{Start: s.PointAt(t0), End: s.PointAt(t1)}, true
}
