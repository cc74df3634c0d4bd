package features

import (
	"image"

	"github.com/ioquatix/transform-flow/utils"
)

// Bresenham calls fn for every pixel on the line from start to end inclusive.
func Bresenham(start, end image.Point, fn func(p image.Point)) {
	dx := utils.AbsInt(end.X - start.X)
	dy := -utils.AbsInt(end.Y - start.Y)
	sx, sy := 1, 1
	if start.X > end.X {
		sx = -1
	}
	if start.Y > end.Y {
		sy = -1
	}

	err := dx + dy
	p := start
	for {
		fn(p)
		if p == end {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			p.X += sx
		}
		if e2 <= dx {
			err += dx
			p.Y += sy
		}
	}
}
