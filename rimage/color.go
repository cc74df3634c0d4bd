package rimage

import (
	"fmt"
	"image/color"

	"github.com/golang/geo/r3"
	"github.com/lucasb-eyer/go-colorful"
)

// Color is an 8 bit RGB color with its HSV representation.
type Color struct {
	R, G, B uint8
	H, S, V float64
}

// NewColor creates a Color from 8 bit channels.
func NewColor(r, g, b uint8) Color {
	c := Color{R: r, G: g, B: b}
	c.H, c.S, c.V = c.toColorful().Hsv()
	return c
}

// NewColorFromColor converts any color.Color. Fully transparent colors become black.
func NewColorFromColor(c color.Color) Color {
	if existing, ok := c.(Color); ok {
		return existing
	}
	cc, ok := colorful.MakeColor(c)
	if !ok {
		return NewColor(0, 0, 0)
	}
	r, g, b := cc.RGB255()
	return NewColor(r, g, b)
}

func (c Color) String() string {
	return fmt.Sprintf("%s (%3d,%4.2f,%4.2f)", c.Hex(), int(c.H), c.S, c.V)
}

func (c Color) Hex() string {
	return fmt.Sprintf("#%.2x%.2x%.2x", c.R, c.G, c.B)
}

func (c Color) RGBA() (r, g, b, a uint32) {
	return color.RGBA{c.R, c.G, c.B, 0xff}.RGBA()
}

func (c Color) toColorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Luminance is the unweighted mean of the three channels, 0-255.
func (c Color) Luminance() float64 {
	return (float64(c.R) + float64(c.G) + float64(c.B)) / 3
}

// DistanceSquared is the squared euclidean distance in 8 bit RGB space.
func (c Color) DistanceSquared(b Color) int {
	dr := int(c.R) - int(b.R)
	dg := int(c.G) - int(b.G)
	db := int(c.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}

// DistanceLab is the perceptual distance between two colors.
func (c Color) DistanceLab(b Color) float64 {
	return c.toColorful().DistanceLab(b.toColorful())
}

// Vector returns the color as RGB components in [0, 1].
func (c Color) Vector() r3.Vector {
	cc := c.toColorful()
	return r3.Vector{X: cc.R, Y: cc.G, Z: cc.B}
}
