package rimage

import (
	"image"
	"image/color"
)

// Image is a read-only view over an image.Image. Storage access (Get, At) uses
// the usual top-left origin while GetGeometric addresses pixels from the
// bottom-left with y pointing up.
type Image struct {
	src           image.Image
	min           image.Point
	width, height int
}

// NewImageFromStdImage wraps img.
func NewImageFromStdImage(img image.Image) *Image {
	if existing, ok := img.(*Image); ok {
		return existing
	}
	bounds := img.Bounds()
	return &Image{
		src:    img,
		min:    bounds.Min,
		width:  bounds.Dx(),
		height: bounds.Dy(),
	}
}

// ColorModel returns the underlying color model.
func (i *Image) ColorModel() color.Model {
	return i.src.ColorModel()
}

// In reports whether (x, y) is inside the image.
func (i *Image) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < i.width && y < i.height
}

// Bounds is always anchored at the origin.
func (i *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, i.width, i.height)
}

func (i *Image) Width() int {
	return i.width
}

func (i *Image) Height() int {
	return i.height
}

func (i *Image) At(x, y int) color.Color {
	return i.src.At(x+i.min.X, y+i.min.Y)
}

// Get returns the color at p with a top-left origin.
func (i *Image) Get(p image.Point) Color {
	return NewColorFromColor(i.At(p.X, p.Y))
}

// GetXY is Get for separate coordinates.
func (i *Image) GetXY(x, y int) Color {
	return i.Get(image.Point{x, y})
}

// GetGeometric returns the color at (x, y) with a bottom-left origin.
func (i *Image) GetGeometric(x, y int) Color {
	return i.GetXY(x, i.height-1-y)
}
