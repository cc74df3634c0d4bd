package features

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/geo/r2"
)

// Draw returns a copy of img with the scan lines in green and the features as
// red points on top. img should be the image that was scanned.
func (p *Points) Draw(img image.Image) image.Image {
	height := float64(img.Bounds().Dy())
	// geometric coordinates have the origin at the bottom-left pixel
	toContext := func(pt r2.Point) (float64, float64) {
		return pt.X + 0.5, height - 1 - pt.Y + 0.5
	}

	dc := gg.NewContextForImage(img)
	dc.SetLineWidth(1)
	dc.SetRGB(0, 1, 0)
	for _, s := range p.segments {
		x1, y1 := toContext(s.Start)
		x2, y2 := toContext(s.End)
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()
	}

	dc.SetColor(color.RGBA{R: 255, A: 255})
	for _, o := range p.offsets {
		x, y := toContext(o)
		dc.DrawPoint(x, y, 1.5)
		dc.Fill()
	}
	return dc.Image()
}
