package features

import (
	"image"
	"math"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"

	"github.com/ioquatix/transform-flow/rimage"
	"github.com/ioquatix/transform-flow/spatialmath"
)

// DefaultLineSpacing is the distance between scan lines in aligned pixels.
const DefaultLineSpacing = 15

// ClipFraction is the part of the image scan lines are clipped to, keeping
// them clear of the border.
const ClipFraction = 0.98

// ScanOptions configures a scan.
type ScanOptions struct {
	LineSpacing  float64
	PixelsPerBin float64
	Detector     Detector
}

// DefaultScanOptions returns the options used when none are given.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		LineSpacing:  DefaultLineSpacing,
		PixelsPerBin: DefaultPixelsPerBin,
		Detector:     LaplacianZeroCrossing{},
	}
}

func (o ScanOptions) withDefaults() ScanOptions {
	defaults := DefaultScanOptions()
	if o.LineSpacing <= 0 {
		o.LineSpacing = defaults.LineSpacing
	}
	if o.PixelsPerBin <= 0 {
		o.PixelsPerBin = defaults.PixelsPerBin
	}
	if o.Detector == nil {
		o.Detector = defaults.Detector
	}
	return o
}

// Points scans an image along lines perpendicular to gravity and collects the
// edges it crosses. A Points is filled once by Scan and is read-only afterwards.
type Points struct {
	options  ScanOptions
	scanned  bool
	offsets  []r2.Point
	features []FeaturePoint
	segments []spatialmath.LineSegment
	table    *Table
}

// NewPoints returns an unscanned Points.
func NewPoints(options ScanOptions) *Points {
	return &Points{options: options.withDefaults()}
}

// Scan detects features in img, whose in-plane rotation relative to gravity is
// tilt radians. Calling Scan again does nothing.
func (p *Points) Scan(img image.Image, tilt float64) {
	if p.scanned {
		return
	}
	p.scanned = true

	ri := rimage.NewImageFromStdImage(img)
	width, height := ri.Width(), ri.Height()
	imageBox := r2.Rect{
		X: r1.Interval{Lo: 0, Hi: float64(width)},
		Y: r1.Interval{Lo: 0, Hi: float64(height)},
	}

	p.table = NewTable(imageBox, tilt, p.options.PixelsPerBin, p.options.LineSpacing)
	inverse, err := p.table.Transform().Inverse()
	if err != nil {
		panic(err) // impossible, rotations are invertible
	}
	clipBox := spatialmath.ScaleBox(imageBox, ClipFraction)
	bounds := p.table.Bounds()
	dy := p.options.LineSpacing

	for y := bounds.Y.Lo + dy; y+dy < bounds.Y.Hi; y += dy {
		aligned := spatialmath.LineSegment{
			Start: r2.Point{X: bounds.X.Lo, Y: y},
			End:   r2.Point{X: bounds.X.Hi, Y: y},
		}
		segment, ok := spatialmath.LineSegment{
			Start: inverse.Apply(aligned.Start),
			End:   inverse.Apply(aligned.End),
		}.Clip(clipBox)
		if !ok || segment.Length() < 1 {
			continue
		}
		p.segments = append(p.segments, segment)
		p.scanSegment(ri, segment)
	}

	if err := p.table.Update(p.offsets); err != nil {
		panic(err) // impossible, every offset lies within the image
	}
}

func pixelOf(pt r2.Point, width, height int) image.Point {
	clampInt := func(v float64, hi int) int {
		return int(math.Max(0, math.Min(math.Round(v), float64(hi-1))))
	}
	return image.Point{X: clampInt(pt.X, width), Y: clampInt(pt.Y, height)}
}

func (p *Points) scanSegment(img *rimage.Image, segment spatialmath.LineSegment) {
	start := pixelOf(segment.Start, img.Width(), img.Height())
	end := pixelOf(segment.End, img.Width(), img.Height())

	var samples []Sample
	Bresenham(start, end, func(pt image.Point) {
		samples = append(samples, Sample{
			Point: r2.Point{X: float64(pt.X), Y: float64(pt.Y)},
			Color: img.GetGeometric(pt.X, pt.Y),
		})
	})

	for _, d := range p.options.Detector.Detect(samples) {
		a, b := d.Before.Vector(), d.After.Vector()
		p.offsets = append(p.offsets, d.Offset)
		p.features = append(p.features, FeaturePoint{
			Offset:   d.Offset,
			ColorA:   a,
			ColorB:   b,
			Gradient: b.Sub(a),
		})
	}
}

// Scanned reports whether Scan has run.
func (p *Points) Scanned() bool {
	return p.scanned
}

// Offsets returns the feature positions in scan order, bottom-left origin.
func (p *Points) Offsets() []r2.Point {
	return p.offsets
}

// Features returns the feature points in scan order.
func (p *Points) Features() []FeaturePoint {
	return p.features
}

// Table returns the binned features, or nil before Scan.
func (p *Points) Table() *Table {
	return p.table
}

// Segments returns the clipped scan lines in image coordinates.
func (p *Points) Segments() []spatialmath.LineSegment {
	return p.segments
}

// BoundingBox returns the box around every offset.
func (p *Points) BoundingBox() r2.Rect {
	return spatialmath.BoundingBox(p.offsets...)
}
