package features

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/ioquatix/transform-flow/alignment"
	"github.com/ioquatix/transform-flow/spatialmath"
	"github.com/ioquatix/transform-flow/utils"
)

var (
	// ErrPointOutOfBounds is returned when a feature does not fall into any bin.
	ErrPointOutOfBounds = errors.New("feature is outside the table bounds")
	// ErrBinWidthMismatch is returned when comparing tables with different bin widths.
	ErrBinWidthMismatch = errors.New("tables have different bin widths")
)

// DefaultPixelsPerBin is the width of a bin in aligned pixels.
const DefaultPixelsPerBin = 2

// Feature is a single binned feature.
type Feature struct {
	// Offset is the position in the image, bottom-left origin.
	Offset r2.Point
	// Aligned is Offset with the image centre moved to the origin and gravity along -Y.
	Aligned r2.Point
}

// Bin holds the features whose aligned X falls within one bin width.
type Bin struct {
	Features []Feature
}

// Table bins features by their position perpendicular to gravity.
type Table struct {
	transform    spatialmath.Affine2D
	bounds       r2.Rect
	pixelsPerBin float64
	lineSpacing  float64
	bins         []Bin
}

// NewTable creates an empty table for an image covering imageBox, rotated by
// tilt radians relative to gravity.
func NewTable(imageBox r2.Rect, tilt, pixelsPerBin, lineSpacing float64) *Table {
	if pixelsPerBin <= 0 {
		pixelsPerBin = DefaultPixelsPerBin
	}
	transform := spatialmath.NewCenteredRotationAffine(imageBox.Center(), -tilt)
	bounds := spatialmath.BoundingBox(transform.ApplyAll(spatialmath.Corners(imageBox))...)

	halfWidth := math.Max(math.Abs(bounds.X.Lo), math.Abs(bounds.X.Hi))
	count := 2 * (int(math.Floor(halfWidth/pixelsPerBin)) + 1)

	return &Table{
		transform:    transform,
		bounds:       bounds,
		pixelsPerBin: pixelsPerBin,
		lineSpacing:  lineSpacing,
		bins:         make([]Bin, count),
	}
}

// Transform maps image coordinates into the aligned frame.
func (t *Table) Transform() spatialmath.Affine2D {
	return t.transform
}

// Bounds is the bounding box of the image in the aligned frame.
func (t *Table) Bounds() r2.Rect {
	return t.bounds
}

func (t *Table) PixelsPerBin() float64 {
	return t.pixelsPerBin
}

func (t *Table) LineSpacing() float64 {
	return t.lineSpacing
}

func (t *Table) Bins() []Bin {
	return t.bins
}

// NumBins returns the number of bins.
func (t *Table) NumBins() int {
	return len(t.bins)
}

// BinIndexForOffset returns the bin for an aligned X coordinate. The result
// may be out of range.
func (t *Table) BinIndexForOffset(x float64) int {
	return int(math.Floor(x/t.pixelsPerBin)) + len(t.bins)/2
}

// AddFeature bins an image offset and returns its bin index.
func (t *Table) AddFeature(offset r2.Point) (int, error) {
	aligned := t.transform.Apply(offset)
	index := t.BinIndexForOffset(aligned.X)
	if index < 0 || index >= len(t.bins) {
		return index, errors.Wrapf(ErrPointOutOfBounds, "offset %v aligned to %v", offset, aligned)
	}
	t.bins[index].Features = append(t.bins[index].Features, Feature{Offset: offset, Aligned: aligned})
	return index, nil
}

// Update bins every offset, returning the combined errors of those that could not be binned.
func (t *Table) Update(offsets []r2.Point) error {
	var err error
	for _, o := range offsets {
		_, addErr := t.AddFeature(o)
		err = multierr.Append(err, addErr)
	}
	return err
}

// Counts returns the number of features in each bin.
func (t *Table) Counts() []int {
	return lo.Map(t.bins, func(b Bin, _ int) int {
		return len(b.Features)
	})
}

// AveragePosition returns the mean aligned X of the features in bin.
func (t *Table) AveragePosition(bin int) utils.Average {
	var avg utils.Average
	if bin < 0 || bin >= len(t.bins) {
		return avg
	}
	for _, f := range t.bins[bin].Features {
		avg.AddSample(f.Aligned.X)
	}
	return avg
}

// CalculateOffset estimates how far features have moved from t to other, in
// aligned pixels along the horizontal axis. estimatePixels is the expected
// displacement. An average with no samples means no reliable estimate exists.
func (t *Table) CalculateOffset(other *Table, estimatePixels float64, opts ...alignment.Option) (utils.Average, error) {
	if t.pixelsPerBin != other.pixelsPerBin {
		return utils.Average{}, errors.Wrapf(ErrBinWidthMismatch, "%v != %v", t.pixelsPerBin, other.pixelsPerBin)
	}
	// other is t shifted right by estimatePixels, so bin i of other matches bin i-k of t
	estimate := int(math.Round(-estimatePixels / t.pixelsPerBin))
	displacement, _ := alignment.AlignTables(t, other, estimate, opts...)
	return displacement, nil
}
