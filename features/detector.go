package features

import (
	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/stat"

	"github.com/ioquatix/transform-flow/rimage"
	"github.com/ioquatix/transform-flow/utils"
)

// Sample is one pixel visited along a scan line.
type Sample struct {
	Point r2.Point
	Color rimage.Color
}

// Detection is an edge between two samples.
type Detection struct {
	Offset r2.Point
	Before rimage.Color
	After  rimage.Color
}

// A Detector finds edges in the samples of a single scan line.
type Detector interface {
	Detect(samples []Sample) []Detection
}

// DefaultColorDistanceThreshold is the squared RGB distance that counts as an edge.
const DefaultColorDistanceThreshold = 4000

// ColorDistance reports an edge wherever a sample differs from its predecessor
// by more than Threshold (squared RGB distance). After an edge the next
// max(len/100, 1) samples are skipped.
type ColorDistance struct {
	Threshold int
}

// Detect implements Detector.
func (d ColorDistance) Detect(samples []Sample) []Detection {
	threshold := d.Threshold
	if threshold <= 0 {
		threshold = DefaultColorDistanceThreshold
	}
	skip := utils.MaxInt(len(samples)/100, 1)

	var out []Detection
	for i := 1; i < len(samples); i++ {
		prev, cur := samples[i-1], samples[i]
		if cur.Color.DistanceSquared(prev.Color) <= threshold {
			continue
		}
		out = append(out, Detection{
			Offset: prev.Point.Add(cur.Point).Mul(0.5),
			Before: prev.Color,
			After:  cur.Color,
		})
		i += skip
	}
	return out
}

const (
	// DefaultMinVariance is the luminance variance below which zero crossings are treated as noise.
	DefaultMinVariance = 64
	// DefaultVarianceRadius is how many samples either side of a crossing feed the variance gate.
	DefaultVarianceRadius = 2
)

// LaplacianZeroCrossing reports an edge wherever the second derivative of
// luminance changes sign and the surrounding luminance varies enough.
type LaplacianZeroCrossing struct {
	MinVariance float64
	Radius      int
}

// Detect implements Detector.
func (d LaplacianZeroCrossing) Detect(samples []Sample) []Detection {
	minVariance := d.MinVariance
	if minVariance <= 0 {
		minVariance = DefaultMinVariance
	}
	radius := d.Radius
	if radius <= 0 {
		radius = DefaultVarianceRadius
	}

	luminance := make([]float64, len(samples))
	for i, s := range samples {
		luminance[i] = s.Color.Luminance()
	}

	kernel := rimage.GetLaplacian1D()
	response, err := rimage.Convolve1D(luminance, kernel)
	if err != nil {
		panic(err) // impossible, the kernel is fixed
	}
	shift := kernel.Radius()

	var out []Detection
	for i := 0; i+1 < len(response); i++ {
		r0, r1 := response[i], response[i+1]
		if r0*r1 >= 0 {
			continue
		}
		a, b := i+shift, i+shift+1

		lo, hi := utils.MaxInt(a-radius, 0), utils.MinInt(b+radius+1, len(luminance))
		if stat.Variance(luminance[lo:hi], nil) < minVariance {
			continue
		}

		t := r0 / (r0 - r1)
		pa, pb := samples[a].Point, samples[b].Point
		out = append(out, Detection{
			Offset: pa.Add(pb.Sub(pa).Mul(t)),
			Before: samples[a].Color,
			After:  samples[b].Color,
		})
	}
	return out
}
