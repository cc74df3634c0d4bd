package rimage

import (
	"github.com/pkg/errors"
)

// Kernel1D is a one dimensional convolution kernel with its anchor in the middle.
type Kernel1D []float64

// GetLaplacian1D returns the discrete second derivative kernel.
func GetLaplacian1D() Kernel1D {
	return Kernel1D{1, -2, 1}
}

// Radius is the number of samples either side of the anchor.
func (k Kernel1D) Radius() int {
	return len(k) / 2
}

// Convolve1D applies k to signal. Only fully covered positions are produced, so
// out[i] corresponds to signal[i+k.Radius()].
func Convolve1D(signal []float64, k Kernel1D) ([]float64, error) {
	if len(k) == 0 || len(k)%2 == 0 {
		return nil, errors.Errorf("kernel must have odd length, got %d", len(k))
	}
	if len(signal) < len(k) {
		return nil, nil
	}
	out := make([]float64, len(signal)-len(k)+1)
	for i := range out {
		sum := 0.0
		for j, w := range k {
			sum += signal[i+j] * w
		}
		out[i] = sum
	}
	return out, nil
}
