package utils

// Average accumulates a running mean. An Average with no samples carries no
// information and its Value is zero; check NumberOfSamples before trusting it.
type Average struct {
	total   float64
	samples int
}

// NewAverage returns an Average seeded with the given values.
func NewAverage(values ...float64) Average {
	var avg Average
	for _, v := range values {
		avg.AddSample(v)
	}
	return avg
}

// AddSample adds x to the running mean.
func (a *Average) AddSample(x float64) {
	a.total += x
	a.samples++
}

// Merge folds all the samples of other into a.
func (a *Average) Merge(other Average) {
	a.total += other.total
	a.samples += other.samples
}

// NumberOfSamples returns how many samples have been added.
func (a Average) NumberOfSamples() int {
	return a.samples
}

// Value returns the mean, or 0 when there are no samples.
func (a Average) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return a.total / float64(a.samples)
}

// Valid reports whether any samples have been added.
func (a Average) Valid() bool {
	return a.samples > 0
}
