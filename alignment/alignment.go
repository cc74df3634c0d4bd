// Package alignment finds the bin offset that best lines up two sequences of
// per-bin feature counts, and refines it into a sub-bin pixel displacement.
//
// An offset k states that bin i+k of the first sequence corresponds to bin i of
// the second one, i.e. the second sequence is the first shifted by -k bins.
package alignment

import (
	"sort"

	"github.com/edaniels/golog"

	"github.com/ioquatix/transform-flow/utils"
)

// Strategy selects the search used to find the best offset.
type Strategy int

const (
	// Priority is a best-first branch-and-bound search.
	Priority Strategy = iota
	// Window evaluates offsets outwards from the estimate and stops once the
	// estimate penalty alone exceeds the best cost found.
	Window
)

func (s Strategy) String() string {
	switch s {
	case Priority:
		return "priority"
	case Window:
		return "window"
	default:
		return "unknown"
	}
}

// DefaultMinBinSamples is the fewest features a bin needs on both sides before
// it contributes to refinement.
const DefaultMinBinSamples = 4

// Binned is a sequence of bins each holding a count and a mean position.
type Binned interface {
	Counts() []int
	AveragePosition(bin int) utils.Average
}

type options struct {
	strategy      Strategy
	minBinSamples int
	window        int
	logger        golog.Logger
}

// Option configures an alignment.
type Option func(*options)

// WithStrategy selects the search strategy.
func WithStrategy(s Strategy) Option {
	return func(o *options) { o.strategy = s }
}

// WithMinBinSamples sets the minimum features per bin used for refinement.
func WithMinBinSamples(n int) Option {
	return func(o *options) { o.minBinSamples = n }
}

// WithWindow limits the search to offsets within n bins of the estimate.
func WithWindow(n int) Option {
	return func(o *options) { o.window = n }
}

// WithLogger traces the chosen offsets.
func WithLogger(logger golog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func newOptions(opts []Option) options {
	o := options{strategy: Priority, minBinSamples: DefaultMinBinSamples, window: -1}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Bias returns the offset that lines up the centres of two sequences.
func Bias(a, b []int) int {
	return (len(a) - len(b)) / 2
}

// Align returns the best offset of b against a near estimate. The estimate is
// relative to the centred position, i.e. Bias(a, b) is added to it.
func Align(a, b []int, estimate int, opts ...Option) (offset int, cost float64) {
	o := newOptions(opts)
	return align(a, b, estimate+Bias(a, b), o)
}

func align(a, b []int, estimate int, o options) (int, float64) {
	window := o.window
	if window < 0 {
		window = len(a) / 3
	}
	lo, hi := estimate-window, estimate+window

	var offset int
	var cost float64
	switch o.strategy {
	case Window:
		offset, cost = alignWindow(a, b, estimate, lo, hi)
	default:
		offset, cost = alignPriority(a, b, estimate, lo, hi)
	}
	if o.logger != nil {
		o.logger.Debugw("aligned", "strategy", o.strategy, "estimate", estimate, "offset", offset, "cost", cost)
	}
	return offset, cost
}

// AlignTables aligns two binned tables near estimate (in bins, before bias)
// and refines the match into a mean displacement of b relative to a. Bin pairs
// where either side has fewer than the minimum samples are ignored; a result
// with no samples means no correction is available.
func AlignTables(a, b Binned, estimate int, opts ...Option) (utils.Average, int) {
	o := newOptions(opts)
	ca, cb := a.Counts(), b.Counts()
	offset, _ := align(ca, cb, estimate+Bias(ca, cb), o)

	var displacement utils.Average
	for i := range cb {
		j := i + offset
		if j < 0 || j >= len(ca) {
			continue
		}
		if ca[j] < o.minBinSamples || cb[i] < o.minBinSamples {
			continue
		}
		pa, pb := a.AveragePosition(j), b.AveragePosition(i)
		if !pa.Valid() || !pb.Valid() {
			continue
		}
		displacement.AddSample(pb.Value() - pa.Value())
	}
	if o.logger != nil {
		o.logger.Debugw("refined", "offset", offset, "displacement", displacement.Value(), "pairs", displacement.NumberOfSamples())
	}
	return displacement, offset
}

func valueAt(s []int, i int) int {
	if i < 0 || i >= len(s) {
		return 0
	}
	return s[i]
}

func estimatePenalty(offset, estimate int) float64 {
	return float64(utils.SquareInt(offset-estimate)) / 2
}

// peaks returns every index of s, largest count first. Empty bins come last
// but are still compared, so features of b landing on them are penalised.
func peaks(s []int) []int {
	out := make([]int, len(s))
	for i := range out {
		out[i] = i
	}
	sort.SliceStable(out, func(i, j int) bool {
		return s[out[i]] > s[out[j]]
	})
	return out
}

// Cost is the full matching cost of offset against estimate.
func Cost(a, b []int, offset, estimate int) float64 {
	cost := estimatePenalty(offset, estimate)
	for _, p := range peaks(a) {
		cost += float64(utils.SquareInt(a[p] - valueAt(b, p-offset)))
	}
	return cost
}
