package alignment

// alignWindow walks outwards from the estimate, alternating left then right,
// and stops a side once its estimate penalty alone is no better than the best.
func alignWindow(a, b []int, estimate, lo, hi int) (int, float64) {
	estimate = clamp(estimate, lo, hi)
	best, bestCost := estimate, Cost(a, b, estimate, estimate)

	leftOpen, rightOpen := true, true
	for d := 1; leftOpen || rightOpen; d++ {
		for _, k := range [2]int{estimate - d, estimate + d} {
			left := k < estimate
			if (left && !leftOpen) || (!left && !rightOpen) {
				continue
			}
			if k < lo || k > hi || estimatePenalty(k, estimate) >= bestCost {
				if left {
					leftOpen = false
				} else {
					rightOpen = false
				}
				continue
			}
			if c := Cost(a, b, k, estimate); c < bestCost {
				best, bestCost = k, c
			}
		}
	}
	return best, bestCost
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
