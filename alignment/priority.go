package alignment

import (
	"container/heap"

	"github.com/ioquatix/transform-flow/utils"
)

// candidate is a partially evaluated offset: cost is a lower bound that
// becomes exact once every bin has been compared.
type candidate struct {
	offset   int
	compared int
	cost     float64
	distance int
}

type candidateHeap []*candidate

func (h candidateHeap) Len() int { return len(h) }

func (h candidateHeap) Less(i, j int) bool {
	if h[i].cost != h[j].cost {
		return h[i].cost < h[j].cost
	}
	if h[i].compared != h[j].compared {
		return h[i].compared < h[j].compared
	}
	if h[i].distance != h[j].distance {
		return h[i].distance < h[j].distance
	}
	return h[i].offset < h[j].offset
}

func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *candidateHeap) Push(x interface{}) {
	*h = append(*h, x.(*candidate))
}

func (h *candidateHeap) Pop() interface{} {
	old := *h
	n := len(old)
	c := old[n-1]
	*h = old[:n-1]
	return c
}

// alignPriority is a best-first search over offsets. Costs only grow as more
// bins are compared, so the first fully compared candidate to reach the top
// of the heap is optimal. Offsets are introduced lazily outwards from the
// estimate since their initial cost is the estimate penalty.
func alignPriority(a, b []int, estimate, lo, hi int) (int, float64) {
	estimate = clamp(estimate, lo, hi)
	order := peaks(a)

	newCandidate := func(k int) *candidate {
		return &candidate{offset: k, cost: estimatePenalty(k, estimate), distance: utils.AbsInt(k - estimate)}
	}

	h := &candidateHeap{newCandidate(estimate)}
	for h.Len() > 0 {
		c := heap.Pop(h).(*candidate)
		if c.compared == len(order) {
			return c.offset, c.cost
		}
		if c.compared == 0 {
			// expand the frontier
			switch {
			case c.offset == estimate:
				if estimate-1 >= lo {
					heap.Push(h, newCandidate(estimate-1))
				}
				if estimate+1 <= hi {
					heap.Push(h, newCandidate(estimate+1))
				}
			case c.offset < estimate && c.offset-1 >= lo:
				heap.Push(h, newCandidate(c.offset-1))
			case c.offset > estimate && c.offset+1 <= hi:
				heap.Push(h, newCandidate(c.offset+1))
			}
		}
		p := order[c.compared]
		c.cost += float64(utils.SquareInt(a[p] - valueAt(b, p-c.offset)))
		c.compared++
		heap.Push(h, c)
	}
	return estimate, Cost(a, b, estimate, estimate)
}
