package qslim

import "gonum.org/v1/gonum/spatial/r3"

// candidate is a queued edge collapse. It is stale once the edge is deleted or
// its stamp falls behind the edge's current stamp.
type candidate struct {
	cost  float64
	edge  int
	stamp int
	x     r3.Vec
}

// edgeHeap is a min-heap of candidates ordered by cost. Equal costs are
// ordered by edge index so runs are reproducible.
type edgeHeap []candidate

func (h edgeHeap) Len() int { return len(h) }

func (h edgeHeap) Less(i, j int) bool {
	if h[i].cost != h[j].cost {
		return h[i].cost < h[j].cost
	}
	if h[i].edge != h[j].edge {
		return h[i].edge < h[j].edge
	}
	return h[i].stamp > h[j].stamp
}

func (h edgeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *edgeHeap) Push(x any) { *h = append(*h, x.(candidate)) }

func (h *edgeHeap) Pop() any {
	old := *h
	n := len(old) - 1
	c := old[n]
	*h = old[:n]
	return c
}
