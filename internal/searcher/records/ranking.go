package records

import (
	"container/heap"
)

// TopMotifs keeps the limit most frequent motifs across candidate batches,
// most frequent first.
func TopMotifs(batches [][]MotifRecord, limit int) []MotifRecord {
	if limit <= 0 {
		return []MotifRecord{}
	}
	h := &motifHeap{}
	heap.Init(h)
	for _, batch := range batches {
		for _, m := range batch {
			heap.Push(h, m)
			if h.Len() > limit {
				heap.Pop(h)
			}
		}
	}
	result := make([]MotifRecord, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(h).(MotifRecord)
	}
	return result
}

// motifHeap is a min-heap on (frequency, -position) so the weakest motif is
// evicted first.
type motifHeap []MotifRecord

func (h motifHeap) Len() int { return len(h) }

func (h motifHeap) Less(i, j int) bool {
	if h[i].Frequency() != h[j].Frequency() {
		return h[i].Frequency() < h[j].Frequency()
	}
	return h[i].Position > h[j].Position
}

func (h motifHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *motifHeap) Push(x interface{}) {
	*h = append(*h, x.(MotifRecord))
}

func (h *motifHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
