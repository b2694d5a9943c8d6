package analysis

import (
	"container/heap"
	"sort"

	"golang.org/x/exp/constraints"
)

// Ranked pairs an entity id with the score that ranked it.
type Ranked[S constraints.Ordered] struct {
	EntityID string `json:"entity_id"`
	Score    S      `json:"score"`
}

// rankedHeap is a min-heap keeping the weakest entry at the root. Equal
// scores rank the higher id as weaker, matching the score-descending,
// id-ascending output order.
type rankedHeap[S constraints.Ordered] []Ranked[S]

func (h rankedHeap[S]) Len() int { return len(h) }
func (h rankedHeap[S]) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score < h[j].Score
	}
	return h[i].EntityID > h[j].EntityID
}
func (h rankedHeap[S]) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *rankedHeap[S]) Push(x any) {
	*h = append(*h, x.(Ranked[S]))
}

func (h *rankedHeap[S]) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// topK keeps the k best-scoring ids offered so far using a bounded heap.
type topK[S constraints.Ordered] struct {
	k int
	h rankedHeap[S]
}

func newTopK[S constraints.Ordered](k int) *topK[S] {
	return &topK[S]{k: k, h: make(rankedHeap[S], 0, k)}
}

// offer considers one id; it survives only while it ranks within the top k.
func (t *topK[S]) offer(id string, score S) {
	if t.k <= 0 {
		return
	}
	entry := Ranked[S]{EntityID: id, Score: score}
	if t.h.Len() < t.k {
		heap.Push(&t.h, entry)
		return
	}
	weakest := t.h[0]
	if score > weakest.Score || (score == weakest.Score && id < weakest.EntityID) {
		heap.Pop(&t.h)
		heap.Push(&t.h, entry)
	}
}

// ranked returns the kept entries sorted by score descending, then entity
// id ascending for determinism.
func (t *topK[S]) ranked() []Ranked[S] {
	out := make([]Ranked[S], len(t.h))
	copy(out, t.h)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].EntityID < out[j].EntityID
	})
	return out
}
