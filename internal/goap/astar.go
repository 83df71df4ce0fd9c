package goap

import (
	"container/heap"

	"goap-runtime/internal/goaperr"
)

// pqEntry is one element of the priority queue: a search node keyed for
// dedup/removal, scored for ordering, and sequenced for a stable tie-break
// when two entries share a score.
type pqEntry[K comparable, V any] struct {
	key     K
	value   V
	score   float64
	seq     int
	index   int
	removed bool
}

// pqHeap implements container/heap.Interface over entries ordered by
// (score, seq).
type pqHeap[K comparable, V any] []*pqEntry[K, V]

func (h pqHeap[K, V]) Len() int { return len(h) }
func (h pqHeap[K, V]) Less(i, j int) bool {
	if h[i].score != h[j].score {
		return h[i].score < h[j].score
	}
	return h[i].seq < h[j].seq
}
func (h pqHeap[K, V]) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *pqHeap[K, V]) Push(x any) {
	e := x.(*pqEntry[K, V])
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *pqHeap[K, V]) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// priorityQueue is a min-priority queue keyed on a score function,
// supporting add, pop (skipping tombstoned entries), contains, and
// tombstone-based remove.
type priorityQueue[K comparable, V any] struct {
	entries map[K]*pqEntry[K, V]
	heap    pqHeap[K, V]
	nextSeq int
}

func newPriorityQueue[K comparable, V any]() *priorityQueue[K, V] {
	return &priorityQueue[K, V]{entries: make(map[K]*pqEntry[K, V])}
}

func (q *priorityQueue[K, V]) Len() int { return len(q.entries) }

func (q *priorityQueue[K, V]) Contains(key K) bool {
	_, ok := q.entries[key]
	return ok
}

func (q *priorityQueue[K, V]) Add(key K, value V, score float64) {
	e := &pqEntry[K, V]{key: key, value: value, score: score, seq: q.nextSeq}
	q.nextSeq++
	q.entries[key] = e
	heap.Push(&q.heap, e)
}

// Remove tombstones the current entry for key, if any.
func (q *priorityQueue[K, V]) Remove(key K) {
	if e, ok := q.entries[key]; ok {
		e.removed = true
		delete(q.entries, key)
	}
}

// Pop removes and returns the lowest-score non-tombstoned entry.
func (q *priorityQueue[K, V]) Pop() (K, V, bool) {
	for q.heap.Len() > 0 {
		e := heap.Pop(&q.heap).(*pqEntry[K, V])
		if e.removed {
			continue
		}
		delete(q.entries, e.key)
		return e.key, e.value, true
	}
	var zeroK K
	var zeroV V
	return zeroK, zeroV, false
}

// AStar is a generic best-first search skeleton, abstract over neighbour
// generation, edge cost, heuristic, and goal test. Key extracts a
// comparable identity for a node (a content hash here, preferred over
// object-identity hashing so structurally identical nodes genuinely
// dedup in the closed set).
type AStar[K comparable, N any] struct {
	Neighbours func(node N) []N
	GStep      func(current, neighbour N) float64
	H          func(node N) float64
	IsFinished func(node N) bool
	Key        func(node N) K
}

// FindPath runs the search from start and returns the path in
// start-to-goal order; the caller (the regressive planner) is responsible
// for any domain-specific reversal.
func (a *AStar[K, N]) FindPath(start N) ([]N, error) {
	startKey := a.Key(start)

	gScores := map[K]float64{startKey: 0}
	parents := map[K]N{}
	parentKeys := map[K]K{}
	closed := map[K]bool{}

	open := newPriorityQueue[K, N]()
	open.Add(startKey, start, a.H(start))

	for open.Len() > 0 {
		currentKey, current, ok := open.Pop()
		if !ok {
			break
		}
		if closed[currentKey] {
			continue
		}

		if a.IsFinished(current) {
			return a.reconstructPath(currentKey, current, parents, parentKeys), nil
		}

		closed[currentKey] = true

		for _, neighbour := range a.Neighbours(current) {
			neighbourKey := a.Key(neighbour)
			if closed[neighbourKey] {
				continue
			}

			tentativeG := gScores[currentKey] + a.GStep(current, neighbour)
			bestG, seen := gScores[neighbourKey]
			if seen && tentativeG >= bestG {
				continue
			}

			if open.Contains(neighbourKey) {
				open.Remove(neighbourKey)
			}

			gScores[neighbourKey] = tentativeG
			parents[neighbourKey] = current
			parentKeys[neighbourKey] = currentKey

			fScore := tentativeG + a.H(neighbour)
			open.Add(neighbourKey, neighbour, fScore)
		}
	}

	return nil, goaperr.PlanFailed
}

func (a *AStar[K, N]) reconstructPath(key K, node N, parents map[K]N, parentKeys map[K]K) []N {
	var path []N
	for {
		path = append([]N{node}, path...)
		parentKey, ok := parentKeys[key]
		if !ok {
			break
		}
		node = parents[key]
		key = parentKey
	}
	return path
}
