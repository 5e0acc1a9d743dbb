// Package queue implements the binary min-heap priority queue shared by
// every search in the engine (classic A*, RRA*, WHCA*). The heap is not a
// decrease-key heap: callers that find a cheaper path to an already-open
// node push a fresh entry and mark the stale one, rather than fixing its
// position in place.
package queue

import "github.com/fenwick-grid/whca/internal/engineerr"

// Queue is a binary min-heap over T, ordered by an externally supplied
// total order. Add and Pop are O(log n); Peek is O(1).
type Queue[T any] struct {
	items []T
	less  func(a, b T) bool
}

// New creates an empty queue ordered by less.
func New[T any](less func(a, b T) bool) *Queue[T] {
	return &Queue[T]{less: less}
}

// Empty reports whether the queue holds no entries.
func (q *Queue[T]) Empty() bool { return len(q.items) == 0 }

// Count returns the number of entries currently queued.
func (q *Queue[T]) Count() int { return len(q.items) }

// Peek returns the minimal entry without removing it. Fails with
// engineerr.ErrQueueEmpty on an empty queue.
func (q *Queue[T]) Peek() (T, error) {
	if q.Empty() {
		var zero T
		return zero, engineerr.ErrQueueEmpty
	}
	return q.items[0], nil
}

// Add inserts x, restoring the heap invariant by sifting it up from the
// newly appended leaf slot toward the root.
func (q *Queue[T]) Add(x T) {
	q.items = append(q.items, x)
	q.siftUp(len(q.items) - 1)
}

// Pop removes and returns the minimal entry. Fails with
// engineerr.ErrQueueEmpty on an empty queue. The vacated root is filled by
// moving the last leaf into place and sifting it back down, so the
// comparisons needed are bounded by the tree height rather than a full
// re-heapify.
func (q *Queue[T]) Pop() (T, error) {
	if q.Empty() {
		var zero T
		return zero, engineerr.ErrQueueEmpty
	}
	min := q.items[0]
	n := len(q.items) - 1
	q.items[0] = q.items[n]
	var zero T
	q.items[n] = zero
	q.items = q.items[:n]
	if n > 0 {
		q.siftDown(0)
	}
	return min, nil
}

func (q *Queue[T]) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !q.less(q.items[i], q.items[parent]) {
			break
		}
		q.items[i], q.items[parent] = q.items[parent], q.items[i]
		i = parent
	}
}

func (q *Queue[T]) siftDown(i int) {
	n := len(q.items)
	for {
		left, right := 2*i+1, 2*i+2
		smallest := i
		if left < n && q.less(q.items[left], q.items[smallest]) {
			smallest = left
		}
		if right < n && q.less(q.items[right], q.items[smallest]) {
			smallest = right
		}
		if smallest == i {
			return
		}
		q.items[i], q.items[smallest] = q.items[smallest], q.items[i]
		i = smallest
	}
}
