package prioq

import (
	"cmp"
	"container/heap"
)

// Option configures a Heap.
type Option[T any] func(*Heap[T])

// WithIndex registers a callback that is invoked every time an element
// changes position inside the heap. Removed elements are reported with
// index -1. Callers use it to remember where an element lives so that it
// can later be removed in O(log n) with Remove.
func WithIndex[T any](fn func(item T, index int)) Option[T] {
	return func(h *Heap[T]) {
		h.store.moved = fn
	}
}

// Heap is a binary heap ordered by a caller supplied less function.
// The zero value is not usable, use New, NewMin or NewMax.
//
// Heap is not safe for concurrent use.
type Heap[T any] struct {
	store store[T]
}

// New returns an empty heap ordered by less. The element for which less
// reports true against every other element is returned first.
func New[T any](less func(a, b T) bool, opts ...Option[T]) *Heap[T] {
	h := &Heap[T]{store: store[T]{less: less}}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewMin returns a heap that yields the smallest element first.
func NewMin[T cmp.Ordered](opts ...Option[T]) *Heap[T] {
	return New(cmp.Less[T], opts...)
}

// NewMax returns a heap that yields the largest element first.
func NewMax[T cmp.Ordered](opts ...Option[T]) *Heap[T] {
	return New(func(a, b T) bool { return cmp.Less(b, a) }, opts...)
}

// Len returns the number of elements in the heap.
func (h *Heap[T]) Len() int {
	return len(h.store.items)
}

// Push inserts item, restoring the heap invariant.
func (h *Heap[T]) Push(item T) {
	heap.Push(&h.store, item)
}

// Peek returns the first element without removing it.
func (h *Heap[T]) Peek() (T, bool) {
	if len(h.store.items) == 0 {
		var zero T
		return zero, false
	}
	return h.store.items[0], true
}

// Pop removes and returns the first element.
func (h *Heap[T]) Pop() (T, bool) {
	if len(h.store.items) == 0 {
		var zero T
		return zero, false
	}
	return heap.Pop(&h.store).(T), true
}

// Remove removes and returns the element at index. It reports false when
// index is out of range.
func (h *Heap[T]) Remove(index int) (T, bool) {
	if index < 0 || index >= len(h.store.items) {
		var zero T
		return zero, false
	}
	return heap.Remove(&h.store, index).(T), true
}

// Fix re-establishes the ordering after the element at index changed its
// key. Out of range indexes are ignored.
func (h *Heap[T]) Fix(index int) {
	if index < 0 || index >= len(h.store.items) {
		return
	}
	heap.Fix(&h.store, index)
}

// Items returns a copy of the backing array in heap order (not sorted).
func (h *Heap[T]) Items() []T {
	out := make([]T, len(h.store.items))
	copy(out, h.store.items)
	return out
}

// store implements container/heap.Interface.
type store[T any] struct {
	items []T
	less  func(a, b T) bool
	moved func(item T, index int)
}

func (s store[T]) Len() int           { return len(s.items) }
func (s store[T]) Less(i, j int) bool { return s.less(s.items[i], s.items[j]) }

func (s store[T]) Swap(i, j int) {
	s.items[i], s.items[j] = s.items[j], s.items[i]
	if s.moved != nil {
		s.moved(s.items[i], i)
		s.moved(s.items[j], j)
	}
}

func (s *store[T]) Push(x any) {
	item := x.(T)
	s.items = append(s.items, item)
	if s.moved != nil {
		s.moved(item, len(s.items)-1)
	}
}

func (s *store[T]) Pop() any {
	old := s.items
	n := len(old)
	item := old[n-1]
	var zero T
	old[n-1] = zero // drop the reference held by the backing array
	s.items = old[:n-1]
	if s.moved != nil {
		s.moved(item, -1)
	}
	return item
}
