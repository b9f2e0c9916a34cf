package scheduler

import "github.com/warpdl/timeseq/pkg/prioq"

// itemLess orders items by fire time, then by id.
func itemLess(a, b *item) bool {
	if a.fireAt.Equal(b.fireAt) {
		return a.id < b.id
	}
	return a.fireAt.Before(b.fireAt)
}

// newItemHeap returns a min-heap of items that keeps item.index current.
func newItemHeap() *prioq.Heap[*item] {
	return prioq.New(itemLess, prioq.WithIndex(func(it *item, i int) {
		it.index = i
	}))
}
