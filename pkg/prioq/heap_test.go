package prioq

import (
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type event struct {
	id    uint64
	at    time.Time
	index int
}

func eventLess(a, b *event) bool {
	if a.at.Equal(b.at) {
		return a.id < b.id
	}
	return a.at.Before(b.at)
}

func newEventHeap() *Heap[*event] {
	return New(eventLess, WithIndex(func(e *event, i int) { e.index = i }))
}

func checkInvariant[T any](t *testing.T, h *Heap[T]) {
	t.Helper()
	items := h.store.items
	for i := range items {
		for _, c := range []int{2*i + 1, 2*i + 2} {
			if c < len(items) {
				require.False(t, h.store.less(items[c], items[i]), "child %d ordered before parent %d", c, i)
			}
		}
	}
}

func TestHeapPushPopOrdering(t *testing.T) {
	h := NewMin[int]()
	for _, v := range []int{7, 3, 9, 1, 5} {
		h.Push(v)
	}
	checkInvariant(t, h)

	var got []int
	for h.Len() > 0 {
		v, ok := h.Pop()
		require.True(t, ok)
		got = append(got, v)
	}
	assert.Equal(t, []int{1, 3, 5, 7, 9}, got)
}

func TestHeapMaxOrdering(t *testing.T) {
	h := NewMax[int]()
	for _, v := range []int{7, 3, 9, 1, 5} {
		h.Push(v)
	}
	top, ok := h.Peek()
	require.True(t, ok)
	assert.Equal(t, 9, top)

	var got []int
	for h.Len() > 0 {
		v, _ := h.Pop()
		got = append(got, v)
	}
	assert.Equal(t, []int{9, 7, 5, 3, 1}, got)
}

func TestHeapEmpty(t *testing.T) {
	h := NewMin[int]()
	assert.Equal(t, 0, h.Len())

	_, ok := h.Peek()
	assert.False(t, ok)
	_, ok = h.Pop()
	assert.False(t, ok)
	_, ok = h.Remove(0)
	assert.False(t, ok)
}

func TestHeapDuplicateTimesBreakTiesByID(t *testing.T) {
	h := newEventHeap()
	same := time.Unix(100, 0)
	for id := uint64(0); id < 10; id++ {
		h.Push(&event{id: id, at: same})
	}

	for want := uint64(0); want < 10; want++ {
		e, ok := h.Pop()
		require.True(t, ok)
		assert.Equal(t, want, e.id)
	}
}

func TestHeapRemoveByTrackedIndex(t *testing.T) {
	h := newEventHeap()
	base := time.Unix(0, 0)
	events := make([]*event, 0, 6)
	for i := 0; i < 6; i++ {
		e := &event{id: uint64(i), at: base.Add(time.Duration(6-i) * time.Second)}
		events = append(events, e)
		h.Push(e)
	}
	for i, e := range h.Items() {
		require.Equal(t, i, e.index)
	}

	removed, ok := h.Remove(events[2].index)
	require.True(t, ok)
	assert.Same(t, events[2], removed)
	assert.Equal(t, -1, events[2].index)
	checkInvariant(t, h)

	var ids []uint64
	for h.Len() > 0 {
		e, _ := h.Pop()
		assert.Equal(t, -1, e.index)
		ids = append(ids, e.id)
	}
	assert.Equal(t, []uint64{5, 4, 3, 1, 0}, ids)
}

func TestHeapRemoveLast(t *testing.T) {
	h := NewMin[int]()
	h.Push(1)
	h.Push(2)

	v, ok := h.Remove(h.Len() - 1)
	require.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, h.Len())
}

func TestHeapFixAfterKeyChange(t *testing.T) {
	h := newEventHeap()
	base := time.Unix(0, 0)
	a := &event{id: 1, at: base.Add(time.Second)}
	b := &event{id: 2, at: base.Add(2 * time.Second)}
	h.Push(a)
	h.Push(b)

	b.at = base
	h.Fix(b.index)

	first, _ := h.Peek()
	assert.Same(t, b, first)
}

func TestHeapRandomizedInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	h := NewMin[int]()
	var mirror []int

	for i := 0; i < 2000; i++ {
		switch {
		case h.Len() > 0 && rng.Intn(4) == 0:
			idx := rng.Intn(h.Len())
			v, ok := h.Remove(idx)
			require.True(t, ok)
			for j, m := range mirror {
				if m == v {
					mirror = append(mirror[:j], mirror[j+1:]...)
					break
				}
			}
		case h.Len() > 0 && rng.Intn(3) == 0:
			v, _ := h.Pop()
			sort.Ints(mirror)
			require.Equal(t, mirror[0], v)
			mirror = mirror[1:]
		default:
			v := rng.Intn(500)
			h.Push(v)
			mirror = append(mirror, v)
		}
		checkInvariant(t, h)
	}
	require.Equal(t, len(mirror), h.Len())
}
