// Package seqtest holds sources and helpers for testing sequence operators
// against a virtual-time scheduler.
package seqtest

import (
	"context"
	"io"
	"sync"

	"github.com/eapache/queue"
)

// ControlledSource yields a fixed list of items, but only as many as the
// test has released with Send. While nothing is released Next blocks, even
// when the items are exhausted, so an operator reading it never sees the end
// of its input unless the test asks for it.
type ControlledSource[T any] struct {
	mu    sync.Mutex
	items *queue.Queue

	// allowed counts released items that have not been taken yet.
	allowed  int
	parked   bool
	ended    bool
	finished bool
	changed  chan struct{}
}

// NewControlledSource returns a source holding items.
func NewControlledSource[T any](items ...T) *ControlledSource[T] {
	q := queue.New()
	for _, it := range items {
		q.Add(it)
	}
	return &ControlledSource[T]{items: q, changed: make(chan struct{})}
}

func (c *ControlledSource[T]) notify() {
	close(c.changed)
	c.changed = make(chan struct{})
}

// Next implements timeseq.Source.
func (c *ControlledSource[T]) Next(ctx context.Context) (T, error) {
	var zero T
	c.mu.Lock()
	for {
		if c.finished || (c.allowed > 0 && c.items.Length() == 0) {
			c.ended = true
			c.parked = false
			c.notify()
			c.mu.Unlock()
			return zero, io.EOF
		}
		if c.allowed > 0 {
			v := c.items.Remove().(T)
			c.allowed--
			c.parked = false
			c.notify()
			c.mu.Unlock()
			return v, nil
		}

		c.parked = true
		c.notify()
		changed := c.changed
		c.mu.Unlock()
		select {
		case <-changed:
		case <-ctx.Done():
			c.mu.Lock()
			c.parked = false
			c.notify()
			c.mu.Unlock()
			return zero, ctx.Err()
		}
		c.mu.Lock()
	}
}

// Send releases n items and blocks until the consumer has taken all of
// them and is waiting in Next again, which means it has finished processing
// the last one. It also returns once the consumer has been told the source
// ended.
func (c *ControlledSource[T]) Send(ctx context.Context, n int) error {
	c.mu.Lock()
	c.allowed += n
	c.parked = false
	c.notify()
	for !c.ended && !(c.allowed == 0 && c.parked) {
		changed := c.changed
		c.mu.Unlock()
		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
		c.mu.Lock()
	}
	c.mu.Unlock()
	return nil
}

// Finish makes the next Next call return io.EOF regardless of the items
// left.
func (c *ControlledSource[T]) Finish() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.finished = true
	c.notify()
}

// Remaining returns the number of items not taken yet.
func (c *ControlledSource[T]) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items.Length()
}

// Take reads n elements from src.
func Take[T any](ctx context.Context, src interface {
	Next(context.Context) (T, error)
}, n int) ([]T, error) {
	out := make([]T, 0, n)
	for len(out) < n {
		v, err := src.Next(ctx)
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}
