package seqtest

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// consume reads src until it fails and records what it saw.
type consume struct {
	mu   sync.Mutex
	got  []int
	err  error
	done chan struct{}
}

func startConsume(ctx context.Context, src *ControlledSource[int]) *consume {
	c := &consume{done: make(chan struct{})}
	go func() {
		defer close(c.done)
		for {
			v, err := src.Next(ctx)
			c.mu.Lock()
			if err != nil {
				c.err = err
				c.mu.Unlock()
				return
			}
			c.got = append(c.got, v)
			c.mu.Unlock()
		}
	}()
	return c
}

func (c *consume) values() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.got...)
}

func TestControlledSource_SendReleasesExactly(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	src := NewControlledSource(1, 2, 3, 4)
	c := startConsume(ctx, src)

	require.NoError(t, src.Send(ctx, 2))
	assert.Equal(t, []int{1, 2}, c.values())
	assert.Equal(t, 2, src.Remaining())

	require.NoError(t, src.Send(ctx, 1))
	assert.Equal(t, []int{1, 2, 3}, c.values())
}

func TestControlledSource_BlocksWhenExhaustedWithoutRelease(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	src := NewControlledSource(1)
	c := startConsume(ctx, src)
	require.NoError(t, src.Send(ctx, 1))

	select {
	case <-c.done:
		t.Fatal("consumer saw the end without a release")
	case <-time.After(20 * time.Millisecond):
	}

	require.NoError(t, src.Send(ctx, 1))
	<-c.done
	assert.ErrorIs(t, c.err, io.EOF)
	assert.Equal(t, []int{1}, c.values())
}

func TestControlledSource_Finish(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	src := NewControlledSource(1, 2, 3)
	c := startConsume(ctx, src)
	require.NoError(t, src.Send(ctx, 1))
	src.Finish()

	<-c.done
	assert.ErrorIs(t, c.err, io.EOF)
	assert.Equal(t, []int{1}, c.values())
	assert.Equal(t, 2, src.Remaining())
}

func TestControlledSource_NextHonoursContext(t *testing.T) {
	src := NewControlledSource(1)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := src.Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestControlledSource_SendHonoursContext(t *testing.T) {
	src := NewControlledSource(1)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	// nobody consumes
	assert.ErrorIs(t, src.Send(ctx, 1), context.DeadlineExceeded)
}

func TestTake(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	src := NewControlledSource(1, 2, 3)
	go func() { _ = src.Send(ctx, 3) }()

	got, err := Take[int](ctx, src, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, got)
}
