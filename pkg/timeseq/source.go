package timeseq

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/warpdl/timeseq/pkg/scheduler"
)

// Source is a pull-based sequence. Next blocks until an element is
// available, returns io.EOF once the sequence is exhausted, and returns
// ctx.Err() when ctx is done first.
type Source[T any] interface {
	Next(ctx context.Context) (T, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc[T any] func(ctx context.Context) (T, error)

func (f SourceFunc[T]) Next(ctx context.Context) (T, error) {
	return f(ctx)
}

type sliceSource[T any] struct {
	mu     sync.Mutex
	values []T
}

// FromSlice returns a Source that yields values in order and then io.EOF.
func FromSlice[T any](values []T) Source[T] {
	return &sliceSource[T]{values: append([]T(nil), values...)}
}

func (s *sliceSource[T]) Next(ctx context.Context) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 {
		return zero, io.EOF
	}
	v := s.values[0]
	s.values = s.values[1:]
	return v, nil
}

// Ticks returns a stream of tick times, one every period on sched, starting
// one period from now. It ends with ctx.Err() when ctx is done; closing the
// stream stops the ticks.
func Ticks(ctx context.Context, sched scheduler.Scheduler, period time.Duration) (*Stream[time.Time], error) {
	out := newStream[time.Time]()
	h, err := scheduler.Every(ctx, sched, period, func(tick time.Time) {
		out.emit(tick)
	})
	if err != nil {
		return nil, err
	}
	go stopTicks(ctx, out, h)
	return out, nil
}

// CronTicks is Ticks for the occurrences of a cron expression.
func CronTicks(ctx context.Context, sched scheduler.Scheduler, expr string) (*Stream[time.Time], error) {
	out := newStream[time.Time]()
	h, err := scheduler.Cron(ctx, sched, expr, func(tick time.Time) {
		out.emit(tick)
	})
	if err != nil {
		return nil, err
	}
	go stopTicks(ctx, out, h)
	return out, nil
}

func stopTicks(ctx context.Context, out *Stream[time.Time], h scheduler.Cancellable) {
	select {
	case <-ctx.Done():
		out.finish(ctx.Err())
	case <-out.Done():
	}
	h.Cancel()
}
