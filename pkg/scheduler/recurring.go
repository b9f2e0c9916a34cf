package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/adhocore/gronx"
)

// Every calls fn at start+period, start+2*period, ... where start is s.Now()
// at the time of the call. Each tick is computed from the previous tick, not
// from the time fn returned, so a slow fn does not make the series drift.
// The series stops when ctx is done or the returned handle is cancelled.
func Every(ctx context.Context, s Scheduler, period time.Duration, fn func(tick time.Time)) (Cancellable, error) {
	if period <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPeriod, period)
	}
	next := func(prev time.Time) (time.Time, bool) {
		return prev.Add(period), true
	}
	return startRecurring(ctx, s, next, fn), nil
}

// Cron calls fn at every occurrence of the cron expression expr after
// s.Now(). Occurrences are computed with gronx relative to the previous one.
func Cron(ctx context.Context, s Scheduler, expr string, fn func(tick time.Time)) (Cancellable, error) {
	if !gronx.IsValid(expr) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCron, expr)
	}
	next := func(prev time.Time) (time.Time, bool) {
		t, err := nextCronOccurrence(expr, prev)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	return startRecurring(ctx, s, next, fn), nil
}

// nextCronOccurrence returns the next time the cron expression fires strictly
// after start.
func nextCronOccurrence(expr string, start time.Time) (time.Time, error) {
	return gronx.NextTickAfter(expr, start, false)
}

// recurring keeps exactly one handler of a series scheduled at a time.
type recurring struct {
	s    Scheduler
	next func(prev time.Time) (time.Time, bool)
	fn   func(tick time.Time)

	mu      sync.Mutex
	current Cancellable
	stopped bool
	stopCtx func() bool
}

func startRecurring(ctx context.Context, s Scheduler, next func(time.Time) (time.Time, bool), fn func(time.Time)) *recurring {
	r := &recurring{s: s, next: next, fn: fn}
	r.mu.Lock()
	r.stopCtx = context.AfterFunc(ctx, func() { r.Cancel() })
	r.mu.Unlock()
	r.arm(s.Now())
	return r
}

// arm schedules the tick following prev.
func (r *recurring) arm(prev time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	at, ok := r.next(prev)
	if !ok {
		r.stopped = true
		return
	}
	r.current = r.s.Schedule(at.Sub(r.s.Now()), func() { r.fire(at) })
}

func (r *recurring) fire(tick time.Time) {
	r.mu.Lock()
	stopped := r.stopped
	r.mu.Unlock()
	if stopped {
		return
	}
	r.fn(tick)
	r.arm(tick)
}

// Cancel stops the series. It reports false if the series had already
// stopped.
func (r *recurring) Cancel() bool {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return false
	}
	r.stopped = true
	current := r.current
	stopCtx := r.stopCtx
	r.mu.Unlock()
	if stopCtx != nil {
		stopCtx()
	}
	if current != nil {
		current.Cancel()
	}
	return true
}
