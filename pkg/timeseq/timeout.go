package timeseq

import (
	"context"
	"time"

	"github.com/warpdl/timeseq/pkg/scheduler"
)

// Timeout forwards elements from src and fails with a *TimeoutError once
// interval passes on sched without an element, counting from the call and
// then from every element. The output ends normally when src ends first.
func Timeout[T any](ctx context.Context, src Source[T], interval time.Duration, sched scheduler.Scheduler, opts ...Option) *Stream[T] {
	op := newOperator[T]("timeout", opts)

	// gen identifies the armed timeout; older ones are ignored when they fire.
	var gen uint64
	arm := func() {
		gen++
		mine := gen
		op.schedule(sched, interval, func() {
			if mine != gen {
				return
			}
			op.out.finish(&TimeoutError{Interval: interval})
		})
	}

	op.guard(arm)
	pump(ctx, op, src, func(v T) {
		op.out.emit(v)
		arm()
	}, func() {
		gen++
		op.out.finish(nil)
	})
	return op.out
}
