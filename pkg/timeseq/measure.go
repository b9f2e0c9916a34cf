package timeseq

import (
	"context"
	"time"

	"github.com/warpdl/timeseq/pkg/scheduler"
)

// MeasureInterval emits, for every element after the first, the time that
// passed on sched since the previous element. The elements themselves are
// dropped.
//
// Every element also schedules a no-op with zero delay, so a test scheduler
// can observe that an element has been processed.
func MeasureInterval[T any](ctx context.Context, src Source[T], sched scheduler.Scheduler, opts ...Option) *Stream[time.Duration] {
	op := newOperator[time.Duration]("measure-interval", opts)

	var (
		last    time.Time
		started bool
	)
	pump(ctx, op, src, func(T) {
		now := sched.Now()
		if started {
			op.out.emit(now.Sub(last))
		}
		last = now
		started = true
		sched.Schedule(0, func() {})
	}, func() {
		op.out.finish(nil)
	})
	return op.out
}
