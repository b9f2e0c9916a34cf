package timeseq

import (
	"context"
	"time"

	"github.com/warpdl/timeseq/pkg/scheduler"
)

// Throttle emits at most one element per window. The first element that
// arrives while no window is open opens one of length interval; when it
// closes, Throttle emits the most recent element of the window if latest is
// true, the element that opened it otherwise.
func Throttle[T any](ctx context.Context, src Source[T], interval time.Duration, sched scheduler.Scheduler, latest bool, opts ...Option) *Stream[T] {
	op := newOperator[T]("throttle", opts)

	var (
		last      T
		open      bool
		finishing bool
	)
	pump(ctx, op, src, func(v T) {
		last = v
		if open {
			return
		}
		open = true
		first := v
		op.schedule(sched, interval, func() {
			if latest {
				op.out.emit(last)
			} else {
				op.out.emit(first)
			}
			open = false
			if finishing {
				op.out.finish(nil)
			}
		})
	}, func() {
		finishing = true
		if !open {
			op.out.finish(nil)
		}
	})
	return op.out
}
