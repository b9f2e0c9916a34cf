package timeseq

import (
	"context"
	"time"

	"github.com/warpdl/timeseq/pkg/scheduler"
)

// Debounce emits an element only after interval has passed on sched without
// a newer element arriving. When src ends while an element is waiting, that
// element is still emitted before the output ends.
func Debounce[T any](ctx context.Context, src Source[T], interval time.Duration, sched scheduler.Scheduler, opts ...Option) *Stream[T] {
	op := newOperator[T]("debounce", opts)

	var (
		gen       uint64
		waiting   bool
		finishing bool
	)
	pump(ctx, op, src, func(v T) {
		gen++
		mine := gen
		waiting = true
		op.schedule(sched, interval, func() {
			if mine != gen {
				return
			}
			waiting = false
			op.out.emit(v)
			if finishing {
				op.out.finish(nil)
			}
		})
	}, func() {
		finishing = true
		if !waiting {
			op.out.finish(nil)
		}
	})
	return op.out
}
