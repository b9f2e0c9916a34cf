package timeseq

import (
	"context"
	"time"

	"github.com/eapache/queue"
	"github.com/warpdl/timeseq/pkg/scheduler"
)

// Delay re-emits every element interval after it arrived, in arrival order.
// The output ends once src has ended and every element has been emitted.
func Delay[T any](ctx context.Context, src Source[T], interval time.Duration, sched scheduler.Scheduler, opts ...Option) *Stream[T] {
	op := newOperator[T]("delay", opts)

	inFlight := queue.New() // ids of elements not yet emitted, oldest first
	ready := make(map[uint64]T)
	var (
		nextID    uint64
		finishing bool
	)
	pump(ctx, op, src, func(v T) {
		id := nextID
		nextID++
		inFlight.Add(id)
		op.schedule(sched, interval, func() {
			ready[id] = v
			for inFlight.Length() > 0 {
				front := inFlight.Peek().(uint64)
				val, ok := ready[front]
				if !ok {
					break
				}
				inFlight.Remove()
				delete(ready, front)
				op.out.emit(val)
			}
			if finishing && inFlight.Length() == 0 {
				op.out.finish(nil)
			}
		})
	}, func() {
		finishing = true
		if inFlight.Length() == 0 {
			op.out.finish(nil)
		}
	})
	return op.out
}
