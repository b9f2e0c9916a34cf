// Package timeseq implements time-based operators over pull-based sequences.
//
// An operator reads a Source on its own goroutine and writes to a Stream.
// All timing goes through a scheduler.Scheduler: production code passes a
// scheduler.Realtime, tests pass a schedulertest.Scheduler and move time by
// hand. A Stream is itself a Source, so operators can be chained:
//
//	ticks, _ := timeseq.Ticks(ctx, sched, 100*time.Millisecond)
//	out := timeseq.Debounce(ctx, ticks, time.Second, sched)
//	for {
//		v, err := out.Next(ctx)
//		if err != nil {
//			break // io.EOF, timeseq.ErrTimeout or ctx.Err()
//		}
//		use(v)
//	}
//
// Streams buffer without bound so that scheduler handlers never block on a
// slow reader.
package timeseq
