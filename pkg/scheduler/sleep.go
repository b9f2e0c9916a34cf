package scheduler

import (
	"context"
	"time"
)

// Sleep blocks until d has elapsed on s or ctx is done, whichever happens
// first. On ctx cancellation the pending handler is cancelled and ctx.Err()
// is returned.
func Sleep(ctx context.Context, s Scheduler, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fired := make(chan struct{})
	h := s.Schedule(d, func() { close(fired) })
	select {
	case <-fired:
		return nil
	case <-ctx.Done():
		h.Cancel()
		return ctx.Err()
	}
}
