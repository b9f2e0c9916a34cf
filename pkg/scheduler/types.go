package scheduler

import (
	"errors"
	"time"

	"github.com/benbjohnson/clock"
)

// Handler is a unit of deferred work.
type Handler func()

// Cancellable is returned by Schedule.
type Cancellable interface {
	// Cancel prevents the handler from running. It reports true if the
	// handler will never run, false if it already ran, is running, or had
	// already become due.
	Cancel() bool
}

// Scheduler runs handlers after a delay, in fire time order.
type Scheduler interface {
	// Now returns the scheduler's current time.
	Now() time.Time

	// Schedule arranges for handler to run once after has elapsed. It never
	// fails and never waits for the handler. Negative delays are treated
	// as zero.
	Schedule(after time.Duration, handler Handler) Cancellable
}

var (
	// ErrInvalidCron is returned by Cron for expressions gronx rejects.
	ErrInvalidCron = errors.New("invalid cron expression")
	// ErrInvalidPeriod is returned by Every for non-positive periods.
	ErrInvalidPeriod = errors.New("period must be positive")
)

// item is a scheduled handler owned by a single Realtime instance.
type item struct {
	// id is unique among the items pending at any moment; it breaks ties
	// between equal fire times.
	id uint64

	fireAt  time.Time
	handler Handler
	timer   *clock.Timer

	// index is the item's position in the heap, -1 once it left the heap.
	index int
}
