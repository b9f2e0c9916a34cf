package scheduler

import (
	"github.com/benbjohnson/clock"
	"github.com/warpdl/timeseq/pkg/logger"
)

// Option configures a Realtime scheduler.
type Option func(*Realtime)

// WithClock replaces the wall clock. Tests pass clock.NewMock() to control
// when timers complete.
func WithClock(c clock.Clock) Option {
	return func(s *Realtime) {
		s.clock = c
	}
}

// WithLogger sets the logger used for lifecycle messages and handler panics.
func WithLogger(l logger.Logger) Option {
	return func(s *Realtime) {
		s.log = l
	}
}
