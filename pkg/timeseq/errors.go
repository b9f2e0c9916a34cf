package timeseq

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrTimeout terminates the output of Timeout.
	ErrTimeout = errors.New("timeseq: timeout")
	// ErrOperatorPanic terminates an output whose operator panicked.
	ErrOperatorPanic = errors.New("timeseq: operator panicked")
)

// TimeoutError is the terminal error of Timeout. It matches ErrTimeout.
type TimeoutError struct {
	Interval time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeseq: no element within %s", e.Interval)
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// PanicError is the terminal error of an operator that panicked. It matches
// ErrOperatorPanic.
type PanicError struct {
	Operator string
	Value    any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("timeseq: %s panicked: %v", e.Operator, e.Value)
}

func (e *PanicError) Is(target error) bool {
	return target == ErrOperatorPanic
}
