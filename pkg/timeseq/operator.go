package timeseq

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/warpdl/timeseq/internal/safego"
	"github.com/warpdl/timeseq/pkg/logger"
	"github.com/warpdl/timeseq/pkg/scheduler"
)

// Option configures an operator.
type Option func(*options)

type options struct {
	log logger.Logger
}

// WithLogger sets the logger that receives operator panics.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// operator holds what every operator instance shares: its output and the
// mutex that serialises its state between the reading goroutine and
// scheduler handlers.
type operator[R any] struct {
	name string
	log  logger.Logger
	out  *Stream[R]
	mu   sync.Mutex
}

func newOperator[R any](name string, opts []Option) *operator[R] {
	o := options{log: logger.NewNopLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	return &operator[R]{
		name: name,
		log:  o.log,
		out:  newStream[R](),
	}
}

// guard runs fn with the operator state locked. A panic in fn terminates the
// output with a PanicError.
func (op *operator[R]) guard(fn func()) {
	safego.Run(op.log, nil, op.name, op.fail, func() {
		op.mu.Lock()
		defer op.mu.Unlock()
		fn()
	})
}

// schedule runs fn under guard once the scheduler fires.
func (op *operator[R]) schedule(sched scheduler.Scheduler, after time.Duration, fn func()) {
	sched.Schedule(after, func() { op.guard(fn) })
}

func (op *operator[R]) fail(r any) {
	op.out.finish(&PanicError{Operator: op.name, Value: r})
}

// pump reads src on a new goroutine and hands each element to onNext, and
// calls onEnd once src is exhausted. Both run under guard. An error from src
// other than io.EOF terminates the output with that error. Reading stops as
// soon as the output has terminated.
func pump[T, R any](ctx context.Context, op *operator[R], src Source[T], onNext func(T), onEnd func()) {
	pctx, cancel := context.WithCancel(ctx)
	go func() {
		select {
		case <-op.out.Done():
			cancel()
		case <-pctx.Done():
		}
	}()
	safego.Go(op.log, nil, op.name, op.fail, func() {
		defer cancel()
		for {
			v, err := src.Next(pctx)
			if errors.Is(err, io.EOF) {
				op.guard(onEnd)
				return
			}
			if err != nil {
				op.out.finish(err)
				return
			}
			op.guard(func() { onNext(v) })
			select {
			case <-op.out.Done():
				return
			default:
			}
		}
	})
}
