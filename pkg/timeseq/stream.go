package timeseq

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/eapache/queue"
)

// Stream is the output of an operator: an unbounded FIFO of elements that
// ends either normally or with an error. It is safe for concurrent use.
type Stream[T any] struct {
	mu  sync.Mutex
	buf *queue.Queue
	// changed is closed and replaced whenever an element arrives or the
	// stream terminates.
	changed chan struct{}
	done    chan struct{}
	ended   bool
	err     error
}

var _ Source[int] = (*Stream[int])(nil)

func newStream[T any]() *Stream[T] {
	return &Stream[T]{
		buf:     queue.New(),
		changed: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// emit appends v unless the stream has terminated.
func (s *Stream[T]) emit(v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return false
	}
	s.buf.Add(v)
	s.notify()
	return true
}

// finish terminates the stream. A nil err is a normal end. Only the first
// call has an effect.
func (s *Stream[T]) finish(err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return false
	}
	s.ended = true
	s.err = err
	close(s.done)
	s.notify()
	return true
}

func (s *Stream[T]) notify() {
	close(s.changed)
	s.changed = make(chan struct{})
}

// Next returns the next element. Elements buffered before termination are
// still returned; after that Next returns io.EOF for a normal end or the
// terminal error otherwise.
func (s *Stream[T]) Next(ctx context.Context) (T, error) {
	var zero T
	for {
		s.mu.Lock()
		if s.buf.Length() > 0 {
			v := s.buf.Remove().(T)
			s.mu.Unlock()
			return v, nil
		}
		if s.ended {
			err := s.err
			s.mu.Unlock()
			if err == nil {
				err = io.EOF
			}
			return zero, err
		}
		changed := s.changed
		s.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// Collect reads the stream to its end. On a normal end the error is nil;
// otherwise the elements read so far are returned with the error.
func (s *Stream[T]) Collect(ctx context.Context) ([]T, error) {
	var out []T
	for {
		v, err := s.Next(ctx)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
}

// Done is closed once the stream has terminated, which may be before all
// buffered elements were read.
func (s *Stream[T]) Done() <-chan struct{} {
	return s.done
}

// Err returns the terminal error, nil while the stream is open or after a
// normal end.
func (s *Stream[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close ends the stream and drops the buffered elements. The operator that
// feeds it stops reading its source.
func (s *Stream[T]) Close() {
	s.mu.Lock()
	for s.buf.Length() > 0 {
		s.buf.Remove()
	}
	s.mu.Unlock()
	s.finish(nil)
}
