package schedulertest

import (
	"context"
	"sync"
	"time"

	"github.com/warpdl/timeseq/pkg/logger"
	"github.com/warpdl/timeseq/pkg/prioq"
	"github.com/warpdl/timeseq/pkg/scheduler"
)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithStart sets the initial virtual time. The default is the Unix epoch.
func WithStart(t time.Time) Option {
	return func(s *Scheduler) {
		s.now = t
	}
}

// WithLogger sets the logger that traces Advance calls at debug level.
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) {
		s.log = l
	}
}

type job struct {
	seq     uint64
	fireAt  time.Time
	handler scheduler.Handler
	index   int
}

func jobLess(a, b *job) bool {
	if a.fireAt.Equal(b.fireAt) {
		return a.seq < b.seq
	}
	return a.fireAt.Before(b.fireAt)
}

type waiter struct {
	count int
	ready chan struct{}
}

// Scheduler is a deterministic scheduler.Scheduler driven by Advance.
type Scheduler struct {
	log logger.Logger

	// advancing serialises Advance calls.
	advancing sync.Mutex

	mu      sync.Mutex
	now     time.Time
	seq     uint64
	queue   *prioq.Heap[*job]
	waiters []*waiter
}

var _ scheduler.Scheduler = (*Scheduler)(nil)

// New returns a Scheduler whose clock stands at the Unix epoch unless
// WithStart is given.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		log: logger.NewNopLogger(),
		now: time.Unix(0, 0),
		queue: prioq.New(jobLess, prioq.WithIndex(func(j *job, i int) {
			j.index = i
		})),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the virtual time.
func (s *Scheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Schedule queues handler to run once virtual time reaches Now()+after.
// Nothing runs until Advance is called.
func (s *Scheduler) Schedule(after time.Duration, handler scheduler.Handler) scheduler.Cancellable {
	if after < 0 {
		after = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	j := &job{
		seq:     s.seq,
		fireAt:  s.now.Add(after),
		handler: handler,
		index:   -1,
	}
	s.seq++
	s.queue.Push(j)
	s.releaseWaiters()
	return &handle{s: s, j: j}
}

// Pending returns the number of queued handlers.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// Advance moves virtual time forward by d and runs every handler that has
// become due, earliest first. Handlers run on the calling goroutine without
// any lock held, so they may schedule more work; work that falls inside the
// window runs during the same call. A handler exactly at the new time runs,
// one a nanosecond later does not.
func (s *Scheduler) Advance(d time.Duration) {
	s.advancing.Lock()
	defer s.advancing.Unlock()

	s.mu.Lock()
	if d > 0 {
		s.now = s.now.Add(d)
	}
	now := s.now
	s.mu.Unlock()
	s.log.Debug("schedulertest: advance %s to %s", d, now.Format(time.RFC3339Nano))

	ran := 0
	for {
		j := s.popDue()
		if j == nil {
			break
		}
		j.handler()
		ran++
	}
	s.log.Debug("schedulertest: advance ran %d handlers", ran)
}

func (s *Scheduler) popDue() *job {
	s.mu.Lock()
	defer s.mu.Unlock()
	head, ok := s.queue.Peek()
	if !ok || head.fireAt.After(s.now) {
		return nil
	}
	s.queue.Pop()
	return head
}

// WaitForScheduledJobs blocks until at least count handlers are queued or
// ctx is done. Handlers that Advance already ran do not count. Any number
// of goroutines may wait at the same time.
func (s *Scheduler) WaitForScheduledJobs(ctx context.Context, count int) error {
	s.mu.Lock()
	if s.queue.Len() >= count {
		s.mu.Unlock()
		return nil
	}
	w := &waiter{count: count, ready: make(chan struct{})}
	s.waiters = append(s.waiters, w)
	s.mu.Unlock()

	select {
	case <-w.ready:
		return nil
	case <-ctx.Done():
	}

	s.mu.Lock()
	for i, o := range s.waiters {
		if o == w {
			s.waiters = append(s.waiters[:i], s.waiters[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	select {
	case <-w.ready:
		return nil
	default:
		return ctx.Err()
	}
}

// releaseWaiters wakes the waiters whose count is reached. s.mu must be
// held.
func (s *Scheduler) releaseWaiters() {
	n := s.queue.Len()
	kept := s.waiters[:0]
	for _, w := range s.waiters {
		if n >= w.count {
			close(w.ready)
			continue
		}
		kept = append(kept, w)
	}
	clear(s.waiters[len(kept):])
	s.waiters = kept
}

type handle struct {
	s *Scheduler
	j *job
}

// Cancel removes the handler from the queue if Advance has not picked it
// up yet.
func (h *handle) Cancel() bool {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	if h.j.index < 0 {
		return false
	}
	h.s.queue.Remove(h.j.index)
	return true
}
