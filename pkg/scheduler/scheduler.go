package scheduler

import (
	"runtime/debug"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/warpdl/timeseq/pkg/logger"
	"github.com/warpdl/timeseq/pkg/prioq"
)

// Realtime is the production Scheduler. It is safe for concurrent use.
type Realtime struct {
	clock clock.Clock
	log   logger.Logger

	mu sync.Mutex

	// nextID wraps to zero after math.MaxUint64; ids only need to be unique
	// among the items pending at the same time.
	nextID    uint64
	queue     *prioq.Heap[*item]
	completed map[uint64]struct{}
	draining  bool
	closed    bool
}

var _ Scheduler = (*Realtime)(nil)

// New creates a Realtime scheduler driven by the wall clock unless WithClock
// says otherwise.
func New(opts ...Option) *Realtime {
	s := &Realtime{
		clock:     clock.New(),
		log:       logger.NewNopLogger(),
		queue:     newItemHeap(),
		completed: make(map[uint64]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the current time of the underlying clock.
func (s *Realtime) Now() time.Time {
	return s.clock.Now()
}

// Schedule registers handler to run after the given delay and starts its
// timer. Negative delays are treated as zero. After Close it returns a
// handle whose handler never runs.
func (s *Realtime) Schedule(after time.Duration, handler Handler) Cancellable {
	if after < 0 {
		after = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return closedHandle{}
	}
	it := &item{
		id:      s.nextID,
		fireAt:  s.clock.Now().Add(after),
		handler: handler,
		index:   -1,
	}
	s.nextID++
	s.queue.Push(it)
	// The callback runs on its own goroutine and blocks on s.mu until this
	// call returns, so it.timer is set before complete can observe it.
	it.timer = s.clock.AfterFunc(after, func() { s.complete(it) })
	return &handle{s: s, it: it}
}

// Pending returns the number of items that have not been delivered yet,
// including completed ones waiting for an earlier item.
func (s *Realtime) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// Undelivered returns the number of items whose timer has completed but
// whose handler has not been invoked yet.
func (s *Realtime) Undelivered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.completed)
}

// Close stops every timer that has not completed yet and returns how many
// handlers were dropped that way. Items whose timer already completed are
// still delivered. Schedule calls made after Close are ignored.
func (s *Realtime) Close() int {
	s.mu.Lock()
	s.closed = true
	dropped := 0
	for _, it := range s.queue.Items() {
		if _, done := s.completed[it.id]; done {
			continue
		}
		it.timer.Stop()
		s.queue.Remove(it.index)
		dropped++
	}
	unblocked := s.headCompleted()
	s.mu.Unlock()
	if dropped > 0 {
		s.log.Info("scheduler: closed, %d pending handlers dropped", dropped)
	}
	if unblocked {
		go s.drain()
	}
	return dropped
}

// complete is the timer callback of it.
func (s *Realtime) complete(it *item) {
	s.mu.Lock()
	if it.index < 0 {
		// cancelled after the timer had already fired
		s.mu.Unlock()
		return
	}
	s.completed[it.id] = struct{}{}
	s.mu.Unlock()
	s.drain()
}

// cancel removes it from the heap unless its timer has already completed.
func (s *Realtime) cancel(it *item) bool {
	s.mu.Lock()
	if it.index < 0 {
		s.mu.Unlock()
		return false
	}
	if _, done := s.completed[it.id]; done {
		s.mu.Unlock()
		return false
	}
	it.timer.Stop()
	s.queue.Remove(it.index)
	unblocked := s.headCompleted()
	s.mu.Unlock()
	// The removed item may have been holding back completed successors.
	// Deliver them on a fresh goroutine so Cancel never runs handlers on
	// the caller's stack.
	if unblocked {
		go s.drain()
	}
	return true
}

// headCompleted reports whether the heap minimum is ready for delivery.
// s.mu must be held.
func (s *Realtime) headCompleted() bool {
	head, ok := s.queue.Peek()
	if !ok {
		return false
	}
	_, done := s.completed[head.id]
	return done
}

// drain delivers completed items from the front of the heap until the front
// is missing or still waiting on its timer. Only one goroutine drains at a
// time; the others return immediately and leave their completion to it.
func (s *Realtime) drain() {
	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	for s.headCompleted() {
		it, _ := s.queue.Pop()
		delete(s.completed, it.id)
		s.mu.Unlock()
		s.invoke(it)
		s.mu.Lock()
	}
	s.draining = false
	s.mu.Unlock()
}

// invoke runs the handler of it without holding s.mu. A panicking handler
// releases the drain token before the panic propagates.
func (s *Realtime) invoke(it *item) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("scheduler: handler %d panicked: %v\n%s", it.id, r, debug.Stack())
			s.mu.Lock()
			s.draining = false
			s.mu.Unlock()
			panic(r)
		}
	}()
	it.handler()
}

type handle struct {
	s  *Realtime
	it *item
}

func (h *handle) Cancel() bool {
	return h.s.cancel(h.it)
}

// closedHandle is returned by Schedule after Close.
type closedHandle struct{}

func (closedHandle) Cancel() bool { return false }
