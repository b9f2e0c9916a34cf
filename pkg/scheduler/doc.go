// Package scheduler defines the deferred-work contract that every time-based
// operator in timeseq is built on, and provides the real-time implementation
// of it.
//
// A Scheduler accepts a handler together with a delay and runs the handler
// once the delay has elapsed. Handlers are delivered in non-decreasing fire
// time order; handlers with equal fire times run in submission order.
//
// Realtime starts one timer per scheduled item. Timers complete on their own
// goroutines and may do so out of order, so completions are only recorded in
// a completion set; the item at the front of a (fire time, id) min-heap is
// delivered once its own timer has completed, followed by every successor
// that has already completed. A timer that finishes early therefore waits for
// the chronologically earlier item to finish before its handler runs.
//
// The deterministic counterpart used in tests lives in the schedulertest
// subpackage.
package scheduler
