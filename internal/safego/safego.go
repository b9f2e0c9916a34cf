// Package safego launches goroutines that log and report panics instead of
// taking the process down with them.
package safego

import (
	"runtime/debug"
	"sync"

	"github.com/warpdl/timeseq/pkg/logger"
)

// Go runs fn in a new goroutine with panic recovery.
// If wg is non-nil, it's decremented on completion (normal or panic).
// If l is non-nil, panics are logged with stack traces under name.
// If onPanic is non-nil, it's called with the recovered value.
func Go(l logger.Logger, wg *sync.WaitGroup, name string, onPanic func(r any), fn func()) {
	go Run(l, wg, name, onPanic, fn)
}

// Run is Go without the goroutine: fn runs on the caller's goroutine.
func Run(l logger.Logger, wg *sync.WaitGroup, name string, onPanic func(r any), fn func()) {
	if wg != nil {
		defer wg.Done()
	}
	defer func() {
		if r := recover(); r != nil {
			if l != nil {
				l.Error("PANIC [%s]: %v\n%s", name, r, debug.Stack())
			}
			if onPanic != nil {
				onPanic(r)
			}
		}
	}()
	fn()
}
