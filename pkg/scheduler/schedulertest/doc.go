// Package schedulertest provides a virtual-time scheduler.Scheduler for
// tests.
//
// Time only moves when Advance is called. Advance runs every handler whose
// fire time falls inside the advanced window on the calling goroutine, in
// fire time order, including handlers scheduled by other handlers during
// the same call. WaitForScheduledJobs lets a test block until the code under
// test has scheduled the work it is expected to schedule, which removes the
// race between "input was processed" and "time was advanced".
package schedulertest
