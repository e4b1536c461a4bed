// Package loop runs game logic on a single goroutine.
//
// All state owned by a session is touched only from callbacks executed by
// a Scheduler, so the game core needs no locks. Blocking work (network,
// disk) is started with Go and reports back through Post.
package loop

import "time"

// Cancel stops a scheduled callback. It is safe to call more than once.
type Cancel func()

// Scheduler serializes callbacks onto one logical thread.
type Scheduler interface {
	// Post queues fn to run on the loop.
	Post(fn func())
	// After runs fn on the loop once d has elapsed.
	After(d time.Duration, fn func()) Cancel
	// Every runs fn on the loop each time d elapses.
	Every(d time.Duration, fn func()) Cancel
	// Go runs fn off the loop. fn must use Post to touch loop-owned state.
	Go(fn func())
	// Now returns the scheduler's current time.
	Now() time.Time
}
