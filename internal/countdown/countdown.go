// Package countdown implements the whole-second game clock.
package countdown

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/vovakirdan/junkshot/internal/loop"
)

// State is the lifecycle state of a Timer.
type State int

const (
	Idle State = iota
	Running
	Paused
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Timer counts down whole seconds on a Scheduler.
// All methods must be called from the scheduler's loop.
type Timer struct {
	sched  loop.Scheduler
	logger *log.Logger

	state     State
	remaining int
	cancel    loop.Cancel
	gen       int // bumped on every (re)schedule; stale ticks carry an old value

	onTick   []func(remaining int)
	onFinish []func()
}

// New creates an idle timer driven by sched.
func New(sched loop.Scheduler, logger *log.Logger) *Timer {
	if logger == nil {
		logger = log.Default()
	}
	return &Timer{sched: sched, logger: logger}
}

// OnTick registers an observer for remaining-time updates.
func (t *Timer) OnTick(fn func(remaining int)) {
	t.onTick = append(t.onTick, fn)
}

// OnFinish registers an observer for expiry.
func (t *Timer) OnFinish(fn func()) {
	t.onFinish = append(t.onFinish, fn)
}

// Remaining returns the seconds left.
func (t *Timer) Remaining() int {
	return t.remaining
}

// State returns the current state.
func (t *Timer) State() State {
	return t.state
}

// Start begins counting down from seconds. Zero or negative durations
// finish immediately.
func (t *Timer) Start(seconds int) {
	t.stopSchedule()
	if seconds < 0 {
		seconds = 0
	}
	t.remaining = seconds
	t.state = Running
	t.emitTick()
	if seconds == 0 {
		t.finish()
		return
	}
	t.schedule()
}

// Pause stops the countdown, keeping the remaining time.
func (t *Timer) Pause() {
	if t.state != Running {
		return
	}
	t.stopSchedule()
	t.state = Paused
}

// Resume continues a paused countdown that still has time left.
func (t *Timer) Resume() {
	if t.state != Paused || t.remaining <= 0 {
		return
	}
	t.state = Running
	t.schedule()
}

// Reset sets the remaining time and leaves the timer paused.
func (t *Timer) Reset(seconds int) {
	t.stopSchedule()
	if seconds < 0 {
		seconds = 0
	}
	t.remaining = seconds
	t.state = Paused
	t.emitTick()
}

// Tick advances the countdown by one second.
func (t *Timer) Tick() {
	if t.state != Running {
		return
	}
	if t.remaining > 0 {
		t.remaining--
	}
	t.emitTick()
	if t.remaining == 0 {
		t.finish()
	}
}

func (t *Timer) schedule() {
	t.gen++
	gen := t.gen
	t.cancel = t.sched.Every(time.Second, func() {
		if gen != t.gen {
			return
		}
		t.Tick()
	})
}

func (t *Timer) stopSchedule() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.gen++
}

func (t *Timer) finish() {
	t.stopSchedule()
	if t.state == Finished {
		return
	}
	t.state = Finished
	for _, fn := range t.onFinish {
		t.safeCall(func() { fn() })
	}
}

func (t *Timer) emitTick() {
	remaining := t.remaining
	for _, fn := range t.onTick {
		t.safeCall(func() { fn(remaining) })
	}
}

func (t *Timer) safeCall(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Warn("timer observer panicked", "panic", r)
		}
	}()
	fn()
}
