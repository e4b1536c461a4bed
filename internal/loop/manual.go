package loop

import (
	"sort"
	"sync"
	"time"
)

// Manual is a virtual-time Scheduler for tests. Nothing runs until Flush or
// Advance is called, and Go executes inline. Post may be called from any
// goroutine; everything else belongs to the test goroutine.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	queue  []func()
	timers []*manualTimer
}

type manualTimer struct {
	at        time.Time
	every     time.Duration
	fn        func()
	seq       int
	cancelled bool
}

// NewManual creates a manual scheduler starting at a fixed epoch.
func NewManual() *Manual {
	return &Manual{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Post queues fn until the next Flush or Advance.
func (m *Manual) Post(fn func()) {
	m.mu.Lock()
	m.queue = append(m.queue, fn)
	m.mu.Unlock()
}

// After schedules fn at now+d.
func (m *Manual) After(d time.Duration, fn func()) Cancel {
	return m.add(d, 0, fn)
}

// Every schedules fn at every multiple of d from now.
func (m *Manual) Every(d time.Duration, fn func()) Cancel {
	if d <= 0 {
		d = time.Nanosecond
	}
	return m.add(d, d, fn)
}

func (m *Manual) add(d, every time.Duration, fn func()) Cancel {
	m.seq++
	t := &manualTimer{at: m.now.Add(d), every: every, fn: fn, seq: m.seq}
	m.timers = append(m.timers, t)
	return func() { t.cancelled = true }
}

// Go runs fn immediately on the caller's goroutine.
func (m *Manual) Go(fn func()) {
	fn()
}

// Now returns the virtual time.
func (m *Manual) Now() time.Time {
	return m.now
}

// Pending returns the number of live timers.
func (m *Manual) Pending() int {
	n := 0
	for _, t := range m.timers {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// Flush runs queued posts, including any they enqueue.
func (m *Manual) Flush() {
	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			m.mu.Unlock()
			return
		}
		fn := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()
		fn()
	}
}

// Advance moves virtual time forward by d, firing due timers in order and
// flushing posts after each one.
func (m *Manual) Advance(d time.Duration) {
	target := m.now.Add(d)
	m.Flush()
	for {
		t := m.nextDue(target)
		if t == nil {
			break
		}
		m.now = t.at
		if t.every > 0 {
			t.at = t.at.Add(t.every)
			m.seq++
			t.seq = m.seq
		} else {
			t.cancelled = true
		}
		t.fn()
		m.Flush()
	}
	m.now = target
	m.compact()
}

func (m *Manual) nextDue(target time.Time) *manualTimer {
	m.compact()
	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].at.Equal(m.timers[j].at) {
			return m.timers[i].seq < m.timers[j].seq
		}
		return m.timers[i].at.Before(m.timers[j].at)
	})
	if len(m.timers) > 0 && !m.timers[0].at.After(target) {
		return m.timers[0]
	}
	return nil
}

func (m *Manual) compact() {
	live := m.timers[:0]
	for _, t := range m.timers {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	m.timers = live
}
