package countdown

import (
	"testing"
	"time"

	"github.com/vovakirdan/junkshot/internal/loop"
)

type recorder struct {
	ticks    []int
	finishes int
}

func newTimer(t *testing.T) (*Timer, *loop.Manual, *recorder) {
	t.Helper()
	m := loop.NewManual()
	timer := New(m, nil)
	rec := &recorder{}
	timer.OnTick(func(r int) { rec.ticks = append(rec.ticks, r) })
	timer.OnFinish(func() { rec.finishes++ })
	return timer, m, rec
}

func TestStartCountsDownAndFinishesOnce(t *testing.T) {
	timer, m, rec := newTimer(t)

	timer.Start(5)
	m.Advance(5 * time.Second)

	expected := []int{5, 4, 3, 2, 1, 0}
	if len(rec.ticks) != len(expected) {
		t.Fatalf("ticks = %v, expected %v", rec.ticks, expected)
	}
	for i, v := range expected {
		if rec.ticks[i] != v {
			t.Errorf("ticks[%d] = %d, expected %d", i, rec.ticks[i], v)
		}
	}
	if rec.finishes != 1 {
		t.Errorf("finishes = %d, expected 1", rec.finishes)
	}
	if timer.State() != Finished {
		t.Errorf("State() = %v, expected finished", timer.State())
	}

	m.Advance(10 * time.Second)
	if rec.finishes != 1 {
		t.Errorf("finishes after expiry = %d, expected 1", rec.finishes)
	}
	if m.Pending() != 0 {
		t.Errorf("Pending() = %d, expected no live schedule", m.Pending())
	}
}

func TestStartZeroFinishesImmediately(t *testing.T) {
	timer, _, rec := newTimer(t)

	timer.Start(0)
	if timer.State() != Finished || rec.finishes != 1 {
		t.Errorf("Start(0): state=%v finishes=%d, expected finished once", timer.State(), rec.finishes)
	}

	// A second run finishes again.
	timer.Start(0)
	if rec.finishes != 2 {
		t.Errorf("finishes = %d after restart, expected 2", rec.finishes)
	}
}

func TestPauseResume(t *testing.T) {
	timer, m, rec := newTimer(t)

	timer.Start(10)
	m.Advance(3 * time.Second)
	timer.Pause()
	m.Advance(20 * time.Second)

	if timer.Remaining() != 7 {
		t.Errorf("Remaining() while paused = %d, expected 7", timer.Remaining())
	}
	if timer.State() != Paused {
		t.Errorf("State() = %v, expected paused", timer.State())
	}

	timer.Resume()
	m.Advance(2 * time.Second)
	if timer.Remaining() != 5 {
		t.Errorf("Remaining() after resume = %d, expected 5", timer.Remaining())
	}
	if rec.finishes != 0 {
		t.Errorf("finishes = %d, expected 0", rec.finishes)
	}
}

func TestPauseResumeNoOps(t *testing.T) {
	timer, m, _ := newTimer(t)

	timer.Pause()
	if timer.State() != Idle {
		t.Errorf("Pause() on idle timer changed state to %v", timer.State())
	}
	timer.Resume()
	if timer.State() != Idle {
		t.Errorf("Resume() on idle timer changed state to %v", timer.State())
	}

	timer.Reset(0)
	timer.Resume()
	if timer.State() != Paused {
		t.Errorf("Resume() with no time left changed state to %v", timer.State())
	}
	if m.Pending() != 0 {
		t.Errorf("Pending() = %d, expected 0", m.Pending())
	}
}

func TestResetEmitsOneTickAndPauses(t *testing.T) {
	timer, m, rec := newTimer(t)

	timer.Start(30)
	m.Advance(2 * time.Second)
	rec.ticks = nil

	timer.Reset(45)
	if len(rec.ticks) != 1 || rec.ticks[0] != 45 {
		t.Errorf("ticks after Reset = %v, expected [45]", rec.ticks)
	}
	if timer.State() != Paused {
		t.Errorf("State() = %v, expected paused", timer.State())
	}

	m.Advance(5 * time.Second)
	if timer.Remaining() != 45 {
		t.Errorf("Remaining() = %d, expected reset timer to hold", timer.Remaining())
	}
}

func TestStaleTickIgnored(t *testing.T) {
	timer, m, _ := newTimer(t)

	timer.Start(10)
	timer.Pause()
	timer.Tick() // delivered after cancellation
	if timer.Remaining() != 10 {
		t.Errorf("Remaining() = %d, expected stale tick ignored", timer.Remaining())
	}
	m.Advance(3 * time.Second)
	if timer.Remaining() != 10 {
		t.Errorf("Remaining() = %d, expected paused timer untouched", timer.Remaining())
	}
}

func TestObserverPanicIsolated(t *testing.T) {
	m := loop.NewManual()
	timer := New(m, nil)
	second := 0
	timer.OnTick(func(int) { panic("observer failure") })
	timer.OnTick(func(int) { second++ })

	timer.Start(2)
	m.Advance(2 * time.Second)

	if second != 3 {
		t.Errorf("second observer calls = %d, expected 3", second)
	}
	if timer.State() != Finished {
		t.Errorf("State() = %v, expected finished", timer.State())
	}
}

func TestIndependentTimers(t *testing.T) {
	m := loop.NewManual()
	a := New(m, nil)
	b := New(m, nil)

	a.Start(5)
	b.Start(5)
	m.Advance(time.Second)
	a.Pause()
	m.Advance(2 * time.Second)

	if a.Remaining() != 4 || b.Remaining() != 2 {
		t.Errorf("a=%d b=%d, expected a=4 b=2", a.Remaining(), b.Remaining())
	}
}
