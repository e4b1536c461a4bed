package loop

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

// Loop is a Scheduler backed by a dedicated goroutine and wall-clock timers.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	quit   chan struct{}
	closed atomic.Bool
	wg     sync.WaitGroup
	logger *log.Logger
}

// New creates a loop. Call Run to start processing callbacks.
func New(logger *log.Logger) *Loop {
	if logger == nil {
		logger = log.Default()
	}
	return &Loop{
		wake:   make(chan struct{}, 1),
		quit:   make(chan struct{}),
		logger: logger,
	}
}

// Run processes callbacks until ctx is cancelled or Close is called.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			l.Close()
			return
		case <-l.quit:
			return
		case <-l.wake:
			l.drain()
		}
	}
}

// Close stops the loop and waits for background work started with Go.
// Callbacks posted after Close are dropped.
func (l *Loop) Close() {
	if l.closed.Swap(true) {
		return
	}
	close(l.quit)
	l.wg.Wait()
}

func (l *Loop) drain() {
	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()

		if len(batch) == 0 {
			return
		}
		for _, fn := range batch {
			if l.closed.Load() {
				return
			}
			l.run(fn)
		}
	}
}

func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("loop callback panicked", "panic", r)
		}
	}()
	fn()
}

// Post queues fn to run on the loop goroutine. It never blocks.
func (l *Loop) Post(fn func()) {
	if l.closed.Load() {
		return
	}
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// After runs fn on the loop once d has elapsed unless cancelled first.
// The cancellation check happens on the loop, so a timer that fired
// concurrently with Cancel still never runs fn.
func (l *Loop) After(d time.Duration, fn func()) Cancel {
	var cancelled atomic.Bool
	t := time.AfterFunc(d, func() {
		l.Post(func() {
			if !cancelled.Load() {
				fn()
			}
		})
	})
	return func() {
		cancelled.Store(true)
		t.Stop()
	}
}

// Every runs fn on the loop at interval d until cancelled.
func (l *Loop) Every(d time.Duration, fn func()) Cancel {
	var cancelled atomic.Bool
	stop := make(chan struct{})
	ticker := time.NewTicker(d)

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-l.quit:
				return
			case <-ticker.C:
				l.Post(func() {
					if !cancelled.Load() {
						fn()
					}
				})
			}
		}
	}()

	var once sync.Once
	return func() {
		cancelled.Store(true)
		once.Do(func() { close(stop) })
	}
}

// Go runs fn on a new goroutine tracked by Close.
func (l *Loop) Go(fn func()) {
	if l.closed.Load() {
		return
	}
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				l.logger.Error("background task panicked", "panic", r)
			}
		}()
		fn()
	}()
}

// Now returns the wall-clock time.
func (l *Loop) Now() time.Time {
	return time.Now()
}
