package engine

import (
	"sync"
	"time"
)

// DefaultInterval is the frame interval of a TickerScheduler, about 60 fps.
const DefaultInterval = time.Second / 60

// Scheduler calls a frame function repeatedly while it reports more work.
// Once frame returns false the scheduler idles until Wake. Post runs fn on
// the goroutine that calls frame, so hosts never mutate engine state
// concurrently with a tick.
type Scheduler interface {
	Start(frame func() bool)
	Post(fn func())
	Wake()
	Stop()
}

// TickerScheduler drives frames from a time.Ticker on its own goroutine.
type TickerScheduler struct {
	interval time.Duration

	mu      sync.Mutex
	wake    chan struct{}
	posts   chan func()
	stop    chan struct{}
	done    chan struct{}
	running bool
}

// NewTickerScheduler returns a scheduler ticking every interval, or
// DefaultInterval when interval is not positive.
func NewTickerScheduler(interval time.Duration) *TickerScheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &TickerScheduler{interval: interval}
}

// Start launches the frame loop. Starting a running scheduler does nothing.
func (t *TickerScheduler) Start(frame func() bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}
	t.wake = make(chan struct{}, 1)
	t.posts = make(chan func(), 64)
	t.stop = make(chan struct{})
	t.done = make(chan struct{})
	t.running = true
	go t.loop(frame, t.wake, t.posts, t.stop, t.done)
}

func (t *TickerScheduler) loop(frame func() bool, wake <-chan struct{}, posts <-chan func(), stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	tk := time.NewTicker(t.interval)
	defer tk.Stop()

	active := true
	for {
		if !active {
			select {
			case <-stop:
				return
			case fn := <-posts:
				fn()
			case <-wake:
				active = true
				tk.Reset(t.interval)
			}
			continue
		}
		select {
		case <-stop:
			return
		case fn := <-posts:
			fn()
		case <-wake:
		case <-tk.C:
			active = frame()
		}
	}
}

// Post queues fn for the frame goroutine. It blocks while the queue is
// full and drops fn once the scheduler is stopped.
func (t *TickerScheduler) Post(fn func()) {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	posts, stop := t.posts, t.stop
	t.mu.Unlock()
	select {
	case posts <- fn:
	case <-stop:
	}
}

// Wake resumes an idle loop. It never blocks.
func (t *TickerScheduler) Wake() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

// Stop ends the loop and waits for the in-flight frame to finish.
func (t *TickerScheduler) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	close(t.stop)
	done := t.done
	t.mu.Unlock()
	<-done
}

// Running reports whether the loop goroutine is alive.
func (t *TickerScheduler) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Manual is a Scheduler for frame-driven hosts such as a TUI event loop,
// which call Engine.Frame themselves. It only records state.
type Manual struct {
	mu      sync.Mutex
	started bool
	wakes   int
}

// Start records that frames may be driven.
func (m *Manual) Start(func() bool) {
	m.mu.Lock()
	m.started = true
	m.mu.Unlock()
}

// Post runs fn immediately on the caller's goroutine.
func (m *Manual) Post(fn func()) { fn() }

// Wake counts resume requests.
func (m *Manual) Wake() {
	m.mu.Lock()
	m.wakes++
	m.mu.Unlock()
}

// Stop records that frames must no longer be driven.
func (m *Manual) Stop() {
	m.mu.Lock()
	m.started = false
	m.mu.Unlock()
}

// Started reports whether the scheduler is between Start and Stop.
func (m *Manual) Started() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

// Wakes returns the number of Wake calls.
func (m *Manual) Wakes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wakes
}
