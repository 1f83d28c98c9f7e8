package timer

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultInterval is the tick period of a countdown
const DefaultInterval = time.Second

// Exposure is a single-slot countdown that clears the clipboard when it runs out.
//
// Start, Cancel and Remaining may be called from any goroutine. The countdown
// itself runs on its own goroutine and talks to callers only through the
// run's remaining counter, its cancellation flag and the Ticks channel.
type Exposure struct {
	interval time.Duration
	clear    func()
	ticks    chan int

	mu  sync.Mutex
	cur *run
}

type run struct {
	stop      chan struct{}
	remaining atomic.Int64
	// done flips exactly once: either the countdown finished (and cleared)
	// or the run was cancelled.
	done atomic.Bool
}

// New returns an idle countdown. clear is invoked once per completed countdown.
func New(interval time.Duration, clear func()) *Exposure {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Exposure{
		interval: interval,
		clear:    clear,
		ticks:    make(chan int, 1),
	}
}

// Ticks delivers the remaining count after every tick.
// Sends never block; a subscriber that falls behind misses intermediate values.
func (e *Exposure) Ticks() <-chan int {
	return e.ticks
}

// Remaining returns the seconds (ticks) left in the current window, 0 when idle
func (e *Exposure) Remaining() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cur == nil {
		return 0
	}
	return int(e.cur.remaining.Load())
}

// Active reports whether a countdown is running
func (e *Exposure) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cur != nil && !e.cur.done.Load()
}

// Start begins a countdown of n ticks, replacing any countdown in progress.
// The replaced countdown stops without clearing.
func (e *Exposure) Start(n int) {
	if n <= 0 {
		n = 1
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cur != nil {
		e.cur.cancel()
	}
	e.drain()
	r := &run{stop: make(chan struct{})}
	r.remaining.Store(int64(n))
	e.cur = r

	go e.loop(r)
}

// Cancel stops the countdown without clearing.
// It reports whether a countdown was actually stopped.
func (e *Exposure) Cancel() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cur == nil {
		return false
	}
	stopped := e.cur.cancel()
	e.cur = nil
	return stopped
}

func (r *run) cancel() bool {
	if !r.done.CompareAndSwap(false, true) {
		return false
	}
	close(r.stop)
	return true
}

func (e *Exposure) loop(r *run) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
		}

		left, ok := e.tick(r)
		if !ok {
			return
		}

		if left > 0 {
			continue
		}
		// Only the countdown that wins this swap may clear
		if r.done.CompareAndSwap(false, true) {
			if e.clear != nil {
				e.clear()
			}
		}
		return
	}
}

// tick counts down r and publishes the new count. It holds mu so a run
// replaced by Start or Cancel never publishes after its replacement.
func (e *Exposure) tick(r *run) (int64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if r.done.Load() {
		return 0, false
	}
	left := r.remaining.Add(-1)
	e.notify(int(left))
	return left, true
}

func (e *Exposure) drain() {
	select {
	case <-e.ticks:
	default:
	}
}

func (e *Exposure) notify(left int) {
	select {
	case e.ticks <- left:
	default:
		// Drop the stale value so the newest count gets through
		select {
		case <-e.ticks:
		default:
		}
		select {
		case e.ticks <- left:
		default:
		}
	}
}
