package sched

import (
	"sync"
	"time"
)

// Handle identifies an outstanding scheduled callback.
// Cancel is idempotent: cancelling twice, or cancelling after the callback
// has fired, is a no-op.
type Handle interface {
	Cancel()
}

// Scheduler schedules callbacks for later delivery.
// Callbacks run on the owning Loop, never concurrently with each other.
type Scheduler interface {
	// After runs fn once after d.
	After(d time.Duration, fn func()) Handle
	// Repeat runs fn every interval until the handle is cancelled.
	Repeat(interval time.Duration, fn func()) Handle
}

// Stop cancels h if it is non-nil.
func Stop(h Handle) {
	if h != nil {
		h.Cancel()
	}
}

// Timers is the wall-clock Scheduler. Callbacks are posted back onto the
// Loop so the single-threaded guarantee holds.
type Timers struct {
	loop *Loop
}

// NewTimers creates a Scheduler delivering callbacks on loop.
func NewTimers(loop *Loop) *Timers {
	return &Timers{loop: loop}
}

// Verify Timers implements Scheduler at compile time.
var _ Scheduler = (*Timers)(nil)

type timerHandle struct {
	mu        sync.Mutex
	timer     *time.Timer
	cancelled bool
}

func (h *timerHandle) Cancel() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancelled {
		return
	}
	h.cancelled = true
	if h.timer != nil {
		h.timer.Stop()
	}
}

func (h *timerHandle) isCancelled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cancelled
}

// After runs fn once after d on the loop.
func (t *Timers) After(d time.Duration, fn func()) Handle {
	h := &timerHandle{}
	h.mu.Lock()
	h.timer = time.AfterFunc(d, func() {
		t.loop.Post(func() {
			if !h.isCancelled() {
				fn()
			}
		})
	})
	h.mu.Unlock()
	return h
}

// Repeat runs fn every interval on the loop until cancelled.
// Re-arming happens after fn returns, so intervals never overlap.
func (t *Timers) Repeat(interval time.Duration, fn func()) Handle {
	h := &timerHandle{}
	var arm func()
	arm = func() {
		h.mu.Lock()
		if h.cancelled {
			h.mu.Unlock()
			return
		}
		h.timer = time.AfterFunc(interval, func() {
			t.loop.Post(func() {
				if h.isCancelled() {
					return
				}
				fn()
				arm()
			})
		})
		h.mu.Unlock()
	}
	arm()
	return h
}
