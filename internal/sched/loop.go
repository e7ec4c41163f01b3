// Package sched provides the single-threaded cooperative scheduler the
// playback controller runs on. Every tick and every delayed callback is
// executed serially on one Loop, so controller state needs no locking.
package sched

import "context"

const queueSize = 64

// Loop executes posted functions one at a time on a single goroutine.
type Loop struct {
	ch chan func()
}

// NewLoop creates a new event loop. Call Run to start draining it.
func NewLoop() *Loop {
	return &Loop{ch: make(chan func(), queueSize)}
}

// Post queues fn for execution on the loop goroutine.
// Safe to call from any goroutine.
func (l *Loop) Post(fn func()) {
	select {
	case l.ch <- fn:
	default:
		// Queue full: block rather than drop. Callbacks are cheap and the
		// queue only backs up if the loop is stalled.
		l.ch <- fn
	}
}

// Run drains the loop until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.ch:
			fn()
		}
	}
}
