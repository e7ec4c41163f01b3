package sched

import (
	"sort"
	"time"
)

// Manual is a Scheduler driven by virtual time, for tests.
// Callbacks fire synchronously from Advance, in due order.
type Manual struct {
	now     time.Duration
	nextSeq int
	entries []*manualEntry
}

type manualEntry struct {
	due       time.Duration
	interval  time.Duration // 0 for one-shot
	seq       int           // tie-break for equal due times
	fn        func()
	cancelled bool
}

func (e *manualEntry) Cancel() { e.cancelled = true }

// NewManual creates a virtual-time scheduler starting at time zero.
func NewManual() *Manual {
	return &Manual{}
}

// Verify Manual implements Scheduler at compile time.
var _ Scheduler = (*Manual)(nil)

// Now returns the current virtual time.
func (m *Manual) Now() time.Duration {
	return m.now
}

// After schedules fn once at now+d.
func (m *Manual) After(d time.Duration, fn func()) Handle {
	return m.add(d, 0, fn)
}

// Repeat schedules fn every interval starting at now+interval.
func (m *Manual) Repeat(interval time.Duration, fn func()) Handle {
	return m.add(interval, interval, fn)
}

func (m *Manual) add(d, interval time.Duration, fn func()) *manualEntry {
	e := &manualEntry{due: m.now + d, interval: interval, seq: m.nextSeq, fn: fn}
	m.nextSeq++
	m.entries = append(m.entries, e)
	return e
}

// Pending returns the number of outstanding (non-cancelled) callbacks.
func (m *Manual) Pending() int {
	n := 0
	for _, e := range m.entries {
		if !e.cancelled {
			n++
		}
	}
	return n
}

// Advance moves virtual time forward by d, firing every callback that
// comes due, in order. Repeating callbacks re-fire within the window.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d
	for {
		next := m.dueBefore(target)
		if next == nil {
			break
		}
		m.now = next.due
		if next.interval > 0 {
			next.due += next.interval
		} else {
			next.cancelled = true
		}
		next.fn()
	}
	m.now = target
	m.compact()
}

// dueBefore returns the earliest live entry with due <= target, or nil.
func (m *Manual) dueBefore(target time.Duration) *manualEntry {
	live := make([]*manualEntry, 0, len(m.entries))
	for _, e := range m.entries {
		if !e.cancelled && e.due <= target {
			live = append(live, e)
		}
	}
	if len(live) == 0 {
		return nil
	}
	sort.Slice(live, func(i, j int) bool {
		if live[i].due != live[j].due {
			return live[i].due < live[j].due
		}
		return live[i].seq < live[j].seq
	})
	return live[0]
}

func (m *Manual) compact() {
	kept := m.entries[:0]
	for _, e := range m.entries {
		if !e.cancelled {
			kept = append(kept, e)
		}
	}
	m.entries = kept
}
