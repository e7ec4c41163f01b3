package overlay

import (
	"fmt"
	"time"

	"github.com/loophost/rotator/internal/sched"
)

// Title is the display metadata for one item.
type Title struct {
	Title    string
	Artist   string
	Degraded bool // metadata came from a filename fallback, not tags
}

// Timings holds the overlay schedule knobs.
type Timings struct {
	ShowDelay    time.Duration // delay before the title appears
	ClearLead    time.Duration // how long before item end the title clears
	FadeDuration time.Duration // total fade ramp length
	FadeSteps    int           // opacity steps per ramp
	DurationPoll time.Duration // retry interval while duration is unknown
}

// DefaultTimings are the recommended values.
func DefaultTimings() Timings {
	return Timings{
		ShowDelay:    1500 * time.Millisecond,
		ClearLead:    3500 * time.Millisecond,
		FadeDuration: 1000 * time.Millisecond,
		FadeSteps:    20,
		DurationPoll: 500 * time.Millisecond,
	}
}

// Titles schedules the show/clear of the title overlay and drives the
// opacity fade ramp. At most one show and one clear callback are ever
// outstanding: scheduling a new one cancels the previous.
type Titles struct {
	sink  Adapter
	sched sched.Scheduler
	t     Timings

	opacity int
	pending *Title // text waiting to be applied by show or fade-out

	showTimer  sched.Handle
	clearTimer sched.Handle
	fadeTimer  sched.Handle
	pollTimer  sched.Handle
}

// NewTitles creates the overlay timing subsystem.
func NewTitles(sink Adapter, s sched.Scheduler, t Timings) *Titles {
	if t.FadeSteps <= 0 {
		t.FadeSteps = 1
	}
	return &Titles{sink: sink, sched: s, t: t}
}

// Available reports whether the overlay sink exists.
func (ts *Titles) Available() bool {
	return ts.sink.Available()
}

// Lead returns how long before item end the title clears.
func (ts *Titles) Lead() time.Duration {
	return ts.t.ClearLead
}

// Opacity returns the current overlay opacity.
func (ts *Titles) Opacity() int {
	return ts.opacity
}

// Begin starts the overlay sequence for a new item: blank immediately,
// show the title after the show delay, and schedule the clear once the
// item's remaining time is known. remaining is polled until it reports ok.
func (ts *Titles) Begin(title Title, remaining func() (time.Duration, bool)) {
	ts.cancelAll()
	ts.sink.SetText("")
	ts.sink.SetOpacity(0)
	ts.opacity = 0

	t := title
	ts.pending = &t
	ts.showTimer = ts.sched.After(ts.t.ShowDelay, func() {
		ts.applyPending()
		ts.fadeTo(100)
	})

	ts.pollTimer = ts.sched.Repeat(ts.t.DurationPoll, func() {
		rem, ok := remaining()
		if !ok {
			return
		}
		sched.Stop(ts.pollTimer)
		ts.pollTimer = nil
		ts.armClear(rem)
	})
}

// ScheduleClear (re)arms the clear for an item with rem left to play.
// Any outstanding clear is cancelled first.
func (ts *Titles) ScheduleClear(rem time.Duration) {
	sched.Stop(ts.pollTimer)
	ts.pollTimer = nil
	ts.armClear(rem)
}

// CancelClear drops the outstanding clear, if any. Idempotent.
func (ts *Titles) CancelClear() {
	sched.Stop(ts.clearTimer)
	ts.clearTimer = nil
}

// ClearScheduled reports whether a clear callback is outstanding.
func (ts *Titles) ClearScheduled() bool {
	return ts.clearTimer != nil
}

// Reset cancels everything and blanks the overlay. Used on full stop.
func (ts *Titles) Reset() {
	ts.cancelAll()
	ts.pending = nil
	ts.sink.SetText("")
	ts.sink.SetOpacity(0)
	ts.opacity = 0
}

func (ts *Titles) armClear(rem time.Duration) {
	sched.Stop(ts.clearTimer)
	ts.clearTimer = nil
	if rem <= ts.t.ClearLead {
		// Too late to wait: fade out now.
		ts.fadeTo(0)
		return
	}
	ts.clearTimer = ts.sched.After(rem-ts.t.ClearLead, func() {
		ts.clearTimer = nil
		ts.fadeTo(0)
	})
}

func (ts *Titles) applyPending() {
	if ts.pending == nil {
		return
	}
	ts.sink.SetText(FormatTitle(*ts.pending))
	ts.pending = nil
}

// fadeTo ramps opacity toward target in fixed steps, snapping when within
// one step. A fade-out that reaches 0 with a pending text swap applies the
// swap and fades back in.
func (ts *Titles) fadeTo(target int) {
	sched.Stop(ts.fadeTimer)
	step := 100 / ts.t.FadeSteps
	if step <= 0 {
		step = 1
	}
	interval := ts.t.FadeDuration / time.Duration(ts.t.FadeSteps)

	ts.fadeTimer = ts.sched.Repeat(interval, func() {
		diff := target - ts.opacity
		switch {
		case diff > step:
			ts.opacity += step
		case diff < -step:
			ts.opacity -= step
		default:
			ts.opacity = target
		}
		ts.sink.SetOpacity(ts.opacity)

		if ts.opacity != target {
			return
		}
		sched.Stop(ts.fadeTimer)
		ts.fadeTimer = nil
		if target == 0 && ts.pending != nil {
			ts.applyPending()
			ts.fadeTo(100)
		}
	})
}

func (ts *Titles) cancelAll() {
	sched.Stop(ts.showTimer)
	sched.Stop(ts.clearTimer)
	sched.Stop(ts.fadeTimer)
	sched.Stop(ts.pollTimer)
	ts.showTimer = nil
	ts.clearTimer = nil
	ts.fadeTimer = nil
	ts.pollTimer = nil
}

// FormatTitle renders the overlay text for one item. Items with degraded
// metadata show the raw title only.
func FormatTitle(t Title) string {
	if t.Artist == "" || t.Degraded {
		return t.Title
	}
	return fmt.Sprintf("%s\n%s", t.Title, t.Artist)
}
