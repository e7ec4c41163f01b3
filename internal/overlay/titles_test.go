package overlay

import (
	"testing"
	"time"

	"github.com/loophost/rotator/internal/sched"
)

func newTestTitles() (*Titles, *Mock, *sched.Manual) {
	sink := NewMock()
	man := sched.NewManual()
	return NewTitles(sink, man, DefaultTimings()), sink, man
}

// knownRemaining returns a remaining func with a fixed answer.
func knownRemaining(d time.Duration) func() (time.Duration, bool) {
	return func() (time.Duration, bool) { return d, true }
}

func unknownRemaining() (time.Duration, bool) { return 0, false }

func TestBegin_BlanksImmediately(t *testing.T) {
	ts, sink, _ := newTestTitles()

	ts.Begin(Title{Title: "song", Artist: "band"}, knownRemaining(time.Minute))

	if sink.LastText() != "" {
		t.Errorf("overlay text = %q, want blank at start", sink.LastText())
	}
	if sink.Opacity() != 0 {
		t.Errorf("opacity = %d, want 0 at start", sink.Opacity())
	}
}

func TestBegin_ShowsTitleAfterDelayAndFadesIn(t *testing.T) {
	ts, sink, man := newTestTitles()
	ts.Begin(Title{Title: "song", Artist: "band"}, knownRemaining(time.Minute))

	man.Advance(1400 * time.Millisecond)
	if sink.LastText() != "" {
		t.Fatal("title must not show before the show delay")
	}

	man.Advance(100 * time.Millisecond)
	if sink.LastText() != "song\nband" {
		t.Errorf("overlay text = %q, want title and artist", sink.LastText())
	}

	// Full fade ramp: 1s in 20 steps.
	man.Advance(time.Second)
	if ts.Opacity() != 100 {
		t.Errorf("opacity = %d, want 100 after the fade ramp", ts.Opacity())
	}
}

func TestBegin_PollsUntilDurationKnown(t *testing.T) {
	ts, _, man := newTestTitles()

	known := false
	remaining := func() (time.Duration, bool) {
		if !known {
			return 0, false
		}
		return time.Minute, true
	}
	ts.Begin(Title{Title: "song"}, remaining)

	man.Advance(2 * time.Second)
	if ts.ClearScheduled() {
		t.Fatal("clear must not be scheduled while duration is unknown")
	}

	known = true
	man.Advance(500 * time.Millisecond)
	if !ts.ClearScheduled() {
		t.Error("clear should be scheduled once the poll sees a duration")
	}
}

func TestScheduleClear_ReplacesOutstandingClear(t *testing.T) {
	ts, _, man := newTestTitles()
	ts.Begin(Title{Title: "song"}, func() (time.Duration, bool) { return unknownRemaining() })
	man.Advance(1500 * time.Millisecond) // show fires
	man.Advance(time.Second)            // fade-in completes

	ts.ScheduleClear(60 * time.Second)
	ts.ScheduleClear(10 * time.Second)

	// The first clear would have fired at 56.5s; the replacement fires at
	// 6.5s. Advance past the replacement and drain its fade.
	man.Advance(6500 * time.Millisecond)
	man.Advance(time.Second)
	if ts.Opacity() != 0 {
		t.Fatalf("opacity = %d, want 0 after the replacement clear", ts.Opacity())
	}

	// ScheduleClear stopped the duration poll and replaced the first clear
	// timer, so nothing is left outstanding.
	if man.Pending() != 0 {
		t.Errorf("pending callbacks = %d, want 0", man.Pending())
	}
}

func TestScheduleClear_FadesOutImmediatelyWhenTooLate(t *testing.T) {
	ts, _, man := newTestTitles()
	ts.Begin(Title{Title: "song"}, knownRemaining(time.Minute))
	man.Advance(1500 * time.Millisecond)
	man.Advance(time.Second)
	if ts.Opacity() != 100 {
		t.Fatal("setup: expected fade-in to complete")
	}

	ts.ScheduleClear(2 * time.Second) // under the 3.5s lead

	if ts.ClearScheduled() {
		t.Error("no clear timer should be armed when fading out immediately")
	}
	man.Advance(time.Second)
	if ts.Opacity() != 0 {
		t.Errorf("opacity = %d, want 0 after immediate fade-out", ts.Opacity())
	}
}

func TestCancelClear_IsIdempotent(t *testing.T) {
	ts, _, _ := newTestTitles()
	ts.ScheduleClear(time.Minute)

	ts.CancelClear()
	ts.CancelClear() // second cancel is a no-op

	if ts.ClearScheduled() {
		t.Error("clear should be cancelled")
	}
}

func TestFadeOutAtZero_AppliesPendingSwapAndFadesIn(t *testing.T) {
	ts, sink, man := newTestTitles()
	ts.Begin(Title{Title: "song", Artist: "band"}, knownRemaining(time.Minute))

	// Clear arrives before the show delay: the text swap is still pending
	// when the fade-out reaches zero.
	ts.ScheduleClear(time.Second)

	man.Advance(50 * time.Millisecond) // one fade step: snaps to 0, applies swap
	if sink.LastText() != "song\nband" {
		t.Errorf("overlay text = %q, want pending swap applied at zero", sink.LastText())
	}

	man.Advance(time.Second)
	if ts.Opacity() != 100 {
		t.Errorf("opacity = %d, want fade-in after the swap", ts.Opacity())
	}
}

func TestReset_CancelsEverythingAndBlanks(t *testing.T) {
	ts, sink, man := newTestTitles()
	ts.Begin(Title{Title: "song"}, knownRemaining(time.Minute))
	man.Advance(1500 * time.Millisecond)

	ts.Reset()

	if sink.LastText() != "" {
		t.Errorf("overlay text = %q, want blank after reset", sink.LastText())
	}
	if ts.Opacity() != 0 {
		t.Errorf("opacity = %d, want 0 after reset", ts.Opacity())
	}
	if man.Pending() != 0 {
		t.Errorf("pending callbacks = %d, want 0 after reset", man.Pending())
	}
}

func TestFormatTitle(t *testing.T) {
	tests := []struct {
		name  string
		title Title
		want  string
	}{
		{"title and artist", Title{Title: "song", Artist: "band"}, "song\nband"},
		{"no artist", Title{Title: "song"}, "song"},
		{"degraded metadata shows title only", Title{Title: "clip 01", Artist: "x", Degraded: true}, "clip 01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatTitle(tt.title); got != tt.want {
				t.Errorf("FormatTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}
