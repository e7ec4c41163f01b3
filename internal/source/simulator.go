package source

import (
	"sync"
	"time"
)

// Simulator is a wall-clock stand-in for the host media slot, used for
// headless runs and soak tests. Every loaded item plays for a fixed
// duration, then the status flips to Ended until the slot is reloaded
// or cleared.
type Simulator struct {
	mu       sync.Mutex
	itemLen  time.Duration
	path     string
	started  time.Time
	stopped  bool // user/host stop: media loaded but not advancing
	now      func() time.Time
}

// NewSimulator creates a simulator whose items all last itemLen.
func NewSimulator(itemLen time.Duration) *Simulator {
	return &Simulator{itemLen: itemLen, now: time.Now}
}

// Verify Simulator implements Interface at compile time.
var _ Interface = (*Simulator)(nil)

// Available always reports true: the simulated sinks exist.
func (s *Simulator) Available() bool { return true }

func (s *Simulator) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.path == "":
		return StatusNone
	case s.stopped:
		return StatusStopped
	case s.now().Sub(s.started) >= s.itemLen:
		return StatusEnded
	default:
		return StatusPlaying
	}
}

func (s *Simulator) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.path == "" {
		return 0
	}
	return s.itemLen
}

func (s *Simulator) Position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.path == "" || s.stopped {
		return 0
	}
	pos := s.now().Sub(s.started)
	if pos > s.itemLen {
		pos = s.itemLen
	}
	return pos
}

// SetLocalFile loads path and restarts the clock. Reloading the same path
// with forceReload restarts it from zero, matching the detach/reattach
// contract.
func (s *Simulator) SetLocalFile(path string, _ bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.path = path
	s.started = s.now()
	s.stopped = false
	return true
}

func (s *Simulator) StopAndClear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.path = ""
	s.stopped = false
}

func (s *Simulator) ActiveLocalPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// Interrupt simulates a user stopping the media from the host side.
func (s *Simulator) Interrupt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.path != "" {
		s.stopped = true
	}
}
