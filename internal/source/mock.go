package source

import "time"

// Mock is a test double for the media source adapter.
type Mock struct {
	available bool
	status    Status
	duration  time.Duration
	position  time.Duration
	path      string
	setResult bool
	setCalls  []SetCall
	stopCalls int
}

// SetCall records one SetLocalFile invocation.
type SetCall struct {
	Path        string
	ForceReload bool
}

// NewMock creates a mock adapter with sinks available and loads succeeding.
func NewMock() *Mock {
	return &Mock{available: true, status: StatusNone, setResult: true}
}

func (m *Mock) Available() bool         { return m.available }
func (m *Mock) Status() Status          { return m.status }
func (m *Mock) Duration() time.Duration { return m.duration }
func (m *Mock) Position() time.Duration { return m.position }
func (m *Mock) ActiveLocalPath() string { return m.path }

func (m *Mock) SetLocalFile(path string, forceReload bool) bool {
	m.setCalls = append(m.setCalls, SetCall{Path: path, ForceReload: forceReload})
	if !m.setResult {
		return false
	}
	m.path = path
	m.status = StatusPlaying
	m.position = 0
	return true
}

func (m *Mock) StopAndClear() {
	m.stopCalls++
	m.path = ""
	m.status = StatusNone
	m.position = 0
	m.duration = 0
}

// Test helpers

func (m *Mock) SetAvailable(v bool)           { m.available = v }
func (m *Mock) SetStatus(s Status)            { m.status = s }
func (m *Mock) SetDuration(d time.Duration)   { m.duration = d }
func (m *Mock) SetPosition(d time.Duration)   { m.position = d }
func (m *Mock) SetPath(path string)           { m.path = path }
func (m *Mock) SetSetLocalFileResult(ok bool) { m.setResult = ok }
func (m *Mock) SetCalls() []SetCall           { return m.setCalls }
func (m *Mock) StopCalls() int                { return m.stopCalls }

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
