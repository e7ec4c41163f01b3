// Package overlay drives the host's text overlay slot: delayed title show,
// end-of-item clear, and the opacity fade ramp between them.
package overlay

import "github.com/sirupsen/logrus"

// Adapter defines the overlay sink contract.
type Adapter interface {
	// Available reports whether the host's overlay sink exists yet.
	Available() bool
	// SetText replaces the overlay text. Returns false if the sink
	// rejected the update.
	SetText(text string) bool
	// SetOpacity sets the overlay opacity in percent (0..100).
	SetOpacity(percent int)
}

// Mock is a test double recording overlay calls.
type Mock struct {
	available bool
	texts     []string
	opacity   int
	opacities []int
	textOK    bool
}

// NewMock creates a mock overlay sink that accepts all updates.
func NewMock() *Mock {
	return &Mock{available: true, textOK: true}
}

func (m *Mock) Available() bool { return m.available }

func (m *Mock) SetText(text string) bool {
	m.texts = append(m.texts, text)
	return m.textOK
}

func (m *Mock) SetOpacity(percent int) {
	m.opacity = percent
	m.opacities = append(m.opacities, percent)
}

// Test helpers

func (m *Mock) SetAvailable(v bool) { m.available = v }
func (m *Mock) Texts() []string     { return m.texts }
func (m *Mock) Opacity() int        { return m.opacity }
func (m *Mock) Opacities() []int    { return m.opacities }

// LastText returns the most recent text set, "" if none.
func (m *Mock) LastText() string {
	if len(m.texts) == 0 {
		return ""
	}
	return m.texts[len(m.texts)-1]
}

// Verify Mock implements Adapter at compile time.
var _ Adapter = (*Mock)(nil)

// Log is an overlay sink for headless runs: every update goes to the log.
type Log struct{}

func (Log) Available() bool { return true }

func (Log) SetText(text string) bool {
	logrus.WithField("text", text).Debug("overlay: set text")
	return true
}

func (Log) SetOpacity(percent int) {
	logrus.WithField("opacity", percent).Trace("overlay: set opacity")
}

// Verify Log implements Adapter at compile time.
var _ Adapter = (Log{})
