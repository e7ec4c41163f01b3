// Package source defines the contract to the host's single media slot.
// The host does not expose a rich playback API: the controller can load a
// local file, stop, and poll a coarse status. Everything else is inferred.
package source

import "time"

// Status is the coarse media status reported by the host.
type Status int

const (
	StatusNone Status = iota
	StatusPlaying
	StatusStopped
	StatusEnded
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusNone:
		return "None"
	case StatusPlaying:
		return "Playing"
	case StatusStopped:
		return "Stopped"
	case StatusEnded:
		return "Ended"
	default:
		return "Unknown"
	}
}

// Interface defines the media source adapter contract for dependency
// injection and testing.
type Interface interface {
	// Available reports whether the host's video sink exists yet.
	Available() bool
	// Status returns the host's coarse media status.
	Status() Status
	// Duration returns the loaded item's duration, 0 if unknown.
	Duration() time.Duration
	// Position returns the current playback position.
	Position() time.Duration
	// SetLocalFile loads and plays a local file. When forceReload is true
	// the same path must be fully detached and reattached, not treated as
	// a no-op update.
	SetLocalFile(path string, forceReload bool) bool
	// StopAndClear stops playback and unloads the media slot.
	StopAndClear()
	// ActiveLocalPath returns the path currently loaded, "" if none.
	ActiveLocalPath() string
}
