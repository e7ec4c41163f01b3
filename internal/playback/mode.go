package playback

// Mode defines what plays next once an item finishes.
type Mode int

const (
	// Continuous rotates through the whole library, never repeating an
	// item before all others have played.
	Continuous Mode = iota
	// Single plays exactly one item, then stops.
	Single
	// Loop repeats one pinned item indefinitely.
	Loop
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Continuous:
		return "Continuous"
	case Single:
		return "Single"
	case Loop:
		return "Loop"
	default:
		return "Unknown"
	}
}

// ParseMode maps a config string to a Mode. Unknown values fall back to
// Continuous.
func ParseMode(s string) Mode {
	switch s {
	case "single":
		return Single
	case "loop":
		return Loop
	default:
		return Continuous
	}
}
