package playback

import (
	"math/rand/v2"

	"github.com/loophost/rotator/internal/store"
)

// Next is the selection policy: given the library, the mode and the pinned
// loop item, pick the id that should play next. Randomized picks never
// repeat an id before all others have appeared, except for the single-item
// library which is exempt from no-repeat bookkeeping.
//
// Side effects on the library's played set: the chosen id is marked played,
// and when the pick exhausts the library the set is reset so the next call
// starts a fresh rotation. Loop pinning is left to the caller.
func Next(rng *rand.Rand, lib *store.Library, mode Mode, loopID string) (string, bool) {
	if lib.IsEmpty() {
		return "", false
	}

	// Loop mode with a live pin is a deterministic repeat.
	if mode == Loop && loopID != "" {
		if _, ok := lib.Get(loopID); ok {
			return loopID, true
		}
	}

	ids := lib.IDs()
	if len(ids) == 1 {
		// Only video: exempt from no-repeat bookkeeping.
		return ids[0], true
	}

	if lib.AllPlayed() {
		lib.ResetPlayed()
	}

	unplayed := lib.Unplayed()
	if len(unplayed) == 0 {
		// Cannot happen after the reset above, but guard against a
		// concurrent library mutation by falling back to everything.
		unplayed = ids
	}

	if len(unplayed) == 1 {
		// Last of the rotation: return it and start the next rotation
		// fresh, without marking it played.
		lib.ResetPlayed()
		return unplayed[0], true
	}

	id := unplayed[rng.IntN(len(unplayed))]
	lib.MarkPlayed(id)
	return id, true
}
