// Package store holds the shared library of ready-to-play items.
// It is the only state shared between the ingest workers and the playback
// controller, so every accessor takes the lock and returns copies.
package store

import (
	"sort"
	"sync"

	"github.com/samber/lo"
	"github.com/spf13/afero"
)

// Item is one playable unit: a cached local media file plus display metadata.
type Item struct {
	ID               string
	Path             string
	Title            string
	Artist           string
	MetadataDegraded bool
}

// Library is the thread-safe item store.
type Library struct {
	mu       sync.RWMutex
	fs       afero.Fs
	items    map[string]Item
	played   map[string]struct{}
	current  string              // id the controller is playing right now
	deferred map[string]struct{} // removals held back while the item is current
}

// New creates an empty library backed by fs for file existence checks.
func New(fs afero.Fs) *Library {
	return &Library{
		fs:       fs,
		items:    make(map[string]Item),
		played:   make(map[string]struct{}),
		deferred: make(map[string]struct{}),
	}
}

// Put adds or replaces an item. A put cancels any deferred removal.
func (l *Library) Put(item Item) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items[item.ID] = item
	delete(l.deferred, item.ID)
}

// Remove deletes the item with the given id. If the item is currently
// playing the removal is deferred until the controller moves off it.
// Returns true if the item was removed immediately.
func (l *Library) Remove(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if id == l.current {
		l.deferred[id] = struct{}{}
		return false
	}
	delete(l.items, id)
	delete(l.played, id)
	return true
}

// Get returns the item with the given id.
func (l *Library) Get(id string) (Item, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	item, ok := l.items[id]
	return item, ok
}

// ByPath returns the item whose local path matches path.
func (l *Library) ByPath(path string) (Item, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, item := range l.items {
		if item.Path == path {
			return item, true
		}
	}
	return Item{}, false
}

// IDs returns all item ids, sorted for deterministic iteration.
func (l *Library) IDs() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := lo.Keys(l.items)
	sort.Strings(ids)
	return ids
}

// Len returns the number of items.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// IsEmpty returns true if the library has no items.
func (l *Library) IsEmpty() bool {
	return l.Len() == 0
}

// SetCurrent records which item the controller is playing ("" for none)
// and applies any removal that was deferred while the old item was current.
func (l *Library) SetCurrent(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	prev := l.current
	l.current = id
	if prev != "" && prev != id {
		if _, ok := l.deferred[prev]; ok {
			delete(l.deferred, prev)
			delete(l.items, prev)
			delete(l.played, prev)
		}
	}
}

// Current returns the id the controller reported as playing.
func (l *Library) Current() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// MarkPlayed records id in the no-repeat set.
func (l *Library) MarkPlayed(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.played[id] = struct{}{}
}

// Played returns a copy of the no-repeat set.
func (l *Library) Played() map[string]struct{} {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]struct{}, len(l.played))
	for id := range l.played {
		out[id] = struct{}{}
	}
	return out
}

// SetPlayed replaces the no-repeat set, ignoring ids not in the library.
// Used to restore persisted rotation state at startup.
func (l *Library) SetPlayed(ids []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.played = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := l.items[id]; ok {
			l.played[id] = struct{}{}
		}
	}
}

// ResetPlayed clears the no-repeat set.
func (l *Library) ResetPlayed() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.played = make(map[string]struct{})
}

// Unplayed returns the ids not yet in the no-repeat set, sorted.
func (l *Library) Unplayed() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := lo.Filter(lo.Keys(l.items), func(id string, _ int) bool {
		_, played := l.played[id]
		return !played
	})
	sort.Strings(ids)
	return ids
}

// AllPlayed reports whether the no-repeat set covers the whole library.
func (l *Library) AllPlayed() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for id := range l.items {
		if _, ok := l.played[id]; !ok {
			return false
		}
	}
	return len(l.items) > 0
}

// SetTargets reconciles the library against the set of ids the ingest
// pipeline currently targets: anything absent from ids is removed
// (deferred if currently playing).
func (l *Library) SetTargets(ids []string) {
	target := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		target[id] = struct{}{}
	}

	l.mu.Lock()
	var stale []string
	for id := range l.items {
		if _, ok := target[id]; !ok {
			stale = append(stale, id)
		}
	}
	l.mu.Unlock()

	for _, id := range stale {
		l.Remove(id)
	}
}

// ContainsValidFile reports whether id exists and its local file is still
// present on disk. Guards against files deleted behind the store's back.
func (l *Library) ContainsValidFile(id string) bool {
	l.mu.RLock()
	item, ok := l.items[id]
	fs := l.fs
	l.mu.RUnlock()
	if !ok {
		return false
	}
	exists, err := afero.Exists(fs, item.Path)
	return err == nil && exists
}
