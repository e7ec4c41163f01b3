package store

import (
	"testing"

	"github.com/spf13/afero"
)

func newTestLibrary() (*Library, afero.Fs) {
	fs := afero.NewMemMapFs()
	return New(fs), fs
}

func put(l *Library, id string) {
	l.Put(Item{ID: id, Path: "/media/" + id + ".mp4", Title: id})
}

func TestPutGetRemove(t *testing.T) {
	l, _ := newTestLibrary()
	put(l, "a")

	item, ok := l.Get("a")
	if !ok || item.Title != "a" {
		t.Fatalf("Get(a) = %+v, %v", item, ok)
	}

	if !l.Remove("a") {
		t.Error("Remove should report immediate removal")
	}
	if _, ok := l.Get("a"); ok {
		t.Error("item should be gone after Remove")
	}
	if !l.IsEmpty() {
		t.Error("library should be empty")
	}
}

func TestRemove_DefersWhileCurrent(t *testing.T) {
	l, _ := newTestLibrary()
	put(l, "a")
	put(l, "b")
	l.SetCurrent("a")

	if l.Remove("a") {
		t.Error("removal of the current item must be deferred")
	}
	if _, ok := l.Get("a"); !ok {
		t.Fatal("deferred item must stay visible while current")
	}

	// Moving off the item applies the deferred removal.
	l.SetCurrent("b")
	if _, ok := l.Get("a"); ok {
		t.Error("deferred removal should apply once the item is no longer current")
	}
}

func TestPut_CancelsDeferredRemoval(t *testing.T) {
	l, _ := newTestLibrary()
	put(l, "a")
	l.SetCurrent("a")
	l.Remove("a")

	// The file came back before the controller moved on.
	put(l, "a")
	l.SetCurrent("")

	if _, ok := l.Get("a"); !ok {
		t.Error("re-put item must survive the deferred removal")
	}
}

func TestByPath(t *testing.T) {
	l, _ := newTestLibrary()
	put(l, "a")

	item, ok := l.ByPath("/media/a.mp4")
	if !ok || item.ID != "a" {
		t.Errorf("ByPath = %+v, %v", item, ok)
	}
	if _, ok := l.ByPath("/media/missing.mp4"); ok {
		t.Error("ByPath should miss on unknown paths")
	}
}

func TestIDs_Sorted(t *testing.T) {
	l, _ := newTestLibrary()
	put(l, "c")
	put(l, "a")
	put(l, "b")

	ids := l.IDs()
	want := []string{"a", "b", "c"}
	for i, id := range ids {
		if id != want[i] {
			t.Fatalf("IDs() = %v, want %v", ids, want)
		}
	}
}

func TestPlayedSet(t *testing.T) {
	l, _ := newTestLibrary()
	put(l, "a")
	put(l, "b")
	put(l, "c")

	l.MarkPlayed("a")
	l.MarkPlayed("b")

	unplayed := l.Unplayed()
	if len(unplayed) != 1 || unplayed[0] != "c" {
		t.Errorf("Unplayed() = %v, want [c]", unplayed)
	}
	if l.AllPlayed() {
		t.Error("AllPlayed should be false with c unplayed")
	}

	l.MarkPlayed("c")
	if !l.AllPlayed() {
		t.Error("AllPlayed should be true once every item is marked")
	}

	l.ResetPlayed()
	if len(l.Unplayed()) != 3 {
		t.Error("ResetPlayed should clear the whole set")
	}
}

func TestAllPlayed_EmptyLibraryIsFalse(t *testing.T) {
	l, _ := newTestLibrary()
	if l.AllPlayed() {
		t.Error("an empty library is never all-played")
	}
}

func TestSetPlayed_IgnoresUnknownIDs(t *testing.T) {
	l, _ := newTestLibrary()
	put(l, "a")
	put(l, "b")

	l.SetPlayed([]string{"a", "ghost"})

	played := l.Played()
	if _, ok := played["a"]; !ok {
		t.Error("a should be restored as played")
	}
	if _, ok := played["ghost"]; ok {
		t.Error("ids not in the library must be dropped on restore")
	}
}

func TestRemove_ClearsPlayedMark(t *testing.T) {
	l, _ := newTestLibrary()
	put(l, "a")
	l.MarkPlayed("a")
	l.Remove("a")

	if _, ok := l.Played()["a"]; ok {
		t.Error("removing an item must drop its played mark")
	}
}

func TestSetTargets_PrunesStaleItems(t *testing.T) {
	l, _ := newTestLibrary()
	put(l, "a")
	put(l, "b")
	put(l, "c")
	l.SetCurrent("b")

	l.SetTargets([]string{"a"})

	if _, ok := l.Get("c"); ok {
		t.Error("c is not targeted and should be pruned")
	}
	if _, ok := l.Get("b"); !ok {
		t.Error("b is current and its pruning must be deferred")
	}

	l.SetCurrent("a")
	if _, ok := l.Get("b"); ok {
		t.Error("b should be pruned once no longer current")
	}
}

func TestContainsValidFile(t *testing.T) {
	l, fs := newTestLibrary()
	put(l, "a")
	put(l, "b")
	afero.WriteFile(fs, "/media/a.mp4", []byte("x"), 0o644)

	if !l.ContainsValidFile("a") {
		t.Error("a has a file on disk")
	}
	if l.ContainsValidFile("b") {
		t.Error("b's file is missing")
	}
	if l.ContainsValidFile("ghost") {
		t.Error("unknown ids are never valid")
	}
}
