package ingest

import (
	"testing"

	"github.com/spf13/afero"

	"github.com/loophost/rotator/internal/store"
)

func newTestPipeline() (*Pipeline, *store.Library, afero.Fs) {
	fs := afero.NewMemMapFs()
	fs.MkdirAll("/media", 0o755)
	lib := store.New(fs)
	return New(fs, lib, "/media"), lib, fs
}

func writeMedia(t *testing.T, fs afero.Fs, path string) {
	t.Helper()
	if err := afero.WriteFile(fs, path, []byte("not real media"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScan_IngestsMediaFiles(t *testing.T) {
	p, lib, fs := newTestPipeline()
	writeMedia(t, fs, "/media/clip_one.mp4")
	writeMedia(t, fs, "/media/sub/clip_two.mkv")
	writeMedia(t, fs, "/media/notes.txt")

	if err := p.Scan(); err != nil {
		t.Fatal(err)
	}

	if lib.Len() != 2 {
		t.Fatalf("library has %d items, want 2", lib.Len())
	}
	if _, ok := lib.ByPath("/media/notes.txt"); ok {
		t.Error("non-media files must not be ingested")
	}
}

func TestScan_FallbackTitleWhenTagsUnreadable(t *testing.T) {
	p, lib, fs := newTestPipeline()
	writeMedia(t, fs, "/media/summer_trip.2024.mp4")

	if err := p.Scan(); err != nil {
		t.Fatal(err)
	}

	item, ok := lib.ByPath("/media/summer_trip.2024.mp4")
	if !ok {
		t.Fatal("item not ingested")
	}
	if item.Title != "summer trip 2024" {
		t.Errorf("Title = %q, want filename fallback", item.Title)
	}
	if !item.MetadataDegraded {
		t.Error("items with unreadable tags must be flagged degraded")
	}
}

func TestScan_StableIDsAcrossRescans(t *testing.T) {
	p, lib, fs := newTestPipeline()
	writeMedia(t, fs, "/media/a.mp4")

	if err := p.Scan(); err != nil {
		t.Fatal(err)
	}
	first, _ := lib.ByPath("/media/a.mp4")

	if err := p.Scan(); err != nil {
		t.Fatal(err)
	}
	second, _ := lib.ByPath("/media/a.mp4")

	if first.ID != second.ID {
		t.Errorf("id changed across rescans: %s != %s", first.ID, second.ID)
	}
}

func TestScan_RemovesDeletedFiles(t *testing.T) {
	p, lib, fs := newTestPipeline()
	writeMedia(t, fs, "/media/a.mp4")
	writeMedia(t, fs, "/media/b.mp4")
	if err := p.Scan(); err != nil {
		t.Fatal(err)
	}

	if err := fs.Remove("/media/b.mp4"); err != nil {
		t.Fatal(err)
	}
	if err := p.Scan(); err != nil {
		t.Fatal(err)
	}

	if lib.Len() != 1 {
		t.Fatalf("library has %d items, want 1 after deletion", lib.Len())
	}
	if _, ok := lib.ByPath("/media/b.mp4"); ok {
		t.Error("deleted file's item should be gone")
	}
}

func TestScan_DefersRemovalOfCurrentItem(t *testing.T) {
	p, lib, fs := newTestPipeline()
	writeMedia(t, fs, "/media/a.mp4")
	writeMedia(t, fs, "/media/b.mp4")
	if err := p.Scan(); err != nil {
		t.Fatal(err)
	}

	playing, _ := lib.ByPath("/media/a.mp4")
	lib.SetCurrent(playing.ID)

	fs.Remove("/media/a.mp4")
	if err := p.Scan(); err != nil {
		t.Fatal(err)
	}

	if _, ok := lib.Get(playing.ID); !ok {
		t.Fatal("the currently playing item must survive the rescan")
	}

	lib.SetCurrent("")
	if _, ok := lib.Get(playing.ID); ok {
		t.Error("deferred removal should apply once the item is no longer current")
	}
}

func TestRemovePath(t *testing.T) {
	p, lib, fs := newTestPipeline()
	writeMedia(t, fs, "/media/a.mp4")
	if err := p.Scan(); err != nil {
		t.Fatal(err)
	}

	p.removePath("/media/a.mp4")
	if lib.Len() != 0 {
		t.Error("removePath should drop the item")
	}

	p.removePath("/media/unknown.mp4") // unknown paths are a no-op
}

func TestIsMediaFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/media/a.mp4", true},
		{"/media/a.MKV", true},
		{"/media/a.flac", true},
		{"/media/a.txt", false},
		{"/media/noext", false},
	}
	for _, tt := range tests {
		if got := IsMediaFile(tt.path); got != tt.want {
			t.Errorf("IsMediaFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestFallbackTitle(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/media/summer_trip.mp4", "summer trip"},
		{"/media/one.two.three.mkv", "one two three"},
		{"/media/plain.mp4", "plain"},
	}
	for _, tt := range tests {
		if got := fallbackTitle(tt.path); got != tt.want {
			t.Errorf("fallbackTitle(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
