package ingest

import (
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// readMeta extracts display metadata for path. When tags are unreadable or
// carry no title, the filename stem is used and the item is flagged
// degraded so downstream display can treat the text as untrusted.
func (p *Pipeline) readMeta(path string) (title, artist string, degraded bool) {
	f, err := p.fs.Open(path)
	if err != nil {
		return fallbackTitle(path), "", true
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil || m.Title() == "" {
		return fallbackTitle(path), "", true
	}
	return m.Title(), m.Artist(), false
}

// fallbackTitle derives a display title from the filename: stem without
// extension, separators normalized to spaces.
func fallbackTitle(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.NewReplacer("_", " ", ".", " ").Replace(stem)
	return strings.TrimSpace(stem)
}
