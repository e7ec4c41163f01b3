// Package ingest fills the library store from a local media directory:
// an initial scan plus a filesystem watch, with display metadata read from
// tags and a filename fallback when tags are missing. It runs on background
// workers; the playback controller only ever sees the store.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/loophost/rotator/internal/store"
)

var mediaExts = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".webm": true,
	".mov":  true,
	".avi":  true,
	".mp3":  true,
	".m4a":  true,
	".flac": true,
	".ogg":  true,
	".opus": true,
}

// IsMediaFile reports whether path has a playable extension.
func IsMediaFile(path string) bool {
	return mediaExts[strings.ToLower(filepath.Ext(path))]
}

// Pipeline ingests files from one directory into the library store.
type Pipeline struct {
	fs  afero.Fs
	lib *store.Library
	dir string
	log *logrus.Entry

	mu     sync.Mutex
	byPath map[string]string // path -> item id, stable across rescans
}

// New creates a pipeline scanning dir on fs into lib.
func New(fs afero.Fs, lib *store.Library, dir string) *Pipeline {
	return &Pipeline{
		fs:     fs,
		lib:    lib,
		dir:    dir,
		log:    logrus.WithField("component", "ingest"),
		byPath: make(map[string]string),
	}
}

// Scan walks the media directory once, putting every playable file into
// the store and removing store entries whose files are gone. Removal of
// the currently playing item is deferred by the store.
func (p *Pipeline) Scan() error {
	var (
		ids   []string
		count int
		bytes uint64
	)

	err := afero.Walk(p.fs, p.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !IsMediaFile(path) {
			return nil
		}
		id := p.processFile(path)
		ids = append(ids, id)
		count++
		bytes += uint64(info.Size())
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan %s: %w", p.dir, err)
	}

	p.lib.SetTargets(ids)
	p.pruneStalePaths(ids)

	p.log.WithFields(logrus.Fields{
		"items": count,
		"size":  humanize.Bytes(bytes),
	}).Info("scan complete")
	return nil
}

// processFile reads metadata for path and upserts it into the store,
// reusing the id if the path was seen before.
func (p *Pipeline) processFile(path string) string {
	item := store.Item{
		ID:   p.idFor(path),
		Path: path,
	}
	item.Title, item.Artist, item.MetadataDegraded = p.readMeta(path)

	p.lib.Put(item)
	p.log.WithFields(logrus.Fields{
		"item":     item.ID,
		"title":    item.Title,
		"degraded": item.MetadataDegraded,
	}).Debug("item ingested")
	return item.ID
}

// removePath drops the item for path from the store, if known.
func (p *Pipeline) removePath(path string) {
	p.mu.Lock()
	id, ok := p.byPath[path]
	if ok {
		delete(p.byPath, path)
	}
	p.mu.Unlock()
	if !ok {
		return
	}
	p.lib.Remove(id)
	p.log.WithField("item", id).Debug("item removed")
}

func (p *Pipeline) idFor(path string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if id, ok := p.byPath[path]; ok {
		return id
	}
	id := uuid.NewString()
	p.byPath[path] = id
	return id
}

// pruneStalePaths drops path->id mappings whose ids are no longer targeted.
func (p *Pipeline) pruneStalePaths(ids []string) {
	live := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		live[id] = struct{}{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for path, id := range p.byPath {
		if _, ok := live[id]; !ok {
			delete(p.byPath, path)
		}
	}
}
