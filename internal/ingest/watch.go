package ingest

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"

	"github.com/loophost/rotator/internal/errmsg"
)

// Watch follows the media directory until ctx is cancelled, ingesting new
// or rewritten files and dropping removed ones. It watches the real
// filesystem, so it is only meaningful when the pipeline runs on the OS fs.
func (p *Pipeline) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch %s: %w", p.dir, err)
	}
	defer watcher.Close()

	if err := watcher.Add(p.dir); err != nil {
		return fmt.Errorf("watch %s: %w", p.dir, err)
	}
	p.log.WithField("dir", p.dir).Info("watching media directory")

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !IsMediaFile(event.Name) {
				continue
			}
			switch {
			case event.Op.Has(fsnotify.Create), event.Op.Has(fsnotify.Write):
				p.processFile(event.Name)
			case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
				p.removePath(event.Name)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.log.Warn(errmsg.FormatWith(errmsg.OpLibraryWatch, p.dir, err))
		}
	}
}
