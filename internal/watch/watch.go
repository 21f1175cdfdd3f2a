// Package watch re-runs a per-file operation whenever matching files under a
// directory tree are created or written.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mcncl/mapdata/internal/batch"
	"github.com/mcncl/mapdata/internal/errors"
	"github.com/mcncl/mapdata/internal/logging"
)

// DefaultDebounce is how long the watcher waits for a burst of events to
// settle before handling the changed files.
const DefaultDebounce = 100 * time.Millisecond

// Handler processes one changed file, given its slash-separated path
// relative to the watched root.
type Handler func(ctx context.Context, rel string) error

// Watcher watches a directory tree for changes to files matching a set of
// doublestar patterns.
type Watcher struct {
	root     string
	patterns []string
	debounce time.Duration
	fsWatch  *fsnotify.Watcher
}

// New creates a Watcher and registers every directory under root. Files
// changed after New returns are reported by Run.
func New(root string, patterns []string) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.NewIOError("failed to start file watcher", err)
	}
	w := &Watcher{
		root:     root,
		patterns: patterns,
		debounce: DefaultDebounce,
		fsWatch:  fsWatch,
	}
	if _, err := w.addTree(root); err != nil {
		_ = fsWatch.Close()
		return nil, err
	}
	return w, nil
}

// SetDebounce changes the settle interval.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Close releases the underlying watcher.
func (w *Watcher) Close() error {
	return w.fsWatch.Close()
}

// addTree watches dir and every directory below it, returning the matching
// files already present.
func (w *Watcher) addTree(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsWatch.Add(path)
		}
		if rel, ok := w.relMatch(path); ok {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, errors.NewIOError(fmt.Sprintf("failed to watch '%s'", dir), err)
	}
	return files, nil
}

func (w *Watcher) relMatch(path string) (string, bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	return rel, batch.Match(w.patterns, rel)
}

// Run dispatches changed files to handle until ctx is done. Handler errors
// are logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	logger := logging.FromContext(ctx)

	pending := make(map[string]struct{})
	var timer *time.Timer
	var fire <-chan time.Time

	schedule := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.NewTimer(w.debounce)
		fire = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case evt, ok := <-w.fsWatch.Events:
			if !ok {
				return nil
			}
			if !evt.Has(fsnotify.Create) && !evt.Has(fsnotify.Write) {
				continue
			}
			info, err := os.Stat(evt.Name)
			if err != nil {
				// Removed again before we got to it.
				continue
			}
			if info.IsDir() {
				files, err := w.addTree(evt.Name)
				if err != nil {
					logger.Warn("failed to watch new directory", "dir", evt.Name, "error", err)
					continue
				}
				for _, rel := range files {
					pending[rel] = struct{}{}
				}
			} else if rel, ok := w.relMatch(evt.Name); ok {
				pending[rel] = struct{}{}
			} else {
				continue
			}
			schedule()

		case err, ok := <-w.fsWatch.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watcher error", "error", err)

		case <-fire:
			fire = nil
			changed := make([]string, 0, len(pending))
			for rel := range pending {
				changed = append(changed, rel)
			}
			clear(pending)
			sort.Strings(changed)

			for _, rel := range changed {
				if err := handle(ctx, rel); err != nil {
					logger.Warn("failed to process changed file", "file", rel, "error", err)
					continue
				}
				logger.Info("processed changed file", "file", rel)
			}
		}
	}
}
