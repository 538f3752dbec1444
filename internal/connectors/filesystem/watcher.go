// Package filesystem watches an indexed folder and re-indexes files as
// they are created or changed.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nordvik-labs/kilde/internal/core/ports/driving"
	"github.com/nordvik-labs/kilde/internal/logger"
)

// DefaultDebounce is how long a file must stay quiet before it is indexed.
const DefaultDebounce = 2 * time.Second

// ChangeType classifies a filesystem event.
type ChangeType int

// Change types.
const (
	ChangeIndex ChangeType = iota + 1
	ChangeRemoved
)

// Change is a filtered filesystem event.
type Change struct {
	Type ChangeType
	Path string
}

// Watcher re-indexes matching files under a folder when they change.
type Watcher struct {
	indexer   driving.IndexService
	root      string
	patterns  []string
	recursive bool
	site      string
	debounce  time.Duration

	mu      sync.Mutex
	pending map[string]time.Time
}

// NewWatcher creates a watcher for req.Folder. Patterns are matched
// against base names, ignoring case.
func NewWatcher(indexer driving.IndexService, req driving.IndexRequest, patterns []string) *Watcher {
	lowered := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			lowered = append(lowered, p)
		}
	}
	return &Watcher{
		indexer:   indexer,
		root:      req.Folder,
		patterns:  lowered,
		recursive: req.Recursive,
		site:      req.Site,
		debounce:  DefaultDebounce,
		pending:   make(map[string]time.Time),
	}
}

// SetDebounce overrides the quiet period.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Watch blocks until ctx is cancelled, indexing files as they settle.
func (w *Watcher) Watch(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := w.addTree(fsw, w.root); err != nil {
		return err
	}
	logger.Info("watch: watching %s", w.root)

	tick := time.NewTicker(w.debounce / 2)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if w.recursive && event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !isHidden(event.Name) {
					if err := w.addTree(fsw, event.Name); err != nil {
						logger.Warn("watch: %v", err)
					}
					continue
				}
			}
			change := w.handleFsEvent(event)
			if change == nil {
				continue
			}
			switch change.Type {
			case ChangeIndex:
				w.schedule(change.Path, time.Now())
			case ChangeRemoved:
				w.unschedule(change.Path)
				logger.Info("watch: %s removed; its record stays until the next bootstrap", filepath.Base(change.Path))
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: %v", err)
		case now := <-tick.C:
			for _, path := range w.due(now) {
				if err := w.indexer.IndexFile(ctx, path, w.site); err != nil {
					logger.Warn("watch: %s: %v", filepath.Base(path), err)
					continue
				}
				logger.Info("watch: indexed %s", filepath.Base(path))
			}
		}
	}
}

// handleFsEvent filters an event down to a change worth acting on.
// Directories, hidden files and non-matching names yield nil.
func (w *Watcher) handleFsEvent(event fsnotify.Event) *Change {
	if isHidden(event.Name) || !w.matches(event.Name) {
		return nil
	}
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return &Change{Type: ChangeRemoved, Path: event.Name}
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}
		return &Change{Type: ChangeIndex, Path: event.Name}
	default:
		return nil
	}
}

func (w *Watcher) addTree(fsw *fsnotify.Watcher, root string) error {
	if !w.recursive {
		return fsw.Add(root)
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && isHidden(d.Name()) {
			return fs.SkipDir
		}
		if err := fsw.Add(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) schedule(path string, at time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[path] = at
}

func (w *Watcher) unschedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.pending, path)
}

// due removes and returns the paths that have been quiet for the debounce period.
func (w *Watcher) due(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var ready []string
	for path, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	return ready
}

func (w *Watcher) matches(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	for _, p := range w.patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

// isHidden reports whether the base name starts with a dot.
func isHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}
