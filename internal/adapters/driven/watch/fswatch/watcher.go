// Package fswatch reports new and modified files under a directory tree.
package fswatch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
	"github.com/custodia-labs/insight/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.FileWatcher = (*Watcher)(nil)

// DefaultDebounce is used when New is given a non-positive debounce.
const DefaultDebounce = 500 * time.Millisecond

// minTick bounds how often pending paths are checked.
const minTick = 10 * time.Millisecond

// Watcher watches root and every non-hidden directory below it.
type Watcher struct {
	root     string
	filter   func(path string) bool
	debounce time.Duration
}

// New creates a watcher. filter, when non-nil, decides which files are reported.
func New(root string, filter func(path string) bool, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		root:     filepath.Clean(root),
		filter:   filter,
		debounce: debounce,
	}
}

// Root returns the watched directory.
func (w *Watcher) Root() string {
	return w.root
}

// Debounce returns the quiet period before a path is emitted.
func (w *Watcher) Debounce() time.Duration {
	return w.debounce
}

// Watch starts watching. A file written several times within the debounce
// period is emitted once. Paths due in the same tick are emitted sorted.
func (w *Watcher) Watch(ctx context.Context) (<-chan string, error) {
	info, err := os.Stat(w.root)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", w.root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, w.root)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.addTree(fw, w.root); err != nil {
		fw.Close()
		return nil, err
	}

	out := make(chan string)
	go w.run(ctx, fw, out)
	return out, nil
}

func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher, out chan<- string) {
	defer close(out)
	defer fw.Close()

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(max(w.debounce/4, minTick))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if path := w.handleFsEvent(fw, event); path != "" {
				pending[path] = time.Now()
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			logger.Warn("watch %s: %v", w.root, err)

		case now := <-ticker.C:
			for _, path := range due(pending, now, w.debounce) {
				delete(pending, path)
				select {
				case out <- path:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// handleFsEvent returns the file path to report for event, or "" to ignore it.
// Newly created directories are added to fw.
func (w *Watcher) handleFsEvent(fw *fsnotify.Watcher, event fsnotify.Event) string {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return ""
	}
	if w.hidden(event.Name) {
		return ""
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return ""
	}
	if info.IsDir() {
		if event.Has(fsnotify.Create) && fw != nil {
			if err := w.addTree(fw, event.Name); err != nil {
				logger.Warn("%v", err)
			}
		}
		return ""
	}

	if w.filter != nil && !w.filter(event.Name) {
		return ""
	}
	return event.Name
}

func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.hidden(path) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// hidden checks path relative to the root so a hidden root still works.
func (w *Watcher) hidden(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return isHidden(filepath.Base(path))
	}
	return isHidden(rel)
}

// due returns pending paths untouched for at least debounce, sorted.
func due(pending map[string]time.Time, now time.Time, debounce time.Duration) []string {
	var paths []string
	for path, last := range pending {
		if now.Sub(last) >= debounce {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if len(part) > 1 && part[0] == '.' && part != ".." {
			return true
		}
	}
	return false
}
