package runner

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the tree must be quiet before a change triggers a run.
const DefaultDebounce = 200 * time.Millisecond

// minSettle bounds how briefly the tree must be quiet after a run before events count again.
const minSettle = 50 * time.Millisecond

// Watcher re-runs the step table whenever files under the repository root change.
type Watcher struct {
	logger *slog.Logger
	Ready  chan struct{}

	// Debounce is the quiet period before a run. Zero means DefaultDebounce.
	Debounce time.Duration

	newWatcher func() (*fsnotify.Watcher, error)
}

// NewWatcher creates a new Watcher.
func NewWatcher(logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Watcher{
		logger:     logger.With("component", "watcher"),
		Ready:      make(chan struct{}),
		newWatcher: fsnotify.NewWatcher,
	}
}

// Watch monitors root and calls run after each burst of changes. run is called on
// the watching goroutine, so runs never overlap. Changes made while it is running
// (the formatters' own writes) are discarded; changes made after it returns
// trigger another run. It blocks until ctx is done.
func (w *Watcher) Watch(ctx context.Context, root string, run func(context.Context)) error {
	watcher, err := w.newWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := w.addRecursive(watcher, root); err != nil {
		return err
	}

	w.logger.Info("Watching for changes", "root", root)
	if w.Ready != nil {
		close(w.Ready)
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", "error", err)
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if w.handleEvent(watcher, root, event) {
				timer.Reset(debounce)
				fire = timer.C
			}
		case <-fire:
			fire = nil
			run(ctx)
			if w.drain(ctx, watcher, root, time.Now(), max(debounce/2, minSettle)) {
				timer.Reset(debounce)
				fire = timer.C
			}
		}
	}
}

// drain consumes events until none arrive for the settle period, and reports
// whether any of them was a change made after runEnd. Writes made by the run
// itself carry an mtime at or before runEnd; file timestamps never run ahead of
// the wall clock.
func (w *Watcher) drain(ctx context.Context, watcher *fsnotify.Watcher, root string,
	runEnd time.Time, settle time.Duration,
) bool {
	seen := make(map[string]struct{})
	quiet := time.NewTimer(settle)
	defer quiet.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-quiet.C:
			return changedSince(seen, runEnd)
		case event, ok := <-watcher.Events:
			if !ok {
				return false
			}
			// still pick up new directories so they are watched from now on
			if w.handleEvent(watcher, root, event) {
				seen[event.Name] = struct{}{}
			}
			quiet.Reset(settle)
		}
	}
}

// changedSince reports whether any of paths was modified after t. Paths that no
// longer exist are skipped: a removal leaves nothing to format.
func changedSince(paths map[string]struct{}, t time.Time) bool {
	for p := range paths {
		info, err := os.Stat(p)
		if err == nil && info.ModTime().After(t) {
			return true
		}
	}
	return false
}

// handleEvent processes a single fsnotify event and reports whether it should trigger a run.
// New directories are added to the watcher.
func (w *Watcher) handleEvent(watcher *fsnotify.Watcher, root string, event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	if isHidden(root, event.Name) {
		return false
	}

	if event.Has(fsnotify.Create) {
		info, err := os.Stat(event.Name)
		if err == nil && info.IsDir() {
			if err := w.addRecursive(watcher, event.Name); err != nil {
				w.logger.Error("Failed to watch new directory", "path", event.Name, "error", err)
			}
		}
	}

	w.logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
	return true
}

// addRecursive adds the given path and all its non-hidden subdirectories to the watcher.
func (w *Watcher) addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if strings.HasPrefix(filepath.Base(path), ".") && path != root {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}

// isHidden reports whether any element of path below root starts with a dot.
func isHidden(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if part != "." && part != ".." && strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
