package reconciler

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"srvsync/pkg/logging"
)

// TemplateWatcher watches the configuration template file and calls onChange
// when it is rewritten, so a template edit takes effect without waiting for
// the next tick.
//
// The watch is placed on the template's directory rather than the file
// itself; editors and config management tools typically replace the file,
// which would silently drop a direct file watch.
type TemplateWatcher struct {
	mu sync.Mutex

	path             string
	onChange         func()
	debounceInterval time.Duration
	pending          *time.Timer
}

// NewTemplateWatcher creates a watcher for the given template path.
func NewTemplateWatcher(path string, onChange func()) *TemplateWatcher {
	return &TemplateWatcher{
		path:             path,
		onChange:         onChange,
		debounceInterval: 500 * time.Millisecond,
	}
}

// Run watches until ctx is cancelled. Watcher errors are logged, never
// fatal; the periodic ticks keep reconciliation alive regardless.
func (w *TemplateWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	logging.Info("TemplateWatcher", "watching %s for template changes", w.path)

	for {
		select {
		case <-ctx.Done():
			w.cancelPending()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Error("TemplateWatcher", err, "watcher error")
		}
	}
}

// handleEvent debounces writes to the template file into one change
// notification.
func (w *TemplateWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(w.path) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.debounceInterval, func() {
		logging.Info("TemplateWatcher", "template %s changed", w.path)
		w.onChange()
	})
}

func (w *TemplateWatcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending != nil {
		w.pending.Stop()
		w.pending = nil
	}
}
