package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when a watcher is created with a zero window.
const DefaultDebounce = 300 * time.Millisecond

// Change is the kind of filesystem operation seen on the watched file.
type Change string

const (
	Created Change = "create"
	Written Change = "write"
	Removed Change = "remove"
	Renamed Change = "rename"
)

// Gone reports whether the file no longer exists at its path.
func (c Change) Gone() bool {
	return c == Removed || c == Renamed
}

// ChangeEvent is a debounced change to the watched file.
type ChangeEvent struct {
	Path   string
	Change Change
}

// FileWatcher watches a single file. It watches the parent directory so
// that editors which save by renaming a temp file over the original are
// still seen.
type FileWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	filter   *PatternFilter
	debounce time.Duration
	onChange func(ChangeEvent)
}

// NewFileWatcher starts watching path. Events are queued from this point on,
// and delivered once Run is called.
func NewFileWatcher(path string, debounce time.Duration, onChange func(ChangeEvent)) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	if debounce == 0 {
		debounce = DefaultDebounce
	}
	return &FileWatcher{
		path:     abs,
		watcher:  w,
		filter:   NewPatternFilter([]string{filepath.Base(abs)}, EditorTempPatterns),
		debounce: debounce,
		onChange: onChange,
	}, nil
}

// Path returns the absolute path being watched.
func (w *FileWatcher) Path() string {
	return w.path
}

// Run delivers debounced change events until the context is cancelled. The
// underlying watcher is closed when Run returns.
func (w *FileWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	debouncer := NewDebouncer(w.debounce, func(e ChangeEvent) {
		if w.onChange != nil {
			w.onChange(e)
		}
	})
	defer debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", w.path, err)
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.filter.Matches(event.Name) {
				continue
			}
			if change, known := classify(event.Op); known {
				debouncer.Trigger(ChangeEvent{Path: w.path, Change: change})
			}
		}
	}
}

func classify(op fsnotify.Op) (Change, bool) {
	for _, c := range []struct {
		op     fsnotify.Op
		change Change
	}{
		{fsnotify.Create, Created},
		{fsnotify.Write, Written},
		{fsnotify.Remove, Removed},
		{fsnotify.Rename, Renamed},
	} {
		if op.Has(c.op) {
			return c.change, true
		}
	}
	return "", false
}
