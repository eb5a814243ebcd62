package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/declscan/internal/filter"
	"github.com/standardbeagle/declscan/internal/logging"
)

// FileEventType represents the type of file system event
type FileEventType int

const (
	FileEventCreate FileEventType = iota
	FileEventWrite
	FileEventRemove
	FileEventRename
)

func (t FileEventType) String() string {
	switch t {
	case FileEventCreate:
		return "create"
	case FileEventWrite:
		return "write"
	case FileEventRemove:
		return "remove"
	case FileEventRename:
		return "rename"
	}
	return "unknown"
}

// FileEvent is the last event seen for a path within one debounce window
type FileEvent struct {
	Path string
	Type FileEventType
}

// Watcher reports debounced batches of file changes below a root.
type Watcher struct {
	watcher  *fsnotify.Watcher
	exclude  *filter.GlobPathFilter
	debounce time.Duration
	logger   *logging.Logger
}

// NewWatcher watches root and every directory below it that exclude does not prune.
func NewWatcher(root string, exclude *filter.GlobPathFilter, debounce time.Duration, logger *logging.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fsw,
		exclude:  exclude,
		debounce: debounce,
		logger:   logging.OrDefault(logger),
	}
	if err := w.addWatches(root); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to add watches starting from %s: %w", root, err)
	}
	return w, nil
}

// Close releases the underlying watcher. Run closes it on return.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Run delivers batches to onBatch until ctx is canceled. Batches are sorted by path
// and delivered on the calling goroutine, so onBatch may run a scan synchronously;
// events arriving meanwhile are kept for the next batch.
func (w *Watcher) Run(ctx context.Context, onBatch func(ctx context.Context, events []FileEvent)) error {
	defer w.watcher.Close()

	pending := make(map[string]FileEventType)
	// Reset and Stop never leave a stale tick behind on go1.23+ timers
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.handleEvent(event, pending) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warning(fmt.Sprintf("file watcher error: %v", err))

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			batch := make([]FileEvent, 0, len(pending))
			for path, t := range pending {
				batch = append(batch, FileEvent{Path: path, Type: t})
			}
			clear(pending)
			slices.SortFunc(batch, func(a, b FileEvent) int { return strings.Compare(a.Path, b.Path) })

			w.logger.Debug(fmt.Sprintf("processing %d debounced file events", len(batch)))
			onBatch(ctx, batch)
		}
	}
}

// handleEvent records a file event and reports whether anything was added
func (w *Watcher) handleEvent(event fsnotify.Event, pending map[string]FileEventType) bool {
	path := event.Name

	info, err := os.Stat(path)
	if err != nil {
		// File might have been deleted or moved away
		if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
			pending[path] = FileEventRemove
			return true
		}
		return false
	}

	if info.IsDir() {
		// A new directory needs its own watches
		if event.Has(fsnotify.Create) && !w.excluded(path) {
			if err := w.addWatches(path); err != nil {
				w.logger.Warning(fmt.Sprintf("failed to watch new directory: %v", err), logging.Path(path))
			}
		}
		return false
	}

	var eventType FileEventType
	switch {
	case event.Has(fsnotify.Create):
		eventType = FileEventCreate
	case event.Has(fsnotify.Write):
		eventType = FileEventWrite
	case event.Has(fsnotify.Rename):
		eventType = FileEventRename
	default:
		return false // Ignore chmod
	}

	// a write right after a create is still a create
	if prev, ok := pending[path]; ok && prev == FileEventCreate {
		eventType = FileEventCreate
	}
	pending[path] = eventType
	return true
}

// addWatches recursively adds watches to all relevant directories
func (w *Watcher) addWatches(root string) error {
	// Track visited directories to prevent infinite loops from symlink cycles
	visitedDirs := make(map[string]bool)

	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}

		realPath, err := filepath.EvalSymlinks(path)
		if err != nil || visitedDirs[realPath] {
			return filepath.SkipDir
		}
		visitedDirs[realPath] = true

		if path != root && w.excluded(path) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			w.logger.Warning(fmt.Sprintf("failed to add watch: %v", err), logging.Path(path))
		}
		return nil
	})
}

func (w *Watcher) excluded(dir string) bool {
	return w.exclude != nil && w.exclude.ExcludesDir(dir)
}
