package review

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bibgraph/bibgraph/errors"
	"github.com/bibgraph/bibgraph/logger"
)

// ReloadCallback is called after a source change triggered a cache
// invalidation. Receives the freshly rebuilt result.
type ReloadCallback func(*Result)

// SourceWatcher watches the export and curated directories and invalidates
// the cache when a source file changes.
type SourceWatcher struct {
	cache   *Cache
	watcher *fsnotify.Watcher

	mu             sync.Mutex
	callbacks      []ReloadCallback
	debounceTimer  *time.Timer
	debouncePeriod time.Duration
}

// NewSourceWatcher creates a watcher over the given directories. Directories
// that do not exist are skipped; at least one must be watchable.
func NewSourceWatcher(cache *Cache, dirs ...string) (*SourceWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	watched := 0
	for _, dir := range dirs {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			logger.Warnw("Failed to watch source directory",
				"dir", dir,
				"error", err)
			continue
		}
		watched++
	}
	if watched == 0 {
		watcher.Close()
		return nil, errors.New("no watchable source directories")
	}

	return &SourceWatcher{
		cache:          cache,
		watcher:        watcher,
		debouncePeriod: 500 * time.Millisecond,
	}, nil
}

// OnReload registers a callback invoked after every source-triggered rebuild.
func (w *SourceWatcher) OnReload(callback ReloadCallback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Start begins watching for source changes.
func (w *SourceWatcher) Start() {
	go w.watchLoop()
}

// Stop stops watching.
func (w *SourceWatcher) Stop() error {
	return w.watcher.Close()
}

func (w *SourceWatcher) watchLoop() {
	log := logger.Named("review")
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !isSourceFile(event.Name) {
				continue
			}
			log.Infow("Source change detected",
				"file", event.Name,
				"op", event.Op.String())
			w.scheduleReload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warnw("Source watcher error", "error", err)
		}
	}
}

// scheduleReload debounces rapid file changes before rebuilding.
func (w *SourceWatcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debouncePeriod, w.reload)
}

func (w *SourceWatcher) reload() {
	log := logger.Named("review")
	result, err := w.cache.Reload()
	if err != nil {
		log.Errorw("Rebuild after source change failed", "error", err)
		return
	}
	log.Infow("Rebuilt after source change", "papers", len(result.Papers))

	w.mu.Lock()
	callbacks := make([]ReloadCallback, len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	for _, callback := range callbacks {
		callback(result)
	}
}

// isSourceFile keeps the watcher focused on export and curated text files.
func isSourceFile(path string) bool {
	return strings.HasSuffix(path, ".txt")
}
