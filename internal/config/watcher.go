package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a config file on change and hands the result to a
// callback, debounced so a burst of writes (editors that write via a
// temp file + rename) only triggers one reload.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewWatcher creates a Watcher for path. Call Start to begin watching.
func NewWatcher(path string, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{path: path, debounce: 250 * time.Millisecond, logger: logger}
}

// Start begins watching the config file's directory (fsnotify tracks
// renames more reliably at the directory level than the file level)
// and invokes onReload with the freshly-loaded config on each change
// that parses successfully. Parse errors are logged and skipped so a
// transient half-written file never tears down the watcher.
func (w *Watcher) Start(ctx context.Context, onReload func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	w.mu.Lock()
	w.watcher = watcher
	w.cancel = cancel
	w.mu.Unlock()

	w.wg.Add(1)
	go w.loop(watchCtx, watcher, onReload)
	return nil
}

func (w *Watcher) loop(ctx context.Context, watcher *fsnotify.Watcher, onReload func(*Config)) {
	defer w.wg.Done()

	var mu sync.Mutex
	var timer *time.Timer
	scheduleReload := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.debounce, func() {
			cfg, err := Load(w.path)
			if err != nil {
				w.logger.Warn("config reload failed", "path", w.path, "error", err)
				return
			}
			onReload(cfg)
		})
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				scheduleReload()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	watcher := w.watcher
	w.watcher = nil
	w.mu.Unlock()

	var err error
	if watcher != nil {
		err = watcher.Close()
	}
	w.wg.Wait()
	return err
}
