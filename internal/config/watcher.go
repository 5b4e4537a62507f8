// Config file change detection. The server reloads its render settings
// when the config file is rewritten, without a restart.

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/daygrid/daygrid/internal/paths"
)

// ///////////////////////////////////////////////
// Watcher
// ///////////////////////////////////////////////

// Watcher monitors the config file for changes using fsnotify with a
// stat-polling fallback. It watches the containing directory rather than
// the file itself so that editors which replace-by-rename (and
// [atomicfile.Write]) still produce events.
type Watcher struct {
	// dir is the directory containing the config file.
	dir string
	// events delivers a signal each time the config file changes.
	// Buffered to 1 so back-to-back writes coalesce.
	events chan struct{}
	// done is closed by [Watcher.Close] to stop goroutines.
	done chan struct{}
	// fsw is the underlying fsnotify watcher; nil when polling.
	fsw *fsnotify.Watcher
	// once makes Close idempotent.
	once sync.Once
	// polling is true after falling back to stat-based polling.
	polling atomic.Bool
	// pollInterval is the duration between stat calls in polling mode.
	pollInterval time.Duration
}

// NewWatcher creates a Watcher for the config file inside dataDir.
func NewWatcher(dataDir string) (*Watcher, error) {
	w := &Watcher{
		dir:          dataDir,
		events:       make(chan struct{}, 1),
		done:         make(chan struct{}),
		pollInterval: 2 * time.Second,
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Info("fsnotify unavailable, falling back to polling", "error", err)
		w.polling.Store(true)
		go w.poll()
		return w, nil
	}

	w.fsw = fsw
	if err := fsw.Add(dataDir); err != nil {
		slog.Info("cannot watch data dir, falling back to polling", "path", dataDir, "error", err)
		fsw.Close()
		w.fsw = nil
		w.polling.Store(true)
		go w.poll()
		return w, nil
	}

	go w.watch()
	return w, nil
}

// isConfigFile reports whether an event path is the config file.
func isConfigFile(name string) bool {
	return filepath.Base(name) == paths.ConfigFile
}

// watch forwards fsnotify write/create/rename events for the config file.
func (w *Watcher) watch() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			changed := event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
			if changed && isConfigFile(event.Name) {
				w.notify()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Info("fsnotify error, switching to polling", "error", err)
			w.fsw.Close()
			w.fsw = nil
			w.polling.Store(true)
			go w.poll()
			return
		}
	}
}

// poll periodically stats the config file and notifies when its
// modification time advances.
func (w *Watcher) poll() {
	lastMod := w.configMod()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			mod := w.configMod()
			if mod.After(lastMod) {
				lastMod = mod
				w.notify()
			}
		}
	}
}

// configMod returns the config file's modification time, or the zero time
// when it cannot be statted.
func (w *Watcher) configMod() time.Time {
	info, err := os.Stat(filepath.Join(w.dir, paths.ConfigFile))
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// notify delivers a coalesced change signal.
func (w *Watcher) notify() {
	select {
	case w.events <- struct{}{}:
	default:
	}
}

// Polling reports whether the watcher is using polling instead of fsnotify.
func (w *Watcher) Polling() bool {
	return w.polling.Load()
}

// Events returns the channel signaled on config file changes.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		if w.fsw != nil {
			if closeErr := w.fsw.Close(); closeErr != nil {
				err = fmt.Errorf("closing fsnotify watcher: %w", closeErr)
			}
		}
	})
	return err
}
