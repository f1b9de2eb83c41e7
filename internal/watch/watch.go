// Package watch reports when the database file is written by any process so
// cached reads can be invalidated.
package watch

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher coalesces writes to a SQLite database (and its WAL) into change
// signals, at most one per debounce window.
type Watcher struct {
	watcher  *fsnotify.Watcher
	dir      string
	names    map[string]bool
	debounce time.Duration
	logger   *slog.Logger

	changes chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

func New(dbPath string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	base := filepath.Base(dbPath)
	return &Watcher{
		watcher:  w,
		dir:      filepath.Dir(dbPath),
		names:    map[string]bool{base: true, base + "-wal": true},
		debounce: debounce,
		logger:   logger,
		changes:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}, nil
}

// Start watches the database directory. Watching the directory rather than
// the file survives SQLite replacing or truncating it.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return fmt.Errorf("watcher already running")
	}
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.running = true
	w.wg.Add(1)
	go w.loop()
	return nil
}

// Changes emits once per burst of writes. It is closed by Stop.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return w.watcher.Close()
	}
	w.running = false
	w.mu.Unlock()

	close(w.done)
	err := w.watcher.Close()
	w.wg.Wait()
	close(w.changes)
	if err != nil {
		return fmt.Errorf("close watcher: %w", err)
	}
	return nil
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !w.names[filepath.Base(ev.Name)] {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			select {
			case w.changes <- struct{}{}:
			default:
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Database watch error", slog.String("error", err.Error()))
		}
	}
}
