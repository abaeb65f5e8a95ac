package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"bastion-hq/gateway/pkg/retrieval"
)

// DefaultDebounceInterval is the quiet period before a changed seed file is
// reloaded.
const DefaultDebounceInterval = 200 * time.Millisecond

// Seeder receives documents loaded from the seed file.
type Seeder interface {
	Seed(docs []retrieval.Document) int
}

// Watcher reloads a seed file into a Seeder whenever it changes. Documents
// already present are left untouched, so edits only ever add documents.
type Watcher struct {
	path     string
	seeder   Seeder
	interval time.Duration
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a watcher for the seed file at path. A non-positive
// interval selects DefaultDebounceInterval.
func NewWatcher(path string, seeder Seeder, interval time.Duration) (*Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("seed file path cannot be empty")
	}
	if interval <= 0 {
		interval = DefaultDebounceInterval
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve seed file path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		path:     abs,
		seeder:   seeder,
		interval: interval,
		watcher:  fw,
		logger:   slog.Default().With("component", "corpus.watcher"),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch blocks until ctx is cancelled or Stop is called. The parent
// directory is watched so that editors replacing the file by rename are
// still noticed.
func (w *Watcher) Watch(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer close(w.doneCh)

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %q: %w", w.path, err)
	}

	w.logger.Info("seed file watcher started",
		"path", w.path,
		"debounce_ms", w.interval.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("seed file watcher stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.Info("seed file watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.schedule()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("seed file watcher error", "error", err)
		}
	}
}

// Reload reads the seed file and hands its documents to the seeder.
func (w *Watcher) Reload() error {
	docs, err := LoadFile(w.path)
	if err != nil {
		return err
	}

	added := w.seeder.Seed(docs)
	w.logger.Info("seed file reloaded", "path", w.path, "documents", len(docs), "added", added)
	return nil
}

// Stop stops watching and cancels a pending reload.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	running := w.running
	w.running = false
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.interval, func() {
		if err := w.Reload(); err != nil {
			w.logger.Error("seed file reload failed", "path", w.path, "error", err)
		}
	})
}
