package store

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 200 * time.Millisecond

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets how long the watcher waits for writes to settle.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatcherLogger sets the watcher logger.
func WithWatcherLogger(logger *zap.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// OnReload registers a callback invoked after each reload attempt with the
// resulting error, nil on success.
func OnReload(fn func(error)) WatcherOption {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// Watcher reloads strategy definitions from the seed file whenever it
// changes. Toggles are left alone so runtime edits survive.
type Watcher struct {
	path     string
	store    *Memory
	debounce time.Duration
	logger   *zap.Logger
	onReload func(error)
}

// NewWatcher builds a watcher for path feeding into store.
func NewWatcher(path string, store *Memory, options ...WatcherOption) *Watcher {
	w := &Watcher{
		path:     filepath.Clean(path),
		store:    store,
		debounce: defaultDebounce,
		logger:   zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(w)
		}
	}
	return w
}

// Run watches until ctx is cancelled. The parent directory is watched so
// editors that replace the file through a rename are still observed.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("store: create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("store: watch %s: %w", w.path, err)
	}
	w.logger.Info("watching strategy definitions", zap.String("path", w.path))

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("definitions file changed",
				zap.String("path", event.Name),
				zap.String("op", event.Op.String()),
			)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
		case <-fire:
			fire = nil
			w.reload()
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

func (w *Watcher) reload() {
	err := w.load()
	if err != nil {
		w.logger.Warn("reload strategy definitions failed", zap.String("path", w.path), zap.Error(err))
	}
	if w.onReload != nil {
		w.onReload(err)
	}
}

func (w *Watcher) load() error {
	doc, err := LoadFile(w.path)
	if err != nil {
		return err
	}
	if err := w.store.ReplaceDefinitions(doc.Definitions); err != nil {
		return err
	}
	w.logger.Info("strategy definitions reloaded",
		zap.String("path", w.path),
		zap.Int("definitions", len(doc.Definitions)),
	)
	return nil
}
