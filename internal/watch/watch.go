package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mgpai22/subtrack/internal/logging"
	"github.com/mgpai22/subtrack/internal/subtitle"
)

// Handler imports one caption file. Calls never overlap.
type Handler func(ctx context.Context, path string) error

type Watcher struct {
	dir     string
	settle  time.Duration
	handler Handler
	logger  *logging.Logger
	fsw     *fsnotify.Watcher
}

// New creates dir when missing and starts listening on it.
func New(dir string, settle time.Duration, handler Handler, logger *logging.Logger) (*Watcher, error) {
	if handler == nil {
		return nil, errors.New("watch handler is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create watch directory: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return &Watcher{
		dir:     dir,
		settle:  settle,
		handler: handler,
		logger:  logging.OrNop(logger),
		fsw:     fsw,
	}, nil
}

// Run blocks until ctx is cancelled or the underlying watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Infow("Watching for caption files", "dir", w.dir)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Watcher stopped")
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if !accepts(event) {
				w.logger.Debugw("Ignoring event", "event", event.String())
				continue
			}

			w.logger.Infow("New caption file", "path", event.Name)
			if err := sleep(ctx, w.settle); err != nil {
				return err
			}
			if err := w.handler(ctx, event.Name); err != nil {
				w.logger.Errorw("Import failed", "path", event.Name, "error", err)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.logger.Errorw("Watcher error", "error", err)
		}
	}
}

func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// created or moved-in files with a readable caption extension
func accepts(event fsnotify.Event) bool {
	return event.Has(fsnotify.Create) && subtitle.IsSupported(event.Name)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
