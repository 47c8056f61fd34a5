package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"recut/internal/logging"
)

const defaultDebounce = 300 * time.Millisecond

// Handler receives the new file content.
type Handler func(ctx context.Context, text string) error

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long the file must stay quiet before the handler runs.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logging.NewComponentLogger(logger, "watch")
	}
}

// Watcher calls a Handler when one file changes.
type Watcher struct {
	path     string
	handler  Handler
	debounce time.Duration
	logger   *slog.Logger
	fs       *fsnotify.Watcher
	last     string
}

// New watches path, which must exist. Its current content is the baseline
// that later saves are compared against.
func New(path string, handler Handler, opts ...Option) (*Watcher, error) {
	if handler == nil {
		return nil, errors.New("watch: handler is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve watch path: %w", err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read watched file: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	w := &Watcher{
		path:     abs,
		handler:  handler,
		debounce: defaultDebounce,
		logger:   logging.NewNop(),
		fs:       fsw,
		last:     string(data),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Run processes events until ctx ends, then returns nil. It closes the
// underlying watcher on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()
	logger := logging.WithContext(ctx, w.logger)
	logger.Info("watching transcript",
		logging.String(logging.FieldEventType, "watch_started"),
		logging.String("path", w.path),
	)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("watch stopped", logging.String(logging.FieldEventType, "watch_stopped"))
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if !w.relevant(event) {
				continue
			}
			timer.Reset(w.debounce)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			logging.WarnWithContext(logger, "watcher error", "watch_error",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "saves may be missed until the next change"),
			)

		case <-timer.C:
			w.fire(ctx, logger)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

func (w *Watcher) fire(ctx context.Context, logger *slog.Logger) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		// Mid-rename saves briefly remove the file; the Create that follows
		// triggers another read.
		logger.Debug("transcript unreadable", logging.Error(err))
		return
	}
	text := string(data)
	if text == w.last {
		return
	}
	w.last = text
	logger.Info("transcript changed",
		logging.String(logging.FieldEventType, "transcript_changed"),
		logging.Int("bytes", len(data)),
	)
	if err := w.handler(ctx, text); err != nil {
		logging.WarnWithContext(logger, "transcript handler failed", "watch_handler_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix the transcript and save again"),
			logging.String(logging.FieldImpact, "output was not regenerated"),
		)
	}
}
