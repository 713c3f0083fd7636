// Package watcher reports changes to package directories with debouncing.
// Writes to Go sources and manifests are collected until the directories
// stay quiet for the debounce interval, then delivered as one batch.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a batch is delivered.
const DefaultDebounce = 300 * time.Millisecond

// Config holds watcher configuration options.
type Config struct {
	// Dirs are the package directories to watch (not recursive).
	Dirs []string
	// Debounce is the quiet period; zero means DefaultDebounce.
	Debounce time.Duration
	// Ignore lists base names whose changes are not reported, such as the
	// generated output file.
	Ignore []string
	// Extra lists non-Go base names that are reported, such as the manifest.
	Extra  []string
	Logger *slog.Logger
}

// Watcher monitors package directories for source changes.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	cfg       Config
	logger    *slog.Logger
}

// New creates a watcher and registers every directory.
func New(cfg Config) (*Watcher, error) {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	for _, dir := range cfg.Dirs {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	return &Watcher{fsWatcher: fsw, cfg: cfg, logger: logger}, nil
}

// Run delivers batches of changed directories to onChange until ctx is done.
// onChange runs on the watcher goroutine; events arriving meanwhile are
// batched for the next call.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context, dirs []string)) error {
	defer func() { _ = w.fsWatcher.Close() }()

	var timer *time.Timer
	pending := make(map[string]bool)

	fire := func() <-chan time.Time {
		if timer != nil {
			return timer.C
		}
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			if !w.isRelevant(event) {
				continue
			}
			w.logger.Debug("change detected", "file", event.Name, "op", event.Op.String())
			pending[filepath.Dir(event.Name)] = true

			if timer == nil {
				timer = time.NewTimer(w.cfg.Debounce)
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.cfg.Debounce)

		case <-fire():
			timer = nil
			if len(pending) == 0 {
				continue
			}
			dirs := make([]string, 0, len(pending))
			for dir := range pending {
				dirs = append(dirs, dir)
			}
			sort.Strings(dirs)
			clear(pending)
			onChange(ctx, dirs)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// isRelevant reports whether an event should trigger regeneration.
func (w *Watcher) isRelevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}

	base := filepath.Base(event.Name)
	for _, name := range w.cfg.Ignore {
		if base == name {
			return false
		}
	}
	for _, name := range w.cfg.Extra {
		if base == name {
			return true
		}
	}
	return strings.HasSuffix(base, ".go") && !strings.HasSuffix(base, "_test.go")
}
