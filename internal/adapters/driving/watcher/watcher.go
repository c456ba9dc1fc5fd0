// Package watcher indexes files as they appear in a directory.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driving"
	"github.com/custodia-labs/docmind/internal/logger"
)

// DefaultDebounce is how long a file must be quiet before it is indexed.
const DefaultDebounce = 500 * time.Millisecond

// Action is what the watcher does in response to a file event.
type Action int

// Actions derived from file events.
const (
	ActionNone Action = iota
	ActionIndex
	ActionRemove
)

// Config configures a Watcher.
type Config struct {
	// Dir is the directory to watch. Required.
	Dir string

	// Debounce delays indexing until writes settle (default: 500ms).
	Debounce time.Duration

	// Scan indexes the supported files already in Dir on start.
	Scan bool
}

// Watcher uploads supported files created or written in a directory.
//
// A file written again replaces the document indexed for it earlier in
// the same run: the new version is indexed before the old document is
// deleted, so a failed upload keeps the previous version searchable. A
// removed file deletes its document. Subdirectories are not watched.
type Watcher struct {
	docs     driving.DocumentService
	dir      string
	debounce time.Duration
	scan     bool

	mu      sync.Mutex
	pending map[string]Action
	indexed map[string]string // path -> document ID
	stale   []string          // replaced documents whose delete failed
}

// New creates a watcher over the document service.
func New(docs driving.DocumentService, cfg Config) (*Watcher, error) {
	if docs == nil {
		return nil, errors.New("watcher: document service is required")
	}
	info, err := os.Stat(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("watcher: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watcher: %s is not a directory", cfg.Dir)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	return &Watcher{
		docs:     docs,
		dir:      cfg.Dir,
		debounce: cfg.Debounce,
		scan:     cfg.Scan,
		pending:  make(map[string]Action),
		indexed:  make(map[string]string),
	}, nil
}

// Run watches the directory until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logger.Info("Watching %s", w.dir)

	if w.scan {
		if err := w.scanExisting(ctx); err != nil {
			return err
		}
	}

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if action := HandleEvent(event); action != ActionNone {
				w.queue(event.Name, action)
				timer.Reset(w.debounce)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)
		case <-timer.C:
			w.Flush(ctx)
		}
	}
}

// HandleEvent maps a file event to an action. Directories, hidden files,
// unsupported formats and permission changes are ignored.
func HandleEvent(event fsnotify.Event) Action {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return ActionNone
	}
	if _, err := domain.FormatFromFilename(name); err != nil {
		return ActionNone
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return ActionRemove
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
			return ActionNone
		}
		return ActionIndex
	default:
		return ActionNone
	}
}

func (w *Watcher) queue(path string, action Action) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[path] = action
}

func (w *Watcher) scanExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("scan %s: %w", w.dir, err)
	}
	for _, e := range entries {
		path := filepath.Join(w.dir, e.Name())
		if HandleEvent(fsnotify.Event{Name: path, Op: fsnotify.Create}) == ActionIndex {
			w.queue(path, ActionIndex)
		}
	}
	w.Flush(ctx)
	return nil
}

// Flush retries deletes that failed earlier, then applies every queued
// action in path order. Failures are logged; the watcher keeps running.
func (w *Watcher) Flush(ctx context.Context) {
	w.retryStale(ctx)

	w.mu.Lock()
	pending := w.pending
	w.pending = make(map[string]Action)
	w.mu.Unlock()

	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		if err := w.apply(ctx, p, pending[p]); err != nil {
			logger.Warn("%s: %v", filepath.Base(p), err)
		}
	}
}

func (w *Watcher) apply(ctx context.Context, path string, action Action) error {
	if action == ActionRemove {
		return w.forget(ctx, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	result, err := w.docs.Upload(ctx, []domain.Upload{{Filename: filepath.Base(path), Data: data}})
	if err != nil {
		return err
	}
	if len(result.DocumentIDs) == 0 {
		return nil
	}
	id := result.DocumentIDs[0]

	w.mu.Lock()
	previous, replaced := w.indexed[path]
	w.indexed[path] = id
	w.mu.Unlock()
	logger.Info("Indexed %s as %s (%d chunks)", filepath.Base(path), id, result.ChunksCreated)

	if replaced {
		if _, err := w.docs.Delete(ctx, previous); err != nil {
			w.mu.Lock()
			w.stale = append(w.stale, previous)
			w.mu.Unlock()
			return fmt.Errorf("delete previous document %s: %w", previous, err)
		}
		logger.Debug("Removed previous document %s for %s", previous, filepath.Base(path))
	}
	return nil
}

// forget deletes the document indexed for path, if any. The path stays
// tracked until the delete succeeds.
func (w *Watcher) forget(ctx context.Context, path string) error {
	w.mu.Lock()
	id, ok := w.indexed[path]
	w.mu.Unlock()
	if !ok {
		return nil
	}

	if _, err := w.docs.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}

	w.mu.Lock()
	if w.indexed[path] == id {
		delete(w.indexed, path)
	}
	w.mu.Unlock()
	logger.Debug("Removed document %s for %s", id, filepath.Base(path))
	return nil
}

func (w *Watcher) retryStale(ctx context.Context) {
	w.mu.Lock()
	stale := w.stale
	w.stale = nil
	w.mu.Unlock()

	var failed []string
	for _, id := range stale {
		if _, err := w.docs.Delete(ctx, id); err != nil {
			logger.Warn("delete replaced document %s: %v", id, err)
			failed = append(failed, id)
		}
	}
	if len(failed) > 0 {
		w.mu.Lock()
		w.stale = append(failed, w.stale...)
		w.mu.Unlock()
	}
}

// Stale returns replaced document IDs still waiting to be deleted.
func (w *Watcher) Stale() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.stale...)
}

// Indexed returns the document ID indexed for path during this run.
func (w *Watcher) Indexed(path string) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	id, ok := w.indexed[path]
	return id, ok
}
