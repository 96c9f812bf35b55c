// Package watcher implements the file system watcher using fsnotify.
//
// Changes are coalesced per path through a timer gate and published on a
// hub as events.FileChanged with a *events.BaseEvent as args.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/brianly1003/breve/internal/domain/events"
	"github.com/brianly1003/breve/internal/domain/ports"
	"github.com/brianly1003/breve/internal/sync"
)

const (
	// DefaultDebounce is used when no debounce delay is configured.
	DefaultDebounce = 100 * time.Millisecond

	// renameWindow is how long a rename waits for its matching create
	// before it is reported as a deletion.
	renameWindow = time.Second

	// renameSweep is how often stale renames are checked.
	renameSweep = 500 * time.Millisecond

	gateKeyPrefix = "watch:"
)

// pendingRename tracks a file that was renamed away; the new path is not
// known until a create arrives in the same directory.
type pendingRename struct {
	oldPath   string
	timestamp time.Time
}

// Watcher implements the FileWatcher port.
type Watcher struct {
	rootPath string
	hub      ports.Observable
	gate     ports.Gate
	debounce time.Duration
	clock    clock.Clock
	logger   zerolog.Logger

	mu             sync.RWMutex
	fsw            *fsnotify.Watcher
	ignorePatterns []string
	running        bool
	cancel         context.CancelFunc

	// changes holds the merged change type of every path waiting on the gate.
	changesMu sync.Mutex
	changes   map[string]events.FileChangeType

	// Rename tracking: maps directory -> pending rename info
	pendingRenamesMu sync.Mutex
	pendingRenames   map[string]pendingRename
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the per-path debounce delay.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithIgnorePatterns sets the initial ignore list.
func WithIgnorePatterns(patterns []string) Option {
	return func(w *Watcher) {
		w.ignorePatterns = append([]string(nil), patterns...)
	}
}

// WithClock sets the clock used for rename tracking.
func WithClock(c clock.Clock) Option {
	return func(w *Watcher) {
		if c != nil {
			w.clock = c
		}
	}
}

// WithLogger sets the watcher's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// New creates a watcher for rootPath that publishes on hub and debounces
// through gate. The gate may be shared with other producers.
func New(rootPath string, hub ports.Observable, gate ports.Gate, opts ...Option) *Watcher {
	w := &Watcher{
		rootPath:       rootPath,
		hub:            hub,
		gate:           gate,
		debounce:       DefaultDebounce,
		clock:          clock.New(),
		logger:         log.With().Str("component", "watcher").Logger(),
		changes:        make(map[string]events.FileChangeType),
		pendingRenames: make(map[string]pendingRename),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching the root directory.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.fsw = fsw

	watchCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true
	w.mu.Unlock()

	if err := w.addWatchRecursive(w.rootPath); err != nil {
		_ = w.Stop()
		return err
	}

	go w.eventLoop(watchCtx, fsw)

	// On macOS, deletions often arrive as a RENAME with no following CREATE.
	go w.pendingRenameCleanup(watchCtx)

	w.logger.Info().
		Str("path", w.rootPath).
		Dur("debounce", w.debounce).
		Msg("file watcher started")

	return nil
}

// Stop terminates file watching. Changes still waiting on the gate are
// dropped.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	w.running = false

	if w.cancel != nil {
		w.cancel()
	}

	w.changesMu.Lock()
	w.changes = make(map[string]events.FileChangeType)
	w.changesMu.Unlock()

	if w.fsw != nil {
		err := w.fsw.Close()
		w.fsw = nil
		w.logger.Info().Msg("file watcher stopped")
		return err
	}

	return nil
}

// AddIgnorePattern adds a pattern to the ignore list.
func (w *Watcher) AddIgnorePattern(pattern string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ignorePatterns = append(w.ignorePatterns, pattern)
}

// RemoveIgnorePattern removes a pattern from the ignore list.
func (w *Watcher) RemoveIgnorePattern(pattern string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, p := range w.ignorePatterns {
		if p == pattern {
			w.ignorePatterns = append(w.ignorePatterns[:i], w.ignorePatterns[i+1:]...)
			return
		}
	}
}

// IsRunning returns true if the watcher is active.
func (w *Watcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// addWatchRecursive adds watches to a directory and all subdirectories.
func (w *Watcher) addWatchRecursive(root string) error {
	w.mu.RLock()
	fsw := w.fsw
	w.mu.RUnlock()
	if fsw == nil {
		return nil
	}

	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip files/dirs we can't access
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && w.shouldIgnore(path) {
			return filepath.SkipDir
		}

		if err := fsw.Add(path); err != nil {
			w.logger.Warn().Err(err).Str("path", path).Msg("failed to add watch")
		}
		return nil
	})
}

// eventLoop handles fsnotify events.
func (w *Watcher) eventLoop(ctx context.Context, fsw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("watcher error")
		}
	}
}

// pendingRenameCleanup reports stale pending renames as deletions.
func (w *Watcher) pendingRenameCleanup(ctx context.Context) {
	ticker := w.clock.Ticker(renameSweep)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processStalePendingRenames()
		}
	}
}

// processStalePendingRenames publishes a deletion for every pending rename
// older than renameWindow.
func (w *Watcher) processStalePendingRenames() {
	now := w.clock.Now()

	var stale []string
	w.pendingRenamesMu.Lock()
	for dir, pending := range w.pendingRenames {
		if now.Sub(pending.timestamp) > renameWindow {
			delete(w.pendingRenames, dir)
			stale = append(stale, pending.oldPath)
		}
	}
	w.pendingRenamesMu.Unlock()

	// Publish outside the lock; listeners may call back into the watcher.
	for _, path := range stale {
		w.logger.Debug().Str("path", path).Msg("stale pending rename treated as deletion")
		w.publish(events.NewFileChangedEvent(path, events.FileChangeDeleted, 0))
	}
}

// handleEvent processes a single fsnotify event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	relPath, err := filepath.Rel(w.rootPath, event.Name)
	if err != nil {
		relPath = event.Name
	}

	if w.shouldIgnore(event.Name) || w.shouldIgnore(relPath) {
		return
	}

	var changeType events.FileChangeType
	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		changeType = events.FileChangeCreated
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.addWatchRecursive(event.Name)
		}
	case event.Op&fsnotify.Write == fsnotify.Write:
		changeType = events.FileChangeModified
	case event.Op&fsnotify.Remove == fsnotify.Remove:
		changeType = events.FileChangeDeleted
	case event.Op&fsnotify.Rename == fsnotify.Rename:
		// Matched with a CREATE in the same directory once it is flushed.
		dir := filepath.Dir(relPath)
		w.pendingRenamesMu.Lock()
		w.pendingRenames[dir] = pendingRename{
			oldPath:   relPath,
			timestamp: w.clock.Now(),
		}
		w.pendingRenamesMu.Unlock()
		w.logger.Debug().Str("old_path", relPath).Str("dir", dir).Msg("tracking pending rename")
		return
	default:
		return // chmod and anything else
	}

	w.queue(relPath, changeType)
}

// queue merges changeType into path's pending change and (re)arms its
// debounce timer.
func (w *Watcher) queue(path string, changeType events.FileChangeType) {
	w.changesMu.Lock()
	if existing, ok := w.changes[path]; ok {
		changeType = events.MergeChangeTypes(existing, changeType)
	}
	w.changes[path] = changeType
	w.changesMu.Unlock()

	w.gate.Debounce(gateKeyPrefix+path, w.flush, w, w.debounce, path)
}

// flush is the gate callback for a path whose debounce delay has passed.
func (w *Watcher) flush(_ any, args any) {
	path, ok := args.(string)
	if !ok {
		return
	}

	w.changesMu.Lock()
	changeType, ok := w.changes[path]
	delete(w.changes, path)
	w.changesMu.Unlock()

	if !ok || !w.IsRunning() {
		return
	}
	w.handleDebouncedEvent(path, changeType)
}

// handleDebouncedEvent publishes one coalesced change.
func (w *Watcher) handleDebouncedEvent(path string, changeType events.FileChangeType) {
	var size int64
	if changeType != events.FileChangeDeleted {
		if info, err := os.Stat(filepath.Join(w.rootPath, path)); err == nil {
			size = info.Size()
		}
	}

	// A create right after a rename in the same directory is the rename's
	// other half.
	if changeType == events.FileChangeCreated {
		dir := filepath.Dir(path)
		w.pendingRenamesMu.Lock()
		pending, hasPending := w.pendingRenames[dir]
		if hasPending {
			delete(w.pendingRenames, dir)
		}
		w.pendingRenamesMu.Unlock()

		if hasPending && w.clock.Since(pending.timestamp) < renameWindow {
			w.publish(events.NewFileRenamedEvent(pending.oldPath, path))
			w.logger.Debug().
				Str("old_path", pending.oldPath).
				Str("new_path", path).
				Msg("file renamed")
			return
		}
	}

	w.publish(events.NewFileChangedEvent(path, changeType, size))

	w.logger.Debug().
		Str("path", path).
		Str("change", string(changeType)).
		Int64("size", size).
		Msg("file changed")
}

func (w *Watcher) publish(e *events.BaseEvent) {
	w.hub.Publish(e.Name, e)
}

// shouldIgnore checks if any component of path matches an ignore pattern.
func (w *Watcher) shouldIgnore(path string) bool {
	w.mu.RLock()
	patterns := slices.Clone(w.ignorePatterns)
	w.mu.RUnlock()

	base := filepath.Base(path)
	parts := splitPath(path)
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
		for _, part := range parts {
			if matched, _ := filepath.Match(pattern, part); matched {
				return true
			}
		}
	}

	return false
}

// splitPath splits a path into its components.
func splitPath(path string) []string {
	var parts []string
	for path != "" && path != "/" && path != "." {
		dir, file := filepath.Split(path)
		if file != "" {
			parts = append([]string{file}, parts...)
		}
		path = filepath.Clean(dir)
	}
	return parts
}

var _ ports.FileWatcher = (*Watcher)(nil)
