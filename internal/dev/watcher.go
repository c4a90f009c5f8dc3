package dev

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

// ChangeOp is the kind of file change.
type ChangeOp int

const (
	ChangeWrite ChangeOp = iota
	ChangeRemove
)

func (op ChangeOp) String() string {
	if op == ChangeRemove {
		return "remove"
	}
	return "write"
}

// Change represents a detected module file change.
type Change struct {
	Path string
	Op   ChangeOp
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Paths are the directories to watch.
	Paths []string

	// Ignore patterns to skip (globs).
	Ignore []string

	// Interval is the polling interval.
	Interval time.Duration
}

// DefaultIgnore contains default patterns to ignore.
var DefaultIgnore = []string{
	".git",
	"node_modules",
	"tmp",
	"*.tmp",
	"*.swp",
	"*~",
}

// Watcher polls module files for changes.
type Watcher struct {
	config      WatcherConfig
	onChange    func(Change)
	mu          sync.Mutex
	running     bool
	initialized bool
	stopCh      chan struct{}
	timestamps  map[string]time.Time
}

// NewWatcher creates a new file watcher.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Interval == 0 {
		config.Interval = 100 * time.Millisecond
	}
	if len(config.Ignore) == 0 {
		config.Ignore = DefaultIgnore
	}

	return &Watcher{
		config:     config,
		timestamps: make(map[string]time.Time),
	}
}

// OnChange sets the callback for file changes.
func (w *Watcher) OnChange(fn func(Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Files returns the module files currently known to the watcher, sorted.
func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	files := make([]string, 0, len(w.timestamps))
	for p := range w.timestamps {
		files = append(files, p)
	}
	slices.Sort(files)
	return files
}

// Scan records the current state of the watched paths without reporting
// changes. Start scans implicitly when it has not been called.
func (w *Watcher) Scan() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.walk(func(p string, info os.FileInfo) {
		w.timestamps[p] = info.ModTime()
	})
	w.initialized = true
}

// Start begins watching for file changes. It blocks until ctx is done or
// Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	initialized := w.initialized
	w.mu.Unlock()

	if !initialized {
		w.Scan()
	}

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			w.checkForChanges()
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

// IsRunning returns whether the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// walk calls fn for every module file under the watched paths. Ignore
// patterns match the path relative to its root. Callers hold w.mu.
func (w *Watcher) walk(fn func(p string, info os.FileInfo)) {
	for _, root := range w.config.Paths {
		filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			rel, err := filepath.Rel(root, p)
			if err != nil {
				rel = filepath.Base(p)
			}
			if info.IsDir() {
				if p != root && w.shouldIgnore(rel) {
					return filepath.SkipDir
				}
				return nil
			}
			if w.shouldIgnore(rel) || !IsModuleFile(p) {
				return nil
			}
			fn(p, info)
			return nil
		})
	}
}

// checkForChanges scans for modified, new and deleted files.
func (w *Watcher) checkForChanges() {
	w.mu.Lock()
	callback := w.onChange
	if callback == nil {
		w.mu.Unlock()
		return
	}

	var changes []Change
	seen := make(map[string]struct{}, len(w.timestamps))
	w.walk(func(p string, info os.FileInfo) {
		seen[p] = struct{}{}
		lastMod, exists := w.timestamps[p]
		modTime := info.ModTime()
		if !exists || modTime.After(lastMod) {
			w.timestamps[p] = modTime
			changes = append(changes, Change{Path: p, Op: ChangeWrite})
		}
	})

	for p := range w.timestamps {
		if _, ok := seen[p]; !ok {
			delete(w.timestamps, p)
			changes = append(changes, Change{Path: p, Op: ChangeRemove})
		}
	}
	w.mu.Unlock()

	slices.SortFunc(changes, func(a, b Change) int { return strings.Compare(a.Path, b.Path) })
	for _, change := range changes {
		callback(change)
	}
}

// shouldIgnore checks if a root-relative path should be ignored.
func (w *Watcher) shouldIgnore(relPath string) bool {
	name := filepath.Base(relPath)
	normalized := filepath.ToSlash(relPath)

	for _, pattern := range w.config.Ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}

		if name == pattern {
			return true
		}

		hasPathSep := strings.Contains(pattern, "/") || strings.Contains(pattern, "\\")
		if strings.ContainsAny(pattern, "*?[") {
			if hasPathSep {
				if matched, _ := path.Match(filepath.ToSlash(pattern), normalized); matched {
					return true
				}
			} else if matched, _ := filepath.Match(pattern, name); matched {
				return true
			}
			continue
		}

		if hasPathSep {
			if pathMatchesSegments(normalized, filepath.ToSlash(pattern)) {
				return true
			}
			continue
		}

		if slices.Contains(splitPathSegments(normalized), pattern) {
			return true
		}
	}

	return false
}

func pathMatchesSegments(path, pattern string) bool {
	pathParts := splitPathSegments(path)
	patternParts := splitPathSegments(pattern)
	if len(patternParts) == 0 || len(patternParts) > len(pathParts) {
		return false
	}

	for i := 0; i <= len(pathParts)-len(patternParts); i++ {
		if slices.Equal(pathParts[i:i+len(patternParts)], patternParts) {
			return true
		}
	}
	return false
}

func splitPathSegments(path string) []string {
	if path == "" {
		return nil
	}
	parts := strings.Split(path, "/")
	result := parts[:0]
	for _, part := range parts {
		if part != "" && part != "." {
			result = append(result, part)
		}
	}
	return result
}
