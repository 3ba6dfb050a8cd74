// Package watch polls a directory tree for file changes.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// ChangeType represents the type of file change.
type ChangeType int

const (
	Created ChangeType = iota
	Modified
	Removed
)

// String returns the lower-case change name.
func (t ChangeType) String() string {
	switch t {
	case Created:
		return "created"
	case Modified:
		return "modified"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Change represents a detected file change.
type Change struct {
	// Path is relative to the watched root, slash separated.
	Path string
	Type ChangeType
}

// Group returns the first path segment, the base version for an archive tree.
func (c Change) Group() string {
	group, _, _ := strings.Cut(c.Path, "/")
	return group
}

// Config configures the watcher.
type Config struct {
	// Root is the directory to watch. It may not exist yet.
	Root string

	// Ignore are file or directory name globs to skip.
	Ignore []string

	// Interval is the polling period.
	Interval time.Duration
}

// DefaultIgnore contains default patterns to ignore.
var DefaultIgnore = []string{
	".*",
	"*.tmp",
	"*.swp",
	"*~",
}

// Watcher monitors a tree for changes by polling modification times.
type Watcher struct {
	config     Config
	onChange   func(Change)
	mu         sync.Mutex
	running    bool
	stopCh     chan struct{}
	timestamps map[string]time.Time
}

// New creates a new watcher.
func New(config Config) *Watcher {
	if config.Interval == 0 {
		config.Interval = 500 * time.Millisecond
	}
	if len(config.Ignore) == 0 {
		config.Ignore = DefaultIgnore
	}

	return &Watcher{
		config:     config,
		timestamps: make(map[string]time.Time),
	}
}

// OnChange sets the callback for changes. Within one poll only the first
// change of each group is reported.
func (w *Watcher) OnChange(fn func(Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start polls until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.mu.Unlock()

	w.mu.Lock()
	w.timestamps = w.scan()
	w.mu.Unlock()

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
			w.Poll()
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

// Poll compares the tree with the previous scan and reports changes.
// It returns every change found, including the ones coalesced away from
// the callback.
func (w *Watcher) Poll() []Change {
	current := w.scan()

	w.mu.Lock()
	callback := w.onChange
	previous := w.timestamps
	w.timestamps = current
	w.mu.Unlock()

	var changes []Change
	for p, mod := range current {
		last, exists := previous[p]
		switch {
		case !exists:
			changes = append(changes, Change{Path: p, Type: Created})
		case mod.After(last):
			changes = append(changes, Change{Path: p, Type: Modified})
		}
	}
	for p := range previous {
		if _, ok := current[p]; !ok {
			changes = append(changes, Change{Path: p, Type: Removed})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })

	if callback != nil {
		reported := make(map[string]bool)
		for _, change := range changes {
			if !reported[change.Group()] {
				reported[change.Group()] = true
				callback(change)
			}
		}
	}
	return changes
}

// scan walks the root and returns relative path to modification time.
func (w *Watcher) scan() map[string]time.Time {
	found := make(map[string]time.Time)
	filepath.Walk(w.config.Root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if p != w.config.Root && w.shouldIgnore(info.Name()) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(w.config.Root, p)
		if err != nil {
			return nil
		}
		found[filepath.ToSlash(rel)] = info.ModTime()
		return nil
	})
	return found
}

func (w *Watcher) shouldIgnore(name string) bool {
	for _, pattern := range w.config.Ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if name == pattern {
			return true
		}
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}
