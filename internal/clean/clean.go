// Package clean removes Gradle build output and, optionally, the Gradle
// cache of a project.
package clean

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/neuxs/modbuild/internal/errors"
	"github.com/neuxs/modbuild/internal/fsutil"
)

// StandardPaths returns the build output folders, relative to the project
// root.
func StandardPaths() []string {
	return []string{
		"build",
		filepath.Join("src", "build"),
		filepath.Join("src", "common", "build"),
		filepath.Join("src", "puzzle", ".gradle"),
		filepath.Join("src", "puzzle", "build"),
		filepath.Join("src", "quilt", "build"),
	}
}

// CachePaths returns the folders a cache clean removes in addition to
// StandardPaths.
func CachePaths() []string {
	return []string{".gradle"}
}

// Stats counts the outcome of one clean.
type Stats struct {
	Removed int
	Skipped int
	Errors  int
}

// Options configures the cleaner.
type Options struct {
	// Verbose logs per-path progress and the final counts.
	Verbose bool

	// Output receives the one-line error summary in non-verbose mode.
	// Default: os.Stderr
	Output io.Writer

	// Logger is the logger to use.
	Logger *slog.Logger
}

// Cleaner removes build folders below a project root.
type Cleaner struct {
	root    string
	options Options
	logger  *slog.Logger

	removeAll func(path string) error
}

// New creates a cleaner for the project at root.
func New(root string, options Options) *Cleaner {
	if options.Output == nil {
		options.Output = os.Stderr
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{
		root:      root,
		options:   options,
		logger:    logger.With("component", "clean"),
		removeAll: os.RemoveAll,
	}
}

// Paths returns the relative paths a clean removes, sorted and without
// duplicates.
func Paths(cache bool) []string {
	set := make(map[string]bool)
	for _, p := range StandardPaths() {
		set[p] = true
	}
	if cache {
		for _, p := range CachePaths() {
			set[p] = true
		}
	}

	paths := make([]string, 0, len(set))
	for p := range set {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Clean removes the standard build folders, plus the Gradle cache when
// cache is true. Failures are counted and logged; they never stop the clean.
func (c *Cleaner) Clean(cache bool) Stats {
	var stats Stats
	kind := "standard"
	if cache {
		kind = "cache"
	}
	c.logger.Debug("starting clean", "kind", kind)

	for _, rel := range Paths(cache) {
		switch err := c.remove(filepath.Join(c.root, rel)); {
		case err == errSkipped:
			stats.Skipped++
		case err != nil:
			stats.Errors++
			c.logger.Error(errors.New("E150").FormatCompact(), "path", rel, "error", err)
		default:
			stats.Removed++
			c.logger.Debug("removed", "path", rel)
		}
	}

	if c.options.Verbose {
		c.logger.Info("clean finished", "kind", kind,
			"removed", stats.Removed, "skipped", stats.Skipped, "errors", stats.Errors)
	} else if stats.Errors > 0 {
		fmt.Fprintf(c.options.Output, "%s clean completed with %d error(s). Use -v for details.\n", kind, stats.Errors)
	}
	return stats
}

var errSkipped = fmt.Errorf("path does not exist")

func (c *Cleaner) remove(path string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected failure: %v", r)
		}
	}()

	info, err := os.Lstat(path)
	if err != nil {
		if missing(err) {
			return errSkipped
		}
		return err
	}

	if info.IsDir() {
		err = c.removeAll(path)
	} else {
		err = os.Remove(path)
	}
	if err != nil {
		return err
	}

	if fsutil.Exists(path) {
		return fmt.Errorf("%s still exists after removal", path)
	}
	return nil
}

// missing reports whether err means the path is absent, including the case
// where a parent component is a regular file.
func missing(err error) bool {
	return os.IsNotExist(err) || stderrors.Is(err, syscall.ENOTDIR)
}
