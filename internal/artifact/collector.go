// Package artifact locates the jars Gradle produced for each target, renames
// them per the naming scheme and copies them into dist/ and any custom
// destinations.
package artifact

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/neuxs/modbuild/internal/config"
	"github.com/neuxs/modbuild/internal/errors"
	"github.com/neuxs/modbuild/internal/fsutil"
	"github.com/neuxs/modbuild/internal/naming"
	"github.com/neuxs/modbuild/internal/version"
)

// Record describes one artifact copied into dist/.
type Record struct {
	// SourcePath is the jar Gradle produced.
	SourcePath string

	// DistPath is the renamed copy in dist/.
	DistPath string

	// Target is the target name.
	Target string

	// Version is the version parsed from the source file name, or the mod
	// version when the name carried none.
	Version string

	// FinalName is the file name inside dist/.
	FinalName string
}

// Report summarizes one collection pass.
type Report struct {
	// Records are the successfully copied artifacts in target order.
	Records []Record

	// Found counts targets for which a jar was located.
	Found int

	// Missing lists targets without a jar.
	Missing []string

	// DistErrors counts failed copies into dist/.
	DistErrors int

	// CustomCopies counts successful copies to custom destinations.
	CustomCopies int

	// CustomErrors counts failed copies to custom destinations.
	CustomErrors int
}

// Options configures the collector.
type Options struct {
	// ModName and ModVersion come from gradle.properties.
	ModName    string
	ModVersion string

	// Matchers is the search order. Default: DefaultMatchers()
	Matchers []Matcher

	// Logger is the logger to use.
	Logger *slog.Logger
}

// Collector gathers target artifacts into the dist directory.
type Collector struct {
	cfg      *config.Config
	options  Options
	matchers []Matcher
	logger   *slog.Logger
}

// New creates a collector for the project described by cfg.
func New(cfg *config.Config, options Options) *Collector {
	matchers := options.Matchers
	if len(matchers) == 0 {
		matchers = DefaultMatchers()
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Collector{
		cfg:      cfg,
		options:  options,
		matchers: matchers,
		logger:   logger.With("component", "artifact"),
	}
}

// Collect processes each target in order and returns the artifacts that
// reached dist/. Per-target failures are logged and skipped.
func (c *Collector) Collect(targets []string) []Record {
	return c.CollectReport(targets).Records
}

// CollectReport is Collect with the per-run counters.
func (c *Collector) CollectReport(targets []string) *Report {
	report := &Report{}
	if len(targets) == 0 {
		c.logger.Info("no build targets were executed, skipping artifact processing")
		return report
	}

	dist := c.cfg.DistPath()
	if err := os.MkdirAll(dist, 0755); err != nil {
		c.logger.Error(errors.New("E131").FormatCompact(), "path", dist, "error", err)
		report.DistErrors = len(targets)
		return report
	}

	for _, name := range targets {
		target, ok := c.cfg.Target(name)
		if !ok {
			c.logger.Warn("skipping unknown target", "target", name)
			continue
		}

		src, found := c.locate(target)
		if !found {
			report.Missing = append(report.Missing, name)
			continue
		}
		report.Found++

		rec := c.record(target, src)
		if err := fsutil.CopyFile(rec.SourcePath, rec.DistPath); err != nil {
			report.DistErrors++
			c.logger.Error(errors.New("E131").FormatCompact(),
				"target", name, "from", rec.SourcePath, "to", rec.DistPath, "error", err)
			continue
		}
		c.logger.Debug("copied artifact", "target", name, "file", rec.FinalName)
		report.Records = append(report.Records, rec)

		c.copyCustom(rec, report)
	}

	c.summarize(report)
	return report
}

func (c *Collector) locate(target config.TargetInfo) (string, bool) {
	dir := c.cfg.TargetDir(target)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		c.logger.Warn("build directory not found", "target", target.Name, "dir", dir)
		return "", false
	}

	q := Query{Target: target, ModName: c.options.ModName, Version: c.options.ModVersion}
	for _, m := range c.matchers {
		names, err := m.Find(dir, q)
		if err != nil {
			c.logger.Warn("artifact search failed", "target", target.Name, "matcher", m.Name, "error", err)
			continue
		}
		if len(names) == 0 {
			continue
		}
		if len(names) > 1 {
			c.logger.Debug("multiple candidate jars, using the first",
				"target", target.Name, "matcher", m.Name, "candidates", strings.Join(names, ", "))
		}
		c.logger.Debug("found artifact", "target", target.Name, "matcher", m.Name, "file", names[0])
		return filepath.Join(dir, names[0]), true
	}

	c.logger.Warn(errors.New("E130").FormatCompact(), "target", target.Name, "dir", dir)
	return "", false
}

func (c *Collector) record(target config.TargetInfo, src string) Record {
	base := filepath.Base(src)

	v, ok := version.FromFilename(base, c.options.ModVersion)
	if !ok {
		c.logger.Debug("no version in file name, using mod version", "file", base, "version", c.options.ModVersion)
		v = c.options.ModVersion
	}

	template := c.cfg.NamingTemplate(target.Name)
	if template == "" {
		template = naming.DefaultTemplate
	}
	final := naming.Format(template, naming.Values{
		ModName:      c.options.ModName,
		Version:      v,
		Subproject:   target.Name,
		OriginalName: base,
	})

	return Record{
		SourcePath: src,
		DistPath:   filepath.Join(c.cfg.DistPath(), final),
		Target:     target.Name,
		Version:    v,
		FinalName:  final,
	}
}

func (c *Collector) copyCustom(rec Record, report *Report) {
	for _, rule := range c.cfg.CopyRulesFor(rec.Target) {
		dir := c.cfg.ResolvePath(rule.Destination)
		if err := os.MkdirAll(dir, 0755); err != nil {
			report.CustomErrors++
			c.logger.Error(errors.New("E131").FormatCompact(), "target", rec.Target, "to", dir, "error", err)
			continue
		}

		dst := filepath.Join(dir, rec.FinalName)
		if err := fsutil.CopyFile(rec.DistPath, dst); err != nil {
			report.CustomErrors++
			c.logger.Error(errors.New("E131").FormatCompact(), "target", rec.Target, "to", dst, "error", err)
			continue
		}
		report.CustomCopies++
		c.logger.Debug("copied artifact to custom path", "target", rec.Target, "to", dst)
	}
}

func (c *Collector) summarize(report *Report) {
	switch {
	case report.Found == 0:
		c.logger.Warn("no jar files were found for the specified build targets")
	case len(report.Records) == 0:
		c.logger.Warn("jar files were found, but none could be copied to dist")
	default:
		c.logger.Debug("artifacts collected", "count", len(report.Records), "dist", c.cfg.DistPath())
	}
}
