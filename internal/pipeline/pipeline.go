// Package pipeline runs one complete build: configuration, optional
// pre-clean, Gradle, artifact collection, archiving, the S3 mirror and the
// post-build clean.
//
// Every phase runs in its own OpenTelemetry span below a "modbuild.run"
// root span and is timed into the run's metrics. The pipeline is strictly
// sequential; concurrent runs on the same project are not coordinated.
package pipeline

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/neuxs/modbuild/internal/archive"
	"github.com/neuxs/modbuild/internal/artifact"
	"github.com/neuxs/modbuild/internal/clean"
	"github.com/neuxs/modbuild/internal/config"
	"github.com/neuxs/modbuild/internal/gradle"
	"github.com/neuxs/modbuild/internal/metrics"
	"github.com/neuxs/modbuild/internal/props"
)

// TracerName is the OpenTelemetry tracer used for pipeline spans.
const TracerName = "modbuild"

// Phase names, used for span names and the phase label.
const (
	PhasePrepare   = "prepare"
	PhasePreClean  = "preclean"
	PhaseGradle    = "gradle"
	PhaseCollect   = "collect"
	PhaseArchive   = "archive"
	PhaseMirror    = "mirror"
	PhasePostClean = "postclean"
)

// Result summarizes one run.
type Result struct {
	// Targets are the effective targets built.
	Targets []string

	// DroppedTargets are requested names that are not known targets.
	DroppedTargets []string

	// ModName and ModVersion were read from gradle.properties.
	ModName    string
	ModVersion string

	// Gradle is the Gradle invocation, nil when skipped.
	Gradle *gradle.Result

	// Artifacts is the collection report, nil when no targets were built.
	Artifacts *artifact.Report

	// Archive is nil when archiving was disabled or had nothing to do.
	Archive *archive.Result

	// Mirror is nil when the S3 mirror is not configured.
	Mirror *archive.MirrorStats

	// PreClean and PostClean are nil when the clean did not run.
	PreClean  *clean.Stats
	PostClean *clean.Stats

	// Duration is how long the run took.
	Duration time.Duration
}

// Options configures a run.
type Options struct {
	// Verbose adds --info to Gradle and echoes its output.
	Verbose bool

	// Clean runs a standard clean before the build.
	Clean bool

	// CleanCache also removes the Gradle cache, before and after the build.
	CleanCache bool

	// Targets overrides build_targets when non-nil.
	Targets []string

	// GOOS overrides the platform used to pick the Gradle wrapper.
	GOOS string

	// Output receives Gradle output and clean summaries.
	// Default: os.Stdout
	Output io.Writer

	// OnProgress is called with progress updates.
	OnProgress func(step string)

	// Tracer is the tracer for phase spans.
	// Default: otel.Tracer(TracerName)
	Tracer trace.Tracer

	// Metrics records the run. Default: metrics.New()
	Metrics *metrics.Recorder

	// Now returns the current time. Default: time.Now
	Now func() time.Time

	// NewObjectPutter creates the S3 client for the mirror.
	// Default: archive.NewS3Client
	NewObjectPutter func(config.S3MirrorConfig) archive.ObjectPutter

	// Logger is the logger to use.
	Logger *slog.Logger
}

// Pipeline runs builds for one project.
type Pipeline struct {
	config  *config.Config
	options Options
	logger  *slog.Logger
}

// New creates a pipeline for the project described by cfg.
func New(cfg *config.Config, options Options) *Pipeline {
	if options.Output == nil {
		options.Output = os.Stdout
	}
	if options.Tracer == nil {
		options.Tracer = otel.Tracer(TracerName)
	}
	if options.Metrics == nil {
		options.Metrics = metrics.New()
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	if options.NewObjectPutter == nil {
		options.NewObjectPutter = func(m config.S3MirrorConfig) archive.ObjectPutter {
			return archive.NewS3Client(m)
		}
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	options.Logger = logger

	return &Pipeline{
		config:  cfg,
		options: options,
		logger:  logger.With("component", "pipeline"),
	}
}

// Metrics returns the run's metrics.
func (p *Pipeline) Metrics() *metrics.Recorder {
	return p.options.Metrics
}

// Run performs the build. Only Gradle failures are returned as errors;
// every other failure is logged and the run continues.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := p.options.Now()
	result := &Result{}

	if p.options.Targets != nil {
		result.DroppedTargets = p.config.OverrideTargets(p.options.Targets)
		for _, name := range result.DroppedTargets {
			p.logger.Warn("ignoring unknown build target", "target", name)
		}
	} else {
		result.DroppedTargets = p.config.DroppedTargets()
	}
	result.Targets = p.config.EffectiveTargets()
	if p.options.Targets != nil && len(result.Targets) == 0 {
		p.logger.Warn("no valid build targets in --targets", "requested", strings.Join(p.options.Targets, ","))
	}

	result.ModName = props.ModName(p.config.PropertiesPath(), p.options.Logger)
	result.ModVersion = props.ModVersion(p.config.PropertiesPath(), p.options.Logger)

	ctx, span := p.options.Tracer.Start(ctx, "modbuild.run", trace.WithAttributes(
		attribute.StringSlice("modbuild.targets", result.Targets),
		attribute.String("modbuild.mod_name", result.ModName),
		attribute.String("modbuild.mod_version", result.ModVersion),
	))
	defer span.End()

	err := p.run(ctx, result)

	result.Duration = p.options.Now().Sub(start)
	p.options.Metrics.MarkRun(p.options.Now())
	p.writeMetrics()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}
	span.SetStatus(codes.Ok, "")
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, result *Result) error {
	p.phase(ctx, PhasePrepare, func(ctx context.Context) error {
		dist := p.config.DistPath()
		if err := os.RemoveAll(dist); err != nil {
			p.logger.Warn("could not clear dist directory", "path", dist, "error", err)
			return err
		}
		return nil
	})

	cleaner := clean.New(p.config.Root(), clean.Options{
		Verbose: p.options.Verbose,
		Output:  p.options.Output,
		Logger:  p.options.Logger,
	})

	if p.options.Clean || p.options.CleanCache {
		p.progress("Cleaning before build...")
		p.phase(ctx, PhasePreClean, func(ctx context.Context) error {
			stats := cleaner.Clean(p.options.CleanCache)
			result.PreClean = &stats
			p.options.Metrics.CleanPaths(stats.Removed, stats.Skipped, stats.Errors)
			return nil
		})
	}

	if len(result.Targets) == 0 {
		p.logger.Warn("no valid build targets specified, skipping build")
		return nil
	}

	p.progress("Running Gradle (" + strings.Join(result.Targets, ", ") + ")...")
	err := p.phase(ctx, PhaseGradle, func(ctx context.Context) error {
		invoker := gradle.New(p.config.Root(), gradle.Options{
			Verbose: p.options.Verbose,
			GOOS:    p.options.GOOS,
			Output:  p.options.Output,
			Logger:  p.options.Logger,
		})
		res, err := invoker.Run(ctx, result.Targets, p.config.Targets())
		result.Gradle = res
		return err
	})
	if err != nil {
		return err
	}

	p.progress("Collecting artifacts...")
	p.phase(ctx, PhaseCollect, func(ctx context.Context) error {
		collector := artifact.New(p.config, artifact.Options{
			ModName:    result.ModName,
			ModVersion: result.ModVersion,
			Logger:     p.options.Logger,
		})
		report := collector.CollectReport(result.Targets)
		result.Artifacts = report

		for _, r := range report.Records {
			p.options.Metrics.ArtifactCopied(r.Target)
		}
		p.options.Metrics.CopyErrors("dist", report.DistErrors)
		p.options.Metrics.CopyErrors("custom", report.CustomErrors)
		return nil
	})

	p.phase(ctx, PhaseArchive, func(ctx context.Context) error {
		archiver := archive.New(p.config, archive.Options{Now: p.options.Now, Logger: p.options.Logger})
		res, err := archiver.Archive(result.Artifacts.Records)
		result.Archive = res
		if res != nil {
			p.progress("Archived to " + res.VersionDir)
			p.options.Metrics.ArchivedFiles(res.Info.Kind(), res.Copied)
			p.options.Metrics.CopyErrors("archive", res.Failed)
		}
		if err != nil {
			p.logger.Error("archiving incomplete", "error", err)
		}
		return err
	})

	if p.config.MirrorEnabled() && result.Archive != nil {
		p.progress("Uploading archive to s3://" + p.config.S3Mirror.Bucket + "...")
		p.phase(ctx, PhaseMirror, func(ctx context.Context) error {
			client := p.options.NewObjectPutter(*p.config.S3Mirror)
			mirror := archive.NewMirror(client, *p.config.S3Mirror, p.config.ArchivePath(), p.options.Logger)
			stats := mirror.Upload(ctx, result.Archive)
			result.Mirror = &stats
			p.options.Metrics.MirrorUploads(stats.Uploaded, stats.Failed)
			return nil
		})
	}

	p.progress("Cleaning after build...")
	p.phase(ctx, PhasePostClean, func(ctx context.Context) error {
		stats := cleaner.Clean(p.options.CleanCache)
		result.PostClean = &stats
		p.options.Metrics.CleanPaths(stats.Removed, stats.Skipped, stats.Errors)
		return nil
	})

	return nil
}

// phase runs fn inside a span named modbuild.<name> and times it.
func (p *Pipeline) phase(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := p.options.Tracer.Start(ctx, "modbuild."+name)
	defer span.End()

	start := p.options.Now()
	err := fn(ctx)
	p.options.Metrics.ObservePhase(name, p.options.Now().Sub(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	return err
}

func (p *Pipeline) writeMetrics() {
	if p.config.MetricsFile == "" {
		return
	}
	path := p.config.ResolvePath(p.config.MetricsFile)
	if err := p.options.Metrics.WriteTextfile(path); err != nil {
		p.logger.Warn("could not write metrics file", "path", path, "error", err)
		return
	}
	p.logger.Debug("wrote metrics", "path", path)
}

func (p *Pipeline) progress(step string) {
	if p.options.OnProgress != nil {
		p.options.OnProgress(step)
	}
}
