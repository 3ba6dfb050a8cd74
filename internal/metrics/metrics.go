// Package metrics records build pipeline and archive server metrics in a
// private Prometheus registry.
//
// Build metrics (namespace "modbuild"):
//   - modbuild_artifacts_copied_total: Counter of artifacts copied to dist by target
//   - modbuild_copy_errors_total: Counter of failed copies by stage
//   - modbuild_clean_paths_total: Counter of cleaned paths by result
//   - modbuild_phase_duration_seconds: Histogram of pipeline phase durations
//   - modbuild_archived_files_total: Counter of archived files by kind
//   - modbuild_last_run_timestamp_seconds: Gauge of the last run's end time
//   - modbuild_mirror_uploads_total: Counter of S3 uploads by status
//
// Each run gets its own registry so that WriteTextfile emits exactly one
// run's values, in the node_exporter textfile format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "modbuild"

// Config configures a Recorder.
type Config struct {
	// Namespace is the metrics namespace (default: "modbuild").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for phase durations.
	// Default: 0.1s to about 27 minutes, exponential.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: a new registry
	Registry *prometheus.Registry
}

// Option configures a Recorder.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the phase duration buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: DefaultNamespace,
		Buckets:   prometheus.ExponentialBuckets(0.1, 3, 10),
	}
}

// Recorder holds the build metrics of one run. A nil Recorder ignores
// every call.
type Recorder struct {
	registry *prometheus.Registry

	artifactsCopied *prometheus.CounterVec
	copyErrors      *prometheus.CounterVec
	cleanPaths      *prometheus.CounterVec
	phaseDuration   *prometheus.HistogramVec
	archivedFiles   *prometheus.CounterVec
	lastRun         prometheus.Gauge
	mirrorUploads   *prometheus.CounterVec
}

// New creates a Recorder and registers its metrics.
func New(opts ...Option) *Recorder {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}
	factory := promauto.With(config.Registry)

	return &Recorder{
		registry: config.Registry,

		artifactsCopied: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "artifacts_copied_total",
			Help:        "Total number of artifacts copied to dist",
			ConstLabels: config.ConstLabels,
		}, []string{"target"}),

		copyErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "copy_errors_total",
			Help:        "Total number of failed artifact copies",
			ConstLabels: config.ConstLabels,
		}, []string{"stage"}),

		cleanPaths: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "clean_paths_total",
			Help:        "Total number of cleanup paths processed",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),

		phaseDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "phase_duration_seconds",
			Help:        "Pipeline phase duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"phase"}),

		archivedFiles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "archived_files_total",
			Help:        "Total number of files written to the archive",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "last_run_timestamp_seconds",
			Help:        "Unix time the last build run finished",
			ConstLabels: config.ConstLabels,
		}),

		mirrorUploads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "mirror_uploads_total",
			Help:        "Total number of S3 mirror uploads",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),
	}
}

// Registry returns the registry the metrics are registered with.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ArtifactCopied records an artifact copied to dist.
func (r *Recorder) ArtifactCopied(target string) {
	if r != nil {
		r.artifactsCopied.WithLabelValues(target).Inc()
	}
}

// CopyErrors records n failed copies at stage ("dist", "custom" or "archive").
func (r *Recorder) CopyErrors(stage string, n int) {
	if r != nil && n > 0 {
		r.copyErrors.WithLabelValues(stage).Add(float64(n))
	}
}

// CleanPaths records the outcome of one clean.
func (r *Recorder) CleanPaths(removed, skipped, errors int) {
	if r == nil {
		return
	}
	r.cleanPaths.WithLabelValues("removed").Add(float64(removed))
	r.cleanPaths.WithLabelValues("skipped").Add(float64(skipped))
	r.cleanPaths.WithLabelValues("error").Add(float64(errors))
}

// ObservePhase records how long a pipeline phase took.
func (r *Recorder) ObservePhase(phase string, d time.Duration) {
	if r != nil {
		r.phaseDuration.WithLabelValues(phase).Observe(d.Seconds())
	}
}

// ArchivedFiles records n files archived for a build kind ("dev", "release"
// or "unknown format").
func (r *Recorder) ArchivedFiles(kind string, n int) {
	if r != nil && n > 0 {
		r.archivedFiles.WithLabelValues(kind).Add(float64(n))
	}
}

// MirrorUploads records the outcome of one mirror pass.
func (r *Recorder) MirrorUploads(uploaded, failed int) {
	if r == nil {
		return
	}
	r.mirrorUploads.WithLabelValues("ok").Add(float64(uploaded))
	r.mirrorUploads.WithLabelValues("error").Add(float64(failed))
}

// MarkRun sets the last run timestamp.
func (r *Recorder) MarkRun(t time.Time) {
	if r != nil {
		r.lastRun.Set(float64(t.Unix()))
	}
}

// WriteTextfile writes every metric in the node_exporter textfile format.
// The file is written atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
