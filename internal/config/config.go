package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/neuxs/modbuild/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "build_config.json"

	// PropertiesFileName is the Gradle properties file holding mod_name and mod_version.
	PropertiesFileName = "gradle.properties"

	// DistDirName is the per-run distribution directory.
	DistDirName = "dist"

	// DefaultArchiveDirectory is the default archive root, relative to the project root.
	DefaultArchiveDirectory = "build_archive"

	// DefaultServeAddress is the default listen address of the archive browser.
	DefaultServeAddress = "127.0.0.1:8420"

	targetsComment = "all, universal, puzzle, quilt"
)

// CopyRule copies the dist jars of the listed targets to an extra destination.
type CopyRule struct {
	// Targets are the target names this rule applies to.
	Targets []string `json:"targets"`

	// Destination is a directory, absolute or relative to the project root.
	Destination string `json:"destination"`
}

// Applies reports whether the rule copies artifacts of the named target.
func (r CopyRule) Applies(target string) bool {
	if r.Destination == "" {
		return false
	}
	for _, t := range r.Targets {
		if t == target {
			return true
		}
	}
	return false
}

// S3MirrorConfig configures uploading archived jars to an S3 bucket.
type S3MirrorConfig struct {
	// Bucket is the destination bucket. Mirroring is disabled when empty.
	Bucket string `json:"bucket"`

	// Prefix is prepended to every object key.
	Prefix string `json:"prefix,omitempty"`

	// Region is the bucket region. Falls back to AWS_REGION.
	Region string `json:"region,omitempty"`

	// Endpoint overrides the S3 endpoint (MinIO, R2, ...).
	Endpoint string `json:"endpoint,omitempty"`

	// PathStyle forces path-style addressing.
	PathStyle bool `json:"path_style,omitempty"`
}

// Config represents the effective build_config.json configuration.
type Config struct {
	// EnableArchiving turns the versioned archive on or off.
	EnableArchiving bool `json:"enable_archiving"`

	// ArchiveEveryBuild keeps numbered and timestamped copies of every build.
	ArchiveEveryBuild bool `json:"archive_every_build"`

	// ArchiveDirectory is the archive root, absolute or relative to the project root.
	ArchiveDirectory string `json:"archive_directory"`

	// Comment is a free-form hint written into the default file.
	Comment string `json:"comment,omitempty"`

	// BuildTargets are the requested targets, or "all".
	BuildTargets TargetList `json:"build_targets"`

	// NamingScheme maps a target name to its output file name template.
	NamingScheme map[string]string `json:"build_naming_scheme"`

	// CustomCopyPaths are extra destinations for dist jars.
	CustomCopyPaths []CopyRule `json:"custom_copy_paths"`

	// MetricsFile is an optional Prometheus textfile written after each run.
	MetricsFile string `json:"metrics_file,omitempty"`

	// S3Mirror optionally mirrors archived jars to S3.
	S3Mirror *S3MirrorConfig `json:"s3_mirror,omitempty"`

	// ServeAddress is the archive browser listen address.
	ServeAddress string `json:"serve_address,omitempty"`

	root      string
	path      string
	targets   []TargetInfo
	effective []string
	dropped   []string
}

// File is the user-supplied, possibly partial, configuration.
// A nil field means the key was absent.
type File struct {
	EnableArchiving   *bool             `json:"enable_archiving"`
	ArchiveEveryBuild *bool             `json:"archive_every_build"`
	ArchiveDirectory  *string           `json:"archive_directory"`
	Comment           *string           `json:"comment"`
	BuildTargets      *TargetList       `json:"build_targets"`
	NamingScheme      map[string]string `json:"build_naming_scheme"`
	CustomCopyPaths   *[]CopyRule       `json:"custom_copy_paths"`
	MetricsFile       *string           `json:"metrics_file"`
	S3Mirror          *S3MirrorConfig   `json:"s3_mirror"`
	ServeAddress      *string           `json:"serve_address"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	cfg := Config{
		EnableArchiving:   true,
		ArchiveEveryBuild: true,
		ArchiveDirectory:  DefaultArchiveDirectory,
		Comment:           targetsComment,
		BuildTargets:      TargetList{TargetUniversal},
		NamingScheme: map[string]string{
			TargetUniversal: "${mod_name}-${version}-universal.jar",
			TargetPuzzle:    "${mod_name}-${version}-puzzle.jar",
			TargetQuilt:     "${mod_name}-${version}-quilt.jar",
		},
		CustomCopyPaths: []CopyRule{},
		targets:         DefaultTargets(),
	}
	cfg.effective, cfg.dropped = EffectiveTargets(cfg.BuildTargets, cfg.targets)
	return cfg
}

// Merge overlays user settings onto defaults and resolves the effective
// targets. build_naming_scheme is merged per key; every other present key
// replaces the default. Neither argument is modified.
func Merge(defaults Config, user File) Config {
	cfg := defaults.clone()

	if user.EnableArchiving != nil {
		cfg.EnableArchiving = *user.EnableArchiving
	}
	if user.ArchiveEveryBuild != nil {
		cfg.ArchiveEveryBuild = *user.ArchiveEveryBuild
	}
	if user.ArchiveDirectory != nil && *user.ArchiveDirectory != "" {
		cfg.ArchiveDirectory = *user.ArchiveDirectory
	}
	if user.Comment != nil {
		cfg.Comment = *user.Comment
	}
	if user.BuildTargets != nil {
		cfg.BuildTargets = append(TargetList(nil), (*user.BuildTargets)...)
	}
	for target, template := range user.NamingScheme {
		cfg.NamingScheme[target] = template
	}
	if user.CustomCopyPaths != nil {
		cfg.CustomCopyPaths = cloneRules(*user.CustomCopyPaths)
	}
	if user.MetricsFile != nil {
		cfg.MetricsFile = *user.MetricsFile
	}
	if user.S3Mirror != nil {
		m := *user.S3Mirror
		cfg.S3Mirror = &m
	}
	if user.ServeAddress != nil {
		cfg.ServeAddress = *user.ServeAddress
	}

	cfg.effective, cfg.dropped = EffectiveTargets(cfg.BuildTargets, cfg.targets)
	return cfg
}

// Load reads build_config.json from the project root dir.
func Load(dir string, logger *slog.Logger) *Config {
	return LoadFile(filepath.Join(dir, ConfigFileName), logger)
}

// LoadFile reads the configuration at path. A missing file is created with
// the defaults; unreadable or malformed files fall back to the defaults.
// The project root is the directory containing path.
func LoadFile(path string, logger *slog.Logger) *Config {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "config")

	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	defaults := Defaults()
	cfg := defaults

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		logger.Debug("configuration file not found, creating defaults", "path", path)
		if err := defaults.SaveTo(path); err != nil {
			logger.Error(errors.FromError(err, "E102").FormatCompact(), "path", path, "error", err)
			logger.Debug("proceeding with built-in default configuration")
		} else {
			logger.Debug("default configuration saved, review and customize it", "path", path)
		}
	case err != nil:
		logger.Warn(errors.New("E100").FormatCompact(), "path", path, "error", err)
	default:
		var user File
		if err := json.Unmarshal(data, &user); err != nil {
			logger.Warn(errors.New("E101").FormatCompact(), "path", path, "error", err)
		} else {
			cfg = Merge(defaults, user)
			logger.Debug("loaded configuration", "path", path)
		}
	}

	cfg.root = filepath.Dir(path)
	cfg.path = path

	if len(cfg.effective) == 0 {
		logger.Debug("no valid build targets specified, nothing will be built", "requested", []string(cfg.BuildTargets))
	}
	for _, name := range cfg.dropped {
		logger.Debug("ignoring unknown build target", "target", name)
	}

	return &cfg
}

// OverrideTargets replaces the requested targets, as done by --targets, and
// returns the names that are not known targets.
func (c *Config) OverrideTargets(names []string) []string {
	c.BuildTargets = append(TargetList(nil), names...)
	c.effective, c.dropped = EffectiveTargets(c.BuildTargets, c.targets)
	return append([]string(nil), c.dropped...)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return errors.New("E102").Wrap(err)
	}

	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E102").Wrap(err)
	}
	return nil
}

// Path returns the path of the configuration file.
func (c *Config) Path() string {
	return c.path
}

// Root returns the project root directory.
func (c *Config) Root() string {
	return c.root
}

// ResolvePath resolves p against the project root unless it is absolute.
func (c *Config) ResolvePath(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.root, p)
}

// ArchivePath returns the absolute archive root.
func (c *Config) ArchivePath() string {
	dir := c.ArchiveDirectory
	if dir == "" {
		dir = DefaultArchiveDirectory
	}
	return c.ResolvePath(dir)
}

// DistPath returns the absolute distribution directory.
func (c *Config) DistPath() string {
	return filepath.Join(c.root, DistDirName)
}

// PropertiesPath returns the absolute path of gradle.properties.
func (c *Config) PropertiesPath() string {
	return filepath.Join(c.root, PropertiesFileName)
}

// TargetDir returns the absolute build output directory of a target.
func (c *Config) TargetDir(t TargetInfo) string {
	return c.ResolvePath(t.Dir)
}

// Targets returns the known target table.
func (c *Config) Targets() []TargetInfo {
	return append([]TargetInfo(nil), c.targets...)
}

// Target looks up a known target by name.
func (c *Config) Target(name string) (TargetInfo, bool) {
	for _, t := range c.targets {
		if t.Name == name {
			return t, true
		}
	}
	return TargetInfo{}, false
}

// EffectiveTargets returns the targets this run builds.
func (c *Config) EffectiveTargets() []string {
	return append([]string(nil), c.effective...)
}

// DroppedTargets returns requested names that are not known targets.
func (c *Config) DroppedTargets() []string {
	return append([]string(nil), c.dropped...)
}

// AllTargetsSelected reports whether every known target is built.
func (c *Config) AllTargetsSelected() bool {
	return len(c.effective) == len(c.targets)
}

// NamingTemplate returns the naming scheme entry for a target, or "" when
// none is configured.
func (c *Config) NamingTemplate(target string) string {
	return c.NamingScheme[target]
}

// CopyRulesFor returns the custom copy rules that apply to a target.
func (c *Config) CopyRulesFor(target string) []CopyRule {
	var rules []CopyRule
	for _, r := range c.CustomCopyPaths {
		if r.Applies(target) {
			rules = append(rules, r)
		}
	}
	return rules
}

// MirrorEnabled reports whether archived jars are uploaded to S3.
func (c *Config) MirrorEnabled() bool {
	return c.S3Mirror != nil && c.S3Mirror.Bucket != ""
}

// ListenAddress returns the archive browser address.
func (c *Config) ListenAddress() string {
	if c.ServeAddress == "" {
		return DefaultServeAddress
	}
	return c.ServeAddress
}

func (c Config) clone() Config {
	cp := c
	cp.BuildTargets = append(TargetList(nil), c.BuildTargets...)
	cp.NamingScheme = make(map[string]string, len(c.NamingScheme))
	for k, v := range c.NamingScheme {
		cp.NamingScheme[k] = v
	}
	cp.CustomCopyPaths = cloneRules(c.CustomCopyPaths)
	if c.S3Mirror != nil {
		m := *c.S3Mirror
		cp.S3Mirror = &m
	}
	cp.targets = append([]TargetInfo(nil), c.targets...)
	cp.effective = append([]string(nil), c.effective...)
	cp.dropped = append([]string(nil), c.dropped...)
	return cp
}

func cloneRules(rules []CopyRule) []CopyRule {
	out := make([]CopyRule, 0, len(rules))
	for _, r := range rules {
		out = append(out, CopyRule{
			Targets:     append([]string(nil), r.Targets...),
			Destination: r.Destination,
		})
	}
	return out
}
