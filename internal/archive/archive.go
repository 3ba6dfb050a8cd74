package archive

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/neuxs/modbuild/internal/artifact"
	"github.com/neuxs/modbuild/internal/config"
	"github.com/neuxs/modbuild/internal/errors"
	"github.com/neuxs/modbuild/internal/fsutil"
	"github.com/neuxs/modbuild/internal/naming"
	"github.com/neuxs/modbuild/internal/version"
)

// Folder names inside a base version directory.
const (
	LatestDir    = "latest"
	DevBuildsDir = "dev_builds"
	AllBuildsDir = "all_builds"
)

// TimestampLayout is the snapshot folder layout without the millisecond suffix.
const TimestampLayout = "20060102_150405"

// Result describes what one archive pass wrote.
type Result struct {
	// VersionDir is <archive root>/<base version>.
	VersionDir string

	// Folders lists every folder populated by this run.
	Folders []string

	// Copied counts files written, summed over all folders.
	Copied int

	// Failed counts files that could not be written.
	Failed int

	// Info is the parsed primary version.
	Info version.Info
}

// Options configures the archiver.
type Options struct {
	// Now returns the current time. Default: time.Now
	Now func() time.Time

	// Logger is the logger to use.
	Logger *slog.Logger
}

// Archiver copies dist artifacts into the archive tree.
type Archiver struct {
	cfg    *config.Config
	now    func() time.Time
	logger *slog.Logger
}

// New creates an archiver for cfg.
func New(cfg *config.Config, options Options) *Archiver {
	now := options.Now
	if now == nil {
		now = time.Now
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Archiver{
		cfg:    cfg,
		now:    now,
		logger: logger.With("component", "archive"),
	}
}

// Timestamp formats t as a snapshot folder name: YYYYMMDD_HHMMSS_mmm.
func Timestamp(t time.Time) string {
	return fmt.Sprintf("%s_%03d", t.Format(TimestampLayout), t.Nanosecond()/int(time.Millisecond))
}

// PrimaryVersion picks the version that names the archive folder: the
// universal artifact's, else the first non-empty one. It returns
// version.UnknownVersion when no record carries a version. mixed is true
// when the records disagree.
func PrimaryVersion(records []artifact.Record) (v string, mixed bool) {
	for _, r := range records {
		if r.Target == config.TargetUniversal && r.Version != "" {
			v = r.Version
			break
		}
	}
	for _, r := range records {
		if r.Version == "" {
			continue
		}
		if v == "" {
			v = r.Version
		} else if r.Version != v {
			mixed = true
		}
	}
	if v == "" {
		return version.UnknownVersion, mixed
	}
	return v, mixed
}

// Archive copies the dist files of records into the archive. It is a no-op
// returning nil when archiving is disabled or records is empty. The
// returned error reports folders that could not be prepared; the Result is
// still valid in that case.
func (a *Archiver) Archive(records []artifact.Record) (*Result, error) {
	if !a.cfg.EnableArchiving {
		a.logger.Info("archiving is disabled in the configuration")
		return nil, nil
	}
	if len(records) == 0 {
		a.logger.Info("no artifacts were copied to dist, skipping archiving")
		return nil, nil
	}

	primary, mixed := PrimaryVersion(records)
	if primary == version.UnknownVersion {
		a.logger.Warn("could not determine a version for archiving", "folder", primary)
	}
	if mixed {
		a.logger.Warn("artifacts carry different versions, archiving under one", "version", primary)
	}

	info, _ := version.Parse(primary)
	if info.DevOverflow() {
		a.logger.Warn("dev number exceeds three digits", "version", primary, "folder", info.DevFolder())
	}
	a.logger.Debug("archiving build", "version", primary, "kind", info.Kind())

	result := &Result{
		VersionDir: filepath.Join(a.cfg.ArchivePath(), naming.Sanitize(info.Base)),
		Info:       info,
	}
	if err := os.MkdirAll(result.VersionDir, 0755); err != nil {
		return result, errors.New("E140").WithDetailf("Could not create '%s'.", result.VersionDir).Wrap(err)
	}

	var latest, numbered string
	if info.IsDev {
		latest = filepath.Join(result.VersionDir, DevBuildsDir, LatestDir)
		numbered = filepath.Join(result.VersionDir, DevBuildsDir, info.DevFolder())
	} else {
		latest = filepath.Join(result.VersionDir, LatestDir)
	}

	var failed []string
	if err := fsutil.ResetDir(latest); err != nil {
		a.logger.Error(errors.New("E140").FormatCompact(), "path", latest, "error", err)
		failed = append(failed, latest)
		result.Failed += len(records)
	} else {
		a.populate(result, latest, records)
	}

	if a.cfg.ArchiveEveryBuild {
		history := []string{filepath.Join(result.VersionDir, AllBuildsDir, Timestamp(a.now()))}
		if numbered != "" {
			history = append([]string{numbered}, history...)
		}
		for _, dir := range history {
			if err := os.MkdirAll(dir, 0755); err != nil {
				a.logger.Error(errors.New("E140").FormatCompact(), "path", dir, "error", err)
				failed = append(failed, dir)
				result.Failed += len(records)
				continue
			}
			a.populate(result, dir, records)
		}
	}

	if len(failed) > 0 {
		return result, errors.New("E140").WithDetailf("Could not prepare %d archive folder(s).", len(failed))
	}
	return result, nil
}

func (a *Archiver) populate(result *Result, dir string, records []artifact.Record) {
	result.Folders = append(result.Folders, dir)
	for _, r := range records {
		dst := filepath.Join(dir, r.FinalName)
		if err := fsutil.CopyFile(r.DistPath, dst); err != nil {
			result.Failed++
			a.logger.Error(errors.New("E140").FormatCompact(), "from", r.DistPath, "to", dst, "error", err)
			continue
		}
		result.Copied++
	}
	a.logger.Debug("archived artifacts", "dir", dir, "count", len(records))
}
