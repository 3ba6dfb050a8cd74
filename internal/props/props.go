// Package props reads scalar values from a Gradle properties file.
package props

import (
	"bufio"
	"log/slog"
	"os"
	"strings"

	"github.com/neuxs/modbuild/internal/errors"
)

const (
	// KeyModName is the property holding the mod's display name.
	KeyModName = "mod_name"

	// KeyModVersion is the property holding the mod's version.
	KeyModVersion = "mod_version"

	// DefaultModName is used when mod_name cannot be read.
	DefaultModName = "UnknownMod"

	// DefaultModVersion is used when mod_version cannot be read.
	DefaultModVersion = "UNKNOWN"
)

// Lookup returns the trimmed value of key in the key=value file at path.
// Blank lines and lines starting with # are skipped. The value is everything
// after the first '='.
func Lookup(path, key string) (string, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", false, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok || strings.TrimSpace(k) != key {
			continue
		}
		return strings.TrimSpace(v), true, nil
	}
	if err := scanner.Err(); err != nil {
		return "", false, err
	}
	return "", false, nil
}

// ModName returns mod_name with spaces replaced by underscores, or
// DefaultModName when the file or key is missing.
func ModName(path string, logger *slog.Logger) string {
	if logger == nil {
		logger = slog.Default()
	}
	name := read(path, KeyModName, DefaultModName, logger)
	if name == DefaultModName {
		return name
	}
	processed := strings.ReplaceAll(name, " ", "_")
	logger.Debug("read mod name", "raw", name, "processed", processed)
	return processed
}

// ModVersion returns mod_version, or DefaultModVersion when the file or key
// is missing.
func ModVersion(path string, logger *slog.Logger) string {
	return read(path, KeyModVersion, DefaultModVersion, logger)
}

func read(path, key, fallback string, logger *slog.Logger) string {
	if logger == nil {
		logger = slog.Default()
	}

	value, found, err := Lookup(path, key)
	switch {
	case os.IsNotExist(err):
		logger.Debug("properties file not found", "path", path, "key", key)
		return fallback
	case err != nil:
		logger.Error(errors.New("E110").FormatCompact(), "path", path, "error", err)
		return fallback
	case !found || value == "":
		logger.Debug("property not found", "path", path, "key", key)
		return fallback
	}
	return value
}
