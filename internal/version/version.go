// Package version classifies mod version strings and extracts versions
// embedded in jar file names.
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// UnknownVersion is the archive folder used when no artifact carries a version.
const UnknownVersion = "UNKNOWN_VERSION"

var (
	devPattern     = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)*)-dev(\d+)$`)
	releasePattern = regexp.MustCompile(`^\d+(?:\.\d+)*$`)

	generalJarPattern = regexp.MustCompile(`-(\d+(?:\.\d+)*(?:[.-][a-zA-Z0-9]+)*?)(?:-[a-zA-Z]+)?\.jar$`)
	bareJarPattern    = regexp.MustCompile(`^(\d+(?:\.\d+)*(?:[.-][a-zA-Z0-9]+)*)\.jar$`)
)

// Info is the classification of a version string.
type Info struct {
	// IsDev is true for <dotted>-Dev<n> versions.
	IsDev bool

	// Base is the dotted numeric prefix for dev and release versions, or the
	// raw string for unknown formats.
	Base string

	// DevNumber is the development iteration. Only meaningful when IsDev.
	DevNumber int

	// Full is the original string.
	Full string

	// UnknownFormat is set when the string is neither a dev nor a release version.
	UnknownFormat bool
}

// Parse classifies s. Shapes are tested in order: dev, release, anything
// else (flagged UnknownFormat). An empty string yields ok == false.
func Parse(s string) (Info, bool) {
	if s == "" {
		return Info{}, false
	}

	if m := devPattern.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[2]); err == nil {
			return Info{IsDev: true, Base: m[1], DevNumber: n, Full: s}, true
		}
	}

	if releasePattern.MatchString(s) {
		return Info{Base: s, Full: s}, true
	}

	return Info{Base: s, Full: s, UnknownFormat: true}, true
}

// Kind returns "dev", "release" or "unknown format".
func (i Info) Kind() string {
	switch {
	case i.IsDev:
		return "dev"
	case i.UnknownFormat:
		return "unknown format"
	default:
		return "release"
	}
}

// DevFolder returns the dev number zero-padded to three digits. Numbers
// above 999 keep all of their digits.
func (i Info) DevFolder() string {
	return fmt.Sprintf("%03d", i.DevNumber)
}

// DevOverflow reports whether the dev number needs more than three digits.
func (i Info) DevOverflow() bool {
	return i.IsDev && i.DevNumber > 999
}

// FromFilename extracts the version embedded in a jar file name.
//
// When the name carries the expected version it is returned as is. Otherwise
// a "-<dotted>[qualifiers][-classifier].jar" suffix is matched, then a bare
// "<version>.jar" name. ok is false when nothing matched.
func FromFilename(name, expected string) (v string, ok bool) {
	if expected != "" {
		prefix, _, _ := strings.Cut(expected, "-")
		p := regexp.MustCompile(`-(` + regexp.QuoteMeta(prefix) + `(?:[.-][a-zA-Z0-9]+)*)(?:-[a-zA-Z0-9]+)?\.jar$`)
		if m := p.FindStringSubmatch(name); m != nil && strings.Contains(m[1], expected) {
			return expected, true
		}
	}

	if m := generalJarPattern.FindStringSubmatch(name); m != nil {
		return m[1], true
	}

	if m := bareJarPattern.FindStringSubmatch(name); m != nil {
		return m[1], true
	}

	return "", false
}
