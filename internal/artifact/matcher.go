package artifact

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/neuxs/modbuild/internal/config"
	"github.com/neuxs/modbuild/internal/naming"
)

// Query describes the jar a matcher is looking for.
type Query struct {
	Target  config.TargetInfo
	ModName string
	Version string
}

// Matcher is one search strategy. Find returns the matching file names in
// dir, sorted lexicographically.
type Matcher struct {
	Name string
	Find func(dir string, q Query) ([]string, error)
}

// DefaultMatchers returns the search order used by the collector: the exact
// expected name, then the target classifier, then any remaining jar.
func DefaultMatchers() []Matcher {
	return []Matcher{ExactName(), ClassifierGlob(), AnyJar()}
}

// ExactName matches the jar name the target table predicts.
func ExactName() Matcher {
	return Matcher{
		Name: "exact",
		Find: func(dir string, q Query) ([]string, error) {
			name := q.Target.ExpectedJar(q.ModName, q.Version)
			info, err := os.Stat(filepath.Join(dir, name))
			if err != nil {
				if os.IsNotExist(err) {
					return nil, nil
				}
				return nil, err
			}
			if !info.Mode().IsRegular() {
				return nil, nil
			}
			return []string{name}, nil
		},
	}
}

// ClassifierGlob matches *-<classifier>.jar, ignoring source and javadoc jars.
func ClassifierGlob() Matcher {
	return Matcher{
		Name: "classifier",
		Find: func(dir string, q Query) ([]string, error) {
			if q.Target.Classifier == "" {
				return nil, nil
			}
			suffix := "-" + q.Target.Classifier + naming.Extension
			return listJars(dir, func(name string) bool {
				return strings.HasSuffix(name, suffix) && !isAuxiliary(name, "-sources", "-javadoc")
			})
		},
	}
}

// AnyJar matches any jar that is not a sources, javadoc or plain jar.
func AnyJar() Matcher {
	return Matcher{
		Name: "any",
		Find: func(dir string, q Query) ([]string, error) {
			return listJars(dir, func(name string) bool {
				return !isAuxiliary(name, "-sources", "-javadoc", "-plain")
			})
		},
	}
}

func listJars(dir string, keep func(name string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, naming.Extension) || !keep(name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// isAuxiliary reports whether any marker appears anywhere in name.
func isAuxiliary(name string, markers ...string) bool {
	for _, m := range markers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}
