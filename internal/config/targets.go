package config

import (
	"path/filepath"
	"strings"
)

// Known target names.
const (
	TargetUniversal = "universal"
	TargetPuzzle    = "puzzle"
	TargetQuilt     = "quilt"

	// TargetAll selects every known target.
	TargetAll = "all"
)

// TargetInfo describes how one build flavor is produced by Gradle.
type TargetInfo struct {
	// Name is the target name used in configuration and on the command line.
	Name string

	// Dir is the build output directory, relative to the project root.
	Dir string

	// Task is the Gradle task that builds only this target.
	Task string

	// Classifier is the jar name suffix identifying this target's artifact.
	Classifier string

	// JarPattern is the expected jar name. {mod_name} and {version} are
	// substituted before matching.
	JarPattern string
}

// ExpectedJar returns the jar name Gradle is expected to produce.
func (t TargetInfo) ExpectedJar(modName, version string) string {
	r := strings.NewReplacer("{mod_name}", modName, "{version}", version)
	return r.Replace(t.JarPattern)
}

// DefaultTargets returns the fixed target table in build order.
// A new slice is returned on every call.
func DefaultTargets() []TargetInfo {
	return []TargetInfo{
		{
			Name:       TargetUniversal,
			Dir:        filepath.Join("build", "libs"),
			Task:       "universalJar",
			Classifier: "universal",
			JarPattern: "{mod_name}-{version}-universal.jar",
		},
		{
			Name:       TargetPuzzle,
			Dir:        filepath.Join("src", "puzzle", "build", "libs"),
			Task:       ":src:puzzle:shadowJar",
			Classifier: "puzzle",
			JarPattern: "{mod_name}-{version}-puzzle.jar",
		},
		{
			Name:       TargetQuilt,
			Dir:        filepath.Join("src", "quilt", "build", "libs"),
			Task:       ":src:quilt:jar",
			Classifier: "quilt",
			JarPattern: "{mod_name}-quilt-{version}.jar",
		},
	}
}

// EffectiveTargets resolves requested target names against the known table.
//
// An empty request, or one containing "all", selects every known target in
// table order. Otherwise known names are kept in request order without
// duplicates and unknown names are returned in dropped.
func EffectiveTargets(requested []string, known []TargetInfo) (targets, dropped []string) {
	all := make([]string, 0, len(known))
	for _, t := range known {
		all = append(all, t.Name)
	}

	if len(requested) == 0 {
		return all, nil
	}
	for _, name := range requested {
		if name == TargetAll {
			return all, nil
		}
	}

	seen := make(map[string]bool, len(requested))
	targets = []string{}
	for _, name := range requested {
		if seen[name] {
			continue
		}
		seen[name] = true
		if containsTarget(known, name) {
			targets = append(targets, name)
		} else {
			dropped = append(dropped, name)
		}
	}
	return targets, dropped
}

func containsTarget(known []TargetInfo, name string) bool {
	for _, t := range known {
		if t.Name == name {
			return true
		}
	}
	return false
}
