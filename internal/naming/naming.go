// Package naming renders output file names from naming scheme templates.
//
// Templates use the placeholders ${mod_name}, ${version}, ${subproject} and
// ${original_basename}. The result is sanitized for every common filesystem
// and always ends in ".jar":
//
//	naming.Format("${mod_name}-${version}-${subproject}.jar", naming.Values{
//	    ModName:    "My Mod",
//	    Version:    "1.2.3-Dev4",
//	    Subproject: "puzzle",
//	})
//	// My_Mod-1.2.3-Dev4-puzzle.jar
package naming

import (
	"path/filepath"
	"strings"
)

const (
	// Extension is the binary artifact extension.
	Extension = ".jar"

	// DefaultTemplate is used for targets without a naming scheme entry.
	DefaultTemplate = "${mod_name}-${version}-${subproject}.jar"

	fallbackModName = "UnknownMod"
	fallbackVersion = "UNKNOWN"
)

// unsafe characters are replaced by '_'.
var sanitizer = strings.NewReplacer(
	"<", "_", ">", "_", ":", "_", `"`, "_", "/", "_",
	`\`, "_", "|", "_", "?", "_", "*", "_", " ", "_",
)

// Values are the placeholder substitutions.
type Values struct {
	ModName      string
	Version      string
	Subproject   string
	OriginalName string
}

// Format substitutes v into template, sanitizes the result and appends the
// jar extension when missing.
func Format(template string, v Values) string {
	if v.ModName == "" {
		v.ModName = fallbackModName
	}
	if v.Version == "" {
		v.Version = fallbackVersion
	}
	basename := strings.TrimSuffix(v.OriginalName, filepath.Ext(v.OriginalName))

	r := strings.NewReplacer(
		"${mod_name}", v.ModName,
		"${version}", v.Version,
		"${subproject}", v.Subproject,
		"${original_basename}", basename,
	)

	name := Sanitize(r.Replace(template))
	if !strings.HasSuffix(strings.ToLower(name), Extension) {
		name += Extension
	}
	return name
}

// Sanitize replaces < > : " / \ | ? * and spaces with underscores.
func Sanitize(s string) string {
	return sanitizer.Replace(s)
}
