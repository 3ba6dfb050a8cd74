package config

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if !cfg.EnableArchiving {
		t.Error("EnableArchiving should default to true")
	}
	if !cfg.ArchiveEveryBuild {
		t.Error("ArchiveEveryBuild should default to true")
	}
	if cfg.ArchiveDirectory != DefaultArchiveDirectory {
		t.Errorf("ArchiveDirectory = %q, want %q", cfg.ArchiveDirectory, DefaultArchiveDirectory)
	}
	if got := cfg.EffectiveTargets(); !reflect.DeepEqual(got, []string{TargetUniversal}) {
		t.Errorf("EffectiveTargets = %v, want [universal]", got)
	}
	if len(cfg.NamingScheme) != 3 {
		t.Errorf("NamingScheme has %d entries, want 3", len(cfg.NamingScheme))
	}
}

func TestLoad_MissingFileCreatesDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg := Load(dir, quietLogger())

	if got := cfg.EffectiveTargets(); !reflect.DeepEqual(got, []string{"universal"}) {
		t.Errorf("EffectiveTargets = %v, want [universal]", got)
	}

	data, err := os.ReadFile(filepath.Join(dir, ConfigFileName))
	if err != nil {
		t.Fatalf("default config not written: %v", err)
	}

	var written map[string]any
	if err := json.Unmarshal(data, &written); err != nil {
		t.Fatalf("written config is not JSON: %v", err)
	}
	for _, key := range []string{"enable_archiving", "archive_every_build", "archive_directory", "build_targets", "build_naming_scheme", "custom_copy_paths", "comment"} {
		if _, ok := written[key]; !ok {
			t.Errorf("written config missing key %q", key)
		}
	}
	if _, ok := written["s3_mirror"]; ok {
		t.Error("s3_mirror should be omitted from the default file")
	}

	if cfg.Root() != dir {
		t.Errorf("Root = %q, want %q", cfg.Root(), dir)
	}
}

func TestLoad_UnwritableDirUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "sub", ConfigFileName)

	cfg := LoadFile(path, quietLogger())

	if !cfg.EnableArchiving || cfg.ArchiveDirectory != DefaultArchiveDirectory {
		t.Errorf("expected defaults, got %+v", cfg)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("config should not exist in a missing directory")
	}
}

func TestLoad_MalformedFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(`{"enable_archiving": false,`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Load(dir, quietLogger())

	if !cfg.EnableArchiving {
		t.Error("malformed config should fall back to defaults")
	}

	data, _ := os.ReadFile(path)
	if string(data) != `{"enable_archiving": false,` {
		t.Error("malformed config must not be overwritten")
	}
}

func TestLoad_MergesUserSettings(t *testing.T) {
	dir := t.TempDir()
	configJSON := `{
    "enable_archiving": false,
    "archive_every_build": false,
    "archive_directory": "/srv/archive",
    "build_targets": ["quilt", "puzzle", "forge"],
    "build_naming_scheme": {
        "quilt": "${mod_name}-q-${version}.jar"
    },
    "custom_copy_paths": [
        {"targets": ["puzzle"], "destination": "../instance/mods"}
    ],
    "dev_build_marker": "-Dev",
    "archive_only_new_versions": true,
    "mod_name": "Ignored"
}
`
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Load(dir, quietLogger())

	if cfg.EnableArchiving || cfg.ArchiveEveryBuild {
		t.Error("booleans should be overridden")
	}
	if cfg.ArchivePath() != "/srv/archive" {
		t.Errorf("ArchivePath = %q, want /srv/archive", cfg.ArchivePath())
	}
	if got := cfg.EffectiveTargets(); !reflect.DeepEqual(got, []string{"quilt", "puzzle"}) {
		t.Errorf("EffectiveTargets = %v, want [quilt puzzle]", got)
	}
	if got := cfg.DroppedTargets(); !reflect.DeepEqual(got, []string{"forge"}) {
		t.Errorf("DroppedTargets = %v, want [forge]", got)
	}
	if cfg.NamingTemplate("quilt") != "${mod_name}-q-${version}.jar" {
		t.Errorf("quilt template = %q", cfg.NamingTemplate("quilt"))
	}
	if cfg.NamingTemplate("universal") != "${mod_name}-${version}-universal.jar" {
		t.Errorf("universal template should keep its default, got %q", cfg.NamingTemplate("universal"))
	}
	rules := cfg.CopyRulesFor("puzzle")
	if len(rules) != 1 || rules[0].Destination != "../instance/mods" {
		t.Errorf("CopyRulesFor(puzzle) = %+v", rules)
	}
	if len(cfg.CopyRulesFor("quilt")) != 0 {
		t.Error("quilt should have no copy rules")
	}
}

func TestMerge_DoesNotMutateDefaults(t *testing.T) {
	defaults := Defaults()
	targets := TargetList{"all"}

	merged := Merge(defaults, File{
		BuildTargets: &targets,
		NamingScheme: map[string]string{"universal": "x.jar"},
	})

	if defaults.NamingScheme["universal"] != "${mod_name}-${version}-universal.jar" {
		t.Error("Merge modified the defaults naming scheme")
	}
	if merged.NamingScheme["universal"] != "x.jar" {
		t.Errorf("merged universal template = %q", merged.NamingScheme["universal"])
	}
	if !merged.AllTargetsSelected() {
		t.Error("all should select every target")
	}
	if defaults.AllTargetsSelected() {
		t.Error("defaults should still select only universal")
	}
}

func TestMerge_EmptyArchiveDirectoryKeepsDefault(t *testing.T) {
	empty := ""
	cfg := Merge(Defaults(), File{ArchiveDirectory: &empty})
	if cfg.ArchiveDirectory != DefaultArchiveDirectory {
		t.Errorf("ArchiveDirectory = %q, want default", cfg.ArchiveDirectory)
	}
}

func TestEffectiveTargets(t *testing.T) {
	known := DefaultTargets()
	all := []string{"universal", "puzzle", "quilt"}

	tests := []struct {
		name        string
		requested   []string
		want        []string
		wantDropped []string
	}{
		{"empty selects all", nil, all, nil},
		{"all sentinel", []string{"all"}, all, nil},
		{"all mixed with names", []string{"quilt", "all"}, all, nil},
		{"subset keeps order", []string{"quilt", "universal"}, []string{"quilt", "universal"}, nil},
		{"duplicates removed", []string{"puzzle", "puzzle"}, []string{"puzzle"}, nil},
		{"unknown dropped", []string{"forge", "quilt"}, []string{"quilt"}, []string{"forge"}},
		{"nothing valid", []string{"forge"}, []string{}, []string{"forge"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, dropped := EffectiveTargets(tt.requested, known)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("targets = %v, want %v", got, tt.want)
			}
			if !reflect.DeepEqual(dropped, tt.wantDropped) {
				t.Errorf("dropped = %v, want %v", dropped, tt.wantDropped)
			}
		})
	}
}

func TestEffectiveTargets_AllIsFullSetRegardlessOfOrder(t *testing.T) {
	got, _ := EffectiveTargets([]string{"all"}, DefaultTargets())
	sort.Strings(got)
	if !reflect.DeepEqual(got, []string{"puzzle", "quilt", "universal"}) {
		t.Errorf("targets = %v", got)
	}
}

func TestTargetList_Unmarshal(t *testing.T) {
	tests := []struct {
		input string
		want  TargetList
	}{
		{`["universal","quilt"]`, TargetList{"universal", "quilt"}},
		{`"all"`, TargetList{"all"}},
		{`"puzzle"`, TargetList{"puzzle"}},
		{`42`, TargetList{"all"}},
		{`[]`, TargetList{}},
	}

	for _, tt := range tests {
		var got TargetList
		if err := json.Unmarshal([]byte(tt.input), &got); err != nil {
			t.Fatalf("Unmarshal(%s) error: %v", tt.input, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Unmarshal(%s) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestOverrideTargets(t *testing.T) {
	cfg := Load(t.TempDir(), quietLogger())

	dropped := cfg.OverrideTargets([]string{"puzzle", "bogus"})
	if !reflect.DeepEqual(dropped, []string{"bogus"}) {
		t.Errorf("dropped = %v", dropped)
	}
	if got := cfg.EffectiveTargets(); !reflect.DeepEqual(got, []string{"puzzle"}) {
		t.Errorf("EffectiveTargets = %v", got)
	}

	cfg.OverrideTargets([]string{"all"})
	if !cfg.AllTargetsSelected() {
		t.Error("all should select every target")
	}
}

func TestPaths(t *testing.T) {
	dir := t.TempDir()
	cfg := Load(dir, quietLogger())

	if cfg.DistPath() != filepath.Join(dir, "dist") {
		t.Errorf("DistPath = %q", cfg.DistPath())
	}
	if cfg.ArchivePath() != filepath.Join(dir, "build_archive") {
		t.Errorf("ArchivePath = %q", cfg.ArchivePath())
	}
	if cfg.PropertiesPath() != filepath.Join(dir, "gradle.properties") {
		t.Errorf("PropertiesPath = %q", cfg.PropertiesPath())
	}
	quilt, ok := cfg.Target("quilt")
	if !ok {
		t.Fatal("quilt target missing")
	}
	if cfg.TargetDir(quilt) != filepath.Join(dir, "src", "quilt", "build", "libs") {
		t.Errorf("TargetDir(quilt) = %q", cfg.TargetDir(quilt))
	}
	if _, ok := cfg.Target("forge"); ok {
		t.Error("forge is not a known target")
	}
}

func TestExpectedJar(t *testing.T) {
	targets := DefaultTargets()
	want := map[string]string{
		"universal": "Sound_Controller-1.0.0-universal.jar",
		"puzzle":    "Sound_Controller-1.0.0-puzzle.jar",
		"quilt":     "Sound_Controller-quilt-1.0.0.jar",
	}
	for _, tgt := range targets {
		if got := tgt.ExpectedJar("Sound_Controller", "1.0.0"); got != want[tgt.Name] {
			t.Errorf("%s ExpectedJar = %q, want %q", tgt.Name, got, want[tgt.Name])
		}
	}
}

func TestMirrorAndListenAddress(t *testing.T) {
	cfg := Defaults()
	if cfg.MirrorEnabled() {
		t.Error("mirror should be disabled by default")
	}
	if cfg.ListenAddress() != DefaultServeAddress {
		t.Errorf("ListenAddress = %q", cfg.ListenAddress())
	}

	addr := ":9000"
	merged := Merge(cfg, File{
		S3Mirror:     &S3MirrorConfig{Bucket: "mods", Prefix: "archive"},
		ServeAddress: &addr,
	})
	if !merged.MirrorEnabled() {
		t.Error("mirror should be enabled with a bucket")
	}
	if merged.ListenAddress() != ":9000" {
		t.Errorf("ListenAddress = %q", merged.ListenAddress())
	}
}
