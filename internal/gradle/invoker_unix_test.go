//go:build !windows

package gradle

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/neuxs/modbuild/internal/config"
	"github.com/neuxs/modbuild/internal/errors"
)

// writeWrapper installs a fake gradlew that records its arguments.
func writeWrapper(t *testing.T, dir, body string, mode os.FileMode) {
	t.Helper()
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(filepath.Join(dir, "gradlew"), []byte(script), mode); err != nil {
		t.Fatal(err)
	}
}

func TestRun_Success(t *testing.T) {
	dir := t.TempDir()
	writeWrapper(t, dir, `echo "$@" > args.txt
echo "BUILD SUCCESSFUL"`, 0644)

	var out bytes.Buffer
	inv := New(dir, Options{Verbose: true, Output: &out, Logger: quietLogger()})

	res, err := inv.Run(context.Background(), []string{"puzzle"}, config.DefaultTargets())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	args, err := os.ReadFile(filepath.Join(dir, "args.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(args)); got != ":src:puzzle:shadowJar --info" {
		t.Errorf("gradle args = %q", got)
	}
	if !strings.Contains(res.Stdout, "BUILD SUCCESSFUL") {
		t.Errorf("Stdout = %q", res.Stdout)
	}
	if !strings.Contains(out.String(), "BUILD SUCCESSFUL") {
		t.Error("verbose mode should echo Gradle output")
	}

	info, err := os.Stat(filepath.Join(dir, "gradlew"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0100 == 0 {
		t.Error("wrapper should have been made executable")
	}
}

func TestRun_AllTargetsUsesBuildTask(t *testing.T) {
	dir := t.TempDir()
	writeWrapper(t, dir, `echo "$@" > args.txt`, 0755)

	inv := New(dir, Options{Logger: quietLogger()})
	if _, err := inv.Run(context.Background(), []string{"universal", "puzzle", "quilt"}, config.DefaultTargets()); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	args, _ := os.ReadFile(filepath.Join(dir, "args.txt"))
	if got := strings.TrimSpace(string(args)); got != "build" {
		t.Errorf("gradle args = %q, want build", got)
	}
}

func TestRun_Failure(t *testing.T) {
	dir := t.TempDir()
	writeWrapper(t, dir, `echo "compiling"
echo "FAILURE: Build failed" >&2
exit 3`, 0755)

	var out bytes.Buffer
	inv := New(dir, Options{Output: &out, Logger: quietLogger()})

	res, err := inv.Run(context.Background(), []string{"universal"}, config.DefaultTargets())
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if errors.Code(err) != "E121" {
		t.Errorf("code = %q, want E121", errors.Code(err))
	}
	if !errors.IsFatal(err) {
		t.Error("build failure must be fatal")
	}
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}

	be := errors.FromError(err, "")
	if !strings.Contains(be.Output, "FAILURE: Build failed") || !strings.Contains(be.Output, "compiling") {
		t.Errorf("error output should carry both streams, got %q", be.Output)
	}
	if out.Len() != 0 {
		t.Error("non-verbose mode should not echo output")
	}
}
