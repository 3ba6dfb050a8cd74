package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "config error",
			code:    "E101",
			wantMsg: "Invalid build_config.json",
			wantCat: CategoryConfig,
		},
		{
			name:    "invocation error",
			code:    "E121",
			wantMsg: "Gradle build failed",
			wantCat: CategoryInvocation,
		},
		{
			name:    "cleanup error",
			code:    "E150",
			wantMsg: "Cleanup failed",
			wantCat: CategoryCleanup,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryArtifact, "target %q has no jar", "quilt")
	if err.Message != `target "quilt" has no jar` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Category != CategoryArtifact {
		t.Errorf("Category = %q, want %q", err.Category, CategoryArtifact)
	}
}

func TestBuildError_Error(t *testing.T) {
	err := New("E120")
	if got, want := err.Error(), "E120: Gradle wrapper not found"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	wrapped := New("E122").Wrap(fmt.Errorf("permission denied"))
	if got, want := wrapped.Error(), "E122: Gradle could not be started: permission denied"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	plain := &BuildError{Message: "test error"}
	if plain.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", plain.Error(), "test error")
	}
}

func TestUnwrapAndHelpers(t *testing.T) {
	cause := stderrors.New("exit status 1")
	err := fmt.Errorf("running gradle: %w", New("E121").Wrap(cause))

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if !IsFatal(err) {
		t.Error("E121 should be fatal")
	}
	if Code(err) != "E121" {
		t.Errorf("Code = %q, want E121", Code(err))
	}
	if IsFatal(New("E131")) {
		t.Error("E131 should not be fatal")
	}
	if IsFatal(cause) {
		t.Error("plain errors are not fatal")
	}
	if Code(cause) != "" {
		t.Error("plain errors have no code")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E131") != nil {
		t.Error("FromError(nil) should be nil")
	}

	orig := New("E140")
	if FromError(orig, "E131") != orig {
		t.Error("FromError should return existing BuildError unchanged")
	}

	plain := stderrors.New("disk full")
	be := FromError(plain, "E131")
	if be.Code != "E131" || be.Wrapped != plain {
		t.Errorf("FromError = %+v", be)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E121").
		WithDetail("gradlew exited with status 2").
		WithOutput("FAILURE: Build failed\n").
		WithSuggestion("Re-run with --verbose")

	out := err.Format()
	for _, want := range []string{
		"ERROR E121: Gradle build failed",
		"gradlew exited with status 2",
		"│ FAILURE: Build failed",
		"Hint: Re-run with --verbose",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("E130").WithDetail("quilt")
	if got, want := err.FormatCompact(), "E130: No jar found for target (quilt)"; got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFprintError(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	FprintError(&buf, stderrors.New("boom"))
	if !strings.Contains(buf.String(), "ERROR: boom") {
		t.Errorf("plain error output = %q", buf.String())
	}

	buf.Reset()
	FprintError(&buf, New("E120"))
	if !strings.Contains(buf.String(), "E120") {
		t.Errorf("coded error output = %q", buf.String())
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five six", 10)
	for _, l := range lines {
		if len(l) > 10 {
			t.Errorf("line %q exceeds width", l)
		}
	}
	if strings.Join(lines, " ") != "one two three four five six" {
		t.Errorf("wrapText lost words: %v", lines)
	}
	if wrapText("", 10) != nil {
		t.Error("empty text should produce no lines")
	}
}

func TestRegistryCodes(t *testing.T) {
	for _, code := range GetAllCodes() {
		tmpl, ok := GetTemplate(code)
		if !ok {
			t.Fatalf("GetTemplate(%q) missing", code)
		}
		if tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("template %q incomplete: %+v", code, tmpl)
		}
	}
}
