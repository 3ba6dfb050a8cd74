package gradle

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/neuxs/modbuild/internal/config"
	"github.com/neuxs/modbuild/internal/errors"
)

const (
	// BuildTask builds every target at once.
	BuildTask = "build"

	// InfoFlag raises Gradle's log level in verbose mode.
	InfoFlag = "--info"
)

// Result contains the outcome of a Gradle invocation.
type Result struct {
	// Command is the executed command line.
	Command []string

	// Stdout is the captured standard output.
	Stdout string

	// Stderr is the captured standard error.
	Stderr string

	// ExitCode is the process exit status.
	ExitCode int

	// Duration is how long Gradle ran.
	Duration time.Duration
}

// Options configures the invoker.
type Options struct {
	// Verbose adds --info and echoes the captured output.
	Verbose bool

	// GOOS overrides the platform used to pick the wrapper script.
	GOOS string

	// Output receives the echoed Gradle output in verbose mode.
	// Default: os.Stdout
	Output io.Writer

	// Logger is the logger to use.
	Logger *slog.Logger
}

// Invoker runs the Gradle wrapper of one project.
type Invoker struct {
	root    string
	options Options
	logger  *slog.Logger
}

// New creates an invoker for the project at root.
func New(root string, options Options) *Invoker {
	if options.GOOS == "" {
		options.GOOS = runtime.GOOS
	}
	if options.Output == nil {
		options.Output = os.Stdout
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Invoker{
		root:    root,
		options: options,
		logger:  logger.With("component", "gradle"),
	}
}

// Executable returns the wrapper path for the platform goos.
func Executable(root, goos string) string {
	if goos == "windows" {
		return filepath.Join(root, "gradlew.bat")
	}
	return filepath.Join(root, "gradlew")
}

// Tasks returns the Gradle tasks for the selected targets: the umbrella
// build task when every known target is selected, else each target's own
// task without duplicates.
func Tasks(selected []string, known []config.TargetInfo) []string {
	if len(selected) == 0 {
		return nil
	}
	if len(selected) == len(known) {
		return []string{BuildTask}
	}

	seen := make(map[string]bool)
	var tasks []string
	for _, name := range selected {
		for _, t := range known {
			if t.Name != name || seen[t.Task] {
				continue
			}
			seen[t.Task] = true
			tasks = append(tasks, t.Task)
		}
	}
	return tasks
}

// Prepare resolves the wrapper and makes it executable on non-Windows
// platforms. A missing wrapper is a fatal error.
func (i *Invoker) Prepare() (string, error) {
	exe := Executable(i.root, i.options.GOOS)

	info, err := os.Stat(exe)
	if err != nil {
		return "", errors.New("E120").
			WithDetailf("Could not find Gradle wrapper '%s'.", exe).
			WithSuggestion("Run modbuild from the project root, or pass --dir").
			Wrap(err)
	}

	if i.options.GOOS != "windows" && info.Mode().Perm()&0111 != 0111 {
		if err := os.Chmod(exe, 0755); err != nil {
			i.logger.Warn("could not set executable permission", "path", exe, "error", err)
		}
	}

	return exe, nil
}

// Run invokes the wrapper with the tasks of targets and waits for it to exit.
// An empty target list skips the invocation and returns a nil Result.
func (i *Invoker) Run(ctx context.Context, targets []string, known []config.TargetInfo) (*Result, error) {
	tasks := Tasks(targets, known)
	if len(tasks) == 0 {
		i.logger.Warn("no valid build targets specified, skipping Gradle execution")
		return nil, nil
	}

	exe, err := i.Prepare()
	if err != nil {
		return nil, err
	}

	if tasks[0] == BuildTask {
		i.logger.Debug("gradle target: build (all specified targets)")
	} else {
		i.logger.Debug("gradle targets", "tasks", strings.Join(tasks, ", "))
	}

	args := append([]string(nil), tasks...)
	if i.options.Verbose {
		args = append(args, InfoFlag)
	}

	result := &Result{Command: append([]string{exe}, args...)}
	i.logger.Debug("running gradle command", "command", strings.Join(result.Command, " "))

	cmd := exec.CommandContext(ctx, exe, args...)
	cmd.Dir = i.root

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	result.Duration = time.Since(start)
	result.Stdout = decode(stdout.Bytes())
	result.Stderr = decode(stderr.Bytes())

	if i.options.Verbose {
		i.echo(result)
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if !stderrors.As(runErr, &exitErr) {
			return result, errors.New("E122").
				WithDetailf("Could not execute Gradle wrapper '%s'.", exe).
				Wrap(runErr)
		}

		result.ExitCode = exitErr.ExitCode()
		be := errors.New("E121").
			WithDetailf("Command: %s (return code %d)", strings.Join(result.Command, " "), result.ExitCode).
			WithSuggestion("Fix the Gradle errors above and run the build again").
			Wrap(runErr)
		if !i.options.Verbose {
			be.WithOutput(combined(result))
		}
		return result, be
	}

	i.logger.Debug("gradle build successful", "duration", result.Duration.Round(time.Millisecond))
	return result, nil
}

func (i *Invoker) echo(r *Result) {
	w := i.options.Output
	fmt.Fprintln(w, "\n--- Gradle Standard Output ---")
	fmt.Fprintln(w, r.Stdout)
	fmt.Fprintln(w, "-----------------------------")
	if r.Stderr != "" {
		fmt.Fprintln(w, "\n--- Gradle Standard Error ---")
		fmt.Fprint(w, r.Stderr)
		fmt.Fprintln(w, "\n----------------------------")
	}
}

func combined(r *Result) string {
	var b strings.Builder
	b.WriteString("--- Gradle Standard Output ---\n")
	b.WriteString(r.Stdout)
	if r.Stderr != "" {
		b.WriteString("\n--- Gradle Standard Error ---\n")
		b.WriteString(r.Stderr)
	}
	return b.String()
}

// decode converts captured bytes to text, replacing invalid UTF-8.
func decode(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}
