package errors

import (
	"errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig     Category = "config"
	CategoryInvocation Category = "invocation"
	CategoryArtifact   Category = "artifact"
	CategoryArchive    Category = "archive"
	CategoryCleanup    Category = "cleanup"
	CategoryServer     Category = "server"
)

// BuildError is a structured error with a code, detail and a fix suggestion.
type BuildError struct {
	// Code is a unique error identifier (e.g., "E121").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Output holds captured process output attached to the error, if any.
	Output string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *BuildError) Unwrap() error {
	return e.Wrapped
}

// WithDetail adds a detailed explanation to the error.
func (e *BuildError) WithDetail(d string) *BuildError {
	e.Detail = d
	return e
}

// WithDetailf adds a formatted detail to the error.
func (e *BuildError) WithDetailf(format string, args ...any) *BuildError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithOutput attaches captured process output.
func (e *BuildError) WithOutput(out string) *BuildError {
	e.Output = out
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *BuildError) WithSuggestion(s string) *BuildError {
	e.Suggestion = s
	return e
}

// Wrap wraps another error.
func (e *BuildError) Wrap(err error) *BuildError {
	e.Wrapped = err
	return e
}

// Fatal reports whether the error should terminate the run.
func (e *BuildError) Fatal() bool {
	return e.Category == CategoryInvocation
}

// New creates a BuildError from a registered error code.
func New(code string) *BuildError {
	template, ok := registry[code]
	if !ok {
		return &BuildError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &BuildError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new BuildError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *BuildError {
	return &BuildError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a BuildError.
func FromError(err error, code string) *BuildError {
	if err == nil {
		return nil
	}
	var be *BuildError
	if errors.As(err, &be) {
		return be
	}
	return New(code).Wrap(err)
}

// IsFatal reports whether err is, or wraps, a fatal BuildError.
func IsFatal(err error) bool {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Fatal()
	}
	return false
}

// Code returns the code of the first BuildError in err's chain, or "".
func Code(err error) string {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}
