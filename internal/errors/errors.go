// Package errors defines the orchestrator's error taxonomy: diagnostics
// forwarded as data, fatal resolution failures, and nothing in between.
// Silent orchestration edge cases (unmatched artifacts, references without
// artifacts) are deliberate no-ops and never surface here.
package errors

import (
	"fmt"

	"git.home.luguber.info/inful/incrbuild/internal/toolchain"
)

// Name is the fixed tag carried by every error handed to the pipeline's
// error callback, so consumers can route them without string matching.
const Name = "incrbuild"

// Category classifies an error for routing and logging.
type Category string

const (
	// CategoryDiagnostic wraps a compiler diagnostic. Non-fatal; the build
	// continues and still emits all valid artifacts.
	CategoryDiagnostic Category = "diagnostic"
	// CategoryResolution marks a host read failure for a required file.
	// Fatal for the cycle.
	CategoryResolution Category = "resolution"
	// CategoryInternal marks orchestrator defects.
	CategoryInternal Category = "internal"
)

// Error is the shape handed to the caller-supplied error callback.
type Error struct {
	Name     string
	Category Category
	Message  string
	cause    error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Name, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// FromDiagnostic wraps a compiler diagnostic in its formatted
// "path(line,col): code message" form.
func FromDiagnostic(d toolchain.Diagnostic) *Error {
	return &Error{Name: Name, Category: CategoryDiagnostic, Message: d.Format()}
}

// Resolution builds a fatal resolution failure for path.
func Resolution(path string, cause error) *Error {
	return &Error{
		Name:     Name,
		Category: CategoryResolution,
		Message:  fmt.Sprintf("cannot resolve %s", path),
		cause:    cause,
	}
}

// Internal builds an orchestrator-defect error.
func Internal(msg string, cause error) *Error {
	return &Error{Name: Name, Category: CategoryInternal, Message: msg, cause: cause}
}

// IsResolution reports whether err is a fatal resolution failure.
func IsResolution(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Category == CategoryResolution
}
