// Package toolchain defines the contract with the external compiler: the
// host capability it resolves files through, the program it hands back, and
// the diagnostics and artifacts a program produces. The compiler itself is a
// black box behind the Toolchain interface.
package toolchain

import "fmt"

// Host is the file-resolution capability the compiler uses to reach any
// path referenced transitively from the root set.
type Host interface {
	FileExists(path string) bool
	ReadFile(path string) (string, error)
	DirectoryExists(path string) bool
}

// Severity of a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// Diagnostic is a single compiler message. Diagnostics are data, not errors:
// they are forwarded one at a time and never abort a build.
type Diagnostic struct {
	File     string
	Line     int
	Column   int
	Code     int
	Severity Severity
	Message  string
}

// Format renders the diagnostic in "path(line,col): code message" form.
func (d Diagnostic) Format() string {
	if d.File == "" {
		return fmt.Sprintf("%d %s", d.Code, d.Message)
	}
	return fmt.Sprintf("%s(%d,%d): %d %s", d.File, d.Line, d.Column, d.Code, d.Message)
}

// ArtifactKind classifies an emitted output file.
type ArtifactKind int

const (
	KindCompiledCode ArtifactKind = iota
	KindSourceMap
	KindDeclaration
)

func (k ArtifactKind) String() string {
	switch k {
	case KindSourceMap:
		return "sourcemap"
	case KindDeclaration:
		return "declaration"
	default:
		return "compiled"
	}
}

// Artifact is one emitted output file, keyed back to its originating source
// by stripping the kind-specific suffix from its path.
type Artifact struct {
	Path     string
	Contents string
	Kind     ArtifactKind
}

// Program is a constructed compilation over a fixed root set.
type Program interface {
	// Diagnostics returns all syntax/semantic diagnostics, in compiler order.
	Diagnostics() []Diagnostic
	// Emit produces all output artifacts. Only environment failures (host
	// reads for mandatory files) return an error.
	Emit() ([]Artifact, error)
}

// Toolchain constructs programs. Options are the opaque pass-through
// compiler configuration.
type Toolchain interface {
	CreateProgram(roots []string, options map[string]any, host Host) (Program, error)
}
