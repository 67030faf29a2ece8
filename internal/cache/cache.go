// Package cache holds the previous cycle's finished build result so an
// unchanged input set can be replayed without touching the compiler or the
// host adapter.
package cache

import (
	"sort"

	"git.home.luguber.info/inful/incrbuild/internal/pipeline"
	"git.home.luguber.info/inful/incrbuild/internal/toolchain"
)

// Entry groups the finished output files produced for one original source
// path. The source map travels attached to the code file, mirroring how the
// emission pipeline hands files to the sink.
type Entry struct {
	Code        *pipeline.File
	Declaration *pipeline.File
}

// Result is an immutable snapshot of one completed compilation: every
// diagnostic in compiler order plus the finished outputs per original path.
// It is produced at the end of a recompilation and owned by the project for
// exactly one subsequent cycle; a store reset does not touch it.
type Result struct {
	diagnostics []toolchain.Diagnostic
	entries     map[string]Entry
}

// Builder accumulates a Result during emission. Seal freezes it.
type Builder struct {
	diagnostics []toolchain.Diagnostic
	entries     map[string]Entry
}

func NewBuilder() *Builder {
	return &Builder{entries: make(map[string]Entry)}
}

// AddDiagnostic appends a diagnostic in arrival order.
func (b *Builder) AddDiagnostic(d toolchain.Diagnostic) {
	b.diagnostics = append(b.diagnostics, d)
}

// AddCode records the finished compiled output for an original path.
func (b *Builder) AddCode(originalPath string, f *pipeline.File) {
	entry := b.entries[originalPath]
	entry.Code = f
	b.entries[originalPath] = entry
}

// AddDeclaration records the finished declaration output for an original
// path.
func (b *Builder) AddDeclaration(originalPath string, f *pipeline.File) {
	entry := b.entries[originalPath]
	entry.Declaration = f
	b.entries[originalPath] = entry
}

// Seal produces the immutable Result and invalidates the builder.
func (b *Builder) Seal() *Result {
	res := &Result{diagnostics: b.diagnostics, entries: b.entries}
	b.diagnostics = nil
	b.entries = nil
	return res
}

// Diagnostics returns the cached diagnostics in their original order.
func (r *Result) Diagnostics() []toolchain.Diagnostic {
	return r.diagnostics
}

// Entry returns the outputs cached for an original path.
func (r *Result) Entry(originalPath string) (Entry, bool) {
	e, ok := r.entries[originalPath]
	return e, ok
}

// Paths returns all cached original paths, sorted for deterministic replay.
func (r *Result) Paths() []string {
	paths := make([]string, 0, len(r.entries))
	for p := range r.entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Len returns the number of cached original paths.
func (r *Result) Len() int {
	return len(r.entries)
}
