// Package vfs provides the in-memory virtual file store backing a single
// build cycle: files supplied by the pipeline plus files the compiler
// resolved from outside the input set.
package vfs

import (
	"strings"

	"git.home.luguber.info/inful/incrbuild/internal/pipeline"
)

// InputFile is a file explicitly supplied by the pipeline for this build.
// The originating pipeline handle carries the cwd/base metadata needed to
// reconstruct output paths.
type InputFile struct {
	Path     string
	Contents string
	Handle   *pipeline.File
}

// ExternalFile is a file the compiler resolved transitively that was not in
// the input set. It has no pipeline handle and is read-only for the cycle.
type ExternalFile struct {
	Path     string
	Contents string
}

// NormalizePath converts a path to the canonical store form: forward
// slashes, case preserved.
func NormalizePath(path string) string {
	return strings.ReplaceAll(path, "\\", "/")
}

// Store maps normalized paths to input and external files. A path is never
// present in both sets at once: registering an input evicts any external
// entry under the same path.
type Store struct {
	inputs    map[string]*InputFile
	externals map[string]*ExternalFile
}

func NewStore() *Store {
	return &Store{
		inputs:    make(map[string]*InputFile),
		externals: make(map[string]*ExternalFile),
	}
}

// Add registers or overwrites an InputFile under the normalized path.
func (s *Store) Add(path, contents string, handle *pipeline.File) *InputFile {
	p := NormalizePath(path)
	in := &InputFile{Path: p, Contents: contents, Handle: handle}
	s.inputs[p] = in
	delete(s.externals, p)
	return in
}

// AddExternal memoizes an externally resolved file. It is a no-op if the
// path is already known as an input.
func (s *Store) AddExternal(path, contents string) *ExternalFile {
	p := NormalizePath(path)
	if _, ok := s.inputs[p]; ok {
		return nil
	}
	ext := &ExternalFile{Path: p, Contents: contents}
	s.externals[p] = ext
	return ext
}

// Reset clears both file sets. Called at the start of each build cycle in
// watch scenarios.
func (s *Store) Reset() {
	s.inputs = make(map[string]*InputFile)
	s.externals = make(map[string]*ExternalFile)
}

// Input returns the InputFile at path, if any.
func (s *Store) Input(path string) (*InputFile, bool) {
	in, ok := s.inputs[NormalizePath(path)]
	return in, ok
}

// Contents returns the content of the file at path from either set.
func (s *Store) Contents(path string) (string, bool) {
	p := NormalizePath(path)
	if in, ok := s.inputs[p]; ok {
		return in.Contents, true
	}
	if ext, ok := s.externals[p]; ok {
		return ext.Contents, true
	}
	return "", false
}

// Has reports whether path is known to either set.
func (s *Store) Has(path string) bool {
	_, ok := s.Contents(path)
	return ok
}

// InputPaths returns the normalized paths of all input files.
func (s *Store) InputPaths() []string {
	paths := make([]string, 0, len(s.inputs))
	for p := range s.inputs {
		paths = append(paths, p)
	}
	return paths
}

// Inputs returns all input files keyed by normalized path.
func (s *Store) Inputs() map[string]*InputFile {
	return s.inputs
}

// Len returns the number of input files.
func (s *Store) Len() int {
	return len(s.inputs)
}

// HasDirectory reports whether any known file lives under dir, i.e. the
// directory is a strict prefix of some known path.
func (s *Store) HasDirectory(dir string) bool {
	prefix := strings.TrimSuffix(NormalizePath(dir), "/") + "/"
	for p := range s.inputs {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	for p := range s.externals {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// Snapshot captures the current input set as path → contents, used by the
// change detector to compare consecutive cycles.
func (s *Store) Snapshot() map[string]string {
	snap := make(map[string]string, len(s.inputs))
	for p, in := range s.inputs {
		snap[p] = in.Contents
	}
	return snap
}
