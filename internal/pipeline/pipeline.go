// Package pipeline defines the file shapes exchanged with the surrounding
// build pipeline: the input file handle fed into a build, the output sink
// that receives emitted files, and the error callback for diagnostics.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"git.home.luguber.info/inful/incrbuild/internal/sourcemap"
)

// File is the unit exchanged with the pipeline. Inputs carry the working
// directory and base path needed to reconstruct output locations; outputs
// are written back in the same shape.
type File struct {
	Path      string
	Contents  string
	Cwd       string
	Base      string
	SourceMap *sourcemap.Map
}

// Relative returns the file path relative to its base, falling back to the
// path itself when no base is set or the path is outside it.
func (f *File) Relative() string {
	if f.Base == "" {
		return f.Path
	}
	rel, err := filepath.Rel(f.Base, f.Path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return f.Path
	}
	return filepath.ToSlash(rel)
}

// Sink receives output files. Implementations are invoked synchronously;
// backpressure is the consuming pipeline's concern.
type Sink interface {
	Write(f *File) error
}

// ErrorFunc receives diagnostics and resolution failures one at a time.
// The orchestrator never aggregates them into a single failure.
type ErrorFunc func(err error)

// DiskSink writes output files under a directory, using each file's
// base-relative path.
type DiskSink struct {
	Dir string
}

func (s *DiskSink) Write(f *File) error {
	target := filepath.Join(s.Dir, filepath.FromSlash(f.Relative()))
	if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(target, []byte(f.Contents), 0640); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	if f.SourceMap != nil {
		data, err := f.SourceMap.ToJSON()
		if err != nil {
			return fmt.Errorf("serialize source map: %w", err)
		}
		if err := os.WriteFile(target+".map", data, 0640); err != nil {
			return fmt.Errorf("write source map: %w", err)
		}
	}
	return nil
}

// MemorySink collects output files in memory. Used by tests and by hosts
// that post-process outputs before persisting them.
type MemorySink struct {
	mu    sync.Mutex
	files map[string]*File
	order []string
}

func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string]*File)}
}

func (s *MemorySink) Write(f *File) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.files[f.Path]; !seen {
		s.order = append(s.order, f.Path)
	}
	s.files[f.Path] = f
	return nil
}

// Get returns the file written for path, or nil.
func (s *MemorySink) Get(path string) *File {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files[path]
}

// Order returns written paths in first-write order.
func (s *MemorySink) Order() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Paths returns all written paths, sorted.
func (s *MemorySink) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.files))
	for p := range s.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
