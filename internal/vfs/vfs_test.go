package vfs

import (
	"testing"

	"git.home.luguber.info/inful/incrbuild/internal/pipeline"
)

func TestNormalizePath(t *testing.T) {
	if got := NormalizePath(`a\b\c.ts`); got != "a/b/c.ts" {
		t.Errorf("NormalizePath backslashes = %q, want a/b/c.ts", got)
	}
	if got := NormalizePath("a/B/c.TS"); got != "a/B/c.TS" {
		t.Errorf("NormalizePath should preserve case, got %q", got)
	}
}

func TestAddResolvesWindowsAndPosixToSameEntry(t *testing.T) {
	s := NewStore()
	s.Add(`a\b\c.ts`, "first", nil)
	s.Add("a/b/c.ts", "second", nil)

	if s.Len() != 1 {
		t.Fatalf("expected one entry, got %d", s.Len())
	}
	contents, ok := s.Contents(`a\b\c.ts`)
	if !ok || contents != "second" {
		t.Errorf("Contents = %q, %v; want second overwrite", contents, ok)
	}
}

func TestInputEvictsExternal(t *testing.T) {
	s := NewStore()
	s.AddExternal("lib/dep.ts", "external")
	s.Add("lib/dep.ts", "input", nil)

	in, ok := s.Input("lib/dep.ts")
	if !ok || in.Contents != "input" {
		t.Fatalf("expected input entry after Add, got %v %v", in, ok)
	}
	// Registering an external under an input path must be a no-op.
	if ext := s.AddExternal("lib/dep.ts", "shadow"); ext != nil {
		t.Error("AddExternal over an input path should return nil")
	}
	contents, _ := s.Contents("lib/dep.ts")
	if contents != "input" {
		t.Errorf("input content shadowed by external: %q", contents)
	}
}

func TestResetClearsBothSets(t *testing.T) {
	s := NewStore()
	s.Add("main.ts", "x", &pipeline.File{Path: "main.ts"})
	s.AddExternal("lib.ts", "y")

	s.Reset()

	if s.Len() != 0 {
		t.Errorf("inputs survived reset: %d", s.Len())
	}
	if s.Has("lib.ts") {
		t.Error("external survived reset")
	}
}

func TestHasDirectory(t *testing.T) {
	s := NewStore()
	s.Add("src/lib/util.ts", "x", nil)
	s.AddExternal("vendor/dep/index.ts", "y")

	cases := []struct {
		dir  string
		want bool
	}{
		{"src", true},
		{"src/lib", true},
		{"src/lib/util.ts", false}, // a file, not a strict prefix
		{"vendor/dep", true},
		{"other", false},
		{`src\lib`, true},
	}
	for _, tc := range cases {
		if got := s.HasDirectory(tc.dir); got != tc.want {
			t.Errorf("HasDirectory(%q) = %v, want %v", tc.dir, got, tc.want)
		}
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	s := NewStore()
	s.Add("a.ts", "one", nil)
	snap := s.Snapshot()
	s.Add("a.ts", "two", nil)

	if snap["a.ts"] != "one" {
		t.Errorf("snapshot mutated by later Add: %q", snap["a.ts"])
	}
}
