package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/incrbuild/internal/cache"
	"git.home.luguber.info/inful/incrbuild/internal/pipeline"
	"git.home.luguber.info/inful/incrbuild/internal/sourcemap"
	"git.home.luguber.info/inful/incrbuild/internal/toolchain"
	"git.home.luguber.info/inful/incrbuild/internal/vfs"
)

func TestStripSourceMapComment(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "trailing comment removed, newline preserved",
			in:   "var x = 1;\n//# sourceMappingURL=a.js.map\n",
			want: "var x = 1;\n",
		},
		{
			name: "no comment unchanged",
			in:   "var x = 1;\n",
			want: "var x = 1;\n",
		},
		{
			name: "comment in the middle untouched",
			in:   "//# sourceMappingURL=a.js.map\nvar x = 1;\n",
			want: "//# sourceMappingURL=a.js.map\nvar x = 1;\n",
		},
		{
			name: "comment only",
			in:   "//# sourceMappingURL=a.js.map\n",
			want: "",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripSourceMapComment(tt.in))
		})
	}
}

func TestOriginalPath(t *testing.T) {
	cases := []struct {
		path string
		kind toolchain.ArtifactKind
		want string
	}{
		{"src/a.js", toolchain.KindCompiledCode, "src/a.ts"},
		{"src/a.js.map", toolchain.KindSourceMap, "src/a.ts"},
		{"src/a.d.ts", toolchain.KindDeclaration, "src/a.ts"},
		{`src\a.js`, toolchain.KindCompiledCode, "src/a.ts"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, OriginalPath(tc.path, tc.kind), "%s (%s)", tc.path, tc.kind)
	}
}

func newStore(files map[string]*pipeline.File) *vfs.Store {
	store := vfs.NewStore()
	for path, handle := range files {
		store.Add(path, handle.Contents, handle)
	}
	return store
}

func TestEmitDropsArtifactsWithoutMatchingInput(t *testing.T) {
	store := newStore(map[string]*pipeline.File{
		"src/a.ts": {Path: "src/a.ts", Contents: "let a;"},
	})
	sink := pipeline.NewMemorySink()
	e := NewEmitter(sink, nil, false, false)

	artifacts := []toolchain.Artifact{
		{Path: "src/a.js", Contents: "let a;\n", Kind: toolchain.KindCompiledCode},
		// No input named vendor/ext.ts exists: dropped, no error.
		{Path: "vendor/ext.js", Contents: "x\n", Kind: toolchain.KindCompiledCode},
	}
	require.NoError(t, e.Emit(artifacts, store, cache.NewBuilder()))

	assert.Equal(t, []string{"src/a.js"}, sink.Paths())
}

func TestEmitAttachesMergedSourceMap(t *testing.T) {
	inbound := &sourcemap.Map{Version: 3, Sources: []string{"a.pre.ts"}, SourcesContent: []string{"pre"}}
	store := newStore(map[string]*pipeline.File{
		"src/a.ts": {Path: "src/a.ts", Contents: "let a;", SourceMap: inbound},
	})
	sink := pipeline.NewMemorySink()
	e := NewEmitter(sink, nil, false, false)

	artifacts := []toolchain.Artifact{
		{Path: "src/a.js", Contents: "let a;\n//# sourceMappingURL=a.js.map\n", Kind: toolchain.KindCompiledCode},
		{Path: "src/a.js.map", Contents: `{"version":3,"sources":["a.ts"],"names":[],"mappings":";"}`, Kind: toolchain.KindSourceMap},
	}
	require.NoError(t, e.Emit(artifacts, store, cache.NewBuilder()))

	out := sink.Get("src/a.js")
	require.NotNil(t, out)
	assert.Equal(t, "let a;\n", out.Contents, "sourceMappingURL comment stripped")
	require.NotNil(t, out.SourceMap)
	assert.Equal(t, ";", out.SourceMap.Mappings)
	assert.Equal(t, []string{"a.pre.ts"}, out.SourceMap.Sources, "inbound map merged")
}

func TestEmitDeclarationGating(t *testing.T) {
	store := newStore(map[string]*pipeline.File{
		"src/a.ts": {Path: "src/a.ts", Contents: "let a;"},
	})
	artifacts := []toolchain.Artifact{
		{Path: "src/a.js", Contents: "let a;\n", Kind: toolchain.KindCompiledCode},
		{Path: "src/a.d.ts", Contents: "declare let a;\n", Kind: toolchain.KindDeclaration},
	}

	t.Run("disabled", func(t *testing.T) {
		sink := pipeline.NewMemorySink()
		declSink := pipeline.NewMemorySink()
		e := NewEmitter(sink, declSink, false, false)
		require.NoError(t, e.Emit(artifacts, store, cache.NewBuilder()))
		assert.Empty(t, declSink.Paths())
	})

	t.Run("enabled", func(t *testing.T) {
		sink := pipeline.NewMemorySink()
		declSink := pipeline.NewMemorySink()
		e := NewEmitter(sink, declSink, true, false)
		require.NoError(t, e.Emit(artifacts, store, cache.NewBuilder()))
		assert.Equal(t, []string{"src/a.d.ts"}, declSink.Paths())
		assert.Equal(t, []string{"src/a.js"}, sink.Paths())
	})
}

func TestEmitSortedOrderFollowsReferences(t *testing.T) {
	// a references b, b references c: emission must be c, b, a.
	store := newStore(map[string]*pipeline.File{
		"src/a.ts": {Path: "src/a.ts", Contents: "/// <reference path=\"b.ts\" />\nlet a;"},
		"src/b.ts": {Path: "src/b.ts", Contents: "/// <reference path=\"c.ts\" />\nlet b;"},
		"src/c.ts": {Path: "src/c.ts", Contents: "let c;"},
	})
	artifacts := []toolchain.Artifact{
		{Path: "src/a.js", Contents: "a\n", Kind: toolchain.KindCompiledCode},
		{Path: "src/b.js", Contents: "b\n", Kind: toolchain.KindCompiledCode},
		{Path: "src/c.js", Contents: "c\n", Kind: toolchain.KindCompiledCode},
	}

	sink := pipeline.NewMemorySink()
	e := NewEmitter(sink, nil, false, true)
	require.NoError(t, e.Emit(artifacts, store, cache.NewBuilder()))

	assert.Equal(t, []string{"src/c.js", "src/b.js", "src/a.js"}, sink.Order())
}

func TestEmitSortedCycleTerminates(t *testing.T) {
	store := newStore(map[string]*pipeline.File{
		"a.ts": {Path: "a.ts", Contents: "/// <reference path=\"b.ts\" />"},
		"b.ts": {Path: "b.ts", Contents: "/// <reference path=\"a.ts\" />"},
	})
	artifacts := []toolchain.Artifact{
		{Path: "a.js", Contents: "a\n", Kind: toolchain.KindCompiledCode},
		{Path: "b.js", Contents: "b\n", Kind: toolchain.KindCompiledCode},
	}

	sink := pipeline.NewMemorySink()
	e := NewEmitter(sink, nil, false, true)
	require.NoError(t, e.Emit(artifacts, store, cache.NewBuilder()))

	assert.ElementsMatch(t, []string{"a.js", "b.js"}, sink.Paths())
	assert.Len(t, sink.Order(), 2, "each file emitted exactly once")
}

func TestEmitRecordsCacheEntries(t *testing.T) {
	store := newStore(map[string]*pipeline.File{
		"src/a.ts": {Path: "src/a.ts", Contents: "let a;"},
	})
	artifacts := []toolchain.Artifact{
		{Path: "src/a.js", Contents: "let a;\n", Kind: toolchain.KindCompiledCode},
	}

	builder := cache.NewBuilder()
	e := NewEmitter(pipeline.NewMemorySink(), nil, false, false)
	require.NoError(t, e.Emit(artifacts, store, builder))

	res := builder.Seal()
	entry, ok := res.Entry("src/a.ts")
	require.True(t, ok)
	require.NotNil(t, entry.Code)
	assert.Equal(t, "let a;\n", entry.Code.Contents)
}

func TestReplayRewritesVerbatim(t *testing.T) {
	builder := cache.NewBuilder()
	builder.AddCode("src/a.ts", &pipeline.File{Path: "src/a.js", Contents: "cached\n"})
	builder.AddDeclaration("src/a.ts", &pipeline.File{Path: "src/a.d.ts", Contents: "decl\n"})
	res := builder.Seal()

	sink := pipeline.NewMemorySink()
	declSink := pipeline.NewMemorySink()
	e := NewEmitter(sink, declSink, true, false)
	require.NoError(t, e.Replay(res))

	require.NotNil(t, sink.Get("src/a.js"))
	assert.Equal(t, "cached\n", sink.Get("src/a.js").Contents)
	require.NotNil(t, declSink.Get("src/a.d.ts"))
	assert.Equal(t, "decl\n", declSink.Get("src/a.d.ts").Contents)
}
