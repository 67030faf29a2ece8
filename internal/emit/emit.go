// Package emit writes compiler artifacts to the output sinks: it splits
// artifacts by kind, strips embedded source-map references, reattaches map
// objects onto the output files, and optionally re-orders compiled output so
// reference-directive dependencies land before their dependents.
package emit

import (
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/incrbuild/internal/cache"
	"git.home.luguber.info/inful/incrbuild/internal/metrics"
	"git.home.luguber.info/inful/incrbuild/internal/pipeline"
	"git.home.luguber.info/inful/incrbuild/internal/refgraph"
	"git.home.luguber.info/inful/incrbuild/internal/sourcemap"
	"git.home.luguber.info/inful/incrbuild/internal/toolchain"
	"git.home.luguber.info/inful/incrbuild/internal/vfs"
)

const sourceMapCommentPrefix = "//# sourceMappingURL="

// sourceExt is the canonical source extension restored when deriving an
// artifact's original path.
const sourceExt = ".ts"

// OriginalPath derives the originating source path from an artifact path by
// stripping the kind-specific suffix and restoring the source extension.
func OriginalPath(artifactPath string, kind toolchain.ArtifactKind) string {
	p := vfs.NormalizePath(artifactPath)
	switch kind {
	case toolchain.KindSourceMap:
		p = strings.TrimSuffix(p, ".map")
		p = trimExt(p)
	case toolchain.KindDeclaration:
		p = strings.TrimSuffix(p, ".d"+sourceExt)
		return p + sourceExt
	default:
		p = trimExt(p)
	}
	return p + sourceExt
}

func trimExt(p string) string {
	if idx := strings.LastIndex(p, "."); idx > strings.LastIndex(p, "/") {
		return p[:idx]
	}
	return p
}

// StripSourceMapComment removes a trailing sourceMappingURL comment line
// from compiled output, preserving the final newline. Content without the
// comment is returned unchanged. Map attachment happens by reapplying the
// map object, so an embedded reference would double-attach.
func StripSourceMapComment(contents string) string {
	trimmed := strings.TrimSuffix(contents, "\n")
	idx := strings.LastIndex(trimmed, "\n")
	lastLine := trimmed[idx+1:]
	if !strings.HasPrefix(strings.TrimSpace(lastLine), sourceMapCommentPrefix) {
		return contents
	}
	if idx < 0 {
		return ""
	}
	return trimmed[:idx+1]
}

// group collects the artifacts emitted for one original source path.
type group struct {
	code *toolchain.Artifact
	m    *toolchain.Artifact
	decl *toolchain.Artifact
}

// Emitter drives one cycle's artifact emission.
type Emitter struct {
	Sink            pipeline.Sink
	DeclarationSink pipeline.Sink
	Declarations    bool
	SortOutput      bool

	logger   *slog.Logger
	recorder metrics.Recorder
}

func NewEmitter(sink, declSink pipeline.Sink, declarations, sortOutput bool) *Emitter {
	return &Emitter{
		Sink:            sink,
		DeclarationSink: declSink,
		Declarations:    declarations,
		SortOutput:      sortOutput,
		logger:          slog.Default(),
		recorder:        metrics.NoopRecorder{},
	}
}

// WithLogger sets a custom logger.
func (e *Emitter) WithLogger(logger *slog.Logger) *Emitter {
	e.logger = logger
	return e
}

// WithRecorder sets a metrics recorder.
func (e *Emitter) WithRecorder(r metrics.Recorder) *Emitter {
	e.recorder = r
	return e
}

// Emit writes all artifacts whose derived original path matches an input
// file, recording finished outputs into builder for the next cycle's
// replay. Artifacts keyed to unknown originals are dropped silently: they
// indicate a non-participating external file, not a build defect.
func (e *Emitter) Emit(artifacts []toolchain.Artifact, store *vfs.Store, builder *cache.Builder) error {
	groups := make(map[string]*group)
	naturalOrder := make([]string, 0, len(artifacts))

	for i := range artifacts {
		a := &artifacts[i]
		original := OriginalPath(a.Path, a.Kind)
		if _, ok := store.Input(original); !ok {
			e.logger.Debug("Dropping artifact without matching input", "artifact", a.Path, "derived", original)
			continue
		}
		g, ok := groups[original]
		if !ok {
			g = &group{}
			groups[original] = g
			naturalOrder = append(naturalOrder, original)
		}
		switch a.Kind {
		case toolchain.KindSourceMap:
			g.m = a
		case toolchain.KindDeclaration:
			g.decl = a
		default:
			g.code = a
		}
	}

	order := naturalOrder
	if e.SortOutput {
		order = e.sortedOrder(naturalOrder, store)
	}

	for _, original := range order {
		g := groups[original]
		if err := e.writeGroup(original, g, store, builder); err != nil {
			return err
		}
	}
	return nil
}

// sortedOrder builds the reference graph over the participating inputs and
// returns originals in dependency-first order.
func (e *Emitter) sortedOrder(originals []string, store *vfs.Store) []string {
	orderer := refgraph.NewOrderer()
	for _, original := range originals {
		contents, _ := store.Contents(original)
		orderer.AddFile(original, refgraph.ScanReferences(contents))
	}
	return orderer.Order(originals)
}

func (e *Emitter) writeGroup(original string, g *group, store *vfs.Store, builder *cache.Builder) error {
	input, ok := store.Input(original)
	if !ok || g == nil {
		return nil
	}

	if g.code != nil {
		out := outputFile(input, g.code.Path, StripSourceMapComment(g.code.Contents))
		out.SourceMap = mergedMap(input, g.m, e.logger)
		if err := e.Sink.Write(out); err != nil {
			return err
		}
		e.recorder.ArtifactWritten(toolchain.KindCompiledCode.String())
		if out.SourceMap != nil {
			e.recorder.ArtifactWritten(toolchain.KindSourceMap.String())
		}
		builder.AddCode(original, out)
	}

	if g.decl != nil && e.Declarations {
		out := outputFile(input, g.decl.Path, g.decl.Contents)
		sink := e.DeclarationSink
		if sink == nil {
			sink = e.Sink
		}
		if err := sink.Write(out); err != nil {
			return err
		}
		e.recorder.ArtifactWritten(toolchain.KindDeclaration.String())
		builder.AddDeclaration(original, out)
	}
	return nil
}

// Replay rewrites the previous cycle's finished outputs verbatim.
func (e *Emitter) Replay(res *cache.Result) error {
	for _, original := range res.Paths() {
		entry, _ := res.Entry(original)
		if entry.Code != nil {
			if err := e.Sink.Write(entry.Code); err != nil {
				return err
			}
			e.recorder.ArtifactWritten(toolchain.KindCompiledCode.String())
		}
		if entry.Declaration != nil && e.Declarations {
			sink := e.DeclarationSink
			if sink == nil {
				sink = e.Sink
			}
			if err := sink.Write(entry.Declaration); err != nil {
				return err
			}
			e.recorder.ArtifactWritten(toolchain.KindDeclaration.String())
		}
	}
	return nil
}

// outputFile shapes an artifact into a pipeline file, inheriting cwd/base
// from the originating input's handle.
func outputFile(input *vfs.InputFile, path, contents string) *pipeline.File {
	out := &pipeline.File{Path: vfs.NormalizePath(path), Contents: contents}
	if input.Handle != nil {
		out.Cwd = input.Handle.Cwd
		out.Base = input.Handle.Base
	}
	return out
}

// mergedMap parses the generated map artifact, if any, and merges it with
// the inbound map carried by the original input. A malformed generated map
// is dropped rather than failing the build.
func mergedMap(input *vfs.InputFile, mapArtifact *toolchain.Artifact, logger *slog.Logger) *sourcemap.Map {
	var inbound *sourcemap.Map
	if input.Handle != nil {
		inbound = input.Handle.SourceMap
	}
	if mapArtifact == nil {
		return inbound.Clone()
	}
	generated, err := sourcemap.Parse([]byte(mapArtifact.Contents))
	if err != nil {
		logger.Warn("Dropping malformed source map artifact", "path", mapArtifact.Path, "error", err)
		return inbound.Clone()
	}
	return sourcemap.Apply(inbound, generated)
}
