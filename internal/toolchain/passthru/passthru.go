// Package passthru is a minimal built-in toolchain used by the CLI and by
// tests. It does no type checking: compiled output is the source text with
// a source-map reference appended, plus an identity source map and optional
// declaration stubs. It resolves reference directives through the host the
// way a real compiler would, which makes the whole orchestration pipeline
// exercisable without an external compiler.
package passthru

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/incrbuild/internal/refgraph"
	"git.home.luguber.info/inful/incrbuild/internal/sourcemap"
	"git.home.luguber.info/inful/incrbuild/internal/toolchain"
	"git.home.luguber.info/inful/incrbuild/internal/vfs"
)

// codeFileNotFound mirrors the diagnostic code compilers use for an
// unresolvable referenced file.
const codeFileNotFound = 6053

// Toolchain implements toolchain.Toolchain.
type Toolchain struct{}

func New() *Toolchain {
	return &Toolchain{}
}

type programFile struct {
	path     string
	contents string
	root     bool
}

type program struct {
	files       []programFile
	diagnostics []toolchain.Diagnostic
	options     map[string]any
}

// CreateProgram reads every root through the host and chases reference
// directives transitively, pulling externally resolved files into the
// program. A root that cannot be read is an environment failure; an
// unresolvable reference is a diagnostic.
func (t *Toolchain) CreateProgram(roots []string, options map[string]any, host toolchain.Host) (toolchain.Program, error) {
	prg := &program{options: options}
	visited := make(map[string]bool, len(roots))

	var queue []string
	rootSet := make(map[string]bool, len(roots))
	for _, root := range roots {
		p := vfs.NormalizePath(root)
		rootSet[p] = true
		queue = append(queue, p)
	}

	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]
		if visited[path] {
			continue
		}
		visited[path] = true

		contents, err := host.ReadFile(path)
		if err != nil {
			if rootSet[path] {
				return nil, fmt.Errorf("read root file %s: %w", path, err)
			}
			prg.diagnostics = append(prg.diagnostics, toolchain.Diagnostic{
				File:     path,
				Line:     1,
				Column:   1,
				Code:     codeFileNotFound,
				Severity: toolchain.SeverityWarning,
				Message:  fmt.Sprintf("cannot read referenced file '%s'", path),
			})
			continue
		}

		prg.files = append(prg.files, programFile{
			path:     path,
			contents: contents,
			root:     rootSet[path],
		})

		for _, ref := range refgraph.ScanReferences(contents) {
			target := refgraph.ResolveReference(path, ref)
			if visited[target] {
				continue
			}
			if !host.FileExists(target) {
				prg.diagnostics = append(prg.diagnostics, toolchain.Diagnostic{
					File:     path,
					Line:     directiveLine(contents, ref),
					Column:   1,
					Code:     codeFileNotFound,
					Severity: toolchain.SeverityWarning,
					Message:  fmt.Sprintf("referenced file '%s' not found", target),
				})
				continue
			}
			queue = append(queue, target)
		}
	}

	return prg, nil
}

func (p *program) Diagnostics() []toolchain.Diagnostic {
	return p.diagnostics
}

// Emit produces artifacts for every program file, roots and resolved
// externals alike; the orchestrator is responsible for discarding output
// for files outside its input set.
func (p *program) Emit() ([]toolchain.Artifact, error) {
	declarations, _ := p.options["declarations"].(bool)

	var artifacts []toolchain.Artifact
	for _, f := range p.files {
		outPath := swapExtension(f.path, ".js")
		mapName := baseName(outPath) + ".map"

		code := f.contents
		if !strings.HasSuffix(code, "\n") {
			code += "\n"
		}
		code += "//# sourceMappingURL=" + mapName + "\n"

		m := sourcemap.Map{
			Version:        3,
			File:           baseName(outPath),
			Sources:        []string{baseName(f.path)},
			SourcesContent: []string{f.contents},
			Names:          []string{},
			Mappings:       identityMappings(f.contents),
		}
		mapJSON, err := m.ToJSON()
		if err != nil {
			return nil, fmt.Errorf("serialize map for %s: %w", f.path, err)
		}

		artifacts = append(artifacts,
			toolchain.Artifact{Path: outPath, Contents: code, Kind: toolchain.KindCompiledCode},
			toolchain.Artifact{Path: outPath + ".map", Contents: string(mapJSON), Kind: toolchain.KindSourceMap},
		)

		if declarations {
			artifacts = append(artifacts, toolchain.Artifact{
				Path:     swapExtension(f.path, ".d.ts"),
				Contents: fmt.Sprintf("// declarations for %s\n", baseName(f.path)),
				Kind:     toolchain.KindDeclaration,
			})
		}
	}
	return artifacts, nil
}

// directiveLine finds the 1-based line of the reference directive naming
// target, for diagnostic positions.
func directiveLine(contents, target string) int {
	for i, line := range strings.Split(contents, "\n") {
		if strings.Contains(line, target) {
			return i + 1
		}
	}
	return 1
}

// identityMappings produces one empty-segment line per source line, enough
// for downstream tooling to treat the map as well-formed.
func identityMappings(contents string) string {
	lines := strings.Count(contents, "\n")
	return strings.Repeat(";", lines)
}

func swapExtension(path, ext string) string {
	if idx := strings.LastIndex(path, "."); idx > strings.LastIndex(path, "/") {
		return path[:idx] + ext
	}
	return path + ext
}

func baseName(path string) string {
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		return path[idx+1:]
	}
	return path
}
