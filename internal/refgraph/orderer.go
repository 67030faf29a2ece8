// Package refgraph computes the reference-directive dependency graph over
// source files and yields a dependency-first emission order. Used only in
// sorted-output mode, where the target bundles all files into one combined
// output and dependents must land after their dependencies.
package refgraph

import (
	"maps"
	"slices"

	"github.com/dominikbraun/graph"

	"git.home.luguber.info/inful/incrbuild/internal/util/sets"
	"git.home.luguber.info/inful/incrbuild/internal/vfs"
)

// Orderer holds the directed reference graph, original path → the original
// paths it references. Cycles are legal; ordering breaks them by treating a
// file already in progress as emitted.
type Orderer struct {
	g graph.Graph[string, string]
}

func NewOrderer() *Orderer {
	return &Orderer{g: graph.New(graph.StringHash, graph.Directed())}
}

// AddFile records a source file and the files its reference directives
// point at. Targets are resolved relative to the file itself.
func (o *Orderer) AddFile(path string, refs []string) {
	p := vfs.NormalizePath(path)
	_ = o.g.AddVertex(p)
	for _, ref := range refs {
		target := ResolveReference(p, ref)
		if target == p {
			continue
		}
		_ = o.g.AddVertex(target)
		_ = o.g.AddEdge(p, target)
	}
}

// Order returns the paths from candidates in dependency-first order:
// everything a file references (transitively) precedes it, restricted to
// paths that are themselves candidates. Candidates are visited in the given
// order, so the relative order of independent files is preserved. A cyclic
// reference back into a file already on the stack is treated as satisfied
// rather than an error, so cycles terminate and every candidate appears
// exactly once.
func (o *Orderer) Order(candidates []string) []string {
	adjacency, err := o.g.AdjacencyMap()
	if err != nil {
		return candidates
	}

	candidate := sets.New[string]()
	for _, p := range candidates {
		candidate.Add(vfs.NormalizePath(p))
	}

	done := sets.New[string]()
	order := make([]string, 0, len(candidates))

	var visit func(p string)
	visit = func(p string) {
		if done.Has(p) {
			return
		}
		done.Add(p)
		// Deterministic neighbor order; the adjacency map is unordered.
		for _, target := range slices.Sorted(maps.Keys(adjacency[p])) {
			// References to files with no matching candidate are external
			// non-participants: skipped, not errors.
			if candidate.Has(target) {
				visit(target)
			}
		}
		order = append(order, p)
	}

	for _, p := range candidates {
		visit(vfs.NormalizePath(p))
	}
	return order
}
