package refgraph

import (
	"path"
	"regexp"

	"git.home.luguber.info/inful/incrbuild/internal/vfs"
)

// referencePattern matches triple-slash reference directives:
// /// <reference path="../lib/util.ts" />
var referencePattern = regexp.MustCompile(`(?m)^\s*///\s*<reference\s+path\s*=\s*["']([^"']+)["']\s*/?>`)

// ScanReferences extracts the reference directive targets from source text,
// in directive order.
func ScanReferences(contents string) []string {
	matches := referencePattern.FindAllStringSubmatch(contents, -1)
	if len(matches) == 0 {
		return nil
	}
	refs := make([]string, 0, len(matches))
	for _, m := range matches {
		refs = append(refs, m[1])
	}
	return refs
}

// ResolveReference resolves a directive target relative to the referencing
// file, returning the normalized path.
func ResolveReference(from, target string) string {
	t := vfs.NormalizePath(target)
	if path.IsAbs(t) {
		return path.Clean(t)
	}
	return path.Join(path.Dir(vfs.NormalizePath(from)), t)
}
