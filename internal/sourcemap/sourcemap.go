// Package sourcemap holds the version-3 source map shape carried alongside
// pipeline files, plus the merge applied when a compiler-generated map lands
// on a file that already carried an inbound map.
package sourcemap

import (
	"encoding/json"
	"fmt"
)

// Map is a version-3 source map object.
type Map struct {
	Version        int      `json:"version"`
	File           string   `json:"file,omitempty"`
	SourceRoot     string   `json:"sourceRoot,omitempty"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// Parse decodes a JSON source map.
func Parse(data []byte) (*Map, error) {
	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse source map: %w", err)
	}
	return &m, nil
}

// ToJSON serializes the map.
func (m *Map) ToJSON() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("serialize source map: %w", err)
	}
	return data, nil
}

// Clone returns a deep copy.
func (m *Map) Clone() *Map {
	if m == nil {
		return nil
	}
	out := *m
	out.Sources = append([]string(nil), m.Sources...)
	out.SourcesContent = append([]string(nil), m.SourcesContent...)
	out.Names = append([]string(nil), m.Names...)
	return &out
}

// Apply merges a compiler-generated map onto an optional inbound map carried
// by the original input file. The generated mappings win; the inbound map
// contributes the original sources and their content so the chain points all
// the way back to the pre-pipeline source.
func Apply(inbound, generated *Map) *Map {
	if generated == nil {
		return inbound.Clone()
	}
	merged := generated.Clone()
	if inbound == nil {
		return merged
	}
	if len(inbound.Sources) > 0 {
		merged.Sources = append([]string(nil), inbound.Sources...)
	}
	if len(inbound.SourcesContent) > 0 {
		merged.SourcesContent = append([]string(nil), inbound.SourcesContent...)
	}
	if inbound.SourceRoot != "" {
		merged.SourceRoot = inbound.SourceRoot
	}
	return merged
}
