package project

import "maps"

// isChanged reports whether the current input set differs from the previous
// cycle's in membership or content. A first cycle (no previous snapshot) is
// always changed.
func (p *Project) isChanged() bool {
	if p.lastInputs == nil {
		return true
	}
	return !maps.Equal(p.lastInputs, p.store.Snapshot())
}
