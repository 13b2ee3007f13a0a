package graph

import "github.com/matzehuels/seqgraph/pkg/errors"

// Merge concatenates graphs into one multi-chromosome graph. Node ids of the
// i-th input are shifted by the summed MaxNodeID of the inputs before it, and
// its reference path is appended after theirs. Every input chromosome keeps
// its own start node, so chromosome numbering follows input order.
//
// Augmentations (numeric sequences, allele frequencies) are not carried over.
func Merge(graphs ...*Graph) (*Graph, error) {
	if len(graphs) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nothing to merge")
	}

	m := NewMutable()
	var (
		shift  uint32
		starts []uint32
		ref    []uint32
	)
	for i, g := range graphs {
		if g == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "graph %d is nil", i)
		}
		for id := uint32(1); id <= g.MaxNodeID(); id++ {
			if err := m.AddNode(id+shift, string(g.seq(id))); err != nil {
				return nil, err
			}
		}
		for id := uint32(1); id <= g.MaxNodeID(); id++ {
			for _, to := range g.Edges(id) {
				m.AddEdge(id+shift, to+shift)
			}
		}
		for _, id := range g.LinearReferencePath() {
			ref = append(ref, id+shift)
		}
		for _, id := range g.chromosomeStarts {
			starts = append(starts, id+shift)
		}
		shift += g.MaxNodeID()
	}

	m.SetReference(ref)
	m.SetChromosomeStarts(starts)
	return m.Freeze()
}
