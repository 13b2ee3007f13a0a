package graph

import (
	"github.com/matzehuels/seqgraph/pkg/errors"
)

// Validate checks the structural invariants of g:
//
//   - no reference node has length 0
//   - every reference offset maps to a node whose range covers it, and each
//     reference node's offset equals the summed length of earlier ones
//   - chromosome start nodes lie on the reference
//   - the graph has no cycle
//
// Construction never produces a violation; Validate is meant for graphs
// loaded from GFA or from foreign bundles.
func (g *Graph) Validate() error {
	var expected uint64
	for _, id := range g.LinearReferencePath() {
		if g.lengths[id] == 0 {
			return errors.New(errors.ErrCodeMalformedNode, "zero-length reference node %d", id)
		}
		if g.nodeToRefOffset[id] != expected {
			return errors.New(errors.ErrCodeInternal,
				"reference node %d at offset %d, want %d", id, g.nodeToRefOffset[id], expected)
		}
		for k := uint64(0); k < uint64(g.lengths[id]); k++ {
			off := expected + k
			if off >= uint64(len(g.refOffsetToNode)) || g.refOffsetToNode[off] != id {
				return errors.New(errors.ErrCodeInternal, "reference offset %d does not map to node %d", off, id)
			}
		}
		expected += uint64(g.lengths[id])
	}
	if expected != uint64(len(g.refOffsetToNode)) {
		return errors.New(errors.ErrCodeInternal,
			"reference path covers %d bases, offset map has %d", expected, len(g.refOffsetToNode))
	}

	for i, id := range g.chromosomeStarts {
		if !g.IsReference(id) {
			return errors.New(errors.ErrCodeMalformedNode, "chromosome %d starts at non-reference node %d", i+1, id)
		}
	}

	if from, to, ok := g.findBackEdge(); ok {
		return errors.New(errors.ErrCodeCyclicGraph, "edge %d->%d closes a cycle", from, to)
	}
	return nil
}

// findBackEdge runs an iterative depth-first search with white/gray/black
// coloring and returns the first edge pointing back to a gray node.
func (g *Graph) findBackEdge() (from, to uint32, found bool) {
	const (
		white = iota
		gray
		black
	)

	type frame struct {
		node uint32
		next uint32
	}

	color := make([]uint8, len(g.lengths))
	for root := uint32(1); root <= g.MaxNodeID(); root++ {
		if color[root] != white {
			continue
		}
		color[root] = gray
		stack := []frame{{node: root}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			succ := g.Edges(top.node)
			if int(top.next) == len(succ) {
				color[top.node] = black
				stack = stack[:len(stack)-1]
				continue
			}
			child := succ[top.next]
			top.next++
			switch color[child] {
			case white:
				color[child] = gray
				stack = append(stack, frame{node: child})
			case gray:
				return top.node, child, true
			}
		}
	}
	return 0, 0, false
}
