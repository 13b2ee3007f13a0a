package graph

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/seqgraph/pkg/errors"
	"github.com/matzehuels/seqgraph/pkg/variant"
)

// ResolveVariantNodes returns the (reference node, allele node) pair of a
// variant on the given 1-based chromosome.
//
//   - SNP: the reference node is the single-base node at the SNP offset and
//     the allele node is the sibling whose first base equals ALT.
//   - DELETION: the reference node is the first deleted node and the allele
//     node is the unique zero-length node between the anchor and the first
//     base after the deletion.
//   - INSERTION: the allele node holds the inserted bases and the reference
//     node is the unique zero-length skip node parallel to it.
//
// Topology mismatches return VARIANT_NOT_FOUND. A skip edge without its
// private zero-length node, or more than one candidate, returns
// AMBIGUOUS_TOPOLOGY.
func (g *Graph) ResolveVariantNodes(v variant.Variant, chromosome int) (ref, alt uint32, err error) {
	start, err := g.ChromosomeOffset(chromosome)
	if err != nil {
		return 0, 0, err
	}
	size, _ := g.ChromosomeLength(chromosome)

	switch v.Kind() {
	case variant.KindSNP:
		return g.resolveSNP(v, start, size)
	case variant.KindDeletion:
		return g.resolveDeletion(v, start, size)
	case variant.KindInsertion:
		return g.resolveInsertion(v, start, size)
	}
	return 0, 0, errors.New(errors.ErrCodeUnsupported, "variant %s: unsupported kind", v)
}

func notFound(v variant.Variant, format string, args ...any) error {
	return errors.New(errors.ErrCodeVariantNotFound, "variant %s: %s", v, fmt.Sprintf(format, args...))
}

// alignedNode returns the node starting exactly at the global offset.
func (g *Graph) alignedNode(offset uint64) (uint32, bool) {
	id, err := g.NodeAtReferenceOffset(offset)
	if err != nil || g.nodeToRefOffset[id] != offset {
		return 0, false
	}
	return id, true
}

func (g *Graph) resolveSNP(v variant.Variant, start, size uint64) (uint32, uint32, error) {
	local := v.Offset()
	if local == 0 || local >= size {
		return 0, 0, notFound(v, "offset %d has no preceding reference base", local)
	}
	p := start + local
	refNode, ok := g.alignedNode(p)
	if !ok {
		return 0, 0, notFound(v, "offset %d is not at a node start", local)
	}
	prev, _ := g.NodeAtReferenceOffset(p - 1)

	want := v.Alt[0]
	for _, n := range g.Edges(prev) {
		if n == refNode || g.lengths[n] == 0 {
			continue
		}
		if bytes.EqualFold(g.seq(n)[:1], []byte{want}) {
			return refNode, n, nil
		}
	}
	return 0, 0, notFound(v, "no successor of node %d starts with %c", prev, want)
}

func (g *Graph) resolveDeletion(v variant.Variant, start, size uint64) (uint32, uint32, error) {
	local := v.Offset()
	span := v.DeletedLength()
	if local == 0 || local+span >= size {
		return 0, 0, notFound(v, "deleted span [%d, %d) has no flanking reference bases", local, local+span)
	}
	p := start + local
	refNode, ok := g.alignedNode(p)
	if !ok {
		return 0, 0, notFound(v, "offset %d is not at a node start", local)
	}
	next, ok := g.alignedNode(p + span)
	if !ok {
		return 0, 0, notFound(v, "offset %d after the deletion is not at a node start", local+span)
	}
	prev, _ := g.NodeAtReferenceOffset(p - 1)

	var candidates []uint32
	for _, n := range g.Edges(prev) {
		if g.lengths[n] == 0 && g.HasEdge(n, next) {
			candidates = append(candidates, n)
		}
	}
	switch {
	case len(candidates) == 1:
		return refNode, candidates[0], nil
	case len(candidates) > 1:
		return 0, 0, errors.New(errors.ErrCodeAmbiguousTopology,
			"variant %s: %d zero-length nodes %v between nodes %d and %d", v, len(candidates), candidates, prev, next)
	case g.HasEdge(prev, next):
		return 0, 0, errors.New(errors.ErrCodeAmbiguousTopology,
			"variant %s: skip edge %d->%d has no dummy node", v, prev, next)
	}
	return 0, 0, notFound(v, "no deletion edge from node %d to node %d", prev, next)
}

func (g *Graph) resolveInsertion(v variant.Variant, start, size uint64) (uint32, uint32, error) {
	local := v.Position - 1
	if local+1 >= size {
		return 0, 0, notFound(v, "insertion after the last reference base")
	}
	anchorOff := start + local
	anchor, _ := g.NodeAtReferenceOffset(anchorOff)
	if anchorOff-g.nodeToRefOffset[anchor] != uint64(g.lengths[anchor])-1 {
		return 0, 0, notFound(v, "anchor base %d is not at the end of node %d", local, anchor)
	}
	next, _ := g.NodeAtReferenceOffset(anchorOff + 1)

	allele, parent, ok := g.findInsertedNode(anchor, next, []byte(v.Allele()))
	if !ok {
		return 0, 0, notFound(v, "no allele node after node %d matches %q", anchor, v.Allele())
	}

	var candidates []uint32
	for _, n := range g.Edges(parent) {
		if n != allele && g.lengths[n] == 0 && !g.IsReference(n) && g.reachesThroughPlaceholders(n, next) {
			candidates = append(candidates, n)
		}
	}
	switch {
	case len(candidates) == 1:
		return candidates[0], allele, nil
	case len(candidates) > 1:
		return 0, 0, errors.New(errors.ErrCodeAmbiguousTopology,
			"variant %s: %d skip nodes %v parallel to allele node %d", v, len(candidates), candidates, allele)
	}
	return 0, 0, errors.New(errors.ErrCodeAmbiguousTopology,
		"variant %s: allele node %d has no zero-length skip node to node %d", v, allele, next)
}

// findInsertedNode searches the non-reference successors of anchor,
// descending through zero-length nodes, for a node whose sequence equals
// inserted (preferred) or starts with it, and that has an edge to next. It
// returns the node and the node it was reached from.
func (g *Graph) findInsertedNode(anchor, next uint32, inserted []byte) (node, parent uint32, ok bool) {
	type hit struct{ node, parent uint32 }
	var prefix *hit

	visited := map[uint32]bool{anchor: true}
	queue := []uint32{anchor}
	for len(queue) > 0 {
		from := queue[0]
		queue = queue[1:]
		for _, n := range g.Edges(from) {
			if g.IsReference(n) || visited[n] {
				continue
			}
			if g.lengths[n] == 0 {
				visited[n] = true
				queue = append(queue, n)
				continue
			}
			if !g.HasEdge(n, next) {
				continue
			}
			s := g.seq(n)
			if bytes.EqualFold(s, inserted) {
				return n, from, true
			}
			if prefix == nil && len(s) >= len(inserted) && bytes.EqualFold(s[:len(inserted)], inserted) {
				prefix = &hit{n, from}
			}
		}
	}
	if prefix != nil {
		return prefix.node, prefix.parent, true
	}
	return 0, 0, false
}

// reachesThroughPlaceholders reports whether target is reachable from id
// along zero-length non-reference nodes only.
func (g *Graph) reachesThroughPlaceholders(id, target uint32) bool {
	stack := []uint32{id}
	seen := map[uint32]bool{}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[n] {
			continue
		}
		seen[n] = true
		for _, s := range g.Edges(n) {
			if s == target {
				return true
			}
			if g.lengths[s] == 0 && !g.IsReference(s) {
				stack = append(stack, s)
			}
		}
	}
	return false
}
