package graph

import (
	"slices"
	"sync"

	"github.com/matzehuels/seqgraph/pkg/errors"
)

// Graph is the frozen, array-backed variation graph.
//
// All arrays indexed by node id have length MaxNodeID()+1; index 0 is unused.
// Edges of node id occupy edges[edgeIndex[id] : edgeIndex[id]+edgeCount[id]]
// in construction order. A Graph is created by [MutableGraph.Freeze],
// [FromMaps], [FromFlat], [Merge] or [Read] and is read-only afterwards,
// apart from [Graph.PrecomputeNumericSequences] and
// [Graph.SetAlleleFrequencies].
type Graph struct {
	lengths          []uint32
	seqIndex         []uint64
	sequences        []byte
	edgeIndex        []uint32
	edgeCount        []uint32
	edges            []uint32
	nodeToRefOffset  []uint64
	refOffsetToNode  []uint32
	chromosomeStarts []uint32

	numeric     []uint8
	alleleFreqs []float32

	refOnce  sync.Once
	refNodes NodeSet
}

// NodeSet is a set of node ids.
type NodeSet map[uint32]struct{}

// Has reports whether id is in the set.
func (s NodeSet) Has(id uint32) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the ids in ascending order.
func (s NodeSet) Sorted() []uint32 {
	out := make([]uint32, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// =============================================================================
// Freezing
// =============================================================================

// Freeze derives the immutable [Graph] from the builder.
//
// Sequences are laid out in id order and edges are grouped by source id.
// The reference path is turned into both coordinate maps. Freeze returns an
// error with code MALFORMED_NODE if a zero-length or unknown node is marked
// as reference.
func (m *MutableGraph) Freeze() (*Graph, error) {
	n := int(m.maxID) + 1
	g := &Graph{
		lengths:         make([]uint32, n),
		seqIndex:        make([]uint64, n),
		edgeIndex:       make([]uint32, n),
		edgeCount:       make([]uint32, n),
		nodeToRefOffset: make([]uint64, n),
	}

	var seqTotal, edgeTotal int
	for id := 1; id < n; id++ {
		seqTotal += len(m.seqs[uint32(id)])
		edgeTotal += len(m.edges[uint32(id)])
	}
	g.sequences = make([]byte, 0, seqTotal)
	g.edges = make([]uint32, 0, edgeTotal)

	for id := 1; id < n; id++ {
		seq := m.seqs[uint32(id)]
		g.lengths[id] = uint32(len(seq))
		g.seqIndex[id] = uint64(len(g.sequences))
		g.sequences = append(g.sequences, seq...)

		out := m.edges[uint32(id)]
		g.edgeIndex[id] = uint32(len(g.edges))
		g.edgeCount[id] = uint32(len(out))
		g.edges = append(g.edges, out...)
	}

	var refLen uint64
	onPath := make(map[uint32]bool, len(m.reference))
	for _, id := range m.reference {
		if !m.HasNode(id) {
			return nil, errors.New(errors.ErrCodeMalformedNode, "reference node %d does not exist", id)
		}
		if len(m.seqs[id]) == 0 {
			return nil, errors.New(errors.ErrCodeMalformedNode, "zero-length node %d marked as reference", id)
		}
		if onPath[id] {
			return nil, errors.New(errors.ErrCodeMalformedNode, "node %d appears twice on the reference path", id)
		}
		onPath[id] = true
		refLen += uint64(len(m.seqs[id]))
	}
	g.refOffsetToNode = make([]uint32, 0, refLen)
	for _, id := range m.reference {
		g.nodeToRefOffset[id] = uint64(len(g.refOffsetToNode))
		for range len(m.seqs[id]) {
			g.refOffsetToNode = append(g.refOffsetToNode, id)
		}
	}

	switch {
	case len(m.chromStarts) > 0:
		for _, id := range m.chromStarts {
			if !m.refSet[id] {
				return nil, errors.New(errors.ErrCodeMalformedNode, "chromosome start node %d is not a reference node", id)
			}
		}
		g.chromosomeStarts = slices.Clone(m.chromStarts)
	case len(m.reference) > 0:
		g.chromosomeStarts = []uint32{m.reference[0]}
	default:
		g.chromosomeStarts = []uint32{}
	}

	return g, nil
}

// ToMutable seeds a new builder with every node, edge, the reference path
// and the chromosome starts of g. Ids are preserved.
func (g *Graph) ToMutable() *MutableGraph {
	m := NewMutable()
	for id := uint32(1); id <= g.MaxNodeID(); id++ {
		_ = m.AddNode(id, string(g.seq(id)))
	}
	for id := uint32(1); id <= g.MaxNodeID(); id++ {
		for _, to := range g.Edges(id) {
			m.AddEdge(id, to)
		}
	}
	m.SetReference(g.LinearReferencePath())
	m.SetChromosomeStarts(g.chromosomeStarts)
	return m
}

// =============================================================================
// Node and Edge Access
// =============================================================================

// MaxNodeID returns the largest node id.
func (g *Graph) MaxNodeID() uint32 {
	if len(g.lengths) == 0 {
		return 0
	}
	return uint32(len(g.lengths) - 1)
}

// NodeCount returns the number of node ids in use (MaxNodeID).
func (g *Graph) NodeCount() int { return int(g.MaxNodeID()) }

// EdgeCount returns the total number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// ReferenceLength returns the total length of the linear reference.
func (g *Graph) ReferenceLength() uint64 { return uint64(len(g.refOffsetToNode)) }

// ChromosomeCount returns the number of chromosomes.
func (g *Graph) ChromosomeCount() int { return len(g.chromosomeStarts) }

// ChromosomeStarts returns a copy of the chromosome start nodes.
func (g *Graph) ChromosomeStarts() []uint32 { return slices.Clone(g.chromosomeStarts) }

func (g *Graph) valid(id uint32) bool {
	return id > 0 && int(id) < len(g.lengths)
}

func (g *Graph) outOfRange(id uint32) error {
	return errors.New(errors.ErrCodeNodeOutOfRange, "node %d out of range [1, %d]", id, g.MaxNodeID())
}

func (g *Graph) seq(id uint32) []byte {
	start := g.seqIndex[id]
	return g.sequences[start : start+uint64(g.lengths[id])]
}

// NodeLength returns the length of node id.
func (g *Graph) NodeLength(id uint32) (uint32, error) {
	if !g.valid(id) {
		return 0, g.outOfRange(id)
	}
	return g.lengths[id], nil
}

// NodeSequence returns the bases of node id.
func (g *Graph) NodeSequence(id uint32) (string, error) {
	if !g.valid(id) {
		return "", g.outOfRange(id)
	}
	return string(g.seq(id)), nil
}

// Edges returns the successors of id in construction order. The result is
// never nil; unknown ids have no successors. The slice must not be modified.
func (g *Graph) Edges(id uint32) []uint32 {
	if !g.valid(id) {
		return []uint32{}
	}
	start := g.edgeIndex[id]
	return slices.Clip(g.edges[start : start+g.edgeCount[id]])
}

// HasEdge reports whether from→to exists.
func (g *Graph) HasEdge(from, to uint32) bool {
	return slices.Contains(g.Edges(from), to)
}

// IsReference reports whether id lies on the linear reference path.
func (g *Graph) IsReference(id uint32) bool {
	if !g.valid(id) || g.lengths[id] == 0 {
		return false
	}
	off := g.nodeToRefOffset[id]
	return off < uint64(len(g.refOffsetToNode)) && g.refOffsetToNode[off] == id
}

// LinearReferenceNodes returns the set of reference-path nodes. The set is
// computed once from the reference-offset map and shared by later calls; it
// must not be modified.
func (g *Graph) LinearReferenceNodes() NodeSet {
	g.refOnce.Do(func() {
		set := make(NodeSet)
		for _, id := range g.refOffsetToNode {
			set[id] = struct{}{}
		}
		g.refNodes = set
	})
	return g.refNodes
}

// LinearReferencePath returns the reference-path nodes in reference order.
// It stops at a zero-length entry, which Freeze and Read both reject.
func (g *Graph) LinearReferencePath() []uint32 {
	var path []uint32
	for off := uint64(0); off < uint64(len(g.refOffsetToNode)); {
		id := g.refOffsetToNode[off]
		if g.lengths[id] == 0 {
			break
		}
		path = append(path, id)
		off += uint64(g.lengths[id])
	}
	return path
}

// ReferenceSequence concatenates the reference path.
func (g *Graph) ReferenceSequence() string {
	buf := make([]byte, 0, len(g.refOffsetToNode))
	for _, id := range g.LinearReferencePath() {
		buf = append(buf, g.seq(id)...)
	}
	return string(buf)
}
