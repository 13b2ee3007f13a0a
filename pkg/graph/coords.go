package graph

import "github.com/matzehuels/seqgraph/pkg/errors"

// NodeAtReferenceOffset returns the reference node covering a global 0-based
// reference offset.
func (g *Graph) NodeAtReferenceOffset(offset uint64) (uint32, error) {
	if offset >= uint64(len(g.refOffsetToNode)) {
		return 0, errors.New(errors.ErrCodeNodeOutOfRange,
			"reference offset %d out of range (reference length %d)", offset, len(g.refOffsetToNode))
	}
	return g.refOffsetToNode[offset], nil
}

// ReferenceOffsetOfNode returns the global reference offset of a reference
// node's first base.
func (g *Graph) ReferenceOffsetOfNode(id uint32) (uint64, error) {
	if !g.valid(id) {
		return 0, g.outOfRange(id)
	}
	if !g.IsReference(id) {
		return 0, errors.New(errors.ErrCodeNodeOutOfRange, "node %d is not on the linear reference", id)
	}
	return g.nodeToRefOffset[id], nil
}

// OffsetWithinNode returns how far offset lies into the node covering it.
func (g *Graph) OffsetWithinNode(offset uint64) (uint64, error) {
	id, err := g.NodeAtReferenceOffset(offset)
	if err != nil {
		return 0, err
	}
	return offset - g.nodeToRefOffset[id], nil
}

// ChromosomeOffset returns the global reference offset where chromosome
// starts. Chromosomes are numbered from 1.
func (g *Graph) ChromosomeOffset(chromosome int) (uint64, error) {
	if chromosome < 1 || chromosome > len(g.chromosomeStarts) {
		return 0, errors.New(errors.ErrCodeChromosomeNotFound,
			"chromosome %d not in graph (%d chromosomes)", chromosome, len(g.chromosomeStarts))
	}
	return g.nodeToRefOffset[g.chromosomeStarts[chromosome-1]], nil
}

// NodeAtChromosomeOffset resolves a chromosome-local 0-based offset to the
// reference node covering it. Offsets past the chromosome's end are
// NODE_OUT_OF_RANGE rather than a node of the next chromosome.
func (g *Graph) NodeAtChromosomeOffset(chromosome int, offset uint64) (uint32, error) {
	start, err := g.ChromosomeOffset(chromosome)
	if err != nil {
		return 0, err
	}
	size, _ := g.ChromosomeLength(chromosome)
	if offset >= size {
		return 0, errors.New(errors.ErrCodeNodeOutOfRange,
			"offset %d out of range (chromosome %d length %d)", offset, chromosome, size)
	}
	return g.NodeAtReferenceOffset(start + offset)
}

// ChromosomeLength returns the number of reference bases of chromosome.
func (g *Graph) ChromosomeLength(chromosome int) (uint64, error) {
	start, err := g.ChromosomeOffset(chromosome)
	if err != nil {
		return 0, err
	}
	if chromosome == len(g.chromosomeStarts) {
		return g.ReferenceLength() - start, nil
	}
	next, _ := g.ChromosomeOffset(chromosome + 1)
	return next - start, nil
}
