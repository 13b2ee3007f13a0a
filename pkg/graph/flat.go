package graph

import (
	"cmp"
	"slices"

	"github.com/matzehuels/seqgraph/pkg/errors"
)

// Flat is the bulk export of a graph as parallel arrays. Edges are listed in
// CSR order (grouped by source, construction order within a source).
type Flat struct {
	NodeIDs          []uint32 `json:"node_ids" msgpack:"node_ids"`
	Sequences        []string `json:"sequences" msgpack:"sequences"`
	Sizes            []uint32 `json:"sizes" msgpack:"sizes"`
	EdgeFrom         []uint32 `json:"edge_from" msgpack:"edge_from"`
	EdgeTo           []uint32 `json:"edge_to" msgpack:"edge_to"`
	Reference        []uint32 `json:"reference" msgpack:"reference"`
	ChromosomeStarts []uint32 `json:"chromosome_starts" msgpack:"chromosome_starts"`
}

// Flatten exports every node id from 1 to MaxNodeID with its sequence and
// size, every edge, the reference path and the chromosome starts.
func (g *Graph) Flatten() Flat {
	n := g.MaxNodeID()
	f := Flat{
		NodeIDs:          make([]uint32, 0, n),
		Sequences:        make([]string, 0, n),
		Sizes:            make([]uint32, 0, n),
		EdgeFrom:         make([]uint32, 0, len(g.edges)),
		EdgeTo:           make([]uint32, 0, len(g.edges)),
		Reference:        g.LinearReferencePath(),
		ChromosomeStarts: slices.Clone(g.chromosomeStarts),
	}
	for id := uint32(1); id <= n; id++ {
		f.NodeIDs = append(f.NodeIDs, id)
		f.Sequences = append(f.Sequences, string(g.seq(id)))
		f.Sizes = append(f.Sizes, g.lengths[id])
		for _, to := range g.Edges(id) {
			f.EdgeFrom = append(f.EdgeFrom, id)
			f.EdgeTo = append(f.EdgeTo, to)
		}
	}
	if f.Reference == nil {
		f.Reference = []uint32{}
	}
	return f
}

// Mutable builds a [MutableGraph] from the flat arrays. Edges are added in
// array order, so a stable sort by source reproduces the CSR layout.
func (f Flat) Mutable() (*MutableGraph, error) {
	if len(f.NodeIDs) != len(f.Sequences) {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"%d node ids but %d sequences", len(f.NodeIDs), len(f.Sequences))
	}
	if len(f.Sizes) > 0 && len(f.Sizes) != len(f.NodeIDs) {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"%d node ids but %d sizes", len(f.NodeIDs), len(f.Sizes))
	}
	if len(f.EdgeFrom) != len(f.EdgeTo) {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"%d edge sources but %d edge targets", len(f.EdgeFrom), len(f.EdgeTo))
	}

	m := NewMutable()
	for i, id := range f.NodeIDs {
		if len(f.Sizes) > 0 && int(f.Sizes[i]) != len(f.Sequences[i]) {
			return nil, errors.New(errors.ErrCodeMalformedNode,
				"node %d: size %d does not match sequence length %d", id, f.Sizes[i], len(f.Sequences[i]))
		}
		if err := m.AddNode(id, f.Sequences[i]); err != nil {
			return nil, err
		}
	}

	order := make([]int, len(f.EdgeFrom))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int { return cmp.Compare(f.EdgeFrom[a], f.EdgeFrom[b]) })
	for _, i := range order {
		from, to := f.EdgeFrom[i], f.EdgeTo[i]
		if !m.HasNode(from) || !m.HasNode(to) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "edge %d->%d references an unknown node", from, to)
		}
		m.AddEdge(from, to)
	}

	m.SetReference(f.Reference)
	m.SetChromosomeStarts(f.ChromosomeStarts)
	return m, nil
}

// FromFlat freezes flat arrays into a [Graph].
func FromFlat(f Flat) (*Graph, error) {
	m, err := f.Mutable()
	if err != nil {
		return nil, err
	}
	return m.Freeze()
}

// FromMaps builds a [Graph] from node and edge maps. Edge lists keep their
// order. chromosomeStarts may be nil for a single-chromosome graph.
func FromMaps(nodes map[uint32]string, edges map[uint32][]uint32, reference, chromosomeStarts []uint32) (*Graph, error) {
	m := NewMutable()
	ids := make([]uint32, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if err := m.AddNode(id, nodes[id]); err != nil {
			return nil, err
		}
	}

	from := make([]uint32, 0, len(edges))
	for id := range edges {
		from = append(from, id)
	}
	slices.Sort(from)
	for _, id := range from {
		for _, to := range edges[id] {
			if !m.HasNode(id) || !m.HasNode(to) {
				return nil, errors.New(errors.ErrCodeInvalidInput, "edge %d->%d references an unknown node", id, to)
			}
			m.AddEdge(id, to)
		}
	}

	m.SetReference(reference)
	if chromosomeStarts != nil {
		m.SetChromosomeStarts(chromosomeStarts)
	}
	return m.Freeze()
}
