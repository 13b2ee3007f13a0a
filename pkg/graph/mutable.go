package graph

import (
	"slices"

	"github.com/matzehuels/seqgraph/pkg/errors"
)

// MutableGraph is the builder form of a variation graph.
//
// It keeps out-edges and a reverse-edge index that every edge-mutating
// method updates together. Out-edge order is insertion order and is carried
// into the frozen [Graph]. A MutableGraph is not safe for concurrent use.
type MutableGraph struct {
	seqs        map[uint32]string
	edges       map[uint32][]uint32
	preds       map[uint32][]uint32
	reference   []uint32
	refSet      map[uint32]bool
	chromStarts []uint32
	maxID       uint32
}

// NewMutable creates an empty builder.
func NewMutable() *MutableGraph {
	return &MutableGraph{
		seqs:   make(map[uint32]string),
		edges:  make(map[uint32][]uint32),
		preds:  make(map[uint32][]uint32),
		refSet: make(map[uint32]bool),
	}
}

// =============================================================================
// Nodes
// =============================================================================

// AddNode registers a node with an explicit id. Id 0 and duplicate ids are
// rejected.
func (m *MutableGraph) AddNode(id uint32, seq string) error {
	if id == 0 {
		return errors.New(errors.ErrCodeMalformedNode, "node id 0 is reserved")
	}
	if _, ok := m.seqs[id]; ok {
		return errors.New(errors.ErrCodeMalformedNode, "duplicate node id %d", id)
	}
	m.seqs[id] = seq
	if id > m.maxID {
		m.maxID = id
	}
	return nil
}

// NewNode registers a node under the next free id and returns the id.
func (m *MutableGraph) NewNode(seq string) uint32 {
	m.maxID++
	m.seqs[m.maxID] = seq
	return m.maxID
}

// HasNode reports whether id is registered.
func (m *MutableGraph) HasNode(id uint32) bool {
	_, ok := m.seqs[id]
	return ok
}

// Sequence returns the node's sequence, or "" for unknown ids.
func (m *MutableGraph) Sequence(id uint32) string { return m.seqs[id] }

// Length returns the node's length.
func (m *MutableGraph) Length(id uint32) int { return len(m.seqs[id]) }

// MaxID returns the largest registered id.
func (m *MutableGraph) MaxID() uint32 { return m.maxID }

// NodeCount returns the number of registered nodes.
func (m *MutableGraph) NodeCount() int { return len(m.seqs) }

// NodeIDs returns all registered ids in ascending order.
func (m *MutableGraph) NodeIDs() []uint32 {
	ids := make([]uint32, 0, len(m.seqs))
	for id := range m.seqs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// =============================================================================
// Edges
// =============================================================================

// AddEdge appends from→to. Self-edges and duplicates are ignored; the return
// value reports whether an edge was added.
func (m *MutableGraph) AddEdge(from, to uint32) bool {
	if from == to || m.HasEdge(from, to) {
		return false
	}
	m.edges[from] = append(m.edges[from], to)
	m.preds[to] = append(m.preds[to], from)
	return true
}

// RemoveEdge deletes from→to and reports whether it existed.
func (m *MutableGraph) RemoveEdge(from, to uint32) bool {
	if !m.HasEdge(from, to) {
		return false
	}
	m.edges[from] = slices.DeleteFunc(m.edges[from], func(x uint32) bool { return x == to })
	m.preds[to] = slices.DeleteFunc(m.preds[to], func(x uint32) bool { return x == from })
	return true
}

// ReplaceEdge rewrites from→oldTo into from→newTo at the same position in
// from's edge list. If from→newTo already exists the old edge is removed.
func (m *MutableGraph) ReplaceEdge(from, oldTo, newTo uint32) bool {
	i := slices.Index(m.edges[from], oldTo)
	if i < 0 {
		return false
	}
	if from == newTo || m.HasEdge(from, newTo) {
		return m.RemoveEdge(from, oldTo)
	}
	m.edges[from][i] = newTo
	m.preds[oldTo] = slices.DeleteFunc(m.preds[oldTo], func(x uint32) bool { return x == from })
	m.preds[newTo] = append(m.preds[newTo], from)
	return true
}

// HasEdge reports whether from→to exists.
func (m *MutableGraph) HasEdge(from, to uint32) bool {
	return slices.Contains(m.edges[from], to)
}

// Edges returns the successors of id in insertion order. The slice must not
// be modified.
func (m *MutableGraph) Edges(id uint32) []uint32 { return m.edges[id] }

// Predecessors returns the nodes with an edge into id. The slice must not be
// modified.
func (m *MutableGraph) Predecessors(id uint32) []uint32 { return m.preds[id] }

// EdgeCount returns the total number of edges.
func (m *MutableGraph) EdgeCount() int {
	n := 0
	for _, e := range m.edges {
		n += len(e)
	}
	return n
}

// =============================================================================
// Reference Path
// =============================================================================

// SetReference records the linear reference path in order.
func (m *MutableGraph) SetReference(ids []uint32) {
	m.reference = slices.Clone(ids)
	m.refSet = make(map[uint32]bool, len(ids))
	for _, id := range ids {
		m.refSet[id] = true
	}
}

// AppendReference extends the linear reference path by one node.
func (m *MutableGraph) AppendReference(id uint32) {
	m.reference = append(m.reference, id)
	m.refSet[id] = true
}

// Reference returns the linear reference path.
func (m *MutableGraph) Reference() []uint32 { return m.reference }

// IsReference reports whether id lies on the linear reference path.
func (m *MutableGraph) IsReference(id uint32) bool { return m.refSet[id] }

// SetChromosomeStarts records the first node of each chromosome. When never
// set, [MutableGraph.Freeze] uses the first reference node.
func (m *MutableGraph) SetChromosomeStarts(ids []uint32) {
	m.chromStarts = slices.Clone(ids)
}

// ChromosomeStarts returns the recorded chromosome start nodes.
func (m *MutableGraph) ChromosomeStarts() []uint32 { return m.chromStarts }
