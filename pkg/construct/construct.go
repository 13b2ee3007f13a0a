// Package construct builds a variation graph from a linear reference and a
// position-sorted list of variants.
//
// # Algorithm
//
// Construction runs in two phases.
//
// Phase A walks breakpoints. Every variant contributes (Before, variant) and
// (After-1, nil). Sorted by position, the markers cut the reference into
// reference nodes; SNPs and insertions add one allele node each, and
// deletions record a jump from Before+1 to After instead of a node.
//
// Phase B adds edges. A node ending at reference position X links to every
// node starting at X+1. When the target starts at the source side of a
// recorded jump, the source also links to every node starting at the jump's
// far end; this repeats for chained jumps, so a deletion skips nested
// deletions, SNPs and insertions inside its span. The repetition runs on an
// explicit work-list.
//
// Two insertion allele nodes anchored at the same base are never linked to
// each other.
//
// # Example
//
// Reference "ACTGGG" with a SNP C>T at position 2 gives four nodes
// A, T, C, TGGG with edges 1→2, 1→3, 2→4, 3→4 and reference path 1, 3, 4.
package construct

import (
	"slices"
	"strings"

	"github.com/matzehuels/seqgraph/pkg/errors"
	"github.com/matzehuels/seqgraph/pkg/graph"
	"github.com/matzehuels/seqgraph/pkg/variant"
)

// Option configures a [Constructor].
type Option func(*Constructor)

// WithReferenceCheck makes the constructor reject variants whose REF does
// not match the reference sequence.
func WithReferenceCheck() Option {
	return func(c *Constructor) { c.checkRef = true }
}

// Constructor holds the working state of one build. It is single-use and
// not safe for concurrent use.
type Constructor struct {
	reference string
	variants  []variant.Variant
	checkRef  bool

	g         *graph.MutableGraph
	before    map[uint32]int64
	after     map[uint32]int64
	insertion map[uint32]bool
	byBefore  map[int64][]uint32
	jumps     map[int64][]int64
}

// breakpoint is a Phase A marker. v is nil for end markers.
type breakpoint struct {
	pos int64
	v   *variant.Variant
}

// New validates the input and prepares a build. Variants must be sorted by
// position; out-of-order input is rejected with UNSORTED_VARIANTS.
func New(reference string, variants []variant.Variant, opts ...Option) (*Constructor, error) {
	if reference == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "reference sequence is empty")
	}
	if err := variant.CheckSorted(variants); err != nil {
		return nil, err
	}

	c := &Constructor{
		reference: reference,
		variants:  variants,
		g:         graph.NewMutable(),
		before:    make(map[uint32]int64),
		after:     make(map[uint32]int64),
		insertion: make(map[uint32]bool),
		byBefore:  make(map[int64][]uint32),
		jumps:     make(map[int64][]int64),
	}
	for _, opt := range opts {
		opt(c)
	}

	for i, v := range variants {
		if err := c.check(v); err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "variant %d", i)
		}
	}
	return c, nil
}

// Build runs both phases and returns the builder graph.
func Build(reference string, variants []variant.Variant, opts ...Option) (*graph.MutableGraph, error) {
	c, err := New(reference, variants, opts...)
	if err != nil {
		return nil, err
	}
	return c.Build()
}

// Build runs Phase A and Phase B and verifies that the reference path spells
// the reference sequence.
func (c *Constructor) Build() (*graph.MutableGraph, error) {
	if err := c.createNodes(); err != nil {
		return nil, err
	}
	c.createEdges()

	var got []byte
	for _, id := range c.g.Reference() {
		got = append(got, c.g.Sequence(id)...)
	}
	if string(got) != c.reference {
		return nil, errors.New(errors.ErrCodeInternal,
			"reference path spells %d bases, reference has %d", len(got), len(c.reference))
	}
	return c.g, nil
}

func (c *Constructor) check(v variant.Variant) error {
	if err := v.Validate(); err != nil {
		return err
	}
	n := int64(len(c.reference))
	if v.After()-1 >= n {
		return errors.New(errors.ErrCodeInvalidInput,
			"%s extends past the reference end (%d bases)", v, n)
	}
	if c.checkRef {
		start := int64(v.Position) - 1
		if got := c.reference[start : start+int64(len(v.Ref))]; !strings.EqualFold(got, v.Ref) {
			return errors.New(errors.ErrCodeInvalidInput, "%s: reference has %s", v, got)
		}
	}
	return nil
}

// =============================================================================
// Phase A - Breakpoints and Nodes
// =============================================================================

func (c *Constructor) createNodes() error {
	markers := make([]breakpoint, 0, 2*len(c.variants))
	for i := range c.variants {
		v := &c.variants[i]
		markers = append(markers,
			breakpoint{pos: v.Before(), v: v},
			breakpoint{pos: v.After() - 1},
		)
	}
	slices.SortStableFunc(markers, func(a, b breakpoint) int {
		switch {
		case a.pos < b.pos:
			return -1
		case a.pos > b.pos:
			return 1
		}
		return 0
	})

	prevEnd := int64(-1)
	for _, m := range markers {
		if m.pos > prevEnd {
			c.addReferenceNode(prevEnd, m.pos)
			prevEnd = m.pos
		}
		if m.v == nil {
			continue
		}
		switch m.v.Kind() {
		case variant.KindSNP, variant.KindInsertion:
			allele := m.v.Allele()
			if allele == "" {
				return errors.New(errors.ErrCodeMalformedNode, "%s: empty allele sequence", m.v)
			}
			id := c.addNode(allele, m.v.Before(), m.v.After())
			c.insertion[id] = m.v.Kind() == variant.KindInsertion
		case variant.KindDeletion:
			from := m.v.Before() + 1
			c.jumps[from] = append(c.jumps[from], m.v.After())
		default:
			return errors.New(errors.ErrCodeUnsupported, "%s: unsupported variant kind", m.v)
		}
	}

	if last := int64(len(c.reference)) - 1; prevEnd < last {
		c.addReferenceNode(prevEnd, last)
	}
	return nil
}

// addReferenceNode materializes reference bases (prevEnd, end].
func (c *Constructor) addReferenceNode(prevEnd, end int64) {
	id := c.addNode(c.reference[prevEnd+1:end+1], prevEnd, end+1)
	c.g.AppendReference(id)
}

func (c *Constructor) addNode(seq string, before, after int64) uint32 {
	id := c.g.NewNode(seq)
	c.before[id] = before
	c.after[id] = after
	c.byBefore[before] = append(c.byBefore[before], id)
	return id
}

// =============================================================================
// Phase B - Edges
// =============================================================================

func (c *Constructor) createEdges() {
	for _, id := range c.g.NodeIDs() {
		for _, to := range c.byBefore[c.after[id]-1] {
			c.link(id, to)
		}
	}
}

// link adds from→to and every edge implied by deletion jumps starting where
// to starts. Targets are visited depth-first in the same order a recursive
// walk would take.
func (c *Constructor) link(from, to uint32) {
	if !c.linkable(from, to) {
		return
	}
	visited := make(map[uint32]bool)
	stack := []uint32{to}
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[t] || !c.linkable(from, t) {
			continue
		}
		visited[t] = true
		c.g.AddEdge(from, t)

		var next []uint32
		for _, end := range c.jumps[c.before[t]+1] {
			next = append(next, c.byBefore[end-1]...)
		}
		for i := len(next) - 1; i >= 0; i-- {
			stack = append(stack, next[i])
		}
	}
}

func (c *Constructor) linkable(from, to uint32) bool {
	if from == to {
		return false
	}
	if c.insertion[from] && c.insertion[to] && c.before[from] == c.before[to] {
		return false
	}
	return true
}
