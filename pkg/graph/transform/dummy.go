package transform

import (
	"cmp"
	"slices"
	"strings"

	"github.com/matzehuels/seqgraph/pkg/errors"
	"github.com/matzehuels/seqgraph/pkg/graph"
	"github.com/matzehuels/seqgraph/pkg/variant"
)

// Strategy selects how dummy nodes are placed.
type Strategy string

const (
	// StrategyStructural scans topology only. It is the default.
	StrategyStructural Strategy = "structural"
	// StrategyVariants locates each variant's allele span from a variant list.
	StrategyVariants Strategy = "variants"
)

// DefaultStrategy is used when no strategy is configured.
const DefaultStrategy = StrategyStructural

// ParseStrategy parses a strategy name. The empty string selects
// [DefaultStrategy].
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultStrategy, nil
	case StrategyStructural:
		return StrategyStructural, nil
	case StrategyVariants:
		return StrategyVariants, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput,
		"unknown strategy %q (want %s or %s)", s, StrategyStructural, StrategyVariants)
}

// Stats reports what a pass changed.
type Stats struct {
	// DummiesAdded is the number of zero-length nodes created.
	DummiesAdded int
	// EdgesRedirected is the number of edges rerouted through a dummy.
	EdgesRedirected int
	// Chained counts alleles hung off an earlier dummy at the same locus.
	Chained int
	// Skipped counts variants whose allele span or bypass edge was not
	// found. Only the variant-driven strategy skips.
	Skipped int
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.DummiesAdded += o.DummiesAdded
	s.EdgesRedirected += o.EdgesRedirected
	s.Chained += o.Chained
	s.Skipped += o.Skipped
}

// Apply runs the given strategy. variants and chromosome are only used by
// [StrategyVariants].
func Apply(g *graph.Graph, s Strategy, variants []variant.Variant, chromosome int) (*graph.Graph, Stats, error) {
	switch s {
	case StrategyStructural:
		return AddDummyNodes(g)
	case StrategyVariants:
		return AddDummyNodesForVariants(g, variants, chromosome)
	}
	return nil, Stats{}, errors.New(errors.ErrCodeInvalidInput, "unknown strategy %q", s)
}

// =============================================================================
// Structural Scan
// =============================================================================

// AddDummyNodes runs the structural scan over g and returns the refrozen
// graph. Reference nodes are visited in id order; for each, deletion
// targets are handled before insertion targets. g is not modified.
func AddDummyNodes(g *graph.Graph) (*graph.Graph, Stats, error) {
	m := g.ToMutable()
	var stats Stats

	offset := func(id uint32) uint64 {
		off, _ := g.ReferenceOffsetOfNode(id)
		return off
	}

	for _, n := range g.LinearReferenceNodes().Sorted() {
		if len(m.Edges(n)) < 2 {
			continue
		}
		end := offset(n) + uint64(m.Length(n))

		var deletions, insertions []uint32
		for _, s := range m.Edges(n) {
			if !m.IsReference(s) {
				continue
			}
			switch off := offset(s); {
			case off > end:
				deletions = append(deletions, s)
			case off == end:
				insertions = append(insertions, s)
			}
		}

		for _, target := range deletions {
			var alleles []uint32
			for _, a := range m.Edges(n) {
				if a != target && m.IsReference(a) && offset(a) < offset(target) {
					alleles = append(alleles, a)
				}
			}
			for _, a := range alleles {
				stats.isolate(m, a, target, 0)
			}
		}

		for _, target := range insertions {
			var alleles []uint32
			for _, a := range m.Edges(n) {
				if !m.IsReference(a) && m.HasEdge(a, target) {
					alleles = append(alleles, a)
				}
			}
			var prev uint32
			for _, a := range alleles {
				if d, ok := stats.isolate(m, a, target, prev); ok {
					prev = d
				}
			}
		}
	}

	out, err := m.Freeze()
	if err != nil {
		return nil, stats, err
	}
	return out, stats, nil
}

// isolate gives allele its own skip node towards target. Every predecessor
// of allele that links to target is redirected to a new dummy. When none
// does and prev is the tail dummy of earlier alleles at this locus, every
// predecessor reaching prev through zero-length nodes hands allele over to
// prev first, so the new dummy extends the chain. It returns the new dummy.
func (s *Stats) isolate(m *graph.MutableGraph, allele, target, prev uint32) (uint32, bool) {
	var sources []uint32
	for _, p := range m.Predecessors(allele) {
		if m.HasEdge(p, target) {
			sources = append(sources, p)
		}
	}

	if len(sources) == 0 && prev != 0 {
		var moved []uint32
		for _, p := range m.Predecessors(allele) {
			if p != prev && walkPlaceholders(m, p, func(id uint32) bool { return id == prev }) {
				moved = append(moved, p)
			}
		}
		if len(moved) > 0 {
			for _, p := range moved {
				m.RemoveEdge(p, allele)
			}
			m.AddEdge(prev, allele)
			sources = []uint32{prev}
			s.Chained++
		}
	}
	if len(sources) == 0 {
		return 0, false
	}

	d := m.NewNode("")
	for _, p := range sources {
		m.ReplaceEdge(p, target, d)
	}
	m.AddEdge(d, target)
	s.DummiesAdded++
	s.EdgesRedirected += len(sources)
	return d, true
}

// walkPlaceholders visits the zero-length non-reference nodes reachable
// from start through such nodes, stopping when visit returns true.
func walkPlaceholders(m *graph.MutableGraph, start uint32, visit func(id uint32) bool) bool {
	stack := []uint32{start}
	seen := map[uint32]bool{start: true}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range m.Edges(n) {
			if seen[next] || m.Length(next) != 0 || m.IsReference(next) {
				continue
			}
			if visit(next) {
				return true
			}
			seen[next] = true
			stack = append(stack, next)
		}
	}
	return false
}

// =============================================================================
// Variant-Driven Strategy
// =============================================================================

// AddDummyNodesForVariants places one dummy per insertion or deletion in
// variants, which must lie on the given 1-based chromosome. SNPs are left
// alone. Deletions are handled before insertions, as in the structural
// scan, and each allele span is bypassed only towards the reference node
// that follows it. g is not modified.
func AddDummyNodesForVariants(g *graph.Graph, variants []variant.Variant, chromosome int) (*graph.Graph, Stats, error) {
	start, err := g.ChromosomeOffset(chromosome)
	if err != nil {
		return nil, Stats{}, err
	}
	size, _ := g.ChromosomeLength(chromosome)
	m := g.ToMutable()
	var stats Stats

	ordered := slices.Clone(variants)
	slices.SortStableFunc(ordered, func(a, b variant.Variant) int {
		return cmp.Compare(kindOrder(a.Kind()), kindOrder(b.Kind()))
	})

	for _, v := range ordered {
		if v.Kind() == variant.KindSNP {
			continue
		}
		if v.Position == 0 || v.Position > size {
			stats.Skipped++
			continue
		}
		anchorOff := start + v.Position - 1
		anchor, ok := anchorNode(g, anchorOff)
		if !ok {
			stats.Skipped++
			continue
		}

		var (
			target string
			next   uint32
			allow  func(uint32) bool
			prev   uint32
		)
		switch v.Kind() {
		case variant.KindDeletion:
			target = v.Ref[1:]
			nextOff := anchorOff + 1 + uint64(len(target))
			if next, ok = alignedNode(g, nextOff, start+size); !ok {
				stats.Skipped++
				continue
			}
			allow = func(id uint32) bool {
				off, err := g.ReferenceOffsetOfNode(id)
				return err == nil && off > anchorOff && off < nextOff
			}
		case variant.KindInsertion:
			target = v.Alt[1:]
			if next, ok = alignedNode(g, anchorOff+1, start+size); !ok {
				stats.Skipped++
				continue
			}
			allow = func(id uint32) bool {
				if m.IsReference(id) {
					return false
				}
				return m.Length(id) == 0 || m.HasEdge(id, next)
			}
		default:
			stats.Skipped++
			continue
		}

		path, ok := m.FindPathMatchingFunc(anchor, target, allow)
		if !ok || !m.HasEdge(path[len(path)-1], next) {
			stats.Skipped++
			continue
		}
		if v.Kind() == variant.KindInsertion {
			for _, p := range m.Predecessors(path[0]) {
				if walkPlaceholders(m, p, func(id uint32) bool {
					if m.HasEdge(id, next) {
						prev = id
						return true
					}
					return false
				}) {
					break
				}
			}
		}
		if _, ok := stats.isolate(m, path[0], next, prev); !ok {
			stats.Skipped++
		}
	}

	out, err := m.Freeze()
	if err != nil {
		return nil, stats, err
	}
	return out, stats, nil
}

// kindOrder sorts deletions ahead of insertions.
func kindOrder(k variant.Kind) int {
	if k == variant.KindDeletion {
		return 0
	}
	return 1
}

// anchorNode returns the reference node whose last base is at offset.
func anchorNode(g *graph.Graph, offset uint64) (uint32, bool) {
	id, err := g.NodeAtReferenceOffset(offset)
	if err != nil {
		return 0, false
	}
	off, _ := g.ReferenceOffsetOfNode(id)
	n, _ := g.NodeLength(id)
	return id, off+uint64(n)-1 == offset
}

// alignedNode returns the reference node starting at offset, which must lie
// before end.
func alignedNode(g *graph.Graph, offset, end uint64) (uint32, bool) {
	if offset >= end {
		return 0, false
	}
	id, err := g.NodeAtReferenceOffset(offset)
	if err != nil {
		return 0, false
	}
	off, _ := g.ReferenceOffsetOfNode(id)
	return id, off == offset
}
