package graph

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/seqgraph/pkg/errors"
	"github.com/matzehuels/seqgraph/pkg/variant"
)

// Numeric base codes used by [Graph.NumericSequence].
const (
	BaseA uint8 = iota
	BaseC
	BaseG
	BaseT
	BaseN
)

var baseCodes = func() [256]uint8 {
	var t [256]uint8
	for i := range t {
		t[i] = BaseN
	}
	for _, c := range []struct {
		b    byte
		code uint8
	}{{'A', BaseA}, {'C', BaseC}, {'G', BaseG}, {'T', BaseT}} {
		t[c.b] = c.code
		t[c.b+'a'-'A'] = c.code
	}
	return t
}()

// chunks splits [0, n) into at most workers contiguous ranges.
func chunks(n, workers int) [][2]int {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if n == 0 {
		return nil
	}
	size := (n + workers - 1) / workers
	var out [][2]int
	for lo := 0; lo < n; lo += size {
		out = append(out, [2]int{lo, min(lo+size, n)})
	}
	return out
}

// =============================================================================
// Numeric Sequences
// =============================================================================

// PrecomputeNumericSequences encodes every base as A=0, C=1, G=2, T=3 and
// anything else as 4. Workers fill disjoint ranges of the sequence buffer.
// It must be called before g is shared between goroutines.
func (g *Graph) PrecomputeNumericSequences(ctx context.Context, workers int) error {
	out := make([]uint8, len(g.sequences))
	eg, ctx := errgroup.WithContext(ctx)
	for _, r := range chunks(len(g.sequences), workers) {
		eg.Go(func() error {
			for i := r[0]; i < r[1]; i++ {
				if i%(1<<16) == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				out[i] = baseCodes[g.sequences[i]]
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	g.numeric = out
	return nil
}

// HasNumericSequences reports whether the numeric cache is populated.
func (g *Graph) HasNumericSequences() bool { return g.numeric != nil }

// NumericSequence returns the base codes of node id. Without a precomputed
// cache the codes are computed on the fly.
func (g *Graph) NumericSequence(id uint32) ([]uint8, error) {
	if !g.valid(id) {
		return nil, g.outOfRange(id)
	}
	start := g.seqIndex[id]
	end := start + uint64(g.lengths[id])
	if g.numeric != nil {
		return g.numeric[start:end:end], nil
	}
	out := make([]uint8, 0, end-start)
	for _, b := range g.sequences[start:end] {
		out = append(out, baseCodes[b])
	}
	return out, nil
}

// =============================================================================
// Allele Frequencies
// =============================================================================

// SetAlleleFrequencies attaches one frequency per node id (index 0 unused).
// It must be called before g is shared between goroutines.
func (g *Graph) SetAlleleFrequencies(freqs []float32) error {
	if len(freqs) != len(g.lengths) {
		return errors.New(errors.ErrCodeInvalidInput,
			"got %d allele frequencies for %d node slots", len(freqs), len(g.lengths))
	}
	g.alleleFreqs = freqs
	return nil
}

// HasAlleleFrequencies reports whether frequencies are attached.
func (g *Graph) HasAlleleFrequencies() bool { return g.alleleFreqs != nil }

// AlleleFrequency returns the frequency of node id, 1 when none are attached.
func (g *Graph) AlleleFrequency(id uint32) (float32, error) {
	if !g.valid(id) {
		return 0, g.outOfRange(id)
	}
	if g.alleleFreqs == nil {
		return 1, nil
	}
	return g.alleleFreqs[id], nil
}

// AnnotationStats reports how many variants contributed to an annotation.
type AnnotationStats struct {
	Resolved int
	Skipped  int
}

// AnnotateAlleleFrequencies resolves every variant on chromosome in
// parallel and derives per-node frequencies: allele nodes get the variant's
// AF and the matching reference-side node loses it. Nodes untouched by any
// variant keep frequency 1. Variants that do not resolve are skipped.
//
// Workers resolve disjoint ranges of the variant list against the read-only
// graph; the frequencies are folded in variant order afterwards.
func AnnotateAlleleFrequencies(ctx context.Context, g *Graph, variants []variant.Variant, chromosome, workers int) (AnnotationStats, error) {
	type pair struct {
		ref, alt uint32
		ok       bool
	}
	resolved := make([]pair, len(variants))

	eg, ctx := errgroup.WithContext(ctx)
	for _, r := range chunks(len(variants), workers) {
		eg.Go(func() error {
			for i := r[0]; i < r[1]; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				ref, alt, err := g.ResolveVariantNodes(variants[i], chromosome)
				if err != nil {
					if errors.IsRecoverable(err) {
						continue
					}
					return err
				}
				resolved[i] = pair{ref, alt, true}
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return AnnotationStats{}, err
	}

	freqs := make([]float32, len(g.lengths))
	for i := range freqs {
		freqs[i] = 1
	}
	var stats AnnotationStats
	for i, p := range resolved {
		if !p.ok {
			stats.Skipped++
			continue
		}
		stats.Resolved++
		af := variants[i].AlleleFrequency
		freqs[p.alt] = af
		freqs[p.ref] = max(0, freqs[p.ref]-af)
	}
	return stats, g.SetAlleleFrequencies(freqs)
}
