package graph

import (
	"context"
	"testing"

	"github.com/matzehuels/seqgraph/pkg/errors"
	"github.com/matzehuels/seqgraph/pkg/variant"
)

// disambiguated is the nested graph after the structural scan.
func disambiguated(t *testing.T) *Graph {
	t.Helper()
	g, err := FromMaps(
		map[uint32]string{1: "ACTG", 2: "A", 3: "C", 4: "T", 5: "AAA", 6: "G", 7: "", 8: "", 9: ""},
		map[uint32][]uint32{
			1: {2, 7, 8}, 2: {3, 4}, 3: {5, 9}, 4: {5, 9}, 5: {6},
			7: {5}, 8: {6}, 9: {6},
		},
		[]uint32{1, 2, 4, 5, 6}, nil,
	)
	if err != nil {
		t.Fatalf("FromMaps: %v", err)
	}
	return g
}

func TestResolveVariantNodes(t *testing.T) {
	g := disambiguated(t)

	tests := []struct {
		v       variant.Variant
		ref     uint32
		alt     uint32
		wantErr errors.Code
	}{
		{v: variant.MustNew(4, "GAT", "G"), ref: 2, alt: 7},
		{v: variant.MustNew(6, "T", "C"), ref: 4, alt: 3},
		{v: variant.MustNew(6, "TAAA", "T"), ref: 5, alt: 9},
		{v: variant.MustNew(6, "T", "G"), wantErr: errors.ErrCodeVariantNotFound},
		{v: variant.MustNew(3, "TG", "T"), wantErr: errors.ErrCodeVariantNotFound},
		{v: variant.MustNew(10, "G", "A"), wantErr: errors.ErrCodeVariantNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.v.String(), func(t *testing.T) {
			ref, alt, err := g.ResolveVariantNodes(tt.v, 1)
			if tt.wantErr != "" {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveVariantNodes: %v", err)
			}
			if ref != tt.ref || alt != tt.alt {
				t.Errorf("got (%d, %d), want (%d, %d)", ref, alt, tt.ref, tt.alt)
			}
		})
	}
}

func TestResolveSkipEdgeIsAmbiguous(t *testing.T) {
	_, _, err := nested(t).ResolveVariantNodes(variant.MustNew(4, "GAT", "G"), 1)
	if !errors.Is(err, errors.ErrCodeAmbiguousTopology) {
		t.Errorf("error = %v, want AMBIGUOUS_TOPOLOGY", err)
	}
}

func TestResolveInsertion(t *testing.T) {
	g, err := FromMaps(
		map[uint32]string{1: "CTACCA", 2: "AA", 3: "TAAATAA", 4: ""},
		map[uint32][]uint32{1: {2, 4}, 2: {3}, 4: {3}},
		[]uint32{1, 3}, nil,
	)
	if err != nil {
		t.Fatalf("FromMaps: %v", err)
	}

	ref, alt, err := g.ResolveVariantNodes(variant.MustNew(6, "A", "AAA"), 1)
	if err != nil {
		t.Fatalf("ResolveVariantNodes: %v", err)
	}
	if ref != 4 || alt != 2 {
		t.Errorf("got (%d, %d), want (4, 2)", ref, alt)
	}

	// Anchor not at the end of a node.
	_, _, err = g.ResolveVariantNodes(variant.MustNew(3, "A", "AG"), 1)
	if !errors.Is(err, errors.ErrCodeVariantNotFound) {
		t.Errorf("error = %v, want VARIANT_NOT_FOUND", err)
	}
}

func TestResolveChainedInsertions(t *testing.T) {
	// AAAAAA with two insertions after base 2, chained through dummy 5.
	g, err := FromMaps(
		map[uint32]string{1: "AA", 2: "C", 3: "GG", 4: "AAAA", 5: "", 6: ""},
		map[uint32][]uint32{1: {2, 5}, 2: {4}, 3: {4}, 5: {6, 3}, 6: {4}},
		[]uint32{1, 4}, nil,
	)
	if err != nil {
		t.Fatalf("FromMaps: %v", err)
	}

	tests := []struct {
		alt         string
		ref, allele uint32
	}{
		{"AC", 5, 2},
		{"AGG", 6, 3},
	}
	for _, tt := range tests {
		ref, alt, err := g.ResolveVariantNodes(variant.MustNew(2, "A", tt.alt), 1)
		if err != nil {
			t.Fatalf("%s: %v", tt.alt, err)
		}
		if ref != tt.ref || alt != tt.allele {
			t.Errorf("%s: got (%d, %d), want (%d, %d)", tt.alt, ref, alt, tt.ref, tt.allele)
		}
	}
}

func TestResolveUnknownChromosome(t *testing.T) {
	_, _, err := disambiguated(t).ResolveVariantNodes(variant.MustNew(6, "T", "C"), 2)
	if !errors.Is(err, errors.ErrCodeChromosomeNotFound) {
		t.Errorf("error = %v, want CHROMOSOME_NOT_FOUND", err)
	}
}

func TestAnnotateAlleleFrequencies(t *testing.T) {
	g := disambiguated(t)
	vs := []variant.Variant{
		variant.MustNew(4, "GAT", "G"),
		variant.MustNew(6, "T", "C"),
		variant.MustNew(6, "T", "G"),
	}
	vs[0].AlleleFrequency = 0.25
	vs[1].AlleleFrequency = 0.5

	stats, err := AnnotateAlleleFrequencies(context.Background(), g, vs, 1, 2)
	if err != nil {
		t.Fatalf("AnnotateAlleleFrequencies: %v", err)
	}
	if stats.Resolved != 2 || stats.Skipped != 1 {
		t.Errorf("stats = %+v, want 2 resolved, 1 skipped", stats)
	}

	want := map[uint32]float32{1: 1, 2: 0.75, 3: 0.5, 4: 0.5, 7: 0.25, 9: 1}
	for id, w := range want {
		if got, _ := g.AlleleFrequency(id); got != w {
			t.Errorf("AlleleFrequency(%d) = %v, want %v", id, got, w)
		}
	}
}

func TestNumericSequences(t *testing.T) {
	g := disambiguated(t)

	before, _ := g.NumericSequence(1)
	if err := g.PrecomputeNumericSequences(context.Background(), 3); err != nil {
		t.Fatalf("PrecomputeNumericSequences: %v", err)
	}
	if !g.HasNumericSequences() {
		t.Fatal("HasNumericSequences = false after precompute")
	}
	after, _ := g.NumericSequence(1)

	want := []uint8{BaseA, BaseC, BaseT, BaseG}
	for i := range want {
		if before[i] != want[i] || after[i] != want[i] {
			t.Errorf("base %d: before=%d after=%d, want %d", i, before[i], after[i], want[i])
		}
	}
	if got, _ := g.NumericSequence(7); len(got) != 0 {
		t.Errorf("NumericSequence(7) = %v, want empty", got)
	}
}

func TestPrecomputeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := disambiguated(t).PrecomputeNumericSequences(ctx, 1); err == nil {
		t.Error("PrecomputeNumericSequences succeeded on a canceled context")
	}
}
