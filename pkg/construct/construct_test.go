package construct

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/seqgraph/pkg/errors"
	"github.com/matzehuels/seqgraph/pkg/graph"
	"github.com/matzehuels/seqgraph/pkg/variant"
)

type want struct {
	sequences map[uint32]string
	edges     map[uint32][]uint32
	reference []uint32
}

func check(t *testing.T, m *graph.MutableGraph, w want) {
	t.Helper()
	if got := m.NodeCount(); got != len(w.sequences) {
		t.Errorf("NodeCount = %d, want %d", got, len(w.sequences))
	}
	for id, seq := range w.sequences {
		if got := m.Sequence(id); got != seq {
			t.Errorf("Sequence(%d) = %q, want %q", id, got, seq)
		}
	}
	for _, id := range m.NodeIDs() {
		if diff := cmp.Diff(w.edges[id], m.Edges(id)); diff != "" {
			t.Errorf("Edges(%d) mismatch (-want +got):\n%s", id, diff)
		}
	}
	if diff := cmp.Diff(w.reference, m.Reference()); diff != "" {
		t.Errorf("Reference mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name      string
		reference string
		variants  []variant.Variant
		want      want
	}{
		{
			name:      "NoVariants",
			reference: "ACGT",
			want: want{
				sequences: map[uint32]string{1: "ACGT"},
				reference: []uint32{1},
			},
		},
		{
			name:      "SNP",
			reference: "ACTGGG",
			variants:  []variant.Variant{variant.MustNew(2, "C", "T")},
			want: want{
				sequences: map[uint32]string{1: "A", 2: "T", 3: "C", 4: "TGGG"},
				edges:     map[uint32][]uint32{1: {2, 3}, 2: {4}, 3: {4}},
				reference: []uint32{1, 3, 4},
			},
		},
		{
			name:      "Deletion",
			reference: "ACTGATAAAG",
			variants:  []variant.Variant{variant.MustNew(4, "GAT", "G")},
			want: want{
				sequences: map[uint32]string{1: "ACTG", 2: "AT", 3: "AAAG"},
				edges:     map[uint32][]uint32{1: {2, 3}, 2: {3}},
				reference: []uint32{1, 2, 3},
			},
		},
		{
			name:      "Insertion",
			reference: "CTACCATAAATAA",
			variants:  []variant.Variant{variant.MustNew(6, "A", "AAA")},
			want: want{
				sequences: map[uint32]string{1: "CTACCA", 2: "AA", 3: "TAAATAA"},
				edges:     map[uint32][]uint32{1: {2, 3}, 2: {3}},
				reference: []uint32{1, 3},
			},
		},
		{
			name:      "NestedDeletions",
			reference: "ACTGATAAAG",
			variants: []variant.Variant{
				variant.MustNew(4, "GAT", "G"),
				variant.MustNew(6, "T", "C"),
				variant.MustNew(6, "TAAA", "T"),
			},
			want: want{
				sequences: map[uint32]string{1: "ACTG", 2: "A", 3: "C", 4: "T", 5: "AAA", 6: "G"},
				edges:     map[uint32][]uint32{1: {2, 5, 6}, 2: {3, 4}, 3: {5, 6}, 4: {5, 6}, 5: {6}},
				reference: []uint32{1, 2, 4, 5, 6},
			},
		},
		{
			name:      "Overlapping",
			reference: "GCATATTTT",
			variants: []variant.Variant{
				variant.MustNew(2, "CAT", "C"),
				variant.MustNew(3, "A", "G"),
				variant.MustNew(4, "TA", "T"),
				variant.MustNew(5, "A", "AT"),
			},
			want: want{
				sequences: map[uint32]string{1: "GC", 2: "G", 3: "A", 4: "T", 5: "A", 6: "T", 7: "TTTT"},
				edges: map[uint32][]uint32{
					1: {2, 5, 6, 7, 3}, 2: {4}, 3: {4}, 4: {5, 6, 7}, 5: {6, 7}, 6: {7},
				},
				reference: []uint32{1, 3, 4, 5, 7},
			},
		},
		{
			name:      "SiblingInsertions",
			reference: "AAAAAA",
			variants: []variant.Variant{
				variant.MustNew(2, "A", "AC"),
				variant.MustNew(2, "A", "AGG"),
			},
			want: want{
				sequences: map[uint32]string{1: "AA", 2: "C", 3: "GG", 4: "AAAA"},
				edges:     map[uint32][]uint32{1: {2, 3, 4}, 2: {4}, 3: {4}},
				reference: []uint32{1, 4},
			},
		},
		{
			name:      "SNPOnLastBase",
			reference: "ACGT",
			variants:  []variant.Variant{variant.MustNew(4, "T", "C")},
			want: want{
				sequences: map[uint32]string{1: "ACG", 2: "C", 3: "T"},
				edges:     map[uint32][]uint32{1: {2, 3}},
				reference: []uint32{1, 3},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Build(tt.reference, tt.variants)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			check(t, m, tt.want)

			g, err := m.Freeze()
			if err != nil {
				t.Fatalf("Freeze: %v", err)
			}
			if got := g.ReferenceSequence(); got != tt.reference {
				t.Errorf("ReferenceSequence = %q, want %q", got, tt.reference)
			}
			if err := g.Validate(); err != nil {
				t.Errorf("Validate: %v", err)
			}
		})
	}
}

func TestBuildRejects(t *testing.T) {
	tests := []struct {
		name      string
		reference string
		variants  []variant.Variant
		opts      []Option
		wantCode  errors.Code
	}{
		{
			name:      "EmptyReference",
			reference: "",
			wantCode:  errors.ErrCodeInvalidInput,
		},
		{
			name:      "Unsorted",
			reference: "ACGTACGT",
			variants:  []variant.Variant{variant.MustNew(5, "A", "G"), variant.MustNew(2, "C", "T")},
			wantCode:  errors.ErrCodeUnsortedVariants,
		},
		{
			name:      "PastEnd",
			reference: "ACGT",
			variants:  []variant.Variant{variant.MustNew(3, "GTA", "G")},
			wantCode:  errors.ErrCodeInvalidInput,
		},
		{
			name:      "MultiBaseSubstitution",
			reference: "ACGT",
			variants:  []variant.Variant{{Position: 2, Ref: "CG", Alt: "TT"}},
			wantCode:  errors.ErrCodeUnsupported,
		},
		{
			name:      "ReferenceMismatch",
			reference: "ACGT",
			variants:  []variant.Variant{variant.MustNew(2, "G", "T")},
			opts:      []Option{WithReferenceCheck()},
			wantCode:  errors.ErrCodeInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.reference, tt.variants, tt.opts...)
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("Build error = %v, want %s", err, tt.wantCode)
			}
		})
	}
}

func TestReferenceCheckPasses(t *testing.T) {
	vs := []variant.Variant{variant.MustNew(2, "c", "T")}
	if _, err := Build("ACGT", vs, WithReferenceCheck()); err != nil {
		t.Errorf("Build: %v", err)
	}
}
