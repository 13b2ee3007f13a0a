package graph

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/matzehuels/seqgraph/pkg/errors"
)

// nested is the graph built from ACTGATAAAG with DEL(4,GAT>G), SNP(6,T>C)
// and DEL(6,TAAA>T), before any dummy nodes are added.
func nested(t *testing.T) *Graph {
	t.Helper()
	g, err := FromMaps(
		map[uint32]string{1: "ACTG", 2: "A", 3: "C", 4: "T", 5: "AAA", 6: "G"},
		map[uint32][]uint32{1: {2, 5, 6}, 2: {3, 4}, 3: {5, 6}, 4: {5, 6}, 5: {6}},
		[]uint32{1, 2, 4, 5, 6}, nil,
	)
	if err != nil {
		t.Fatalf("FromMaps: %v", err)
	}
	return g
}

func TestMutableEdges(t *testing.T) {
	m := NewMutable()
	a, b, c := m.NewNode("A"), m.NewNode("C"), m.NewNode("G")

	if !m.AddEdge(a, b) {
		t.Fatal("AddEdge(a, b) = false, want true")
	}
	if m.AddEdge(a, b) {
		t.Error("duplicate AddEdge = true, want false")
	}
	if m.AddEdge(a, a) {
		t.Error("self AddEdge = true, want false")
	}
	m.AddEdge(a, c)

	if !m.ReplaceEdge(a, b, 4) {
		t.Fatal("ReplaceEdge = false, want true")
	}
	if diff := cmp.Diff([]uint32{4, c}, m.Edges(a)); diff != "" {
		t.Errorf("Edges(a) mismatch (-want +got):\n%s", diff)
	}
	if got := m.Predecessors(b); len(got) != 0 {
		t.Errorf("Predecessors(b) = %v, want empty", got)
	}
	if diff := cmp.Diff([]uint32{a}, m.Predecessors(4)); diff != "" {
		t.Errorf("Predecessors(4) mismatch (-want +got):\n%s", diff)
	}

	// Replacing onto an existing target drops the old edge.
	m.ReplaceEdge(a, 4, c)
	if diff := cmp.Diff([]uint32{c}, m.Edges(a)); diff != "" {
		t.Errorf("Edges(a) mismatch (-want +got):\n%s", diff)
	}

	if !m.RemoveEdge(a, c) || m.RemoveEdge(a, c) {
		t.Error("RemoveEdge should succeed once")
	}
	if m.EdgeCount() != 0 {
		t.Errorf("EdgeCount = %d, want 0", m.EdgeCount())
	}
}

func TestMutableAddNode(t *testing.T) {
	m := NewMutable()
	if err := m.AddNode(0, "A"); !errors.Is(err, errors.ErrCodeMalformedNode) {
		t.Errorf("AddNode(0) error = %v, want MALFORMED_NODE", err)
	}
	if err := m.AddNode(5, "A"); err != nil {
		t.Fatalf("AddNode(5): %v", err)
	}
	if err := m.AddNode(5, "C"); !errors.Is(err, errors.ErrCodeMalformedNode) {
		t.Errorf("duplicate AddNode error = %v, want MALFORMED_NODE", err)
	}
	if id := m.NewNode(""); id != 6 {
		t.Errorf("NewNode = %d, want 6", id)
	}
}

func TestFindPathMatching(t *testing.T) {
	m := nested(t).ToMutable()

	tests := []struct {
		target string
		want   []uint32
		ok     bool
	}{
		{"AT", []uint32{2, 4}, true},
		{"ac", []uint32{2, 3}, true},
		{"AAA", []uint32{5}, true},
		{"ATAAAG", []uint32{2, 4, 5, 6}, true},
		{"GG", nil, false},
		{"", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			got, ok := m.FindPathMatching(1, tt.target)
			if ok != tt.ok {
				t.Fatalf("FindPathMatching(%q) ok = %v, want %v", tt.target, ok, tt.ok)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("path mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFindPathMatchingTrimsPlaceholders(t *testing.T) {
	m := NewMutable()
	for id, seq := range []string{"A", "", "CG", ""} {
		_ = m.AddNode(uint32(id+1), seq)
	}
	m.AddEdge(1, 2)
	m.AddEdge(2, 3)
	m.AddEdge(3, 4)

	got, ok := m.FindPathMatching(1, "CG")
	if !ok {
		t.Fatal("FindPathMatching failed")
	}
	if diff := cmp.Diff([]uint32{3}, got); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
}

func TestFindPathMatchingFunc(t *testing.T) {
	m := NewMutable()
	for id, seq := range []string{"A", "C", "C", "G"} {
		_ = m.AddNode(uint32(id+1), seq)
	}
	m.AddEdge(1, 2)
	m.AddEdge(1, 3)
	m.AddEdge(2, 4)
	m.AddEdge(3, 4)

	tests := []struct {
		name  string
		allow func(uint32) bool
		want  []uint32
		ok    bool
	}{
		{"all", nil, []uint32{2, 4}, true},
		{"skip node 2", func(id uint32) bool { return id != 2 }, []uint32{3, 4}, true},
		{"nothing", func(uint32) bool { return false }, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := m.FindPathMatchingFunc(1, "CG", tt.allow)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("path mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFromMaps(t *testing.T) {
	g, err := FromMaps(
		map[uint32]string{1: "ACTG", 2: "A", 3: "G", 4: "AAA"},
		map[uint32][]uint32{1: {2, 3}, 2: {4}, 3: {4}},
		[]uint32{1, 2, 4}, nil,
	)
	if err != nil {
		t.Fatalf("FromMaps: %v", err)
	}

	for id, want := range map[uint32]uint32{1: 4, 2: 1, 3: 1, 4: 3} {
		if got, _ := g.NodeLength(id); got != want {
			t.Errorf("NodeLength(%d) = %d, want %d", id, got, want)
		}
	}
	if diff := cmp.Diff([]uint32{2, 3}, g.Edges(1)); diff != "" {
		t.Errorf("Edges(1) mismatch (-want +got):\n%s", diff)
	}
	if got := g.Edges(4); got == nil || len(got) != 0 {
		t.Errorf("Edges(4) = %#v, want empty non-nil", got)
	}
	if got := g.ReferenceSequence(); got != "ACTGAAAA" {
		t.Errorf("ReferenceSequence = %q, want ACTGAAAA", got)
	}
	if g.IsReference(3) {
		t.Error("IsReference(3) = true, want false")
	}
	if g.ChromosomeCount() != 1 {
		t.Errorf("ChromosomeCount = %d, want 1", g.ChromosomeCount())
	}
}

func TestFreezeRejectsZeroLengthReference(t *testing.T) {
	m := NewMutable()
	a, d := m.NewNode("A"), m.NewNode("")
	m.AddEdge(a, d)
	m.SetReference([]uint32{a, d})
	if _, err := m.Freeze(); !errors.Is(err, errors.ErrCodeMalformedNode) {
		t.Errorf("Freeze error = %v, want MALFORMED_NODE", err)
	}
}

func TestFreezeRejectsDuplicateReference(t *testing.T) {
	m := NewMutable()
	a, b := m.NewNode("AC"), m.NewNode("GT")
	m.AddEdge(a, b)
	m.SetReference([]uint32{a, b, a})
	if _, err := m.Freeze(); !errors.Is(err, errors.ErrCodeMalformedNode) {
		t.Errorf("Freeze error = %v, want MALFORMED_NODE", err)
	}
}

func TestNodeAccessOutOfRange(t *testing.T) {
	g := nested(t)
	for _, id := range []uint32{0, 7, 1000} {
		if _, err := g.NodeLength(id); !errors.Is(err, errors.ErrCodeNodeOutOfRange) {
			t.Errorf("NodeLength(%d) error = %v, want NODE_OUT_OF_RANGE", id, err)
		}
		if _, err := g.NodeSequence(id); !errors.Is(err, errors.ErrCodeNodeOutOfRange) {
			t.Errorf("NodeSequence(%d) error = %v, want NODE_OUT_OF_RANGE", id, err)
		}
	}
}

func TestReferenceCoordinates(t *testing.T) {
	g := nested(t)

	if g.ReferenceLength() != 10 {
		t.Fatalf("ReferenceLength = %d, want 10", g.ReferenceLength())
	}
	wantNodes := []uint32{1, 1, 1, 1, 2, 4, 5, 5, 5, 6}
	for off, want := range wantNodes {
		got, err := g.NodeAtReferenceOffset(uint64(off))
		if err != nil || got != want {
			t.Errorf("NodeAtReferenceOffset(%d) = %d, %v; want %d", off, got, err, want)
		}
	}
	if _, err := g.NodeAtReferenceOffset(10); !errors.Is(err, errors.ErrCodeNodeOutOfRange) {
		t.Errorf("NodeAtReferenceOffset(10) error = %v, want NODE_OUT_OF_RANGE", err)
	}

	// Every reference node maps back to itself.
	for _, id := range g.LinearReferencePath() {
		off, err := g.ReferenceOffsetOfNode(id)
		if err != nil {
			t.Fatalf("ReferenceOffsetOfNode(%d): %v", id, err)
		}
		if got, _ := g.NodeAtReferenceOffset(off); got != id {
			t.Errorf("NodeAtReferenceOffset(ReferenceOffsetOfNode(%d)) = %d", id, got)
		}
	}
	if _, err := g.ReferenceOffsetOfNode(3); err == nil {
		t.Error("ReferenceOffsetOfNode(3) succeeded for a non-reference node")
	}

	if got, _ := g.OffsetWithinNode(8); got != 2 {
		t.Errorf("OffsetWithinNode(8) = %d, want 2", got)
	}
}

func TestLinearReferenceNodes(t *testing.T) {
	g := nested(t)
	first := g.LinearReferenceNodes()
	second := g.LinearReferenceNodes()

	if diff := cmp.Diff([]uint32{1, 2, 4, 5, 6}, first.Sorted()); diff != "" {
		t.Errorf("LinearReferenceNodes mismatch (-want +got):\n%s", diff)
	}
	if !first.Has(4) || first.Has(3) {
		t.Errorf("Has: 4=%v 3=%v, want true false", first.Has(4), first.Has(3))
	}
	if diff := cmp.Diff(first.Sorted(), second.Sorted()); diff != "" {
		t.Errorf("second call differs:\n%s", diff)
	}
}

func TestChromosomes(t *testing.T) {
	g, err := FromMaps(
		map[uint32]string{1: "ACGT", 2: "T", 3: "GG", 4: "CCC"},
		map[uint32][]uint32{1: {2}, 3: {4}},
		[]uint32{1, 2, 3, 4}, []uint32{1, 3},
	)
	if err != nil {
		t.Fatalf("FromMaps: %v", err)
	}

	tests := []struct {
		chrom      int
		wantOffset uint64
		wantLength uint64
	}{
		{1, 0, 5},
		{2, 5, 5},
	}
	for _, tt := range tests {
		off, err := g.ChromosomeOffset(tt.chrom)
		if err != nil || off != tt.wantOffset {
			t.Errorf("ChromosomeOffset(%d) = %d, %v; want %d", tt.chrom, off, err, tt.wantOffset)
		}
		n, _ := g.ChromosomeLength(tt.chrom)
		if n != tt.wantLength {
			t.Errorf("ChromosomeLength(%d) = %d, want %d", tt.chrom, n, tt.wantLength)
		}
	}
	if id, _ := g.NodeAtChromosomeOffset(2, 3); id != 4 {
		t.Errorf("NodeAtChromosomeOffset(2, 3) = %d, want 4", id)
	}
	for _, tt := range []struct {
		chrom  int
		offset uint64
	}{{1, 5}, {1, 7}, {2, 5}} {
		if id, err := g.NodeAtChromosomeOffset(tt.chrom, tt.offset); !errors.Is(err, errors.ErrCodeNodeOutOfRange) {
			t.Errorf("NodeAtChromosomeOffset(%d, %d) = %d, %v; want NODE_OUT_OF_RANGE", tt.chrom, tt.offset, id, err)
		}
	}
	for _, chrom := range []int{0, 3} {
		if _, err := g.ChromosomeOffset(chrom); !errors.Is(err, errors.ErrCodeChromosomeNotFound) {
			t.Errorf("ChromosomeOffset(%d) error = %v, want CHROMOSOME_NOT_FOUND", chrom, err)
		}
	}
}

func TestFlattenRoundTrip(t *testing.T) {
	g := nested(t)
	f := g.Flatten()

	if diff := cmp.Diff([]uint32{1, 1, 1, 2, 2, 3, 3, 4, 4, 5}, f.EdgeFrom); diff != "" {
		t.Errorf("EdgeFrom mismatch (-want +got):\n%s", diff)
	}
	back, err := FromFlat(f)
	if err != nil {
		t.Fatalf("FromFlat: %v", err)
	}
	if diff := cmp.Diff(f, back.Flatten()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFlatRejectsMismatchedArrays(t *testing.T) {
	tests := []struct {
		name string
		flat Flat
	}{
		{"sequences", Flat{NodeIDs: []uint32{1, 2}, Sequences: []string{"A"}}},
		{"sizes", Flat{NodeIDs: []uint32{1}, Sequences: []string{"A"}, Sizes: []uint32{2}}},
		{"edges", Flat{NodeIDs: []uint32{1}, Sequences: []string{"A"}, EdgeFrom: []uint32{1}}},
		{"unknown node", Flat{NodeIDs: []uint32{1}, Sequences: []string{"A"}, EdgeFrom: []uint32{1}, EdgeTo: []uint32{9}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromFlat(tt.flat); err == nil {
				t.Error("FromFlat succeeded, want error")
			}
		})
	}
}

func TestBundleRoundTrip(t *testing.T) {
	g := nested(t)
	if err := g.SetAlleleFrequencies([]float32{0, 1, 0.5, 0.2, 0.8, 1, 1}); err != nil {
		t.Fatalf("SetAlleleFrequencies: %v", err)
	}

	data, err := Marshal(g)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	back, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if diff := cmp.Diff(g.Flatten(), back.Flatten(), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("graph mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(g.toBundle(), back.toBundle(), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("arrays mismatch (-want +got):\n%s", diff)
	}
	if back.HasNumericSequences() {
		t.Error("numeric sequences appeared after round trip")
	}
	if af, _ := back.AlleleFrequency(3); af != 0.2 {
		t.Errorf("AlleleFrequency(3) = %v, want 0.2", af)
	}
}

func TestBundleRejectsGarbage(t *testing.T) {
	if _, err := Read(bytes.NewReader([]byte("not a bundle"))); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Read error = %v, want INVALID_FORMAT", err)
	}
}

func encodeBundle(t *testing.T, b bundle) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if err := msgpack.NewEncoder(zw).Encode(b); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestReadRejectsZeroLengthReference(t *testing.T) {
	data := encodeBundle(t, bundle{
		Version:          bundleVersion,
		NodeLengths:      []uint32{0, 2, 0},
		SequenceIndex:    []uint64{0, 0, 2},
		Sequences:        []byte("AC"),
		EdgeIndex:        []uint32{0, 0, 0},
		EdgeCount:        []uint32{0, 0, 0},
		NodeToRefOffset:  []uint64{0, 0, 0},
		RefOffsetToNode:  []uint32{2, 1, 1},
		ChromosomeStarts: []uint32{1},
	})
	if _, err := Read(bytes.NewReader(data)); !errors.Is(err, errors.ErrCodeMalformedNode) {
		t.Errorf("Read error = %v, want MALFORMED_NODE", err)
	}

	// A graph that slipped past the checks still terminates.
	g := &Graph{lengths: []uint32{0, 2, 0}, refOffsetToNode: []uint32{2, 1, 1}}
	if got := g.LinearReferencePath(); len(got) != 0 {
		t.Errorf("LinearReferencePath = %v, want empty", got)
	}
}

func TestSaveLoadFallback(t *testing.T) {
	dir := t.TempDir()
	g := nested(t)

	tests := []struct {
		name     string
		saveAs   string
		loadFrom string
	}{
		{"exact", "a.sg", "a.sg"},
		{"adds extension", "b.sg", "b"},
		{"drops extension", "c", "c.sg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Save(g, filepath.Join(dir, tt.saveAs)); err != nil {
				t.Fatalf("Save: %v", err)
			}
			back, err := Load(filepath.Join(dir, tt.loadFrom))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if back.NodeCount() != g.NodeCount() {
				t.Errorf("NodeCount = %d, want %d", back.NodeCount(), g.NodeCount())
			}
		})
	}

	if _, err := Load(filepath.Join(dir, "missing")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestSaveUnwritable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no", "such", "dir", "g.sg")
	if err := Save(nested(t), path); err == nil {
		t.Error("Save succeeded into a missing directory")
	}
	if _, err := os.Stat(path); err == nil {
		t.Error("file was created")
	}
}

func TestMerge(t *testing.T) {
	a := nested(t)
	b, err := FromMaps(map[uint32]string{1: "TT", 2: "C", 3: "A"},
		map[uint32][]uint32{1: {2, 3}}, []uint32{1, 3}, nil)
	if err != nil {
		t.Fatalf("FromMaps: %v", err)
	}

	g, err := Merge(a, b)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if g.MaxNodeID() != 9 {
		t.Errorf("MaxNodeID = %d, want 9", g.MaxNodeID())
	}
	if diff := cmp.Diff([]uint32{1, 7}, g.ChromosomeStarts()); diff != "" {
		t.Errorf("ChromosomeStarts mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]uint32{8, 9}, g.Edges(7)); diff != "" {
		t.Errorf("Edges(7) mismatch (-want +got):\n%s", diff)
	}
	if got := g.ReferenceSequence(); got != "ACTGATAAAGTTA" {
		t.Errorf("ReferenceSequence = %q", got)
	}
	if n, _ := g.ChromosomeLength(2); n != 3 {
		t.Errorf("ChromosomeLength(2) = %d, want 3", n)
	}

	if _, err := Merge(); err == nil {
		t.Error("Merge() succeeded with no input")
	}
}

func TestValidate(t *testing.T) {
	if err := nested(t).Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	cyclic, err := FromMaps(
		map[uint32]string{1: "A", 2: "C", 3: "G"},
		map[uint32][]uint32{1: {2}, 2: {3}, 3: {2}},
		[]uint32{1, 2, 3}, nil,
	)
	if err != nil {
		t.Fatalf("FromMaps: %v", err)
	}
	if err := cyclic.Validate(); !errors.Is(err, errors.ErrCodeCyclicGraph) {
		t.Errorf("Validate error = %v, want CYCLIC_GRAPH", err)
	}
}

func TestEdgesAreCopiesSafeToRead(t *testing.T) {
	g := nested(t)
	_ = append(g.Edges(1), 99)
	if slices.Contains(g.Edges(2), 99) {
		t.Error("append to Edges(1) leaked into Edges(2)")
	}
}
