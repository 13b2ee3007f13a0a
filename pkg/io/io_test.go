package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/gzip"

	"github.com/matzehuels/seqgraph/pkg/errors"
	"github.com/matzehuels/seqgraph/pkg/graph"
)

const testFasta = `>chr1
ACTGAT
aaag
>chr2
GGCC
`

func TestReadReference(t *testing.T) {
	ref, err := ReadReference(strings.NewReader(testFasta))
	if err != nil {
		t.Fatalf("ReadReference: %v", err)
	}
	if diff := cmp.Diff([]string{"chr1", "chr2"}, ref.Names()); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}
	if seq, _ := ref.Sequence("chr1"); seq != "ACTGATAAAG" {
		t.Errorf("Sequence(chr1) = %q, want ACTGATAAAG", seq)
	}
	if _, err := ref.Sequence("chrX"); !errors.Is(err, errors.ErrCodeChromosomeNotFound) {
		t.Errorf("Sequence(chrX) error = %v, want CHROMOSOME_NOT_FOUND", err)
	}
	if _, _, err := ref.Chromosome(""); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Chromosome(\"\") error = %v, want INVALID_INPUT", err)
	}
	if name, seq, err := ref.Chromosome("chr2"); err != nil || name != "chr2" || seq != "GGCC" {
		t.Errorf("Chromosome(chr2) = %q, %q, %v", name, seq, err)
	}
}

func TestImportReferenceGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ref.fa.gz")
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write([]byte(">only\nACGT\n"))
	zw.Close()
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	ref, err := ImportReference(path)
	if err != nil {
		t.Fatalf("ImportReference: %v", err)
	}
	if name, seq, err := ref.Chromosome(""); err != nil || name != "only" || seq != "ACGT" {
		t.Errorf("Chromosome(\"\") = %q, %q, %v", name, seq, err)
	}

	if _, err := ImportReference(filepath.Join(t.TempDir(), "missing.fa")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}
}

const testGFA = "H\tVN:Z:1.0\n" +
	"S\t1\tACTG\n" +
	"S\t2\tAT\n" +
	"S\t3\taaag\n" +
	"S\t4\t*\n" +
	"L\t1\t+\t2\t+\t0M\n" +
	"L\t1\t+\t4\t+\t*\n" +
	"L\t2\t+\t3\t+\t0M\n" +
	"L\t4\t+\t3\t+\t0M\n" +
	"P\tchr1\t1+,2+,3+\t*\n"

func TestReadGFA(t *testing.T) {
	g, err := ReadGFA(strings.NewReader(testGFA))
	if err != nil {
		t.Fatalf("ReadGFA: %v", err)
	}
	if got := g.ReferenceSequence(); got != "ACTGATAAAG" {
		t.Errorf("ReferenceSequence = %q, want ACTGATAAAG", got)
	}
	if diff := cmp.Diff([]uint32{2, 4}, g.Edges(1)); diff != "" {
		t.Errorf("Edges(1) mismatch (-want +got):\n%s", diff)
	}
	if n, _ := g.NodeLength(4); n != 0 {
		t.Errorf("NodeLength(4) = %d, want 0", n)
	}
}

func TestReadGFAMultiplePaths(t *testing.T) {
	in := "S\t1\tAC\nS\t2\tG\nS\t3\tTT\nL\t1\t+\t2\t+\t0M\nP\ta\t1+,2+\t*\nP\tb\t3+\t*\n"
	g, err := ReadGFA(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadGFA: %v", err)
	}
	if diff := cmp.Diff([]uint32{1, 3}, g.ChromosomeStarts()); diff != "" {
		t.Errorf("ChromosomeStarts mismatch (-want +got):\n%s", diff)
	}
}

func TestReadGFAErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code errors.Code
	}{
		{"NoPath", "S\t1\tA\n", errors.ErrCodeInvalidFormat},
		{"NamedSegment", "S\tx\tA\nP\tp\t1+\t*\n", errors.ErrCodeInvalidFormat},
		{"DuplicateSegment", "S\t1\tA\nS\t1\tC\nP\tp\t1+\t*\n", errors.ErrCodeInvalidFormat},
		{"UnknownLink", "S\t1\tA\nL\t1\t+\t9\t+\t0M\nP\tp\t1+\t*\n", errors.ErrCodeInvalidFormat},
		{"ReverseLink", "S\t1\tA\nS\t2\tC\nL\t1\t+\t2\t-\t0M\nP\tp\t1+\t*\n", errors.ErrCodeUnsupported},
		{"Overlap", "S\t1\tA\nS\t2\tC\nL\t1\t+\t2\t+\t3M\nP\tp\t1+\t*\n", errors.ErrCodeUnsupported},
		{"ReversePath", "S\t1\tA\nP\tp\t1-\t*\n", errors.ErrCodeUnsupported},
		{"BadBase", "S\t1\tAXG\nP\tp\t1+\t*\n", errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadGFA(strings.NewReader(tt.in))
			if !errors.Is(err, tt.code) {
				t.Errorf("ReadGFA error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestGFARoundTrip(t *testing.T) {
	g, err := graph.FromMaps(
		map[uint32]string{1: "ACGT", 2: "T", 3: "", 4: "GG", 5: "CCC"},
		map[uint32][]uint32{1: {2, 3}, 2: {4}, 3: {4}, 4: {5}},
		[]uint32{1, 2, 4, 5}, []uint32{1, 4},
	)
	if err != nil {
		t.Fatalf("FromMaps: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteGFA(g, &buf); err != nil {
		t.Fatalf("WriteGFA: %v", err)
	}
	if !strings.Contains(buf.String(), "S\t3\t*\n") {
		t.Errorf("zero-length segment not written as *:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "P\t2\t4+,5+\t*\n") {
		t.Errorf("second chromosome path missing:\n%s", buf.String())
	}

	back, err := ReadGFA(&buf)
	if err != nil {
		t.Fatalf("ReadGFA: %v", err)
	}
	if diff := cmp.Diff(g.Flatten(), back.Flatten()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	g, err := ReadGFA(strings.NewReader(testGFA))
	if err != nil {
		t.Fatalf("ReadGFA: %v", err)
	}

	path := filepath.Join(t.TempDir(), "g.json")
	if err := ExportJSON(g, path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	back, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if diff := cmp.Diff(g.Flatten(), back.Flatten()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	if _, err := ReadJSON(strings.NewReader("{")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("ReadJSON error = %v, want INVALID_FORMAT", err)
	}
}
