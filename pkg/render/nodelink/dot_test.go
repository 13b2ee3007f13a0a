package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/seqgraph/pkg/errors"
	"github.com/matzehuels/seqgraph/pkg/graph"
)

func testGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.FromMaps(
		map[uint32]string{1: "ACTG", 2: "AT", 3: "AAAGTTTTCCCCGGGG", 4: ""},
		map[uint32][]uint32{1: {2, 4}, 2: {3}, 4: {3}},
		[]uint32{1, 2, 3}, nil,
	)
	if err != nil {
		t.Fatalf("FromMaps: %v", err)
	}
	return g
}

func TestToDOT(t *testing.T) {
	dot, err := ToDOT(testGraph(t), Options{})
	if err != nil {
		t.Fatalf("ToDOT: %v", err)
	}

	for _, want := range []string{
		"digraph G {",
		`1 [label="1\nACTG", penwidth=2`,
		`3 [label="3\nAAAGTTTTCCC…"`,
		`4 [label="4", shape=circle, style="dashed,filled"`,
		"1 -> 2 [penwidth=2];",
		"1 -> 4;",
		"4 -> 3;",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOTHideSequences(t *testing.T) {
	dot, err := ToDOT(testGraph(t), Options{HideSequences: true})
	if err != nil {
		t.Fatalf("ToDOT: %v", err)
	}
	if strings.Contains(dot, "ACTG") {
		t.Errorf("sequence shown with HideSequences:\n%s", dot)
	}
}

func TestToDOTMaxNodes(t *testing.T) {
	_, err := ToDOT(testGraph(t), Options{MaxNodes: 3})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("ToDOT error = %v, want INVALID_INPUT", err)
	}
	if _, err := ToDOT(testGraph(t), Options{MaxNodes: -1}); err != nil {
		t.Errorf("ToDOT with no limit: %v", err)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.50 200.00" xmlns="x"><g/></svg>`)
	got := string(normalizeViewBox(in))
	if !strings.HasPrefix(got, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.50 200.00" width="100" height="200">`) {
		t.Errorf("normalizeViewBox = %s", got)
	}
}
