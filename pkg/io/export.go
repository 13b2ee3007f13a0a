package io

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/seqgraph/pkg/graph"
)

// WriteGFA encodes g as GFA 1. Zero-length nodes are written with a "*"
// sequence, and each chromosome becomes a P line named by its 1-based index.
// The output can be re-imported with [ReadGFA].
func WriteGFA(g *graph.Graph, w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "H\tVN:Z:1.0")

	for id := uint32(1); id <= g.MaxNodeID(); id++ {
		seq, _ := g.NodeSequence(id)
		if seq == "" {
			seq = "*"
		}
		fmt.Fprintf(bw, "S\t%d\t%s\n", id, seq)
	}
	for id := uint32(1); id <= g.MaxNodeID(); id++ {
		for _, to := range g.Edges(id) {
			fmt.Fprintf(bw, "L\t%d\t+\t%d\t+\t0M\n", id, to)
		}
	}
	for i, path := range chromosomePaths(g) {
		fmt.Fprintf(bw, "P\t%d\t", i+1)
		for j, id := range path {
			if j > 0 {
				bw.WriteByte(',')
			}
			fmt.Fprintf(bw, "%d+", id)
		}
		fmt.Fprintln(bw, "\t*")
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// ExportGFA writes g as GFA to path.
func ExportGFA(g *graph.Graph, path string) error {
	return create(path, func(w io.Writer) error { return WriteGFA(g, w) })
}

// WriteJSON encodes the flat form of g as indented JSON.
// This format can be re-imported with [ReadJSON].
func WriteJSON(g *graph.Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g.Flatten()); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes the flat JSON form of g to path.
func ExportJSON(g *graph.Graph, path string) error {
	return create(path, func(w io.Writer) error { return WriteJSON(g, w) })
}

// chromosomePaths splits the linear reference at the chromosome starts.
func chromosomePaths(g *graph.Graph) [][]uint32 {
	starts := make(map[uint32]bool)
	for _, id := range g.ChromosomeStarts() {
		starts[id] = true
	}
	var paths [][]uint32
	for _, id := range g.LinearReferencePath() {
		if starts[id] || len(paths) == 0 {
			paths = append(paths, nil)
		}
		paths[len(paths)-1] = append(paths[len(paths)-1], id)
	}
	return paths
}

func create(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}
