package graph

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/matzehuels/seqgraph/pkg/errors"
)

// Extension is the conventional file extension of a persisted graph.
const Extension = ".sg"

// bundleVersion is bumped when a field changes meaning.
const bundleVersion = 1

// bundle is the named set of arrays written to disk.
type bundle struct {
	Version           int       `msgpack:"version"`
	NodeLengths       []uint32  `msgpack:"node_lengths"`
	SequenceIndex     []uint64  `msgpack:"sequence_index"`
	Sequences         []byte    `msgpack:"sequences"`
	EdgeIndex         []uint32  `msgpack:"edge_index"`
	EdgeCount         []uint32  `msgpack:"edge_count"`
	Edges             []uint32  `msgpack:"edges"`
	NodeToRefOffset   []uint64  `msgpack:"node_to_ref_offset"`
	RefOffsetToNode   []uint32  `msgpack:"ref_offset_to_node"`
	ChromosomeStarts  []uint32  `msgpack:"chromosome_start_nodes"`
	NumericSequences  []uint8   `msgpack:"numeric_sequences,omitempty"`
	AlleleFrequencies []float32 `msgpack:"allele_frequencies,omitempty"`
}

// =============================================================================
// Graph Serialization API
// =============================================================================

// Marshal encodes g into bundle bytes.
func Marshal(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes bundle bytes produced by [Marshal].
func Unmarshal(data []byte) (*Graph, error) {
	return Read(bytes.NewReader(data))
}

// Write encodes g as a zstd-compressed msgpack bundle. Output is
// byte-identical for equal graphs, so bundles can be content-hashed.
func Write(g *Graph, w io.Writer) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderConcurrency(1))
	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}
	if err := msgpack.NewEncoder(zw).Encode(g.toBundle()); err != nil {
		zw.Close()
		return fmt.Errorf("encode: %w", err)
	}
	return zw.Close()
}

// Read decodes a bundle written by [Write] and checks that the arrays are
// mutually consistent.
func Read(r io.Reader) (*Graph, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "zstd reader")
	}
	defer zr.Close()

	var b bundle
	if err := msgpack.NewDecoder(zr).Decode(&b); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode")
	}
	if b.Version != bundleVersion {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported bundle version %d", b.Version)
	}
	return fromBundle(b)
}

// Save writes g to path, creating or truncating it.
func Save(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(g, f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// Load reads a graph from path. If path does not exist, the alternate
// extension is tried (see [FindBundle]).
func Load(path string) (*Graph, error) {
	resolved, err := FindBundle(path, Extension)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(resolved)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", resolved, err)
	}
	defer f.Close()

	g, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", resolved, err)
	}
	return g, nil
}

// FindBundle returns path if it exists. Otherwise it tries path+ext, or path
// without ext when path already ends in ext.
func FindBundle(path, ext string) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	alt := path + ext
	if strings.HasSuffix(path, ext) {
		alt = strings.TrimSuffix(path, ext)
	}
	if alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt, nil
		}
	}
	return "", errors.New(errors.ErrCodeFileNotFound, "%s not found (also tried %s)", path, filepath.Base(alt))
}

// =============================================================================
// Internal Implementation
// =============================================================================

func (g *Graph) toBundle() bundle {
	return bundle{
		Version:           bundleVersion,
		NodeLengths:       g.lengths,
		SequenceIndex:     g.seqIndex,
		Sequences:         g.sequences,
		EdgeIndex:         g.edgeIndex,
		EdgeCount:         g.edgeCount,
		Edges:             g.edges,
		NodeToRefOffset:   g.nodeToRefOffset,
		RefOffsetToNode:   g.refOffsetToNode,
		ChromosomeStarts:  g.chromosomeStarts,
		NumericSequences:  g.numeric,
		AlleleFrequencies: g.alleleFreqs,
	}
}

func fromBundle(b bundle) (*Graph, error) {
	n := len(b.NodeLengths)
	for name, l := range map[string]int{
		"sequence_index":     len(b.SequenceIndex),
		"edge_index":         len(b.EdgeIndex),
		"edge_count":         len(b.EdgeCount),
		"node_to_ref_offset": len(b.NodeToRefOffset),
	} {
		if l != n {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "%s has %d entries, want %d", name, l, n)
		}
	}
	if b.NumericSequences != nil && len(b.NumericSequences) != len(b.Sequences) {
		return nil, errors.New(errors.ErrCodeInvalidFormat,
			"numeric_sequences has %d entries, want %d", len(b.NumericSequences), len(b.Sequences))
	}
	if b.AlleleFrequencies != nil && len(b.AlleleFrequencies) != n {
		return nil, errors.New(errors.ErrCodeInvalidFormat,
			"allele_frequencies has %d entries, want %d", len(b.AlleleFrequencies), n)
	}
	for id := 1; id < n; id++ {
		if b.SequenceIndex[id]+uint64(b.NodeLengths[id]) > uint64(len(b.Sequences)) {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "node %d sequence out of bounds", id)
		}
		if uint64(b.EdgeIndex[id])+uint64(b.EdgeCount[id]) > uint64(len(b.Edges)) {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "node %d edges out of bounds", id)
		}
	}
	for _, to := range b.Edges {
		if int(to) >= n || to == 0 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "edge target %d out of range", to)
		}
	}
	for off, id := range b.RefOffsetToNode {
		if int(id) >= n {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "reference node %d out of range", id)
		}
		if b.NodeLengths[id] == 0 {
			return nil, errors.New(errors.ErrCodeMalformedNode,
				"reference offset %d maps to zero-length node %d", off, id)
		}
	}
	for _, id := range b.ChromosomeStarts {
		if int(id) >= n {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "chromosome start node %d out of range", id)
		}
	}

	return &Graph{
		lengths:          b.NodeLengths,
		seqIndex:         b.SequenceIndex,
		sequences:        b.Sequences,
		edgeIndex:        b.EdgeIndex,
		edgeCount:        b.EdgeCount,
		edges:            b.Edges,
		nodeToRefOffset:  b.NodeToRefOffset,
		refOffsetToNode:  b.RefOffsetToNode,
		chromosomeStarts: b.ChromosomeStarts,
		numeric:          b.NumericSequences,
		alleleFreqs:      b.AlleleFrequencies,
	}, nil
}
