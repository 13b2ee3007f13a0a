// Package varnodes builds and persists the variant-to-node table: for every
// variant of a VCF, the reference-side node and the allele node it resolves
// to in a graph.
//
// Downstream tools index genotype or frequency matrices by these node ids,
// so the table is stored next to the graph bundle and loaded without
// re-resolving.
package varnodes

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/matzehuels/seqgraph/pkg/errors"
	"github.com/matzehuels/seqgraph/pkg/graph"
	"github.com/matzehuels/seqgraph/pkg/variant"
)

// Extension is the conventional file extension of a persisted table.
const Extension = ".vn"

// Table holds one (reference node, allele node) pair per variant. Entry i
// describes variant i; unresolved variants have 0 in both columns.
type Table struct {
	RefNodes []uint32 `json:"ref_nodes" msgpack:"ref_nodes"`
	VarNodes []uint32 `json:"var_nodes" msgpack:"var_nodes"`
}

// Stats counts how many variants resolved.
type Stats struct {
	Resolved int
	Skipped  int
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.RefNodes) }

// Lookup returns entry i and whether the variant resolved.
func (t *Table) Lookup(i int) (ref, alt uint32, ok bool) {
	if i < 0 || i >= len(t.RefNodes) {
		return 0, 0, false
	}
	return t.RefNodes[i], t.VarNodes[i], t.RefNodes[i] != 0
}

// Stats recounts resolved and skipped entries.
func (t *Table) Stats() Stats {
	var s Stats
	for _, id := range t.RefNodes {
		if id == 0 {
			s.Skipped++
		} else {
			s.Resolved++
		}
	}
	return s
}

// Build resolves every variant against g on the given 1-based chromosome.
// Variants that are not found are recorded as 0 and counted as skipped; any
// other resolution error aborts.
func Build(g *graph.Graph, variants []variant.Variant, chromosome int) (*Table, Stats, error) {
	t := &Table{
		RefNodes: make([]uint32, len(variants)),
		VarNodes: make([]uint32, len(variants)),
	}
	var stats Stats
	for i, v := range variants {
		ref, alt, err := g.ResolveVariantNodes(v, chromosome)
		if err != nil {
			if errors.IsRecoverable(err) {
				stats.Skipped++
				continue
			}
			return nil, stats, errors.Wrap(errors.GetCode(err), err, "variant %d", i)
		}
		t.RefNodes[i], t.VarNodes[i] = ref, alt
		stats.Resolved++
	}
	return t, stats, nil
}

// Write encodes t as zstd-compressed msgpack.
func (t *Table) Write(w io.Writer) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}
	if err := msgpack.NewEncoder(zw).Encode(t); err != nil {
		zw.Close()
		return fmt.Errorf("encode: %w", err)
	}
	return zw.Close()
}

// Read decodes a table written by [Table.Write].
func Read(r io.Reader) (*Table, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "zstd reader")
	}
	defer zr.Close()

	var t Table
	if err := msgpack.NewDecoder(zr).Decode(&t); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode")
	}
	if len(t.RefNodes) != len(t.VarNodes) {
		return nil, errors.New(errors.ErrCodeInvalidFormat,
			"%d reference nodes but %d allele nodes", len(t.RefNodes), len(t.VarNodes))
	}
	return &t, nil
}

// Marshal returns the encoded table.
func (t *Table) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := t.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes t to path.
func (t *Table) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := t.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// Load reads a table from path, falling back to the alternate extension.
func Load(path string) (*Table, error) {
	resolved, err := graph.FindBundle(path, Extension)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(resolved)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", resolved, err)
	}
	defer f.Close()

	t, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", resolved, err)
	}
	return t, nil
}
