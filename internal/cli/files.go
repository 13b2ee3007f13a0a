package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/seqgraph/pkg/graph"
	seqio "github.com/matzehuels/seqgraph/pkg/io"
	"github.com/matzehuels/seqgraph/pkg/observability"
	"github.com/matzehuels/seqgraph/pkg/pipeline"
	"github.com/matzehuels/seqgraph/pkg/variant"
)

// stdout is the output path that writes to standard output.
const stdout = "-"

// loadGraph reads a graph in any importable format, picked by extension.
// Bundles fall back to the alternate ".sg" spelling.
func loadGraph(path string) (*graph.Graph, error) {
	switch pipeline.FormatFromPath(path) {
	case pipeline.FormatGFA:
		return seqio.ImportGFA(path)
	case pipeline.FormatJSON:
		return seqio.ImportJSON(path)
	}
	return graph.Load(path)
}

// outputPath returns output, or input with its extension replaced by ext
// when output is empty.
func outputPath(output, input, ext string) string {
	if output != "" {
		return output
	}
	base := filepath.Base(input)
	for _, e := range []string{".gz", ".bgz", graph.Extension, ".json", ".gfa", ".vcf", ".fasta", ".fa"} {
		base = strings.TrimSuffix(base, e)
	}
	return base + ext
}

// writeGraph encodes g in the format named by output's extension, ".sg"
// when it has none, and writes it to output or standard output.
func (c *CLI) writeGraph(ctx context.Context, g *graph.Graph, output string, opts pipeline.RenderOptions) error {
	format := pipeline.FormatFromPath(output)
	if format == "" {
		format = pipeline.FormatSG
	}
	start := time.Now()
	data, err := pipeline.Render(ctx, g, format, opts)
	if err == nil {
		err = c.writeOutput(output, data)
	}
	observability.Build().OnSave(ctx, output, len(data), time.Since(start), err)
	return err
}

// writeOutput writes data to output, or to standard output for "-".
func (c *CLI) writeOutput(output string, data []byte) error {
	if output == stdout {
		_, err := c.out.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	return nil
}

// readVariants reads a VCF, logging every record it drops.
func (c *CLI) readVariants(path, contig string, skipUnsupported bool) ([]variant.Variant, error) {
	return variant.OpenVCF(path, variant.ReadOptions{
		Chromosome:      contig,
		SkipUnsupported: skipUnsupported,
		Skipped: func(v variant.Variant, err error) {
			c.Logger.Debug("skipped record", "variant", v, "err", err)
		},
	})
}
