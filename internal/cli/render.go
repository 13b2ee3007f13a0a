package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/seqgraph/pkg/graph"
	"github.com/matzehuels/seqgraph/pkg/pipeline"
	"github.com/matzehuels/seqgraph/pkg/render/nodelink"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	output        string
	format        string
	maxNodes      int
	maxLabel      int
	hideSequences bool
	scale         float64
}

func renderDefaults() pipeline.RenderOptions {
	return pipeline.RenderOptions{Scale: pipeline.DefaultScale}
}

func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{scale: pipeline.DefaultScale}

	cmd := &cobra.Command{
		Use:   "render <graph>",
		Short: "Export a graph as a diagram or in another format",
		Long: `Export a graph. Diagram formats (dot, svg, png, pdf) draw a left-to-right
node-link view with the reference path in bold and dummy nodes dashed; gfa and
json are lossless exports.

PNG and PDF output need rsvg-convert from librsvg.`,
		Example: `  seqgraph render sample.sg -o sample.svg
  seqgraph render sample.sg -f gfa -o -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, - for stdout (default: <graph>.<format>)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "sg, gfa, json, dot, svg (default), png or pdf")
	cmd.Flags().IntVar(&opts.maxNodes, "max-nodes", nodelink.DefaultMaxNodes, "refuse to draw larger graphs (-1: no limit)")
	cmd.Flags().IntVar(&opts.maxLabel, "max-label", nodelink.DefaultMaxLabel, "abbreviate longer node sequences")
	cmd.Flags().BoolVar(&opts.hideSequences, "hide-sequences", false, "label nodes with their id only")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	return cmd
}

// renderFormat picks the format from the flag, then the output extension,
// then svg.
func renderFormat(format, output string) (string, error) {
	if format == "" {
		format = pipeline.FormatFromPath(output)
	}
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		return "", err
	}
	if output != "" && output != stdout {
		if ext := pipeline.FormatFromPath(output); ext != "" && ext != format {
			return "", fmt.Errorf("format %s does not match output %s", format, output)
		}
	}
	return format, nil
}

func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	format, err := renderFormat(opts.format, opts.output)
	if err != nil {
		return err
	}
	output := outputPath(opts.output, input, "."+format)

	p := newProgress(c.Logger)
	g, err := loadGraph(input)
	if err != nil {
		return err
	}

	data, err := pipeline.Render(ctx, g, format, pipeline.RenderOptions{
		Nodelink: nodelink.Options{
			MaxNodes:      opts.maxNodes,
			MaxLabel:      opts.maxLabel,
			HideSequences: opts.hideSequences,
		},
		Scale: opts.scale,
	})
	if err != nil {
		return err
	}
	if err := c.writeOutput(output, data); err != nil {
		return err
	}
	p.done("rendered", "format", format, "bytes", len(data))

	if output != stdout {
		printSuccess(c.out, "Rendered %s", format)
		printFile(c.out, output)
	}
	return nil
}

// =============================================================================
// merge
// =============================================================================

func (c *CLI) mergeCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "merge <graph>...",
		Short: "Concatenate per-chromosome graphs into one",
		Long: `Concatenate graphs into one multi-chromosome graph. Node ids of each input
are shifted past those of the previous one, and each input's reference path
becomes one chromosome, in argument order.

Allele-frequency and numeric annotations are dropped; rerun them on the
merged graph.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			graphs := make([]*graph.Graph, 0, len(args))
			for _, path := range args {
				g, err := loadGraph(path)
				if err != nil {
					return err
				}
				graphs = append(graphs, g)
			}
			merged, err := graph.Merge(graphs...)
			if err != nil {
				return err
			}
			out := outputPath(output, "merged", graph.Extension)
			if err := c.writeGraph(cmd.Context(), merged, out, renderDefaults()); err != nil {
				return err
			}
			printSuccess(c.out, "Merged %d graphs into %d chromosomes", len(graphs), merged.ChromosomeCount())
			printStats(c.out, graphStats{nodes: merged.NodeCount(), edges: merged.EdgeCount()})
			printFile(c.out, out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output graph (default: merged.sg)")
	return cmd
}
