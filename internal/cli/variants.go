package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/seqgraph/pkg/cache"
	"github.com/matzehuels/seqgraph/pkg/graph"
	"github.com/matzehuels/seqgraph/pkg/graph/transform"
	"github.com/matzehuels/seqgraph/pkg/variant"
	"github.com/matzehuels/seqgraph/pkg/varnodes"
)

// variantFlags selects the variants a graph command works on.
type variantFlags struct {
	vcf             string
	chromosome      int
	contig          string
	skipUnsupported bool
}

func (f *variantFlags) register(cmd *cobra.Command, required bool) {
	cmd.Flags().StringVar(&f.vcf, "vcf", "", "VCF of variants (.vcf, .vcf.gz)")
	cmd.Flags().IntVarP(&f.chromosome, "chromosome", "c", 1, "1-based graph chromosome the variants lie on")
	cmd.Flags().StringVar(&f.contig, "contig", "", "only read VCF records on this contig (default: all)")
	cmd.Flags().BoolVar(&f.skipUnsupported, "skip-unsupported", false, "drop MNPs and symbolic alleles instead of failing")
	if required {
		_ = cmd.MarkFlagRequired("vcf")
	}
}

func (c *CLI) loadVariants(f variantFlags) ([]variant.Variant, error) {
	vs, err := c.readVariants(f.vcf, f.contig, f.skipUnsupported)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("read variants", "path", f.vcf, "count", len(vs))
	return vs, nil
}

// =============================================================================
// add-dummy-nodes
// =============================================================================

func (c *CLI) dummyCommand() *cobra.Command {
	var (
		vf       variantFlags
		strategy string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "add-dummy-nodes <graph>",
		Short: "Add zero-length dummy nodes so every variant is addressable",
		Long: `Add zero-length dummy nodes to a graph built without them.

The structural strategy scans the topology for deletion and insertion bubbles
and needs no VCF. The variants strategy locates each variant's allele span and
needs --vcf.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := transform.ParseStrategy(strategy)
			if err != nil {
				return err
			}
			if s == transform.StrategyVariants && vf.vcf == "" {
				return fmt.Errorf("strategy %q needs --vcf", s)
			}
			if output == "" {
				output = args[0]
			}
			return c.runDummy(cmd.Context(), args[0], s, vf, output)
		},
	}

	vf.register(cmd, false)
	cmd.Flags().StringVar(&strategy, "strategy", string(transform.DefaultStrategy), "structural or variants")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output graph (default: overwrite input)")
	return cmd
}

func (c *CLI) runDummy(ctx context.Context, input string, s transform.Strategy, vf variantFlags, output string) error {
	p := newProgress(c.Logger)
	g, err := loadGraph(input)
	if err != nil {
		return err
	}

	var vs []variant.Variant
	if s == transform.StrategyVariants {
		if vs, err = c.loadVariants(vf); err != nil {
			return err
		}
	}

	out, stats, err := transform.Apply(g, s, vs, vf.chromosome)
	if err != nil {
		return err
	}
	if err := c.writeGraph(ctx, out, output, renderDefaults()); err != nil {
		return err
	}
	p.done("added dummy nodes", "strategy", s, "dummies", stats.DummiesAdded, "skipped", stats.Skipped)

	printSuccess(c.out, "Added %d dummy nodes", stats.DummiesAdded)
	printStats(c.out, graphStats{nodes: out.NodeCount(), edges: out.EdgeCount(), dummies: stats.DummiesAdded})
	if stats.Skipped > 0 {
		printWarning(c.out, "%d variants had no allele span in the graph", stats.Skipped)
	}
	printFile(c.out, output)
	return nil
}

// =============================================================================
// allele-frequencies
// =============================================================================

func (c *CLI) alleleFrequenciesCommand() *cobra.Command {
	var (
		vf      variantFlags
		workers int
		output  string
	)

	cmd := &cobra.Command{
		Use:   "allele-frequencies <graph>",
		Short: "Annotate graph nodes with allele frequencies from a VCF",
		Long: `Annotate each allele node with the INFO/AF value of its variant and lower
the reference node's frequency by the same amount. Nodes no variant touches
keep a frequency of 1.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("workers") {
				workers = c.config.Build.Workers
			}
			if output == "" {
				output = args[0]
			}
			return c.runAlleleFrequencies(cmd.Context(), args[0], vf, workers, output)
		},
	}

	vf.register(cmd, true)
	cmd.Flags().IntVarP(&workers, "workers", "j", 0, "parallel workers (default: number of CPUs)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output graph (default: overwrite input)")
	return cmd
}

func (c *CLI) runAlleleFrequencies(ctx context.Context, input string, vf variantFlags, workers int, output string) error {
	p := newProgress(c.Logger)
	g, err := loadGraph(input)
	if err != nil {
		return err
	}
	vs, err := c.loadVariants(vf)
	if err != nil {
		return err
	}

	stats, err := graph.AnnotateAlleleFrequencies(ctx, g, vs, vf.chromosome, workers)
	if err != nil {
		return err
	}
	if err := c.writeGraph(ctx, g, output, renderDefaults()); err != nil {
		return err
	}
	p.done("annotated allele frequencies", "resolved", stats.Resolved, "skipped", stats.Skipped)

	printSuccess(c.out, "Annotated %d variants", stats.Resolved)
	if stats.Skipped > 0 {
		printWarning(c.out, "%d variants were not found in the graph", stats.Skipped)
	}
	printFile(c.out, output)
	return nil
}

// =============================================================================
// variant-to-nodes
// =============================================================================

func (c *CLI) variantToNodesCommand() *cobra.Command {
	var (
		vf      variantFlags
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "variant-to-nodes <graph>",
		Short: "Resolve every VCF variant to its reference and allele node",
		Long: `Resolve every variant to the node pair (reference node, allele node) it
selects in the graph and save the table as a .vn file. Variants the graph
cannot place are recorded as 0/0.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runVariantToNodes(cmd.Context(), args[0], vf, noCache, outputPath(output, args[0], varnodes.Extension))
		},
	}

	vf.register(cmd, true)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output table (default: <graph>.vn)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	return cmd
}

func (c *CLI) runVariantToNodes(ctx context.Context, input string, vf variantFlags, noCache bool, output string) error {
	p := newProgress(c.Logger)
	resolved, err := graph.FindBundle(input, graph.Extension)
	if err != nil {
		return err
	}
	g, err := loadGraph(resolved)
	if err != nil {
		return err
	}
	vs, err := c.loadVariants(vf)
	if err != nil {
		return err
	}

	graphHash, err := cache.HashFile(resolved)
	if err != nil {
		return err
	}
	variantsHash, err := cache.HashFile(vf.vcf)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	t, hit, err := runner.VariantTable(ctx, g, graphHash, vs, variantsHash, vf.chromosome)
	if err != nil {
		return err
	}
	if err := t.Save(output); err != nil {
		return err
	}
	stats := t.Stats()
	p.done("resolved variants", "resolved", stats.Resolved, "skipped", stats.Skipped, "cached", hit)

	printSuccess(c.out, "Resolved %d of %d variants", stats.Resolved, t.Len())
	if stats.Skipped > 0 {
		printWarning(c.out, "%d variants were not found in the graph", stats.Skipped)
	}
	printFile(c.out, output)
	return nil
}
