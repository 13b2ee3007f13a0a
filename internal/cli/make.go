package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/seqgraph/pkg/graph"
	"github.com/matzehuels/seqgraph/pkg/pipeline"
)

// makeOpts holds the flags of the make command.
type makeOpts struct {
	reference         string
	variants          string
	gfa               string
	chromosomes       []string
	strategy          string
	alleleFrequencies bool
	numeric           bool
	checkReference    bool
	skipUnsupported   bool
	workers           int
	output            string
	noCache           bool
	refresh           bool
	pick              bool
}

func (c *CLI) makeCommand() *cobra.Command {
	var opts makeOpts

	cmd := &cobra.Command{
		Use:   "make",
		Short: "Build a variation graph from a reference and a VCF",
		Long: `Build a variation graph from a FASTA reference and an optional VCF, or import
one from GFA, then add dummy nodes and the requested annotations.

The output format follows the extension of --output: .sg (default), .gfa,
.json, .dot, .svg, .png or .pdf.`,
		Example: `  seqgraph make -r GRCh38.fa --vcf calls.vcf.gz --chromosome chr21 -o chr21.sg
  seqgraph make --gfa pangenome.gfa --strategy none -o pangenome.sg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMake(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.reference, "reference", "r", "", "FASTA reference (.fa, .fa.gz)")
	cmd.Flags().StringVar(&opts.variants, "vcf", "", "VCF of variants (.vcf, .vcf.gz)")
	cmd.Flags().StringVar(&opts.gfa, "gfa", "", "import a GFA graph instead of building one")
	cmd.Flags().StringSliceVarP(&opts.chromosomes, "chromosome", "c", nil, "reference sequence(s) to build (default: all)")
	cmd.Flags().StringVar(&opts.strategy, "strategy", pipeline.DefaultStrategy, "dummy-node strategy: structural, variants or none")
	cmd.Flags().BoolVar(&opts.alleleFrequencies, "allele-frequencies", false, "annotate nodes with INFO/AF allele frequencies")
	cmd.Flags().BoolVar(&opts.numeric, "numeric", false, "precompute numeric node sequences")
	cmd.Flags().BoolVar(&opts.checkReference, "check-reference", false, "fail when a REF allele disagrees with the reference")
	cmd.Flags().BoolVar(&opts.skipUnsupported, "skip-unsupported", false, "drop MNPs and symbolic alleles instead of failing")
	cmd.Flags().IntVarP(&opts.workers, "workers", "j", 0, "parallel workers (default: number of CPUs)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, - for stdout (default: <input>.sg)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "rebuild even when the cache holds the graph")
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "choose chromosomes interactively from the reference")
	cmd.MarkFlagsMutuallyExclusive("reference", "gfa")
	cmd.MarkFlagsMutuallyExclusive("chromosome", "pick")
	cmd.MarkFlagsOneRequired("reference", "gfa")

	return cmd
}

// pipelineOptions overlays the flags the user set on the [build] config.
func (c *CLI) pipelineOptions(cmd *cobra.Command, opts makeOpts) pipeline.Options {
	b := c.config.Build
	po := pipeline.Options{
		Reference:         opts.reference,
		Variants:          opts.variants,
		GFA:               opts.gfa,
		Chromosomes:       b.Chromosomes,
		Strategy:          b.Strategy,
		AlleleFrequencies: b.AlleleFrequencies,
		Numeric:           b.Numeric,
		CheckReference:    b.CheckReference,
		Workers:           b.Workers,
		SkipUnsupported:   opts.skipUnsupported,
		Refresh:           opts.refresh,
		Logger:            c.Logger,
	}

	flags := cmd.Flags()
	if flags.Changed("chromosome") || po.GFA != "" {
		po.Chromosomes = opts.chromosomes
	}
	if flags.Changed("strategy") || po.Strategy == "" {
		po.Strategy = opts.strategy
	}
	if flags.Changed("allele-frequencies") {
		po.AlleleFrequencies = opts.alleleFrequencies
	}
	if flags.Changed("numeric") {
		po.Numeric = opts.numeric
	}
	if flags.Changed("check-reference") {
		po.CheckReference = opts.checkReference
	}
	if flags.Changed("workers") {
		po.Workers = opts.workers
	}
	return po
}

func (c *CLI) runMake(ctx context.Context, cmd *cobra.Command, opts makeOpts) error {
	po := c.pipelineOptions(cmd, opts)
	if opts.pick {
		if opts.reference == "" {
			return fmt.Errorf("--pick needs --reference")
		}
		names, err := c.pickChromosomes(opts.reference)
		if err != nil {
			return err
		}
		po.Chromosomes = names
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	var res *pipeline.Result
	err = c.withSpinner(ctx, "Building graph...", func() error {
		var err error
		res, err = runner.Build(ctx, po)
		return err
	})
	if err != nil {
		return err
	}

	input := opts.reference
	if input == "" {
		input = opts.gfa
	}
	output := outputPath(opts.output, input, graph.Extension)
	if err := c.writeGraph(ctx, res.Graph, output, pipeline.RenderOptions{}); err != nil {
		return err
	}
	if output == stdout {
		return nil
	}

	printSuccess(c.out, "Built graph")
	printStats(c.out, graphStats{
		nodes:   res.Stats.NodeCount,
		edges:   res.Stats.EdgeCount,
		dummies: res.Stats.DummiesAdded,
		cached:  res.CacheInfo.GraphHit,
	})
	if res.Stats.Skipped > 0 {
		printWarning(c.out, "%d variants on chromosomes outside the graph were skipped", res.Stats.Skipped)
	}
	printFile(c.out, output)
	return nil
}
