package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/seqgraph/pkg/errors"
	"github.com/matzehuels/seqgraph/pkg/graph"
	"github.com/matzehuels/seqgraph/pkg/variant"
)

// =============================================================================
// resolve
// =============================================================================

func (c *CLI) resolveCommand() *cobra.Command {
	var chromosome int

	cmd := &cobra.Command{
		Use:   "resolve <graph> <pos> <ref> <alt>",
		Short: "Find the reference and allele node of one variant",
		Long: `Find the node pair a variant selects. pos is the 1-based VCF position and
ref/alt follow the VCF convention: indels carry the padding base.

Prints "<ref-node> <alt-node>" to stdout.`,
		Example: `  seqgraph resolve chr21.sg 5030578 C T
  seqgraph resolve chr21.sg 5030600 CTT C`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "position %q", args[1])
			}
			v, err := variant.New(pos, args[2], args[3])
			if err != nil {
				return err
			}
			g, err := loadGraph(args[0])
			if err != nil {
				return err
			}
			ref, alt, err := g.ResolveVariantNodes(v, chromosome)
			if err != nil {
				return err
			}
			c.Logger.Debug("resolved", "variant", v, "kind", v.Kind(), "ref", ref, "alt", alt)
			fmt.Fprintf(c.out, "%d %d\n", ref, alt)
			return nil
		},
	}

	cmd.Flags().IntVarP(&chromosome, "chromosome", "c", 1, "1-based graph chromosome")
	return cmd
}

// =============================================================================
// info
// =============================================================================

func (c *CLI) infoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <graph>",
		Short: "Print graph statistics and check its invariants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGraph(args[0])
			if err != nil {
				return err
			}
			c.printInfo(args[0], g)
			if err := g.Validate(); err != nil {
				printError(c.out, "invalid graph: %s", errors.UserMessage(err))
				return err
			}
			printSuccess(c.out, "graph is valid")
			return nil
		},
	}
}

func (c *CLI) printInfo(path string, g *graph.Graph) {
	dummies := 0
	for id := uint32(1); id <= g.MaxNodeID(); id++ {
		if n, _ := g.NodeLength(id); n == 0 {
			dummies++
		}
	}

	printTitle(c.out, path)
	printKeyValue(c.out, "nodes", g.NodeCount())
	printKeyValue(c.out, "edges", g.EdgeCount())
	printKeyValue(c.out, "dummy nodes", dummies)
	printKeyValue(c.out, "reference", fmt.Sprintf("%d bp in %d nodes", g.ReferenceLength(), len(g.LinearReferencePath())))
	for i := 1; i <= g.ChromosomeCount(); i++ {
		n, _ := g.ChromosomeLength(i)
		printDetail(c.out, "chromosome %d: %d bp", i, n)
	}
	printKeyValue(c.out, "allele freqs", g.HasAlleleFrequencies())
	printKeyValue(c.out, "numeric", g.HasNumericSequences())
}
