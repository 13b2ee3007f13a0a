package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/seqgraph/pkg/construct"
	"github.com/matzehuels/seqgraph/pkg/graph"
	"github.com/matzehuels/seqgraph/pkg/graph/transform"
	"github.com/matzehuels/seqgraph/pkg/observability"
	"github.com/matzehuels/seqgraph/pkg/variant"
)

// Construct builds and freezes one graph per chromosome and merges them.
// GFA input is returned as loaded.
func Construct(ctx context.Context, in *Inputs, opts Options) (*graph.Graph, error) {
	if in.Graph != nil {
		return in.Graph, nil
	}

	var copts []construct.Option
	if opts.CheckReference {
		copts = append(copts, construct.WithReferenceCheck())
	}

	graphs := make([]*graph.Graph, 0, len(in.Chromosomes))
	for i, name := range in.Chromosomes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seq, err := in.Reference.Sequence(name)
		if err != nil {
			return nil, err
		}
		vs := in.Variants[i+1]

		start := time.Now()
		observability.Build().OnConstructStart(ctx, name, len(vs))
		g, err := constructOne(seq, vs, copts)
		if err != nil {
			err = fmt.Errorf("chromosome %s: %w", name, err)
			observability.Build().OnConstructComplete(ctx, name, 0, time.Since(start), err)
			return nil, err
		}
		observability.Build().OnConstructComplete(ctx, name, g.NodeCount(), time.Since(start), nil)
		opts.Logger.Debug("constructed chromosome",
			"chromosome", name,
			"variants", len(vs),
			"nodes", g.NodeCount(),
			"duration", time.Since(start))
		graphs = append(graphs, g)
	}

	if len(graphs) == 1 {
		return graphs[0], nil
	}
	return graph.Merge(graphs...)
}

func constructOne(seq string, vs []variant.Variant, copts []construct.Option) (*graph.Graph, error) {
	m, err := construct.Build(seq, vs, copts...)
	if err != nil {
		return nil, err
	}
	return m.Freeze()
}

// Disambiguate runs the dummy-node pass. The structural scan covers the
// whole graph at once; the variant-driven strategy runs per chromosome.
func Disambiguate(ctx context.Context, g *graph.Graph, in *Inputs, opts Options) (*graph.Graph, transform.Stats, error) {
	if opts.SkipsDummies() {
		return g, transform.Stats{}, nil
	}
	strategy, err := transform.ParseStrategy(opts.Strategy)
	if err != nil {
		return nil, transform.Stats{}, err
	}

	start := time.Now()
	var total transform.Stats
	switch strategy {
	case transform.StrategyStructural:
		g, total, err = transform.AddDummyNodes(g)
	case transform.StrategyVariants:
		for i := range in.Chromosomes {
			vs := in.Variants[i+1]
			if len(vs) == 0 {
				continue
			}
			var stats transform.Stats
			if g, stats, err = transform.AddDummyNodesForVariants(g, vs, i+1); err != nil {
				break
			}
			total.Add(stats)
		}
	}
	observability.Build().OnDisambiguate(ctx, string(strategy), total.DummiesAdded, time.Since(start), err)
	if err != nil {
		return nil, transform.Stats{}, err
	}
	return g, total, nil
}

// Annotate attaches allele frequencies from every chromosome's variants.
// Each chromosome is resolved separately; since a node belongs to exactly
// one chromosome and untouched nodes stay at 1, the per-chromosome results
// combine by multiplication.
func Annotate(ctx context.Context, g *graph.Graph, in *Inputs, opts Options) (graph.AnnotationStats, error) {
	var total graph.AnnotationStats
	combined := make([]float32, g.MaxNodeID()+1)
	for i := range combined {
		combined[i] = 1
	}

	for i := range in.Chromosomes {
		vs := in.Variants[i+1]
		if len(vs) == 0 {
			continue
		}
		stats, err := graph.AnnotateAlleleFrequencies(ctx, g, vs, i+1, opts.Workers)
		if err != nil {
			return graph.AnnotationStats{}, err
		}
		total.Resolved += stats.Resolved
		total.Skipped += stats.Skipped
		for id := uint32(1); id <= g.MaxNodeID(); id++ {
			f, _ := g.AlleleFrequency(id)
			combined[id] *= f
		}
	}
	return total, g.SetAlleleFrequencies(combined)
}
