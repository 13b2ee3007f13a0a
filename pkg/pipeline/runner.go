package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/matzehuels/seqgraph/pkg/cache"
	"github.com/matzehuels/seqgraph/pkg/graph"
	"github.com/matzehuels/seqgraph/pkg/observability"
	"github.com/matzehuels/seqgraph/pkg/variant"
	"github.com/matzehuels/seqgraph/pkg/varnodes"
)

// Runner executes the pipeline with caching.
//
// A Runner holds no per-run state, so one Runner may serve concurrent
// builds with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the entry lifetimes [cache.TTLGraph] and
	// [cache.TTLVariantTable] when positive.
	TTL time.Duration
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// uses the default keyer and a nil logger uses log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// cachedGraph is the cache value of a built graph.
type cachedGraph struct {
	Chromosomes []string `msgpack:"chromosomes"`
	Bundle      []byte   `msgpack:"bundle"`
}

// Build runs the pipeline, or returns the cached graph when the inputs and
// options match an earlier run.
func (r *Runner) Build(ctx context.Context, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	res := &Result{RunID: uuid.New()}
	logger := opts.Logger.With("run", res.RunID.String()[:8])
	opts.Logger = logger

	start := time.Now()
	refHash, varHash, err := HashInputs(opts)
	if err != nil {
		return nil, err
	}
	res.CacheInfo.Key = r.Keyer.GraphKey(opts.GraphKeyOpts(refHash, varHash))

	if !opts.Refresh {
		if g, chroms, ok := r.cachedGraph(ctx, res.CacheInfo.Key); ok {
			res.Graph, res.Chromosomes = g, chroms
			res.CacheInfo.GraphHit = true
			res.Stats.LoadTime = time.Since(start)
			r.finish(res)
			logger.Info("graph from cache", "nodes", res.Stats.NodeCount, "edges", res.Stats.EdgeCount)
			return res, nil
		}
	}

	in, err := Load(opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	res.Stats.LoadTime = time.Since(start)
	res.Stats.Variants = in.VariantCount()
	res.Stats.Skipped = in.Unplaced
	if in.Reference != nil {
		res.Chromosomes = in.Chromosomes
	}
	logger.Info("loaded inputs",
		"chromosomes", len(in.Chromosomes),
		"variants", res.Stats.Variants,
		"duration", res.Stats.LoadTime)

	start = time.Now()
	g, err := Construct(ctx, in, opts)
	if err != nil {
		return nil, fmt.Errorf("construct: %w", err)
	}
	res.Stats.ConstructTime = time.Since(start)
	logger.Info("constructed graph",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration", res.Stats.ConstructTime)

	start = time.Now()
	g, tstats, err := Disambiguate(ctx, g, in, opts)
	if err != nil {
		return nil, fmt.Errorf("add dummy nodes: %w", err)
	}
	res.Stats.TransformTime = time.Since(start)
	res.Stats.DummiesAdded = tstats.DummiesAdded
	if !opts.SkipsDummies() {
		logger.Info("added dummy nodes",
			"strategy", opts.Strategy,
			"dummies", tstats.DummiesAdded,
			"skipped", tstats.Skipped,
			"duration", res.Stats.TransformTime)
	}

	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	start = time.Now()
	if opts.AlleleFrequencies {
		astats, err := Annotate(ctx, g, in, opts)
		if err != nil {
			return nil, fmt.Errorf("allele frequencies: %w", err)
		}
		logger.Debug("annotated allele frequencies", "resolved", astats.Resolved, "skipped", astats.Skipped)
	}
	if opts.Numeric {
		if err := g.PrecomputeNumericSequences(ctx, opts.Workers); err != nil {
			return nil, fmt.Errorf("numeric sequences: %w", err)
		}
	}
	res.Stats.AnnotateTime = time.Since(start)

	res.Graph = g
	if bundle := r.finish(res); bundle != nil {
		r.storeGraph(ctx, res, bundle)
	}
	return res, nil
}

// VariantTable resolves variants against g, using the cache keyed by the
// graph hash. The bool reports a cache hit.
func (r *Runner) VariantTable(ctx context.Context, g *graph.Graph, graphHash string, variants []variant.Variant, variantsHash string, chromosome int) (*varnodes.Table, bool, error) {
	key := r.Keyer.VariantTableKey(graphHash, variantsHash, chromosome)
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		if t, err := varnodes.Read(bytes.NewReader(data)); err == nil && t.Len() == len(variants) {
			observability.Cache().OnCacheHit(ctx, "varnodes")
			return t, true, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "varnodes")

	t, stats, err := varnodes.Build(g, variants, chromosome)
	if err != nil {
		return nil, false, err
	}
	r.Logger.Debug("resolved variants", "resolved", stats.Resolved, "skipped", stats.Skipped)

	if data, err := t.Marshal(); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.ttl(cache.TTLVariantTable)); err != nil {
			r.Logger.Warn("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "varnodes", len(data))
		}
	}
	return t, false, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) cachedGraph(ctx context.Context, key string) (*graph.Graph, []string, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "graph")
		return nil, nil, false
	}
	var v cachedGraph
	if err := msgpack.Unmarshal(data, &v); err != nil {
		observability.Cache().OnCacheMiss(ctx, "graph")
		return nil, nil, false
	}
	g, err := graph.Unmarshal(v.Bundle)
	if err != nil {
		observability.Cache().OnCacheMiss(ctx, "graph")
		return nil, nil, false
	}
	observability.Cache().OnCacheHit(ctx, "graph")
	return g, v.Chromosomes, true
}

func (r *Runner) storeGraph(ctx context.Context, res *Result, bundle []byte) {
	data, err := msgpack.Marshal(&cachedGraph{Chromosomes: res.Chromosomes, Bundle: bundle})
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, res.CacheInfo.Key, data, r.ttl(cache.TTLGraph)); err != nil {
		r.Logger.Warn("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "graph", len(data))
}

// finish fills the size stats and the graph hash and returns the
// marshaled graph.
func (r *Runner) finish(res *Result) []byte {
	res.Stats.NodeCount = res.Graph.NodeCount()
	res.Stats.EdgeCount = res.Graph.EdgeCount()
	data, err := graph.Marshal(res.Graph)
	if err != nil {
		r.Logger.Warn("marshal graph", "err", err)
		return nil
	}
	res.GraphHash = cache.Hash(data)
	return data
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}
