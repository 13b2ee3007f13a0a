// Package pipeline builds variation graphs from input files.
//
// The same pipeline backs the CLI and the server, so both produce identical
// graphs for identical inputs and share one cache.
//
// # Stages
//
//  1. Load: read a FASTA reference and a VCF, or a GFA graph
//  2. Construct: build one graph per chromosome and freeze it
//  3. Disambiguate: add dummy nodes with the chosen strategy
//  4. Annotate: attach allele frequencies and numeric sequences
//  5. Merge: concatenate chromosomes into one graph
//
// The finished graph is cached under a key derived from the input file
// hashes and every option that changes the result.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Build(ctx, pipeline.Options{
//	    Reference: "ref.fa",
//	    Variants:  "calls.vcf.gz",
//	    Strategy:  "structural",
//	})
//	if err != nil {
//	    return err
//	}
//	err = graph.Save(res.Graph, "out.sg")
package pipeline

import (
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/seqgraph/pkg/cache"
	"github.com/matzehuels/seqgraph/pkg/graph"
	"github.com/matzehuels/seqgraph/pkg/graph/transform"
)

// StrategyNone skips the dummy-node pass.
const StrategyNone = "none"

// DefaultStrategy is the dummy-node strategy used when none is given.
const DefaultStrategy = string(transform.DefaultStrategy)

// Output formats understood by [Render].
const (
	FormatSG   = "sg"
	FormatGFA  = "gfa"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSG:   true,
	FormatGFA:  true,
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// Options configures one pipeline run. It carries json tags so the server
// can accept it as a request body.
type Options struct {
	// Inputs. Either Reference (with optional Variants) or GFA is required.
	Reference   string   `json:"reference,omitempty"`
	Variants    string   `json:"variants,omitempty"`
	GFA         string   `json:"gfa,omitempty"`
	Chromosomes []string `json:"chromosomes,omitempty"`

	// Construction
	CheckReference  bool `json:"check_reference,omitempty"`
	SkipUnsupported bool `json:"skip_unsupported,omitempty"`

	// Disambiguation: "structural", "variants" or "none".
	Strategy string `json:"strategy,omitempty"`

	// Annotation
	AlleleFrequencies bool `json:"allele_frequencies,omitempty"`
	Numeric           bool `json:"numeric,omitempty"`
	Workers           int  `json:"workers,omitempty"`

	// Refresh rebuilds even when the cache holds a result.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result is the output of [Runner.Build].
type Result struct {
	Graph *graph.Graph

	// GraphHash is the SHA-256 of the marshaled graph.
	GraphHash string

	// RunID identifies this run in logs.
	RunID uuid.UUID

	// Chromosomes names the graph's chromosomes in order. Empty for GFA
	// input, whose chromosomes are numbered only.
	Chromosomes []string

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats reports sizes and stage timings.
type Stats struct {
	NodeCount     int
	EdgeCount     int
	Variants      int
	Skipped       int
	DummiesAdded  int
	LoadTime      time.Duration
	ConstructTime time.Duration
	TransformTime time.Duration
	AnnotateTime  time.Duration
}

// CacheInfo records whether the graph came from the cache.
type CacheInfo struct {
	GraphHit bool
	Key      string
}

// ValidateFormat checks that format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: sg, gfa, json, dot, svg, png, pdf)", format)
	}
	return nil
}

// ValidateStrategy checks a dummy-node strategy name. Empty is allowed and
// means the default.
func ValidateStrategy(s string) error {
	if s == StrategyNone {
		return nil
	}
	_, err := transform.ParseStrategy(s)
	return err
}

// ValidateAndSetDefaults checks the inputs and fills defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	switch {
	case o.GFA != "" && o.Reference != "":
		return fmt.Errorf("reference and gfa are mutually exclusive")
	case o.GFA == "" && o.Reference == "":
		return fmt.Errorf("reference or gfa is required")
	}
	if o.Strategy == "" {
		o.Strategy = DefaultStrategy
	}
	if err := ValidateStrategy(o.Strategy); err != nil {
		return err
	}
	if o.Strategy == string(transform.StrategyVariants) && o.Variants == "" {
		return fmt.Errorf("strategy %q needs a variants file", o.Strategy)
	}
	if o.AlleleFrequencies && o.Variants == "" {
		return fmt.Errorf("allele frequencies need a variants file")
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// SkipsDummies reports whether the dummy-node pass is disabled.
func (o *Options) SkipsDummies() bool {
	return o.Strategy == StrategyNone
}

// GraphKeyOpts returns the cache key options for the hashed inputs.
// Workers and Logger do not affect the result and are left out.
func (o *Options) GraphKeyOpts(referenceHash, variantsHash string) cache.GraphKeyOpts {
	return cache.GraphKeyOpts{
		ReferenceHash:     referenceHash,
		VariantsHash:      variantsHash,
		Chromosomes:       o.Chromosomes,
		Strategy:          o.Strategy,
		AlleleFrequencies: o.AlleleFrequencies,
		Numeric:           o.Numeric,
		CheckReference:    o.CheckReference,
		SkipUnsupported:   o.SkipUnsupported,
	}
}
