package cache

import "strconv"

// Key prefixes.
const (
	prefixGraph = "graph"
	prefixTable = "varnodes"
)

// GraphKeyOpts lists every input that changes a built graph.
type GraphKeyOpts struct {
	ReferenceHash     string   `json:"reference_hash"`
	VariantsHash      string   `json:"variants_hash,omitempty"`
	Chromosomes       []string `json:"chromosomes,omitempty"`
	Strategy          string   `json:"strategy,omitempty"`
	AlleleFrequencies bool     `json:"allele_frequencies,omitempty"`
	Numeric           bool     `json:"numeric,omitempty"`
	CheckReference    bool     `json:"check_reference,omitempty"`
	SkipUnsupported   bool     `json:"skip_unsupported,omitempty"`
}

// Keyer derives cache keys from build inputs.
type Keyer interface {
	// GraphKey identifies a built graph.
	GraphKey(opts GraphKeyOpts) string

	// VariantTableKey identifies the variant-to-node table of a graph.
	VariantTableKey(graphHash, variantsHash string, chromosome int) string
}

// DefaultKeyer hashes its inputs into "prefix:sha256" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// GraphKey implements [Keyer].
func (DefaultKeyer) GraphKey(opts GraphKeyOpts) string {
	return hashKey(prefixGraph, opts)
}

// VariantTableKey implements [Keyer].
func (DefaultKeyer) VariantTableKey(graphHash, variantsHash string, chromosome int) string {
	return hashKey(prefixTable, graphHash, variantsHash, strconv.Itoa(chromosome))
}
