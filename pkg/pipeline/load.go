package pipeline

import (
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/matzehuels/seqgraph/pkg/cache"
	"github.com/matzehuels/seqgraph/pkg/errors"
	"github.com/matzehuels/seqgraph/pkg/graph"
	seqio "github.com/matzehuels/seqgraph/pkg/io"
	"github.com/matzehuels/seqgraph/pkg/variant"
)

// Inputs are the loaded pipeline inputs.
type Inputs struct {
	// Reference is set for FASTA input.
	Reference *seqio.Reference
	// Graph is set for GFA input.
	Graph *graph.Graph

	// Chromosomes lists the chromosomes to build, in output order. GFA
	// chromosomes are named by their 1-based index.
	Chromosomes []string

	// Variants holds the variants of each chromosome, keyed by 1-based
	// index into Chromosomes.
	Variants map[int][]variant.Variant

	// Unplaced counts variants on chromosomes that are not built.
	Unplaced int

	ReferenceHash string
	VariantsHash  string
}

// VariantCount returns the number of placed variants.
func (in *Inputs) VariantCount() int {
	n := 0
	for _, vs := range in.Variants {
		n += len(vs)
	}
	return n
}

// HashInputs hashes the input files named by opts without parsing them.
// The runner uses the hashes to look up the cache before loading.
func HashInputs(opts Options) (reference, variants string, err error) {
	src := opts.Reference
	if opts.GFA != "" {
		src = opts.GFA
	}
	if err := errors.ValidatePath(src); err != nil {
		return "", "", err
	}
	if reference, err = cache.HashFile(src); err != nil {
		return "", "", wrapOpen(src, err)
	}
	if opts.Variants != "" {
		if variants, err = cache.HashFile(opts.Variants); err != nil {
			return "", "", wrapOpen(opts.Variants, err)
		}
	}
	return reference, variants, nil
}

// Load reads the inputs named by opts. opts must have been validated.
func Load(opts Options) (*Inputs, error) {
	refHash, varHash, err := HashInputs(opts)
	if err != nil {
		return nil, err
	}
	in := &Inputs{ReferenceHash: refHash, VariantsHash: varHash}

	if opts.GFA != "" {
		if in.Graph, err = seqio.ImportGFA(opts.GFA); err != nil {
			return nil, err
		}
		for i := 1; i <= in.Graph.ChromosomeCount(); i++ {
			in.Chromosomes = append(in.Chromosomes, strconv.Itoa(i))
		}
		if len(opts.Chromosomes) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "chromosome selection is not supported for gfa input")
		}
	} else {
		if in.Reference, err = seqio.ImportReference(opts.Reference); err != nil {
			return nil, err
		}
		if in.Chromosomes, err = selectChromosomes(in.Reference, opts.Chromosomes); err != nil {
			return nil, err
		}
	}

	if opts.Variants == "" {
		return in, nil
	}
	vs, err := variant.OpenVCF(opts.Variants, variant.ReadOptions{
		SkipUnsupported: opts.SkipUnsupported,
		Skipped: func(v variant.Variant, err error) {
			opts.Logger.Debug("skipped variant", "variant", v, "reason", errors.UserMessage(err))
		},
	})
	if err != nil {
		return nil, err
	}
	in.Variants, in.Unplaced = placeVariants(in.Chromosomes, vs)
	if in.Unplaced > 0 {
		opts.Logger.Warn("variants on chromosomes not being built", "count", in.Unplaced)
	}
	return in, nil
}

// selectChromosomes validates the requested names against the reference.
// No request selects every reference sequence.
func selectChromosomes(ref *seqio.Reference, requested []string) ([]string, error) {
	if len(requested) == 0 {
		return ref.Names(), nil
	}
	seen := make(map[string]bool)
	for _, name := range requested {
		if err := errors.ValidateChromosome(name); err != nil {
			return nil, err
		}
		if _, err := ref.Sequence(name); err != nil {
			return nil, err
		}
		if seen[name] {
			return nil, errors.New(errors.ErrCodeInvalidInput, "chromosome %q requested twice", name)
		}
		seen[name] = true
	}
	return slices.Clone(requested), nil
}

// placeVariants groups variants by chromosome index. A single built
// chromosome accepts a VCF with a single contig of any name, since VCF and
// FASTA often disagree on "chr" prefixes.
func placeVariants(chromosomes []string, vs []variant.Variant) (map[int][]variant.Variant, int) {
	byName := variant.ByChromosome(vs)
	out := make(map[int][]variant.Variant)
	if len(chromosomes) == 1 && len(byName) == 1 {
		out[1] = vs
		return out, 0
	}

	index := make(map[string]int, len(chromosomes))
	for i, name := range chromosomes {
		index[name] = i + 1
	}
	unplaced := 0
	for name, group := range byName {
		i, ok := index[name]
		if !ok {
			unplaced += len(group)
			continue
		}
		out[i] = group
	}
	return out, unplaced
}

func wrapOpen(path string, err error) error {
	if os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	return fmt.Errorf("open %s: %w", path, err)
}
