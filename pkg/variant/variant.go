// Package variant models the small variants (SNPs, insertions, deletions)
// that are embedded into a sequence-variation graph, and reads them from VCF.
//
// Positions follow VCF: [Variant.Position] is the 1-based POS column, and for
// insertions and deletions the first base of REF and ALT is the shared anchor
// base. The graph builder works on the 0-based boundary positions returned by
// [Variant.Before] and [Variant.After]:
//
//	SNP       POS=p REF=C  ALT=T    before=p-2  after=p       allele="T"
//	DELETION  POS=p REF=GAT ALT=G   before=p-1  after=p+1     allele=""
//	INSERTION POS=p REF=A  ALT=ACC  before=p-1  after=p       allele="CC"
//
// Before is the last reference base kept in front of the variant and After is
// the first reference base following it.
package variant

import (
	"fmt"
	"strings"

	"github.com/matzehuels/seqgraph/pkg/errors"
)

// Kind is the closed set of variant types a graph can represent.
type Kind uint8

const (
	// KindSNP is a single-base substitution.
	KindSNP Kind = iota + 1
	// KindInsertion adds bases after an anchor base.
	KindInsertion
	// KindDeletion removes bases after an anchor base.
	KindDeletion
)

var kindNames = map[Kind]string{
	KindSNP:       "SNP",
	KindInsertion: "INSERTION",
	KindDeletion:  "DELETION",
}

// String returns the upper-case name used in logs and JSON.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind is the inverse of [Kind.String]. Matching is case-insensitive.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(s, name) {
			return k, nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown variant kind %q", s)
}

// Variant is a single biallelic record.
type Variant struct {
	Chromosome      string  `json:"chromosome,omitempty"`
	Position        uint64  `json:"position"`
	Ref             string  `json:"ref"`
	Alt             string  `json:"alt"`
	ID              string  `json:"id,omitempty"`
	AlleleFrequency float32 `json:"allele_frequency,omitempty"`
}

// New creates a variant from 1-based POS and the REF/ALT columns and checks
// that it is one of the supported kinds.
func New(pos uint64, ref, alt string) (Variant, error) {
	v := Variant{Position: pos, Ref: ref, Alt: alt}
	if err := v.Validate(); err != nil {
		return Variant{}, err
	}
	return v, nil
}

// MustNew is like [New] but panics on invalid input. Intended for tests and
// literal tables.
func MustNew(pos uint64, ref, alt string) Variant {
	v, err := New(pos, ref, alt)
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks position, allele alphabet and that REF/ALT describe a SNP,
// a simple insertion or a simple deletion.
func (v Variant) Validate() error {
	if v.Position == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "variant %s: position must be 1-based", v)
	}
	if err := errors.ValidateAllele(v.Ref); err != nil {
		return err
	}
	if err := errors.ValidateAllele(v.Alt); err != nil {
		return err
	}
	if v.Ref == "" || v.Alt == "" {
		return errors.New(errors.ErrCodeMalformedNode, "variant %s: empty allele", v)
	}
	if v.Kind() == 0 {
		return errors.New(errors.ErrCodeUnsupported, "variant %s: only SNPs and anchored insertions/deletions are supported", v)
	}
	return nil
}

// Kind classifies the variant by its allele lengths. Multi-base
// substitutions and complex records return 0.
func (v Variant) Kind() Kind {
	switch {
	case len(v.Ref) == 1 && len(v.Alt) == 1:
		return KindSNP
	case len(v.Ref) == 1 && len(v.Alt) > 1:
		return KindInsertion
	case len(v.Ref) > 1 && len(v.Alt) == 1:
		return KindDeletion
	}
	return 0
}

// Before returns the 0-based reference position immediately before the
// variant's effect. It is -1 for a SNP on the first base.
func (v Variant) Before() int64 {
	switch v.Kind() {
	case KindSNP:
		return int64(v.Position) - 2
	case KindInsertion, KindDeletion:
		return int64(v.Position) - 1
	}
	return -1
}

// After returns the 0-based reference position immediately after the
// variant's effect.
func (v Variant) After() int64 {
	switch v.Kind() {
	case KindSNP, KindInsertion:
		return int64(v.Position)
	case KindDeletion:
		return int64(v.Position) - 1 + int64(len(v.Ref))
	}
	return -1
}

// Allele returns the sequence the graph stores in the allele node. Deletions
// have no allele node and return "".
func (v Variant) Allele() string {
	switch v.Kind() {
	case KindSNP:
		return v.Alt
	case KindInsertion:
		return v.Alt[1:]
	case KindDeletion:
		return ""
	}
	return ""
}

// Offset returns the 0-based reference offset of the first affected base:
// the substituted base, the first deleted base, or the base following an
// insertion.
func (v Variant) Offset() uint64 {
	switch v.Kind() {
	case KindSNP:
		return v.Position - 1
	default:
		return v.Position
	}
}

// DeletedLength returns the number of deleted reference bases.
func (v Variant) DeletedLength() uint64 {
	if v.Kind() != KindDeletion {
		return 0
	}
	return uint64(len(v.Ref) - 1)
}

// String formats the variant as CHROM:POS:REF>ALT.
func (v Variant) String() string {
	if v.Chromosome != "" {
		return fmt.Sprintf("%s:%d:%s>%s", v.Chromosome, v.Position, v.Ref, v.Alt)
	}
	return fmt.Sprintf("%d:%s>%s", v.Position, v.Ref, v.Alt)
}

// CheckSorted verifies variants are ordered by position within each
// chromosome and that chromosomes are contiguous.
func CheckSorted(variants []Variant) error {
	seen := make(map[string]bool)
	for i := 1; i < len(variants); i++ {
		prev, cur := variants[i-1], variants[i]
		if prev.Chromosome != cur.Chromosome {
			seen[prev.Chromosome] = true
			if seen[cur.Chromosome] {
				return errors.New(errors.ErrCodeUnsortedVariants,
					"variant %d (%s): chromosome %q appears after other chromosomes", i, cur, cur.Chromosome)
			}
			continue
		}
		if cur.Position < prev.Position {
			return errors.New(errors.ErrCodeUnsortedVariants,
				"variant %d (%s) precedes variant %d (%s)", i, cur, i-1, prev)
		}
	}
	return nil
}

// ByChromosome groups variants by chromosome, preserving order.
func ByChromosome(variants []Variant) map[string][]Variant {
	out := make(map[string][]Variant)
	for _, v := range variants {
		out[v.Chromosome] = append(out[v.Chromosome], v)
	}
	return out
}
