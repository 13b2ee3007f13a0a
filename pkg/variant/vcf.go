package variant

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/biogo/hts/bgzf"
	"github.com/brentp/vcfgo"

	"github.com/matzehuels/seqgraph/pkg/errors"
)

// ReadOptions controls which VCF records [ReadVCF] keeps.
type ReadOptions struct {
	// Chromosome restricts reading to one contig. Empty keeps all.
	Chromosome string

	// SkipUnsupported drops records that are not SNPs or anchored indels
	// (MNPs, symbolic alleles, complex substitutions) instead of failing.
	SkipUnsupported bool

	// Skipped, if non-nil, is called for every dropped record.
	Skipped func(v Variant, err error)
}

// ReadVCF decodes all records from r. Multi-allelic rows are split into one
// [Variant] per ALT. The INFO field AF, when present, is copied into
// [Variant.AlleleFrequency] for the matching ALT.
//
// The returned variants are checked with [CheckSorted].
func ReadVCF(r io.Reader, opts ReadOptions) ([]Variant, error) {
	rdr, err := vcfgo.NewReader(r, false)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read VCF header")
	}

	var out []Variant
	for {
		rec := rdr.Read()
		if rec == nil {
			break
		}
		if opts.Chromosome != "" && rec.Chromosome != opts.Chromosome {
			continue
		}
		freqs := alleleFrequencies(rec, len(rec.Alternate))
		for i, alt := range rec.Alternate {
			v := Variant{
				Chromosome:      rec.Chromosome,
				Position:        rec.Pos,
				Ref:             strings.ToUpper(rec.Reference),
				Alt:             strings.ToUpper(alt),
				ID:              rec.Id(),
				AlleleFrequency: freqs[i],
			}
			if err := v.Validate(); err != nil {
				if opts.SkipUnsupported {
					if opts.Skipped != nil {
						opts.Skipped(v, err)
					}
					continue
				}
				return nil, fmt.Errorf("line %d: %w", rec.LineNumber, err)
			}
			out = append(out, v)
		}
	}

	if err := CheckSorted(out); err != nil {
		return nil, err
	}
	return out, nil
}

// OpenVCF reads a plain or bgzip-compressed (".gz", ".bgz") VCF file.
func OpenVCF(path string, opts ReadOptions) ([]Variant, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") || strings.HasSuffix(path, ".bgz") {
		if ok, err := bgzf.HasEOF(f); err != nil || !ok {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "%s: not a bgzip file or truncated", path)
		}
		bz, err := bgzf.NewReader(f, 0)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "open bgzf %s", path)
		}
		defer bz.Close()
		r = bz
	}

	variants, err := ReadVCF(r, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return variants, nil
}

// alleleFrequencies returns one AF value per ALT, zero when the INFO field is
// missing or malformed.
func alleleFrequencies(rec *vcfgo.Variant, n int) []float32 {
	out := make([]float32, n)
	raw, err := rec.Info().Get("AF")
	if err != nil || raw == nil {
		return out
	}
	var vals []float32
	switch af := raw.(type) {
	case float32:
		vals = []float32{af}
	case float64:
		vals = []float32{float32(af)}
	case []float32:
		vals = af
	case []float64:
		for _, f := range af {
			vals = append(vals, float32(f))
		}
	case []interface{}:
		for _, x := range af {
			vals = append(vals, toFloat32(x))
		}
	case string:
		for _, s := range strings.Split(af, ",") {
			f, _ := strconv.ParseFloat(s, 32)
			vals = append(vals, float32(f))
		}
	}
	copy(out, vals)
	return out
}

func toFloat32(x interface{}) float32 {
	switch v := x.(type) {
	case float32:
		return v
	case float64:
		return float32(v)
	case int:
		return float32(v)
	case string:
		f, _ := strconv.ParseFloat(v, 32)
		return float32(f)
	}
	return 0
}
