package errors

import (
	"strings"
	"unicode"
)

// ValidatePath validates a file path given on the command line or in a config file.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateChromosome validates a contig name as it appears in a VCF CHROM
// column or a FASTA header.
func ValidateChromosome(name string) error {
	if name == "" {
		return New(ErrCodeInvalidChromosome, "chromosome name cannot be empty")
	}
	if len(name) > 256 {
		return New(ErrCodeInvalidChromosome, "chromosome name too long (max 256 characters)")
	}
	if strings.ContainsFunc(name, func(r rune) bool { return unicode.IsSpace(r) || unicode.IsControl(r) }) {
		return New(ErrCodeInvalidChromosome, "chromosome name contains whitespace: %q", name)
	}
	return nil
}

// ValidateAllele checks that an allele is made of IUPAC nucleotide letters.
// It does not judge biological plausibility.
func ValidateAllele(seq string) error {
	for i := 0; i < len(seq); i++ {
		switch seq[i] {
		case 'A', 'C', 'G', 'T', 'N', 'a', 'c', 'g', 't', 'n',
			'R', 'Y', 'S', 'W', 'K', 'M', 'B', 'D', 'H', 'V',
			'r', 'y', 's', 'w', 'k', 'm', 'b', 'd', 'h', 'v':
		default:
			return New(ErrCodeInvalidInput, "allele %q contains invalid base %q at %d", seq, seq[i], i)
		}
	}
	return nil
}
