package io

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/grailbio/bio/encoding/fasta"
	"github.com/klauspost/compress/gzip"

	"github.com/matzehuels/seqgraph/pkg/errors"
)

// Reference is a set of named reference sequences in file order.
type Reference struct {
	names []string
	seqs  map[string]string
}

// ReadReference parses FASTA from r.
func ReadReference(r io.Reader) (*Reference, error) {
	fa, err := fasta.New(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse fasta")
	}

	ref := &Reference{seqs: make(map[string]string)}
	for _, name := range fa.SeqNames() {
		n, err := fa.Len(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		seq, err := fa.Get(name, 0, n)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		ref.names = append(ref.names, name)
		ref.seqs[name] = strings.ToUpper(seq)
	}
	if len(ref.names) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "fasta contains no sequences")
	}
	return ref, nil
}

// ImportReference reads a FASTA file, decompressing ".gz" paths.
func ImportReference(path string) (*Reference, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "reference %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "gzip %s", path)
		}
		defer zr.Close()
		r = zr
	}

	ref, err := ReadReference(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ref, nil
}

// Names returns the sequence names in file order.
func (r *Reference) Names() []string {
	return append([]string(nil), r.names...)
}

// Sequence returns the named sequence.
func (r *Reference) Sequence(name string) (string, error) {
	seq, ok := r.seqs[name]
	if !ok {
		return "", errors.New(errors.ErrCodeChromosomeNotFound, "sequence %q not in reference", name)
	}
	return seq, nil
}

// Chromosome resolves the chromosome to use. An empty name selects the
// only sequence of a single-sequence reference.
func (r *Reference) Chromosome(name string) (string, string, error) {
	if name == "" {
		if len(r.names) != 1 {
			return "", "", errors.New(errors.ErrCodeInvalidInput,
				"reference has %d sequences, name one of them", len(r.names))
		}
		name = r.names[0]
	}
	seq, err := r.Sequence(name)
	return name, seq, err
}
