package io

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/matzehuels/seqgraph/pkg/errors"
	"github.com/matzehuels/seqgraph/pkg/graph"
)

const maxGFALine = 1 << 30

// ReadGFA decodes a GFA 1 graph from r.
//
// H lines and record types other than S, L and P are ignored. ReadGFA
// returns an error if:
//   - a segment name is not a positive integer or is repeated
//   - a link or path names an unknown segment
//   - a link or path step uses reverse orientation, or a link has a
//     non-empty overlap (UNSUPPORTED)
//   - there is no P line
//
// Links keep their file order as edge order. ReadGFA does not close r.
func ReadGFA(r io.Reader) (*graph.Graph, error) {
	type link struct {
		from, to uint32
		line     int
	}

	m := graph.NewMutable()
	var (
		links     []link
		reference []uint32
		starts    []uint32
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxGFALine)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimRight(sc.Text(), "\r")
		if text == "" || text[0] == '#' {
			continue
		}
		fields := strings.Split(text, "\t")

		switch fields[0] {
		case "S":
			if len(fields) < 3 {
				return nil, gfaError(line, "S line needs a name and a sequence")
			}
			id, err := segmentID(fields[1], line)
			if err != nil {
				return nil, err
			}
			seq := fields[2]
			if seq == "*" {
				seq = ""
			}
			if err := errors.ValidateAllele(seq); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d: segment %d", line, id)
			}
			if err := m.AddNode(id, strings.ToUpper(seq)); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d", line)
			}

		case "L":
			if len(fields) < 6 {
				return nil, gfaError(line, "L line needs from, orientation, to, orientation and overlap")
			}
			if fields[2] != "+" || fields[4] != "+" {
				return nil, errors.New(errors.ErrCodeUnsupported, "line %d: only forward links are supported", line)
			}
			if o := fields[5]; o != "*" && o != "0M" {
				return nil, errors.New(errors.ErrCodeUnsupported, "line %d: overlap %q is not supported", line, o)
			}
			from, err := segmentID(fields[1], line)
			if err != nil {
				return nil, err
			}
			to, err := segmentID(fields[3], line)
			if err != nil {
				return nil, err
			}
			links = append(links, link{from, to, line})

		case "P":
			if len(fields) < 3 {
				return nil, gfaError(line, "P line needs a name and segments")
			}
			steps := strings.Split(fields[2], ",")
			for i, step := range steps {
				name, ok := strings.CutSuffix(step, "+")
				if !ok {
					return nil, errors.New(errors.ErrCodeUnsupported,
						"line %d: path %s step %q is not forward", line, fields[1], step)
				}
				id, err := segmentID(name, line)
				if err != nil {
					return nil, err
				}
				if i == 0 {
					starts = append(starts, id)
				}
				reference = append(reference, id)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	for _, l := range links {
		if !m.HasNode(l.from) || !m.HasNode(l.to) {
			return nil, gfaError(l.line, fmt.Sprintf("link %d->%d names an unknown segment", l.from, l.to))
		}
		m.AddEdge(l.from, l.to)
	}
	for _, id := range reference {
		if !m.HasNode(id) {
			return nil, gfaError(0, fmt.Sprintf("path names unknown segment %d", id))
		}
	}
	if len(reference) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "gfa has no path")
	}

	m.SetReference(reference)
	m.SetChromosomeStarts(starts)
	return m.Freeze()
}

// ImportGFA reads a GFA file at path.
func ImportGFA(path string) (*graph.Graph, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := ReadGFA(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// ReadJSON decodes a flat JSON graph written by [WriteJSON].
func ReadJSON(r io.Reader) (*graph.Graph, error) {
	var f graph.Flat
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode")
	}
	return graph.FromFlat(f)
}

// ImportJSON reads a flat JSON graph from path.
func ImportJSON(path string) (*graph.Graph, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

func open(path string) (*os.File, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

func segmentID(name string, line int) (uint32, error) {
	id, err := strconv.ParseUint(name, 10, 32)
	if err != nil || id == 0 {
		return 0, gfaError(line, fmt.Sprintf("segment name %q is not a positive integer", name))
	}
	return uint32(id), nil
}

func gfaError(line int, msg string) error {
	if line == 0 {
		return errors.New(errors.ErrCodeInvalidFormat, "%s", msg)
	}
	return errors.New(errors.ErrCodeInvalidFormat, "line %d: %s", line, msg)
}
