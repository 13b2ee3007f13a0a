package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/matzehuels/seqgraph/pkg/graph"
	seqio "github.com/matzehuels/seqgraph/pkg/io"
	"github.com/matzehuels/seqgraph/pkg/render/nodelink"
)

// DefaultScale is the PNG scale factor.
const DefaultScale = 2.0

// RenderOptions configures [Render].
type RenderOptions struct {
	Nodelink nodelink.Options
	// Scale applies to PNG output. Zero uses DefaultScale.
	Scale float64
}

// Render encodes g in format. Diagram formats (dot, svg, png, pdf) go
// through the node-link renderer; the others are lossless encodings.
func Render(ctx context.Context, g *graph.Graph, format string, opts RenderOptions) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch format {
	case FormatSG:
		return graph.Marshal(g)
	case FormatGFA:
		if err := seqio.WriteGFA(g, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON:
		if err := seqio.WriteJSON(g, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	dot, err := nodelink.ToDOT(g, opts.Nodelink)
	if err != nil {
		return nil, err
	}
	var data []byte
	switch format {
	case FormatDOT:
		data = []byte(dot)
	case FormatSVG:
		data, err = nodelink.RenderSVG(ctx, dot)
	case FormatPNG:
		scale := opts.Scale
		if scale == 0 {
			scale = DefaultScale
		}
		data, err = nodelink.RenderPNG(ctx, dot, scale)
	case FormatPDF:
		data, err = nodelink.RenderPDF(ctx, dot)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return data, nil
}

// FormatFromPath infers an output format from a file extension. Unknown
// extensions give "".
func FormatFromPath(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ValidFormats[ext] {
		return ext
	}
	return ""
}
