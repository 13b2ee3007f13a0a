package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/seqgraph/pkg/errors"
	"github.com/matzehuels/seqgraph/pkg/graph"
	"github.com/matzehuels/seqgraph/pkg/render"
)

// DefaultMaxNodes caps the graphs ToDOT accepts. Graphviz layout time grows
// quickly beyond a few thousand nodes.
const DefaultMaxNodes = 2000

// DefaultMaxLabel is the longest sequence shown in a label before it is
// abbreviated.
const DefaultMaxLabel = 12

// Options configures node-link diagram rendering.
type Options struct {
	// MaxNodes rejects larger graphs. Zero uses DefaultMaxNodes; negative
	// disables the check.
	MaxNodes int
	// MaxLabel abbreviates longer sequences. Zero uses DefaultMaxLabel.
	MaxLabel int
	// HideSequences labels nodes with their id only.
	HideSequences bool
}

// ToDOT converts a variation graph to Graphviz DOT, laid out left to right
// in reference order.
//
// Reference nodes and the edges between consecutive reference nodes are
// drawn bold. Zero-length dummy nodes are drawn as small dashed circles.
func ToDOT(g *graph.Graph, opts Options) (string, error) {
	maxNodes := opts.MaxNodes
	if maxNodes == 0 {
		maxNodes = DefaultMaxNodes
	}
	if maxNodes > 0 && g.NodeCount() > maxNodes {
		return "", errors.New(errors.ErrCodeInvalidInput,
			"graph has %d nodes, more than the %d node limit", g.NodeCount(), maxNodes)
	}
	maxLabel := opts.MaxLabel
	if maxLabel <= 0 {
		maxLabel = DefaultMaxLabel
	}

	refEdges := make(map[[2]uint32]bool)
	path := g.LinearReferencePath()
	for i := 1; i < len(path); i++ {
		refEdges[[2]uint32{path[i-1], path[i]}] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"monospace\", fontsize=14];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.25;\n")
	buf.WriteString("\n")

	for id := uint32(1); id <= g.MaxNodeID(); id++ {
		seq, _ := g.NodeSequence(id)
		fmt.Fprintf(&buf, "  %d [%s];\n", id, strings.Join(fmtAttrs(id, seq, g.IsReference(id), opts.HideSequences, maxLabel), ", "))
	}

	buf.WriteString("\n")
	for id := uint32(1); id <= g.MaxNodeID(); id++ {
		for _, to := range g.Edges(id) {
			if refEdges[[2]uint32{id, to}] {
				fmt.Fprintf(&buf, "  %d -> %d [penwidth=2];\n", id, to)
			} else {
				fmt.Fprintf(&buf, "  %d -> %d;\n", id, to)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func fmtLabel(id uint32, seq string, hide bool, maxLabel int) string {
	if hide {
		return strconv.FormatUint(uint64(id), 10)
	}
	if len(seq) > maxLabel {
		seq = seq[:maxLabel-1] + "…"
	}
	return fmt.Sprintf("%d\n%s", id, seq)
}

func fmtAttrs(id uint32, seq string, ref, hide bool, maxLabel int) []string {
	if seq == "" {
		return []string{
			fmt.Sprintf("label=%q", strconv.FormatUint(uint64(id), 10)),
			"shape=circle", "style=\"dashed,filled\"", "fillcolor=lightgrey", "fontsize=10",
		}
	}
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(id, seq, hide, maxLabel))}
	if ref {
		attrs = append(attrs, "penwidth=2", "fillcolor=\"#e8f0fe\"")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion at the given scale.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
