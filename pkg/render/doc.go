// Package render turns variation graphs into pictures.
//
// The [nodelink] subpackage writes Graphviz DOT and renders it to SVG
// in-process. [ToPDF] and [ToPNG] convert any SVG using the external
// rsvg-convert tool (from librsvg):
//
//	dot, err := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//
// [nodelink]: github.com/matzehuels/seqgraph/pkg/render/nodelink
package render
