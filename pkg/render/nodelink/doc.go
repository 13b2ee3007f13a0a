// Package nodelink renders variation graphs as node-link diagrams.
//
// # Usage
//
// Convert a graph to DOT, then render to SVG:
//
//	dot, err := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)
//
// # Drawing
//
// Nodes are boxes labelled with their id and sequence, laid out left to
// right. The linear reference is drawn bold, and zero-length dummy nodes are
// small dashed circles so skip paths stand out. Graphs above
// [Options.MaxNodes] are rejected rather than handed to Graphviz.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
