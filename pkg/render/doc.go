// Package render draws generated graphs for debugging.
//
// # Overview
//
// Graphs are converted to Graphviz DOT source with [ToDOT] and rendered
// in-process to SVG with [RenderSVG]. Vertices appear as circles labeled by
// id; the edges touched by the most recent transformation are drawn bold,
// and an optional cycle is highlighted.
//
//	dot := render.ToDOT(g, render.Options{Highlight: &c})
//	svg, err := render.RenderSVG(ctx, dot)
//
// # Options
//
//   - Layout: Graphviz engine ("circo" by default, or "neato", "dot", ...)
//   - Detailed: adds the root tag and history length as a graph label
//   - Highlight: a cycle to draw in color
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for SVG rendering, so no
// Graphviz installation is required.
package render
