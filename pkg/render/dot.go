package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/trigen/pkg/cycles"
	"github.com/matzehuels/trigen/pkg/graph"
)

// DefaultLayout spreads vertices on circles, which suits small 3-connected
// graphs.
const DefaultLayout = "circo"

// Options configures DOT generation.
type Options struct {
	// Layout names the Graphviz engine. Empty means DefaultLayout.
	Layout string

	// Detailed adds the root tag and history length as a graph label.
	Detailed bool

	// Highlight is a cycle drawn in color. Nil draws none.
	Highlight *cycles.Cycle
}

// ToDOT converts g to Graphviz DOT source.
func ToDOT(g *graph.Graph, opts Options) string {
	layout := opts.Layout
	if layout == "" {
		layout = DefaultLayout
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	fmt.Fprintf(&buf, "  layout=%q;\n", layout)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=14, width=0.4, fixedsize=true];\n")
	if opts.Detailed {
		h := g.History()
		fmt.Fprintf(&buf, "  label=%q;\n", fmt.Sprintf("%s, %d steps, n=%d m=%d", h.Root, h.Len(), g.Size(), g.EdgeCount()))
	}
	buf.WriteString("\n")

	fresh := lastTouched(g)
	onCycle := func(i, j int) bool { return opts.Highlight != nil && opts.Highlight.Adjacent(i, j) }

	for v := range g.Size() {
		attrs := []string{fmt.Sprintf("label=%q", strconv.Itoa(v))}
		if opts.Highlight != nil && opts.Highlight.Contains(v) {
			attrs = append(attrs, "fillcolor=lightblue")
		}
		fmt.Fprintf(&buf, "  %d [%s];\n", v, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		var attrs []string
		if fresh[e] {
			attrs = append(attrs, "penwidth=3")
		}
		if onCycle(e[0], e[1]) {
			attrs = append(attrs, "color=blue")
		}
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %d -- %d;\n", e[0], e[1])
			continue
		}
		fmt.Fprintf(&buf, "  %d -- %d [%s];\n", e[0], e[1], strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// lastTouched returns the edges added by the latest transformation, keyed
// in the orientation used by graph.Edges.
func lastTouched(g *graph.Graph) map[[2]int]bool {
	out := map[[2]int]bool{}
	t, ok := g.History().Last()
	if !ok {
		return out
	}
	for _, op := range t.Ops {
		if op.Kind != graph.OpAddEdge || !g.HasEdge(op.I, op.J) {
			continue
		}
		out[[2]int{max(op.I, op.J), min(op.I, op.J)}] = true
	}
	return out
}

// RenderSVG renders DOT source to SVG using Graphviz.
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

// normalizeViewBox replaces the root svg tag so the drawing scales from the
// origin.
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

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
