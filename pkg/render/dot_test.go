package render

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/trigen/pkg/cycles"
	"github.com/matzehuels/trigen/pkg/graph"
)

func triangle(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.FromEdges(3, "K3", [][2]int{{0, 1}, {1, 2}, {2, 0}})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(triangle(t), Options{})
	for _, want := range []string{
		"graph G {",
		`layout="circo";`,
		`0 [label="0"];`,
		"1 -- 0;",
		"2 -- 1;",
		"2 -- 0;",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "label=\"K3") {
		t.Error("undetailed DOT has a graph label")
	}
}

func TestToDOTOptions(t *testing.T) {
	g := triangle(t)
	g, err := graph.Apply(g, graph.NewTransformation(graph.AlgManual,
		graph.AddVertex(), graph.AddEdge(3, 0), graph.AddEdge(3, 1)))
	if err != nil {
		t.Fatal(err)
	}
	c := cycles.MustNew(0, 1, 3)
	dot := ToDOT(g, Options{Layout: "neato", Detailed: true, Highlight: &c})

	for _, want := range []string{
		`layout="neato";`,
		`label="K3, 1 steps, n=4 m=5";`,
		`3 [label="3", fillcolor=lightblue];`,
		"3 -- 0 [penwidth=3, color=blue];",
		"3 -- 1 [penwidth=3, color=blue];",
		"1 -- 0 [color=blue];",
		"2 -- 0;",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="116pt" viewBox="0.00 0.00 62.00 116.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := normalizeViewBox(in)
	if !bytes.Contains(out, []byte(`viewBox="0 0 62.00 116.00" width="62" height="116"`)) {
		t.Errorf("normalizeViewBox = %s", out)
	}
	plain := []byte(`<svg><g/></svg>`)
	if !bytes.Equal(normalizeViewBox(plain), plain) {
		t.Error("svg without viewBox was changed")
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(triangle(t), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Errorf("output is not SVG: %.80s", svg)
	}
}
