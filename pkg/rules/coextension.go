package rules

import (
	"iter"

	"github.com/matzehuels/trigen/pkg/chord"
	"github.com/matzehuels/trigen/pkg/cycles"
	"github.com/matzehuels/trigen/pkg/errors"
	"github.com/matzehuels/trigen/pkg/graph"
)

// C1 subdivides the edge (a,b) added by the previous extension with a new
// vertex x and moves an edge (b,c) onto x. Both orientations of the edge are
// tried.
var C1 = &Rule{
	Name:     graph.AlgC1,
	Kind:     Coextension,
	Summary:  "subdivide the previous extension edge and move a neighbor edge onto it",
	generate: generateC1,
}

// C2 follows a c1 step: it subdivides an edge (a,d) at the pivot a of that
// step with a new vertex y and moves either (x,a) or another edge (f,a) onto
// y.
var C2 = &Rule{
	Name:     graph.AlgC2,
	Kind:     Coextension,
	Summary:  "repeat a c1 coextension around its pivot vertex",
	generate: generateC2,
}

// C3 follows two extensions whose edges (a,b) and (b,c) share exactly the
// vertex b, and coextends across both.
var C3 = &Rule{
	Name:     graph.AlgC3,
	Kind:     Coextension,
	Summary:  "coextend across two extension edges sharing one endpoint",
	generate: generateC3,
}

// coextension describes subdividing (a,b) with a new vertex x and moving
// the edge (c,b) onto x, or (c,a) when atA is set.
type coextension struct {
	alg     graph.Algorithm
	a, b, c int
	atA     bool
}

func (ce coextension) derive(parent *Candidate) (*Candidate, error) {
	x := parent.Graph.Size()
	pivot, del := ce.b, graph.DelEdge(ce.b, ce.c)
	if ce.atA {
		pivot, del = ce.a, graph.DelEdge(ce.c, ce.a)
	}
	t := graph.NewTransformation(ce.alg,
		graph.AddVertex(),
		graph.DelEdge(ce.a, ce.b),
		graph.AddEdge(ce.a, x),
		graph.AddEdge(ce.b, x),
		del,
		graph.AddEdge(ce.c, x),
	)
	return derive(parent, t, func(*graph.Graph) (*cycles.Set, error) {
		set, err := cycles.SubdivideEdge(parent.Cycles, ce.a, ce.b, x)
		if err != nil {
			return nil, err
		}
		return cycles.MoveEdge(set, ce.c, pivot, x)
	})
}

// lastCoextension recovers (a,b,c,x) from a trailing c1 step.
func lastCoextension(h graph.History) (a, b, c, x int, ok bool) {
	t, found := h.Last()
	if !found || t.Algorithm != graph.AlgC1 || len(t.Ops) != 6 {
		return 0, 0, 0, 0, false
	}
	want := []graph.OpKind{graph.OpAddVertex, graph.OpDelEdge, graph.OpAddEdge, graph.OpAddEdge, graph.OpDelEdge, graph.OpAddEdge}
	for n, k := range want {
		if t.Ops[n].Kind != k {
			return 0, 0, 0, 0, false
		}
	}
	return t.Ops[1].I, t.Ops[1].J, t.Ops[4].J, t.Ops[2].J, true
}

func generateC1(r *Rule, parent *Candidate) (iter.Seq2[*Candidate, error], error) {
	h := parent.Graph.History()
	p, q, ok := h.LastEdge(graph.AlgE1, graph.AlgE2)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvariantViolation, "c1: last step of %s history is not an extension", h.Root)
	}
	pg := parent.Graph
	return func(yield func(*Candidate, error) bool) {
		for _, ab := range [][2]int{{p, q}, {q, p}} {
			a, b := ab[0], ab[1]
			for _, c := range pg.Neighbors(b) {
				if c == a {
					continue
				}
				chorded, err := chord.AnyChordingPaths(pg, parent.Cycles,
					[][2]int{{a, c}, {a, b}},
					[][2]int{{a, b}, {b, c}},
					r.finder())
				if err != nil {
					yield(nil, err)
					return
				}
				if chorded {
					continue
				}
				child, err := coextension{alg: graph.AlgC1, a: a, b: b, c: c}.derive(parent)
				if !yield(child, err) || err != nil {
					return
				}
			}
		}
	}, nil
}

func generateC2(r *Rule, parent *Candidate) (iter.Seq2[*Candidate, error], error) {
	h := parent.Graph.History()
	a, b, c, x, ok := lastCoextension(h)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvariantViolation, "c2: last step of %s history is not c1", h.Root)
	}
	pg := parent.Graph
	f := r.finder()
	return func(yield func(*Candidate, error) bool) {
		emit := func(d, moved int) bool {
			child, err := coextension{alg: graph.AlgC2, a: a, b: d, c: moved, atA: true}.derive(parent)
			return yield(child, err) && err == nil
		}
		for _, d := range pg.Neighbors(a) {
			if d == b || d == c || d == x {
				continue
			}
			chorded, err := chord.AnyChordingPaths(pg, parent.Cycles,
				[][2]int{{d, x}, {a, d}},
				[][2]int{{a, d}, {a, x}},
				f)
			if err != nil {
				yield(nil, err)
				return
			}
			if !chorded && !emit(d, x) {
				return
			}
			for _, other := range pg.Neighbors(a) {
				if other == b || other == c || other == d || other == x {
					continue
				}
				chorded, err := chord.AnyChordingPaths(pg, parent.Cycles,
					[][2]int{{d, other}, {a, d}},
					[][2]int{{a, d}, {a, other}},
					f)
				if err != nil {
					yield(nil, err)
					return
				}
				if !chorded && !emit(d, other) {
					return
				}
			}
		}
	}, nil
}

func generateC3(r *Rule, parent *Candidate) (iter.Seq2[*Candidate, error], error) {
	h := parent.Graph.History()
	edges, ok := h.LastEdges(2, graph.AlgE1, graph.AlgE2)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvariantViolation, "c3: last two steps of %s history are not extensions", h.Root)
	}
	a, b, c, ok := sharedEndpoint(edges[0], edges[1])
	if !ok {
		return nil, errors.New(errors.ErrCodeInvariantViolation,
			"c3: extension edges %v and %v do not share exactly one endpoint", edges[0], edges[1])
	}
	pg := parent.Graph
	return func(yield func(*Candidate, error) bool) {
		chorded, err := chord.AnyChordingPaths(pg, parent.Cycles,
			[][2]int{{a, b}, {b, c}, {a, c}},
			[][2]int{{a, b}, {b, c}},
			r.finder())
		if err != nil {
			yield(nil, err)
			return
		}
		if chorded {
			return
		}
		yield(coextension{alg: graph.AlgC3, a: a, b: b, c: c}.derive(parent))
	}, nil
}

// sharedEndpoint returns (a,b,c) for edges (a,b) and (b,c) meeting in exactly
// one vertex b.
func sharedEndpoint(e1, e2 [2]int) (a, b, c int, ok bool) {
	for _, p := range e1 {
		for _, q := range e2 {
			if p != q {
				continue
			}
			a, c = other(e1, p), other(e2, p)
			if a == c {
				return 0, 0, 0, false
			}
			return a, p, c, true
		}
	}
	return 0, 0, 0, false
}

func other(e [2]int, v int) int {
	if e[0] == v {
		return e[1]
	}
	return e[0]
}
