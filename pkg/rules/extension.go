package rules

import (
	"iter"

	"github.com/matzehuels/trigen/pkg/cycles"
	"github.com/matzehuels/trigen/pkg/errors"
	"github.com/matzehuels/trigen/pkg/graph"
)

// E1 adds an edge between every pair of non-adjacent vertices.
var E1 = &Rule{
	Name:     graph.AlgE1,
	Kind:     Extension,
	Summary:  "add an edge between two non-adjacent vertices",
	generate: generateE1,
}

// E2 connects a third vertex k to one or both endpoints of the edge added
// by the previous extension, adding every missing edge (k,i), (k,j).
var E2 = &Rule{
	Name:     graph.AlgE2,
	Kind:     Extension,
	Summary:  "connect a third vertex to the previous extension edge",
	generate: generateE2,
}

func generateE1(_ *Rule, parent *Candidate) (iter.Seq2[*Candidate, error], error) {
	return func(yield func(*Candidate, error) bool) {
		for _, e := range parent.Graph.NonEdges() {
			i, j := e[0], e[1]
			t := graph.NewTransformation(graph.AlgE1, graph.AddEdge(i, j))
			child, err := derive(parent, t, func(g *graph.Graph) (*cycles.Set, error) {
				return cycles.AddEdge(parent.Cycles, i, j, g.HasEdge)
			})
			if !yield(child, err) || err != nil {
				return
			}
		}
	}, nil
}

func generateE2(_ *Rule, parent *Candidate) (iter.Seq2[*Candidate, error], error) {
	h := parent.Graph.History()
	i, j, ok := h.LastEdge(graph.AlgE1, graph.AlgE2)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvariantViolation, "e2: last step of %s history is not an extension", h.Root)
	}
	pg := parent.Graph
	return func(yield func(*Candidate, error) bool) {
		for k := 0; k < pg.Size(); k++ {
			if k == i || k == j {
				continue
			}
			var added [][2]int
			for _, end := range []int{i, j} {
				if !pg.HasEdge(k, end) {
					added = append(added, [2]int{k, end})
				}
			}
			if len(added) == 0 {
				continue
			}
			ops := make([]graph.Op, len(added))
			for n, e := range added {
				ops[n] = graph.AddEdge(e[0], e[1])
			}
			t := graph.NewTransformation(graph.AlgE2, ops...)
			child, err := derive(parent, t, func(*graph.Graph) (*cycles.Set, error) {
				set := parent.Cycles
				for n, e := range added {
					var err error
					if set, err = cycles.AddEdge(set, e[0], e[1], plus(pg, added[:n+1]...)); err != nil {
						return nil, err
					}
				}
				return set, nil
			})
			if !yield(child, err) || err != nil {
				return
			}
		}
	}, nil
}
