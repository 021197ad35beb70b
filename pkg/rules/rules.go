// Package rules implements the extension and coextension rules that grow a
// minimally 3-connected graph into its children.
//
// Each [Rule] consumes a parent [Candidate] (a graph plus its complete cycle
// set) and lazily yields child candidates. The edit applied to the graph is
// recorded as one [graph.Transformation] tagged with the rule name, and the
// child's cycle set is derived from the parent's with the cycle algebra
// operators rather than recomputed.
//
// # Rules
//
//   - e1: add one edge between non-adjacent vertices
//   - e2: after an extension, connect a third vertex to the previous edge
//   - c1: after an extension, subdivide the new edge and move one edge onto
//     the new vertex
//   - c2: after c1, repeat the coextension around the vertex c1 pivoted on
//   - c3: after two extensions sharing an endpoint, coextend across both
//
// Rules that depend on earlier steps check the parent history first. A
// history that does not fit is an INVARIANT_VIOLATION returned before
// iteration starts.
//
// # Usage
//
//	rule := rules.Find("e1")
//	children, err := rule.Apply(rules.Seed(root))
//	if err != nil {
//	    return err
//	}
//	for child, err := range children {
//	    if err != nil {
//	        return err
//	    }
//	    // admit child
//	}
package rules

import (
	"iter"

	"github.com/matzehuels/trigen/pkg/cycles"
	"github.com/matzehuels/trigen/pkg/errors"
	"github.com/matzehuels/trigen/pkg/graph"
	"github.com/matzehuels/trigen/pkg/paths"
)

// Candidate is a graph together with its complete set of elementary cycles.
type Candidate struct {
	Graph  *graph.Graph
	Cycles *cycles.Set
}

// Seed wraps a root graph, enumerating its cycles from scratch.
func Seed(g *graph.Graph) *Candidate {
	return &Candidate{Graph: g, Cycles: cycles.Find(g)}
}

// Kind separates rules that only add edges from those that add a vertex.
type Kind int

const (
	Extension Kind = iota
	Coextension
)

// Rule describes one generation rule.
type Rule struct {
	Name    graph.Algorithm
	Kind    Kind
	Summary string

	// Finder is the path oracle used by the chording checks. Nil means
	// paths.DFS{}.
	Finder paths.Finder

	generate func(r *Rule, parent *Candidate) (iter.Seq2[*Candidate, error], error)
}

// Apply returns the children of parent. Precondition failures are returned
// directly; failures while building a child are yielded and end iteration.
func (r *Rule) Apply(parent *Candidate) (iter.Seq2[*Candidate, error], error) {
	if parent == nil || parent.Graph == nil || parent.Cycles == nil {
		return nil, errors.New(errors.ErrCodeInvariantViolation, "%s: parent has no graph or cycle set", r.Name)
	}
	return r.generate(r, parent)
}

// WithFinder returns a copy of r that uses f for chording checks.
func (r *Rule) WithFinder(f paths.Finder) *Rule {
	out := *r
	out.Finder = f
	return &out
}

func (r *Rule) finder() paths.Finder {
	if r.Finder == nil {
		return paths.DFS{}
	}
	return r.Finder
}

// All lists the rules in their canonical order.
var All = []*Rule{E1, E2, C1, C2, C3}

// Find returns the rule with the given name, or nil.
func Find(name string) *Rule {
	for _, r := range All {
		if string(r.Name) == name {
			return r
		}
	}
	return nil
}

// Names returns the rule names in canonical order.
func Names() []string {
	out := make([]string, len(All))
	for i, r := range All {
		out[i] = string(r.Name)
	}
	return out
}

// derive applies t to the parent graph and runs step over the parent's
// cycle set to produce the child.
func derive(parent *Candidate, t graph.Transformation, step func(*graph.Graph) (*cycles.Set, error)) (*Candidate, error) {
	g, err := graph.Apply(parent.Graph, t)
	if err != nil {
		return nil, err
	}
	set, err := step(g)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "%s cycles", t.Algorithm)
	}
	return &Candidate{Graph: g, Cycles: set}, nil
}

// plus returns an adjacency test for g with extra edges added.
func plus(g *graph.Graph, extra ...[2]int) cycles.Connected {
	return func(u, v int) bool {
		if g.HasEdge(u, v) {
			return true
		}
		for _, e := range extra {
			if (e[0] == u && e[1] == v) || (e[0] == v && e[1] == u) {
				return true
			}
		}
		return false
	}
}
