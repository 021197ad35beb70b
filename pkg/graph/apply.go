package graph

import (
	"fmt"

	"github.com/matzehuels/trigen/pkg/errors"
)

// Apply returns the graph obtained by applying t to g.
//
// AddVertex operations are applied up front so that edge operations may
// address any vertex below g.Size()+t.AddedVertices(). Edge operations then
// run in order. An impossible edit returns an INVARIANT_VIOLATION error and
// no graph; g is never modified.
func Apply(g *Graph, t Transformation) (*Graph, error) {
	if err := errors.ValidateTag(string(t.Algorithm)); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvariantViolation, err, "transformation tag")
	}

	out := g.Clone()
	out.grow(g.size + t.AddedVertices())
	for k, op := range t.Ops {
		var err error
		switch op.Kind {
		case OpAddVertex:
		case OpAddEdge:
			err = out.addEdge(op.I, op.J)
		case OpDelEdge:
			err = out.delEdge(op.I, op.J)
		default:
			err = errors.New(errors.ErrCodeInvariantViolation, "unknown op kind %v", op.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("%s op %d: %w", t.Algorithm, k, err)
		}
	}
	out.hist = g.hist.Append(t)
	return out, nil
}

// Replay applies every transformation of h to root in order.
// root must carry an empty history with the same root tag as h.
func Replay(root *Graph, h History) (*Graph, error) {
	if root.hist.Root != h.Root {
		return nil, errors.New(errors.ErrCodeInvariantViolation,
			"history rooted at %q, root graph is %q", h.Root, root.hist.Root)
	}
	if root.hist.Len() != 0 {
		return nil, errors.New(errors.ErrCodeInvariantViolation, "root graph already has a history")
	}
	g := root
	for i, t := range h.Steps {
		next, err := Apply(g, t)
		if err != nil {
			return nil, fmt.Errorf("replay step %d: %w", i, err)
		}
		g = next
	}
	return g, nil
}
