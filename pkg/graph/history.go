package graph

import "slices"

// Algorithm tags a transformation with the rule that produced it.
type Algorithm string

// Rule tags. Manual marks hand-composed edits.
const (
	AlgE1     Algorithm = "e1"
	AlgE2     Algorithm = "e2"
	AlgC1     Algorithm = "c1"
	AlgC2     Algorithm = "c2"
	AlgC3     Algorithm = "c3"
	AlgManual Algorithm = "mn"
)

// IsExtension reports whether a is one of the edge-adding extension rules.
func (a Algorithm) IsExtension() bool { return a == AlgE1 || a == AlgE2 }

// OpKind identifies an Op variant. Its value is the op's codec letter.
type OpKind byte

const (
	OpAddVertex OpKind = 'v'
	OpAddEdge   OpKind = 'e'
	OpDelEdge   OpKind = 'd'
)

func (k OpKind) String() string {
	switch k {
	case OpAddVertex:
		return "AddVertex"
	case OpAddEdge:
		return "AddEdge"
	case OpDelEdge:
		return "DelEdge"
	}
	return "Op(" + string(rune(k)) + ")"
}

// Op is a primitive edit. I and J are unused for OpAddVertex.
type Op struct {
	Kind OpKind
	I, J int
}

// AddVertex appends one vertex with id equal to the current size.
func AddVertex() Op { return Op{Kind: OpAddVertex} }

// AddEdge connects i and j.
func AddEdge(i, j int) Op { return Op{Kind: OpAddEdge, I: i, J: j} }

// DelEdge disconnects i and j.
func DelEdge(i, j int) Op { return Op{Kind: OpDelEdge, I: i, J: j} }

// Transformation is an ordered list of operations tagged with the rule that
// emitted them.
type Transformation struct {
	Algorithm Algorithm
	Ops       []Op
}

// NewTransformation is a convenience constructor.
func NewTransformation(alg Algorithm, ops ...Op) Transformation {
	return Transformation{Algorithm: alg, Ops: ops}
}

// AddedVertices counts the AddVertex operations.
func (t Transformation) AddedVertices() int {
	n := 0
	for _, op := range t.Ops {
		if op.Kind == OpAddVertex {
			n++
		}
	}
	return n
}

// Clone returns a deep copy.
func (t Transformation) Clone() Transformation {
	return Transformation{Algorithm: t.Algorithm, Ops: slices.Clone(t.Ops)}
}

// Equal reports whether two transformations are identical.
func (t Transformation) Equal(o Transformation) bool {
	return t.Algorithm == o.Algorithm && slices.Equal(t.Ops, o.Ops)
}

// History is the provenance of a graph: a root tag and every transformation
// applied since.
type History struct {
	Root  string
	Steps []Transformation
}

// Len returns the number of transformations.
func (h History) Len() int { return len(h.Steps) }

// Clone returns a deep copy.
func (h History) Clone() History {
	out := History{Root: h.Root}
	if h.Steps != nil {
		out.Steps = make([]Transformation, len(h.Steps))
		for i, t := range h.Steps {
			out.Steps[i] = t.Clone()
		}
	}
	return out
}

// Append returns a copy of h with t appended.
func (h History) Append(t Transformation) History {
	out := h.Clone()
	out.Steps = append(out.Steps, t.Clone())
	return out
}

// Equal reports whether two histories are identical.
func (h History) Equal(o History) bool {
	return h.Root == o.Root && slices.EqualFunc(h.Steps, o.Steps, Transformation.Equal)
}

// Last returns the most recent transformation.
func (h History) Last() (Transformation, bool) {
	return h.FromEnd(0)
}

// FromEnd returns the transformation back steps before the last one.
// FromEnd(0) is the last transformation.
func (h History) FromEnd(back int) (Transformation, bool) {
	i := len(h.Steps) - 1 - back
	if back < 0 || i < 0 {
		return Transformation{}, false
	}
	return h.Steps[i], true
}

// LastEdge returns the endpoints of the first operation of the last
// transformation when its tag is one of algs and that operation is an
// AddEdge.
func (h History) LastEdge(algs ...Algorithm) (i, j int, ok bool) {
	return h.EdgeFromEnd(0, algs...)
}

// EdgeFromEnd is LastEdge for the transformation back steps before the last.
func (h History) EdgeFromEnd(back int, algs ...Algorithm) (i, j int, ok bool) {
	t, found := h.FromEnd(back)
	if !found || !slices.Contains(algs, t.Algorithm) || len(t.Ops) == 0 {
		return 0, 0, false
	}
	op := t.Ops[0]
	if op.Kind != OpAddEdge {
		return 0, 0, false
	}
	return op.I, op.J, true
}

// LastEdges returns the first-operation edges of the last k transformations,
// oldest first. ok is false unless all k carry one of algs and start with an
// AddEdge.
func (h History) LastEdges(k int, algs ...Algorithm) (edges [][2]int, ok bool) {
	edges = make([][2]int, k)
	for back := 0; back < k; back++ {
		i, j, found := h.EdgeFromEnd(back, algs...)
		if !found {
			return nil, false
		}
		edges[k-1-back] = [2]int{i, j}
	}
	return edges, true
}
