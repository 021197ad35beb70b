package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/trigen/pkg/cycles"
	"github.com/matzehuels/trigen/pkg/errors"
	"github.com/matzehuels/trigen/pkg/graph"
)

var prismEdges = [][2]int{{1, 0}, {2, 0}, {2, 1}, {4, 3}, {5, 3}, {5, 4}, {3, 0}, {4, 1}, {5, 2}}

func prism(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.FromEdges(6, "PR", prismEdges)
	require.NoError(t, err)
	return g
}

func collect(t *testing.T, r *Rule, parent *Candidate) []*Candidate {
	t.Helper()
	seq, err := r.Apply(parent)
	require.NoError(t, err)
	var out []*Candidate
	for child, err := range seq {
		require.NoError(t, err)
		out = append(out, child)
	}
	return out
}

// complete replaces the cycle set of c with a from-scratch enumeration.
func complete(c *Candidate) *Candidate {
	return &Candidate{Graph: c.Graph, Cycles: cycles.Find(c.Graph)}
}

// assertSound checks that every tracked cycle exists in the child graph and
// that the child replays from its history.
func assertSound(t *testing.T, root *graph.Graph, c *Candidate) {
	t.Helper()
	require.NoError(t, c.Graph.Validate())
	for cyc := range c.Cycles.All() {
		for _, e := range cyc.Edges() {
			assert.Truef(t, c.Graph.HasEdge(e[0], e[1]), "cycle %s uses missing edge %v", cyc, e)
		}
	}
	replayed, err := graph.Replay(root, c.Graph.History())
	require.NoError(t, err)
	assert.True(t, replayed.Equal(c.Graph), "replay differs")
}

func TestFind(t *testing.T) {
	assert.Equal(t, []string{"e1", "e2", "c1", "c2", "c3"}, Names())
	for _, name := range Names() {
		require.NotNil(t, Find(name), name)
		assert.Equal(t, name, string(Find(name).Name))
	}
	assert.Nil(t, Find("c4"))
}

func TestE1OnPrism(t *testing.T) {
	root := prism(t)
	children := collect(t, E1, Seed(root))
	require.Len(t, children, 6)
	for _, c := range children {
		assert.Equal(t, 6, c.Graph.Size())
		assert.Equal(t, 10, c.Graph.EdgeCount())
		_, _, ok := c.Graph.History().LastEdge(graph.AlgE1)
		assert.True(t, ok)
		assertSound(t, root, c)
		assert.True(t, cycles.Find(c.Graph).Equal(c.Cycles), "e1 cycles incomplete for %v", c.Graph.History())
	}
	assert.Equal(t, 9, root.EdgeCount(), "parent mutated")
}

func TestE2OnPrism(t *testing.T) {
	root := prism(t)
	first := collect(t, E1, Seed(root))[0]
	i, j, _ := first.Graph.History().LastEdge(graph.AlgE1)
	require.Equal(t, [2]int{3, 1}, [2]int{i, j})

	children := collect(t, E2, first)
	require.Len(t, children, 2)
	wantOps := [][]graph.Op{
		{graph.AddEdge(2, 3)},
		{graph.AddEdge(5, 1)},
	}
	for n, c := range children {
		last, _ := c.Graph.History().Last()
		assert.Equal(t, graph.AlgE2, last.Algorithm)
		assert.Equal(t, wantOps[n], last.Ops)
		assertSound(t, root, c)
	}
}

func TestPreconditions(t *testing.T) {
	root := prism(t)
	seed := Seed(root)
	e1Child := collect(t, E1, seed)[0]

	tests := []struct {
		name   string
		rule   *Rule
		parent *Candidate
	}{
		{"e2 on root", E2, seed},
		{"c1 on root", C1, seed},
		{"c2 on e1 child", C2, e1Child},
		{"c3 on single extension", C3, e1Child},
		{"nil parent", E1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, err := tt.rule.Apply(tt.parent)
			assert.Nil(t, seq)
			assert.True(t, errors.Is(err, errors.ErrCodeInvariantViolation), "error = %v", err)
		})
	}
}

func TestC1CyclesMatchFind(t *testing.T) {
	root := prism(t)
	total := 0
	for _, ext := range collect(t, E1, Seed(root)) {
		for _, c := range collect(t, C1, complete(ext)) {
			total++
			assert.Equal(t, 7, c.Graph.Size())
			assert.Equal(t, 11, c.Graph.EdgeCount())
			assertSound(t, root, c)
			want := cycles.Find(c.Graph)
			assert.Truef(t, want.Equal(c.Cycles), "history %v\nwant %s\n got %s", c.Graph.History(), want, c.Cycles)
		}
	}
	assert.Equal(t, 12, total)
}

func TestC2CyclesMatchFind(t *testing.T) {
	root := prism(t)
	ext := collect(t, E1, Seed(root))[0]
	total := 0
	for _, co := range collect(t, C1, complete(ext)) {
		a, b, c, x, ok := lastCoextension(co.Graph.History())
		require.True(t, ok)
		assert.Equal(t, 6, x)
		assert.NotEqual(t, a, b)
		assert.NotEqual(t, b, c)
		for _, child := range collect(t, C2, complete(co)) {
			total++
			assert.Equal(t, 8, child.Graph.Size())
			assertSound(t, root, child)
			want := cycles.Find(child.Graph)
			assert.Truef(t, want.Equal(child.Cycles), "history %v\nwant %s\n got %s", child.Graph.History(), want, child.Cycles)
		}
	}
	assert.Equal(t, 14, total)
}

func TestC3Chorded(t *testing.T) {
	root := prism(t)
	ext := collect(t, E1, Seed(root))[0]
	pair := collect(t, E2, ext)[0]

	edges, ok := pair.Graph.History().LastEdges(2, graph.AlgE1, graph.AlgE2)
	require.True(t, ok)
	a, b, c, ok := sharedEndpoint(edges[0], edges[1])
	require.True(t, ok)
	assert.Equal(t, [3]int{1, 3, 2}, [3]int{a, b, c})

	// The prism cycle 0-1-4-5-2 is chorded by the edge 1-2.
	assert.Empty(t, collect(t, C3, complete(pair)))
}

func TestSharedEndpoint(t *testing.T) {
	tests := []struct {
		e1, e2 [2]int
		want   [3]int
		ok     bool
	}{
		{[2]int{3, 1}, [2]int{2, 3}, [3]int{1, 3, 2}, true},
		{[2]int{4, 0}, [2]int{4, 2}, [3]int{0, 4, 2}, true},
		{[2]int{4, 0}, [2]int{3, 2}, [3]int{}, false},
		{[2]int{4, 0}, [2]int{0, 4}, [3]int{}, false},
	}
	for _, tt := range tests {
		a, b, c, ok := sharedEndpoint(tt.e1, tt.e2)
		assert.Equal(t, tt.ok, ok)
		if ok {
			assert.Equal(t, tt.want, [3]int{a, b, c})
		}
	}
}

func TestIterationStops(t *testing.T) {
	seq, err := E1.Apply(Seed(prism(t)))
	require.NoError(t, err)
	n := 0
	for range seq {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}
