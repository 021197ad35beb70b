package graph

import (
	"math/bits"
	"slices"

	"github.com/matzehuels/trigen/pkg/errors"
)

// Graph is a simple undirected graph with a construction history.
//
// Graphs are immutable once returned by this package: every method that
// derives a new graph returns a fresh value. A Graph is safe for concurrent
// reads.
type Graph struct {
	size  int
	edges int
	bits  []byte
	hist  History
}

// pairIndex returns the bit index of the unordered pair (i, j), i != j.
func pairIndex(i, j int) int {
	if i < j {
		i, j = j, i
	}
	return i*(i-1)/2 + j
}

// pairCount returns the number of unordered pairs on n vertices.
func pairCount(n int) int { return n * (n - 1) / 2 }

func byteLen(n int) int { return (pairCount(n) + 7) / 8 }

// New returns an edgeless graph on size vertices whose history starts at root.
func New(size int, root string) *Graph {
	return &Graph{
		size: size,
		bits: make([]byte, byteLen(size)),
		hist: History{Root: root},
	}
}

// FromEdges builds a graph on size vertices with the given edges and an
// empty history rooted at root.
func FromEdges(size int, root string, edges [][2]int) (*Graph, error) {
	g := New(size, root)
	for _, e := range edges {
		if err := g.addEdge(e[0], e[1]); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// FromBytes rebuilds a graph from its persisted adjacency bytes.
// The history is attached as is; use [Replay] to check it.
func FromBytes(size int, adj []byte, hist History) (*Graph, error) {
	if size < 0 {
		return nil, errors.New(errors.ErrCodeMalformedData, "negative graph size %d", size)
	}
	if len(adj) != byteLen(size) {
		return nil, errors.New(errors.ErrCodeMalformedData,
			"adjacency has %d bytes, want %d for %d vertices", len(adj), byteLen(size), size)
	}
	g := &Graph{size: size, bits: slices.Clone(adj), hist: hist.Clone()}
	pairs := pairCount(size)
	if pairs%8 != 0 && len(adj) > 0 {
		if adj[len(adj)-1]>>(pairs%8) != 0 {
			return nil, errors.New(errors.ErrCodeMalformedData, "adjacency padding bits set")
		}
	}
	for _, b := range g.bits {
		g.edges += bits.OnesCount8(b)
	}
	return g, nil
}

// Size returns the number of vertices.
func (g *Graph) Size() int { return g.size }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return g.edges }

// History returns a copy of the graph's construction history.
func (g *Graph) History() History { return g.hist.Clone() }

// Root returns the root tag of the graph's history.
func (g *Graph) Root() string { return g.hist.Root }

// Bytes returns a copy of the adjacency bitset.
func (g *Graph) Bytes() []byte { return slices.Clone(g.bits) }

// HasEdge reports whether vertices i and j are adjacent.
// Out-of-range or equal vertices are never adjacent.
func (g *Graph) HasEdge(i, j int) bool {
	if i == j || i < 0 || j < 0 || i >= g.size || j >= g.size {
		return false
	}
	k := pairIndex(i, j)
	return g.bits[k>>3]&(1<<(k&7)) != 0
}

// Neighbors returns the neighbors of v in ascending order.
func (g *Graph) Neighbors(v int) []int {
	var out []int
	for u := 0; u < g.size; u++ {
		if g.HasEdge(v, u) {
			out = append(out, u)
		}
	}
	return out
}

// Degree returns the number of neighbors of v.
func (g *Graph) Degree(v int) int {
	d := 0
	for u := 0; u < g.size; u++ {
		if g.HasEdge(v, u) {
			d++
		}
	}
	return d
}

// Edges returns every edge as (i, j) with i > j, in bit order.
func (g *Graph) Edges() [][2]int {
	out := make([][2]int, 0, g.edges)
	for i := 1; i < g.size; i++ {
		for j := 0; j < i; j++ {
			if g.HasEdge(i, j) {
				out = append(out, [2]int{i, j})
			}
		}
	}
	return out
}

// NonEdges returns every unconnected pair (i, j) with i > j, in bit order.
func (g *Graph) NonEdges() [][2]int {
	out := make([][2]int, 0, pairCount(g.size)-g.edges)
	for i := 1; i < g.size; i++ {
		for j := 0; j < i; j++ {
			if !g.HasEdge(i, j) {
				out = append(out, [2]int{i, j})
			}
		}
	}
	return out
}

// Adjacency returns the square 0/1 adjacency matrix.
func (g *Graph) Adjacency() [][]int {
	m := make([][]int, g.size)
	for i := range m {
		m[i] = make([]int, g.size)
		for j := range m[i] {
			if g.HasEdge(i, j) {
				m[i][j] = 1
			}
		}
	}
	return m
}

// Equal reports whether g and o have the same size and adjacency bits.
// Histories are not compared.
func (g *Graph) Equal(o *Graph) bool {
	return g.size == o.size && slices.Equal(g.bits, o.bits)
}

// Validate recounts the edges from the bitset and compares the result with
// the incrementally tracked count.
func (g *Graph) Validate() error {
	if len(g.bits) != byteLen(g.size) {
		return errors.New(errors.ErrCodeInvariantViolation,
			"bitset has %d bytes for %d vertices", len(g.bits), g.size)
	}
	n := 0
	for _, b := range g.bits {
		n += bits.OnesCount8(b)
	}
	if n != g.edges {
		return errors.New(errors.ErrCodeInvariantViolation,
			"tracked edge count %d, bitset holds %d", g.edges, n)
	}
	return nil
}

// Clone returns an independent copy of g, history included.
func (g *Graph) Clone() *Graph {
	return &Graph{
		size:  g.size,
		edges: g.edges,
		bits:  slices.Clone(g.bits),
		hist:  g.hist.Clone(),
	}
}

// grow extends the vertex range to n. Existing bits keep their positions.
func (g *Graph) grow(n int) {
	if n <= g.size {
		return
	}
	g.bits = append(g.bits, make([]byte, byteLen(n)-len(g.bits))...)
	g.size = n
}

func (g *Graph) checkPair(op string, i, j int) error {
	if i == j {
		return errors.New(errors.ErrCodeInvariantViolation, "%s: self-loop on %d", op, i)
	}
	if i < 0 || j < 0 || i >= g.size || j >= g.size {
		return errors.New(errors.ErrCodeInvariantViolation,
			"%s: (%d,%d) outside vertex range %d", op, i, j, g.size)
	}
	return nil
}

func (g *Graph) addEdge(i, j int) error {
	if err := g.checkPair("add edge", i, j); err != nil {
		return err
	}
	k := pairIndex(i, j)
	if g.bits[k>>3]&(1<<(k&7)) != 0 {
		return errors.New(errors.ErrCodeInvariantViolation, "add edge: (%d,%d) already present", i, j)
	}
	g.bits[k>>3] |= 1 << (k & 7)
	g.edges++
	return nil
}

func (g *Graph) delEdge(i, j int) error {
	if err := g.checkPair("delete edge", i, j); err != nil {
		return err
	}
	k := pairIndex(i, j)
	if g.bits[k>>3]&(1<<(k&7)) == 0 {
		return errors.New(errors.ErrCodeInvariantViolation, "delete edge: (%d,%d) not present", i, j)
	}
	g.bits[k>>3] &^= 1 << (k & 7)
	g.edges--
	return nil
}
