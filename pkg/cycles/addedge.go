package cycles

import "github.com/matzehuels/trigen/pkg/errors"

// Connected reports whether two vertices are adjacent in the graph the new
// edge is being added to.
type Connected func(u, v int) bool

// AddEdge rewrites s for the insertion of edge (v1,v2). Every existing cycle
// is retained. A cycle through both endpoints is split by the new chord into
// two cycles. A cycle through exactly one endpoint p yields a new cycle for
// each cyclic neighbor u of p with conn(u, other), obtained by routing the
// cycle p-other-u instead of p-u.
//
// The result is sound but not guaranteed complete: cycles that need a path
// between v1 and v2 not already lying on a known cycle are not discovered.
func AddEdge(s *Set, v1, v2 int, conn Connected) (*Set, error) {
	if v1 == v2 {
		return nil, errors.New(errors.ErrCodeInvariantViolation, "add edge (%d,%d): self loop", v1, v2)
	}
	out := s.Clone()
	for c := range s.All() {
		i, j := c.Index(v1), c.Index(v2)
		switch {
		case i >= 0 && j >= 0:
			if c.Adjacent(v1, v2) {
				return nil, errors.New(errors.ErrCodeInvariantViolation,
					"add edge (%d,%d): already an edge of cycle %s", v1, v2, c)
			}
			a, b := split(c, i, j)
			out.Add(a)
			out.Add(b)
		case i >= 0:
			addCorners(out, c, i, v2, conn)
		case j >= 0:
			addCorners(out, c, j, v1, conn)
		}
	}
	return out, nil
}

// split cuts c along a chord between positions i and j, returning the two
// arcs closed by that chord.
func split(c Cycle, i, j int) (Cycle, Cycle) {
	return canonical(arc(c, i, j)), canonical(arc(c, j, i))
}

// arc returns the vertices of c from position i forward to position j,
// inclusive.
func arc(c Cycle, i, j int) []int {
	n := c.Len()
	steps := ((j-i)%n + n) % n
	out := make([]int, 0, steps+1)
	for k := 0; k <= steps; k++ {
		out = append(out, c.At(i+k))
	}
	return out
}

func addCorners(out *Set, c Cycle, p, other int, conn Connected) {
	at := c.At(p)
	for _, u := range []int{c.At(p - 1), c.At(p + 1)} {
		if !conn(u, other) {
			continue
		}
		if nc, ok := c.insertBetween(at, u, other); ok {
			out.Add(nc)
		}
	}
}
