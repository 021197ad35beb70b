package cycles

import "github.com/matzehuels/trigen/pkg/errors"

// SubdivideEdge rewrites s for the replacement of edge (v1,v2) by the path
// v1-w-v2. Cycles running through the edge get w inserted between v1 and v2;
// all others are carried over unchanged. w must be a fresh vertex.
func SubdivideEdge(s *Set, v1, v2, w int) (*Set, error) {
	if v1 == v2 || w == v1 || w == v2 {
		return nil, errors.New(errors.ErrCodeInvariantViolation,
			"subdivide (%d,%d) with %d: vertices must be distinct", v1, v2, w)
	}
	out := NewSet()
	for c := range s.All() {
		if c.Contains(w) {
			return nil, errors.New(errors.ErrCodeInvariantViolation,
				"subdivide with %d: vertex already on cycle %s", w, c)
		}
		if nc, ok := c.insertBetween(v1, v2, w); ok {
			out.Add(nc)
			continue
		}
		out.Add(c)
	}
	return out, nil
}
