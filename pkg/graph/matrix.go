package graph

import "github.com/matzehuels/trigen/pkg/errors"

// FromAdjacency builds a graph from a square, symmetric 0/1 matrix with a
// zero diagonal. The graph starts an empty history rooted at root.
func FromAdjacency(root string, m [][]int) (*Graph, error) {
	n := len(m)
	for i, row := range m {
		if len(row) != n {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"adjacency row %d has %d entries, want %d", i, len(row), n)
		}
	}
	g := New(n, root)
	for i, row := range m {
		for j, v := range row {
			if v != 0 && v != 1 {
				return nil, errors.New(errors.ErrCodeInvalidInput, "adjacency[%d][%d] = %d, want 0 or 1", i, j, v)
			}
			if v != m[j][i] {
				return nil, errors.New(errors.ErrCodeInvalidInput, "adjacency not symmetric at (%d,%d)", i, j)
			}
			if i == j {
				if v != 0 {
					return nil, errors.New(errors.ErrCodeInvalidInput, "self-loop at %d", i)
				}
				continue
			}
			if j < i && v == 1 {
				if err := g.addEdge(i, j); err != nil {
					return nil, err
				}
			}
		}
	}
	return g, nil
}
