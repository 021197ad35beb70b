// Package paths enumerates simple paths between two vertices.
//
// It is the path oracle behind the chording predicate. The default [DFS]
// finder walks every simple path depth first; graphs handled by the rule
// engine are small enough that exhaustive enumeration stays cheap.
package paths

import (
	"github.com/matzehuels/trigen/pkg/errors"
)

// Graph is the read-only view a Finder walks.
type Graph interface {
	Size() int
	Neighbors(v int) []int
}

// Finder enumerates all simple paths from u to v. Each path starts with u,
// ends with v and visits no vertex twice.
type Finder interface {
	AllSimplePaths(g Graph, u, v int) ([][]int, error)
}

// DFS is the depth-first Finder.
type DFS struct {
	// MaxPaths bounds the number of paths returned. Zero means unbounded.
	// Exceeding the bound is an ORACLE_FAILURE.
	MaxPaths int
}

// AllSimplePaths implements Finder. Paths come out in the order the search
// meets them, neighbors visited in ascending order.
func (d DFS) AllSimplePaths(g Graph, u, v int) ([][]int, error) {
	n := g.Size()
	if u < 0 || v < 0 || u >= n || v >= n {
		return nil, errors.New(errors.ErrCodeOracleFailure, "paths (%d,%d): vertex outside [0,%d)", u, v, n)
	}
	if u == v {
		return nil, errors.New(errors.ErrCodeOracleFailure, "paths (%d,%d): endpoints coincide", u, v)
	}

	var (
		out     [][]int
		overrun bool
		onPath  = make([]bool, n)
		path    = []int{u}
	)
	onPath[u] = true

	var visit func(w int)
	visit = func(w int) {
		for _, x := range g.Neighbors(w) {
			if overrun || onPath[x] {
				continue
			}
			if x == v {
				if d.MaxPaths > 0 && len(out) == d.MaxPaths {
					overrun = true
					return
				}
				p := make([]int, len(path)+1)
				copy(p, path)
				p[len(path)] = v
				out = append(out, p)
				continue
			}
			onPath[x] = true
			path = append(path, x)
			visit(x)
			path = path[:len(path)-1]
			onPath[x] = false
		}
	}
	visit(u)

	if overrun {
		return nil, errors.New(errors.ErrCodeOracleFailure, "paths (%d,%d): more than %d paths", u, v, d.MaxPaths)
	}
	return out, nil
}
