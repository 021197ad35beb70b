// Package canon computes isomorphism certificates for graphs.
//
// Two graphs receive the same [Certificate] exactly when they are
// isomorphic. The default [Canonical] certifier runs an
// individualization-refinement search: vertices are partitioned by
// iterated neighbor counts, non-singleton cells are split by individualizing
// each of their members in turn, and every discrete partition reached is a
// candidate labeling. The certificate is the lexicographically smallest
// adjacency string over all candidate labelings.
//
// The search has no automorphism pruning and is exponential on highly
// symmetric inputs. Graphs produced by the rule engine are small, so this is
// acceptable; set [Canonical.MaxLeaves] to fail fast instead of stalling.
package canon

import (
	"encoding/hex"
	"slices"
	"strconv"

	"github.com/matzehuels/trigen/pkg/errors"
)

// Certificate identifies an isomorphism class. It is comparable and can be
// used as a map key or store key.
type Certificate string

// Graph is the read-only view a Certifier needs.
type Graph interface {
	Size() int
	HasEdge(i, j int) bool
	Neighbors(v int) []int
}

// Certifier computes certificates.
type Certifier interface {
	Certificate(g Graph) (Certificate, error)
}

// Canonical is the individualization-refinement Certifier.
type Canonical struct {
	// MaxLeaves bounds the number of discrete partitions visited. Zero means
	// unbounded. Exceeding the bound is an ORACLE_FAILURE.
	MaxLeaves int
}

// Certificate implements Certifier.
func (c Canonical) Certificate(g Graph) (Certificate, error) {
	n := g.Size()
	if n == 0 {
		return "0:", nil
	}
	s := &search{g: g, n: n, max: c.MaxLeaves}
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	s.descend(s.refine([][]int{all}))
	if s.overrun {
		return "", errors.New(errors.ErrCodeOracleFailure,
			"canonical form: more than %d leaves on %d vertices", c.MaxLeaves, n)
	}
	return Certificate(strconv.Itoa(n) + ":" + hex.EncodeToString(s.best)), nil
}

type search struct {
	g       Graph
	n       int
	max     int
	leaves  int
	overrun bool
	best    []byte
}

func (s *search) descend(cells [][]int) {
	if s.overrun {
		return
	}
	target := -1
	for i, cell := range cells {
		if len(cell) > 1 {
			target = i
			break
		}
	}
	if target < 0 {
		s.leaf(cells)
		return
	}
	for _, v := range cells[target] {
		next := make([][]int, 0, len(cells)+1)
		next = append(next, cells[:target]...)
		next = append(next, []int{v}, without(cells[target], v))
		next = append(next, cells[target+1:]...)
		s.descend(s.refine(next))
	}
}

func (s *search) leaf(cells [][]int) {
	s.leaves++
	if s.max > 0 && s.leaves > s.max {
		s.overrun = true
		return
	}
	order := make([]int, s.n)
	for i, cell := range cells {
		order[i] = cell[0]
	}
	bits := adjacencyString(s.g, order)
	if s.best == nil || slices.Compare(bits, s.best) < 0 {
		s.best = bits
	}
}

// refine splits cells until every vertex in a cell has the same number of
// neighbors in each cell. Split cells are ordered by those counts, so the
// result depends only on structure and the incoming cell order.
func (s *search) refine(cells [][]int) [][]int {
	cellOf := make([]int, s.n)
	for {
		for i, cell := range cells {
			for _, v := range cell {
				cellOf[v] = i
			}
		}
		changed := false
		next := make([][]int, 0, len(cells))
		for _, cell := range cells {
			if len(cell) == 1 {
				next = append(next, cell)
				continue
			}
			sigs := make(map[int][]int, len(cell))
			for _, v := range cell {
				sig := make([]int, len(cells))
				for _, u := range s.g.Neighbors(v) {
					sig[cellOf[u]]++
				}
				sigs[v] = sig
			}
			sorted := slices.Clone(cell)
			slices.SortStableFunc(sorted, func(a, b int) int {
				return slices.Compare(sigs[a], sigs[b])
			})
			start := 0
			for k := 1; k <= len(sorted); k++ {
				if k == len(sorted) || slices.Compare(sigs[sorted[k]], sigs[sorted[start]]) != 0 {
					next = append(next, sorted[start:k])
					start = k
				}
			}
			if len(next) > 0 && len(next[len(next)-1]) != len(cell) {
				changed = true
			}
		}
		cells = next
		if !changed {
			return cells
		}
	}
}

// adjacencyString packs the adjacency of g relabeled by order (new label i
// is old vertex order[i]) in pair order i > j, most significant bit first.
func adjacencyString(g Graph, order []int) []byte {
	n := len(order)
	out := make([]byte, (n*(n-1)/2+7)/8)
	k := 0
	for i := 1; i < n; i++ {
		for j := 0; j < i; j++ {
			if g.HasEdge(order[i], order[j]) {
				out[k>>3] |= 0x80 >> (k & 7)
			}
			k++
		}
	}
	return out
}

func without(cell []int, v int) []int {
	out := make([]int, 0, len(cell)-1)
	for _, u := range cell {
		if u != v {
			out = append(out, u)
		}
	}
	return out
}
