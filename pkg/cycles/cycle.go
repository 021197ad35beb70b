package cycles

import (
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/trigen/pkg/errors"
)

// Cycle is an elementary cycle in canonical form. The zero value is not a
// valid cycle; use [New].
type Cycle struct {
	v []int
}

// New validates seq as a cycle (at least 3 distinct non-negative vertices)
// and returns its canonical form.
func New(seq ...int) (Cycle, error) {
	if len(seq) < 3 {
		return Cycle{}, errors.New(errors.ErrCodeInvalidInput, "cycle %v shorter than 3", seq)
	}
	seen := make(map[int]struct{}, len(seq))
	for _, v := range seq {
		if v < 0 {
			return Cycle{}, errors.New(errors.ErrCodeInvalidInput, "cycle %v has negative vertex", seq)
		}
		if _, dup := seen[v]; dup {
			return Cycle{}, errors.New(errors.ErrCodeInvalidInput, "cycle %v repeats vertex %d", seq, v)
		}
		seen[v] = struct{}{}
	}
	return canonical(seq), nil
}

// MustNew is like New but panics on invalid input. Intended for tests and
// literals.
func MustNew(seq ...int) Cycle {
	c, err := New(seq...)
	if err != nil {
		panic(err)
	}
	return c
}

// canonical rotates seq to its minimum and orients it toward the smaller
// neighbor of the minimum. seq must already be a valid cycle.
func canonical(seq []int) Cycle {
	n := len(seq)
	m := 0
	for i, v := range seq {
		if v < seq[m] {
			m = i
		}
	}
	out := make([]int, n)
	if seq[(m+1)%n] < seq[(m+n-1)%n] {
		for i := range out {
			out[i] = seq[(m+i)%n]
		}
	} else {
		for i := range out {
			out[i] = seq[(m-i+n)%n]
		}
	}
	return Cycle{v: out}
}

// Len returns the number of vertices.
func (c Cycle) Len() int { return len(c.v) }

// Vertices returns a copy of the canonical vertex sequence.
func (c Cycle) Vertices() []int { return slices.Clone(c.v) }

// At returns the vertex at position i of the canonical sequence, modulo Len.
func (c Cycle) At(i int) int {
	n := len(c.v)
	return c.v[((i%n)+n)%n]
}

// Index returns the position of v, or -1.
func (c Cycle) Index(v int) int { return slices.Index(c.v, v) }

// Contains reports whether v lies on the cycle.
func (c Cycle) Contains(v int) bool { return c.Index(v) >= 0 }

// Adjacent reports whether u and v are consecutive on the cycle.
func (c Cycle) Adjacent(u, v int) bool {
	i, j := c.Index(u), c.Index(v)
	if i < 0 || j < 0 {
		return false
	}
	n := len(c.v)
	return (i+1)%n == j || (j+1)%n == i
}

// Edges returns the cycle's edges in canonical order.
func (c Cycle) Edges() [][2]int {
	out := make([][2]int, len(c.v))
	for i, v := range c.v {
		out[i] = [2]int{v, c.At(i + 1)}
	}
	return out
}

// Equal reports whether c and o denote the same cycle.
func (c Cycle) Equal(o Cycle) bool { return slices.Equal(c.v, o.v) }

// String formats the cycle as "(0 1 2)".
func (c Cycle) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, v := range c.v {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.Itoa(v))
	}
	b.WriteByte(')')
	return b.String()
}

// compare orders cycles by length, then lexicographically.
func compare(a, b Cycle) int {
	if d := len(a.v) - len(b.v); d != 0 {
		return d
	}
	return slices.Compare(a.v, b.v)
}

// walk returns the cycle read from position start in direction dir (+1 or
// -1) as a fresh slice.
func (c Cycle) walk(start, dir int) []int {
	n := len(c.v)
	out := make([]int, n)
	for i := range out {
		out[i] = c.v[((start+dir*i)%n+n)%n]
	}
	return out
}

// insertBetween returns c with w spliced between the consecutive vertices u
// and v. ok is false when u and v are not consecutive.
func (c Cycle) insertBetween(u, v, w int) (Cycle, bool) {
	i, j := c.Index(u), c.Index(v)
	if i < 0 || j < 0 {
		return Cycle{}, false
	}
	n := len(c.v)
	var seq []int
	switch {
	case (i+1)%n == j:
		seq = c.walk(j, 1)
	case (j+1)%n == i:
		seq = c.walk(i, 1)
	default:
		return Cycle{}, false
	}
	// seq starts at the later of the pair; w closes the cycle back to it.
	return canonical(append(seq, w)), true
}
