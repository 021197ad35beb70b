package cycles

import (
	"iter"
	"strings"

	"github.com/emirpasic/gods/sets/treeset"
)

// Set is an ordered set of canonical cycles. Iteration order is by length,
// then lexicographic, so two equal sets always serialize identically.
type Set struct {
	t *treeset.Set
}

// NewSet returns a set holding cs.
func NewSet(cs ...Cycle) *Set {
	s := &Set{t: treeset.NewWith(compareAny)}
	for _, c := range cs {
		s.t.Add(c)
	}
	return s
}

func compareAny(a, b interface{}) int {
	return compare(a.(Cycle), b.(Cycle))
}

// Add inserts c. Adding a cycle already present is a no-op.
func (s *Set) Add(c Cycle) {
	s.t.Add(c)
}

// Contains reports whether c is in the set.
func (s *Set) Contains(c Cycle) bool {
	return s.t.Contains(c)
}

// Len returns the number of cycles.
func (s *Set) Len() int {
	if s == nil || s.t == nil {
		return 0
	}
	return s.t.Size()
}

// All yields the cycles in order.
func (s *Set) All() iter.Seq[Cycle] {
	return func(yield func(Cycle) bool) {
		if s == nil || s.t == nil {
			return
		}
		it := s.t.Iterator()
		for it.Next() {
			if !yield(it.Value().(Cycle)) {
				return
			}
		}
	}
}

// Cycles returns the cycles in order.
func (s *Set) Cycles() []Cycle {
	out := make([]Cycle, 0, s.Len())
	for c := range s.All() {
		out = append(out, c)
	}
	return out
}

// Clone returns an independent copy.
func (s *Set) Clone() *Set {
	out := NewSet()
	for c := range s.All() {
		out.t.Add(c)
	}
	return out
}

// Equal reports whether s and o hold the same cycles.
func (s *Set) Equal(o *Set) bool {
	if s.Len() != o.Len() {
		return false
	}
	for c := range s.All() {
		if !o.Contains(c) {
			return false
		}
	}
	return true
}

// Through returns the cycles that contain v.
func (s *Set) Through(v int) []Cycle {
	var out []Cycle
	for c := range s.All() {
		if c.Contains(v) {
			out = append(out, c)
		}
	}
	return out
}

func (s *Set) String() string {
	parts := make([]string, 0, s.Len())
	for c := range s.All() {
		parts = append(parts, c.String())
	}
	return "{" + strings.Join(parts, " ") + "}"
}
