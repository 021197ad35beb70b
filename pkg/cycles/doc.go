// Package cycles maintains the set of elementary cycles of a graph as the
// graph is edited by the rule engine.
//
// The operators in this package are not a cycle finder. Each one assumes its
// input [Set] is already complete and canonical for the parent graph and
// rewrites it for one specific structural change:
//
//   - [SubdivideEdge]: edge (v1,v2) replaced by the path v1-w-v2
//   - [AddEdge]: a new edge (v1,v2)
//   - [MoveEdge]: edge (a,b) replaced by (a,c) where (b,c) is an edge
//
// All operators are pure: they return a new Set and never modify their input.
//
// # Canonical Form
//
// A [Cycle] is stored rotated so that its smallest vertex comes first and
// oriented so that the second element is the smaller of that vertex's two
// cyclic neighbors. Two cycles are equal exactly when their canonical
// sequences are equal, so a Set never holds the same cycle twice regardless
// of the rotation or direction it was built from.
//
// # Move Patterns
//
// MoveEdge classifies every cycle into a [Pattern] by reading it from a in a
// fixed direction and collapsing unmarked vertices into '*'. Patterns in
// which a sits next to c would need the edge (a,c) to exist before the move,
// so they are rejected with an IMPOSSIBLE_PATTERN error.
//
// # Bootstrap
//
// [Find] enumerates the cycles of a graph from scratch. It is exponential and
// only meant for seeding root graphs and for tests.
package cycles
