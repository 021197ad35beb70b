// Package pkg holds the libraries behind trigen, an enumerator of minimally
// 3-connected graphs.
//
// # Overview
//
// Starting from a small root graph, trigen applies extension rules (add an
// edge) and coextension rules (split a vertex) and keeps one representative
// per isomorphism class and bucket. Every graph carries its complete set of
// elementary cycles, which the rules update incrementally.
//
//  1. [graph] - packed adjacency graphs and their transformation history
//  2. [cycles] - cycle sets and the operators that update them
//  3. [paths], [chord] - connectivity oracles used by the operators
//  4. [rules] - the e1, e2, c1, c2 and c3 rules
//  5. [canon], [dedup] - canonical certificates and certificate stores
//  6. [io], [bucket] - bucket files and their names
//  7. [pipeline] - runs, steps, the step cache and the summary
//  8. [roots], [render] - root graphs, verification and drawing
//
// # Data Flow
//
//	root graph
//	     ↓
//	[rules] child candidates (graph + cycles)
//	     ↓
//	[dedup] certificate admitted once per bucket
//	     ↓
//	[io] appended to <n>_<m>_<rule>.jsonl.gz
//
// # Quick Start
//
//	root, _ := roots.Builtin("PR")
//	children, err := rules.E1.Apply(rules.Seed(root))
//	if err != nil {
//	    return err
//	}
//	for child, err := range children {
//	    // child.Graph, child.Cycles
//	}
//
// # Error Handling
//
// Errors carry a code from [errors], so callers can tell malformed input
// from broken invariants:
//
//	if errors.Is(err, errors.ErrCodeInvariantViolation) {
//	    // the parent history does not fit the rule
//	}
package pkg
