// Package chord decides whether a path between two vertices would chord one
// of a graph's elementary cycles.
//
// A path chords a cycle when none of its edges runs along the cycle but at
// least one of its edges joins two vertices of the cycle. The coextension
// rules use this to reject edits that would leave a removable edge behind.
package chord

import (
	"github.com/matzehuels/trigen/pkg/cycles"
	"github.com/matzehuels/trigen/pkg/errors"
	"github.com/matzehuels/trigen/pkg/paths"
)

// AnyChordingPaths reports whether some simple path between any of pairs
// chords a cycle of set. Paths using an edge listed in ignore are skipped.
// g and set describe the parent graph.
func AnyChordingPaths(g paths.Graph, set *cycles.Set, pairs, ignore [][2]int, finder paths.Finder) (bool, error) {
	for _, p := range pairs {
		found, err := finder.AllSimplePaths(g, p[0], p[1])
		if err != nil {
			return false, errors.Wrap(errors.ErrCodeOracleFailure, err, "chording paths (%d,%d)", p[0], p[1])
		}
		for _, path := range found {
			if usesAny(path, ignore) {
				continue
			}
			for c := range set.All() {
				if Chords(path, c) {
					return true, nil
				}
			}
		}
	}
	return false, nil
}

// Chords reports whether path chords c.
func Chords(path []int, c cycles.Cycle) bool {
	joins := false
	for k := 1; k < len(path); k++ {
		u, v := path[k-1], path[k]
		if c.Adjacent(u, v) {
			return false
		}
		if c.Contains(u) && c.Contains(v) {
			joins = true
		}
	}
	return joins
}

func usesAny(path []int, edges [][2]int) bool {
	for k := 1; k < len(path); k++ {
		u, v := path[k-1], path[k]
		for _, e := range edges {
			if (e[0] == u && e[1] == v) || (e[0] == v && e[1] == u) {
				return true
			}
		}
	}
	return false
}
