// Package roots provides the root graphs that generation starts from.
//
// A root is a small minimally 3-connected graph identified by a 2-character
// tag. The tag becomes the root of every descendant's history, so a record
// can always be replayed back to the graph it grew from.
//
// # Built-in Roots
//
//   - K4: complete graph on 4 vertices
//   - PR: triangular prism (two triangles joined by a matching)
//   - K3: complete bipartite graph K3,3
//   - W4: wheel with a 4-cycle rim and one hub
//
// Other roots are loaded from a JSON adjacency matrix with [LoadJSON].
package roots

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/matzehuels/trigen/pkg/errors"
	"github.com/matzehuels/trigen/pkg/graph"
)

// builtins maps tags to edge lists. Vertex count is one more than the
// largest endpoint.
var builtins = map[string][][2]int{
	"K4": {{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}},
	"PR": {
		{0, 1}, {1, 2}, {2, 0},
		{3, 4}, {4, 5}, {5, 3},
		{0, 3}, {1, 4}, {2, 5},
	},
	"K3": {
		{0, 3}, {0, 4}, {0, 5},
		{1, 3}, {1, 4}, {1, 5},
		{2, 3}, {2, 4}, {2, 5},
	},
	"W4": {
		{0, 1}, {1, 2}, {2, 3}, {3, 0},
		{4, 0}, {4, 1}, {4, 2}, {4, 3},
	},
}

// Tags returns the built-in root tags in sorted order.
func Tags() []string {
	tags := make([]string, 0, len(builtins))
	for tag := range builtins {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}

// Builtin returns the built-in root with the given tag.
func Builtin(tag string) (*graph.Graph, error) {
	edges, ok := builtins[tag]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "unknown root %q (available: %v)", tag, Tags())
	}
	size := 0
	for _, e := range edges {
		size = max(size, e[0]+1, e[1]+1)
	}
	return graph.FromEdges(size, tag, edges)
}

// LoadJSON reads a root from a JSON array of rows of 0/1 entries and tags
// it with tag.
func LoadJSON(r io.Reader, tag string) (*graph.Graph, error) {
	if err := errors.ValidateTag(tag); err != nil {
		return nil, err
	}
	var m [][]int
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode adjacency matrix")
	}
	if len(m) < 4 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "root needs at least 4 vertices, got %d", len(m))
	}
	return graph.FromAdjacency(tag, m)
}

// LoadFile reads a JSON root from path.
func LoadFile(path, tag string) (*graph.Graph, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return LoadJSON(f, tag)
}

// Resolve returns the built-in root for ref, or loads ref as a JSON file
// tagged tag when it is not a built-in tag.
func Resolve(ref, tag string) (*graph.Graph, error) {
	if _, ok := builtins[ref]; ok {
		return Builtin(ref)
	}
	return LoadFile(ref, tag)
}
