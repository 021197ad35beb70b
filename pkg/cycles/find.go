package cycles

// Graph is the read-only view of a graph needed by Find.
type Graph interface {
	Size() int
	Neighbors(v int) []int
}

// Find enumerates every elementary cycle of g. Each cycle is discovered from
// its smallest vertex by a depth-first search restricted to larger vertices.
func Find(g Graph) *Set {
	out := NewSet()
	n := g.Size()
	onPath := make([]bool, n)
	path := make([]int, 0, n)

	var dfs func(start, v int)
	dfs = func(start, v int) {
		for _, u := range g.Neighbors(v) {
			switch {
			case u == start && len(path) >= 3:
				out.Add(canonical(path))
			case u > start && !onPath[u]:
				onPath[u] = true
				path = append(path, u)
				dfs(start, u)
				path = path[:len(path)-1]
				onPath[u] = false
			}
		}
	}
	for s := 0; s < n; s++ {
		onPath[s] = true
		path = append(path[:0], s)
		dfs(s, s)
		onPath[s] = false
	}
	return out
}
