package graph

import "strings"

// Path is a sequence of node IDs joined by edges.
type Path []string

func (p Path) String() string {
	return strings.Join(p, " → ")
}

// DefaultMaxDepth bounds path search when the caller passes no limit.
const DefaultMaxDepth = 10

// AllPaths returns every simple path from start to end with at most maxDepth
// edges, in edge insertion order. A path never revisits a node; start == end
// yields the single-node path.
func (g *Graph) AllPaths(start, end string, maxDepth int) []Path {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if start == end {
		return []Path{{start}}
	}

	var paths []Path
	onPath := map[string]bool{start: true}
	var walk func(cur []string)
	walk = func(cur []string) {
		if len(cur) > maxDepth {
			return
		}
		for _, next := range g.Edges[cur[len(cur)-1]] {
			if next == end {
				p := make(Path, len(cur)+1)
				copy(p, cur)
				p[len(cur)] = end
				paths = append(paths, p)
				continue
			}
			if onPath[next] {
				continue
			}
			onPath[next] = true
			walk(append(cur, next))
			onPath[next] = false
		}
	}
	walk([]string{start})
	return paths
}
