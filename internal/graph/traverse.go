package graph

import "strings"

// BFS returns every node reachable from start, start first, in
// breadth-first order. An unknown start yields nil.
func (g *Graph) BFS(start string) []string {
	if _, ok := g.Edges[start]; !ok {
		return nil
	}

	visited := map[string]struct{}{start: {}}
	result := []string{}
	queue := []string{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		result = append(result, current)

		for _, next := range g.Edges[current] {
			if _, seen := visited[next]; !seen {
				visited[next] = struct{}{}
				queue = append(queue, next)
			}
		}
	}

	return result
}

// TransitiveClosure returns all nodes reachable from start (excluding start itself).
func (g *Graph) TransitiveClosure(start string) []string {
	all := g.BFS(start)
	if len(all) > 0 && all[0] == start {
		return all[1:]
	}
	return all
}

// FindCycles runs a three-color depth-first search from every unvisited
// node in insertion order. Meeting an in-progress node yields the suffix of
// the current path starting at that node; that edge is not expanded further.
// At most one cycle is reported per search root, so the result proves the
// presence of cycles without enumerating all of them.
//
// Each cycle is returned without repeating its first node; see FormatCycle.
func (g *Graph) FindCycles() [][]string {
	const (
		white = iota // unvisited
		gray         // on the current path
		black        // finished
	)

	color := make(map[string]int, len(g.order))
	var (
		cycles [][]string
		path   []string
		found  bool
	)

	var dfs func(node string)
	dfs = func(node string) {
		color[node] = gray
		path = append(path, node)

		for _, next := range g.Edges[node] {
			switch color[next] {
			case gray:
				if found {
					continue
				}
				for i := len(path) - 1; i >= 0; i-- {
					if path[i] == next {
						cycles = append(cycles, append([]string(nil), path[i:]...))
						break
					}
				}
				found = true
			case white:
				dfs(next)
			}
		}

		path = path[:len(path)-1]
		color[node] = black
	}

	for _, node := range g.order {
		if color[node] == white {
			found = false
			dfs(node)
		}
	}
	return cycles
}

// FormatCycle renders a cycle as "a → b → a".
func FormatCycle(cycle []string) string {
	if len(cycle) == 0 {
		return ""
	}
	return strings.Join(append(append([]string(nil), cycle...), cycle[0]), " → ")
}

// TopologicalSort returns nodes in topological order, ties broken by
// insertion order. Returns nil if the graph has cycles.
func (g *Graph) TopologicalSort() []string {
	inDegree := make(map[string]int, len(g.order))
	for _, node := range g.order {
		inDegree[node] = len(g.ReverseEdges[node])
	}

	queue := []string{}
	for _, node := range g.order {
		if inDegree[node] == 0 {
			queue = append(queue, node)
		}
	}

	result := []string{}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, target := range g.Edges[node] {
			inDegree[target]--
			if inDegree[target] == 0 {
				queue = append(queue, target)
			}
		}
	}

	if len(result) != len(g.order) {
		return nil
	}
	return result
}
