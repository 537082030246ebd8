// Package graph holds the directed reference graphs built from a script:
// adjacency in both directions, traversal, cycle detection and rendering.
package graph

// Graph is a directed graph over node IDs. Edges are de-duplicated and keep
// their insertion order, and nodes are remembered in the order they were
// first seen, so every traversal is deterministic.
type Graph struct {
	// Adjacency list: node -> nodes it points to
	Edges map[string][]string
	// Reverse adjacency: node -> nodes pointing to it
	ReverseEdges map[string][]string

	order []string
	seen  map[string]map[string]struct{}
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		Edges:        make(map[string][]string),
		ReverseEdges: make(map[string][]string),
		seen:         make(map[string]map[string]struct{}),
	}
}

// AddNode adds a node without edges. Adding an existing node is a no-op.
func (g *Graph) AddNode(id string) {
	if g.Edges == nil {
		*g = *New()
	}
	if _, ok := g.Edges[id]; ok {
		return
	}
	g.Edges[id] = []string{}
	g.ReverseEdges[id] = []string{}
	g.order = append(g.order, id)
}

// AddEdge adds from -> to, creating both nodes as needed. It reports
// whether the edge was new.
func (g *Graph) AddEdge(from, to string) bool {
	g.AddNode(from)
	g.AddNode(to)

	if g.seen == nil {
		g.seen = make(map[string]map[string]struct{})
	}
	targets, ok := g.seen[from]
	if !ok {
		targets = make(map[string]struct{})
		g.seen[from] = targets
	}
	if _, dup := targets[to]; dup {
		return false
	}
	targets[to] = struct{}{}

	g.Edges[from] = append(g.Edges[from], to)
	g.ReverseEdges[to] = append(g.ReverseEdges[to], from)
	return true
}

// HasEdge reports whether from -> to exists.
func (g *Graph) HasEdge(from, to string) bool {
	_, ok := g.seen[from][to]
	return ok
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.order)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, targets := range g.Edges {
		count += len(targets)
	}
	return count
}

// Nodes returns all node IDs in insertion order.
func (g *Graph) Nodes() []string {
	return append([]string(nil), g.order...)
}

// Targets returns every node with at least one incoming edge, in insertion
// order.
func (g *Graph) Targets() []string {
	var out []string
	for _, n := range g.order {
		if len(g.ReverseEdges[n]) > 0 {
			out = append(out, n)
		}
	}
	return out
}

// Subgraph creates a new graph containing only the specified nodes.
func (g *Graph) Subgraph(nodes []string) *Graph {
	nodeSet := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		nodeSet[n] = struct{}{}
	}

	sub := New()
	for _, node := range nodes {
		if _, ok := g.Edges[node]; !ok {
			continue
		}
		sub.AddNode(node)
		for _, target := range g.Edges[node] {
			if _, ok := nodeSet[target]; ok {
				sub.AddEdge(node, target)
			}
		}
	}
	return sub
}
