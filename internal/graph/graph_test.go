package graph

import (
	"reflect"
	"strings"
	"testing"
)

func chain(edges ...[2]string) *Graph {
	g := New()
	for _, e := range edges {
		g.AddEdge(e[0], e[1])
	}
	return g
}

func TestGraph_NodeCount(t *testing.T) {
	g := New()

	if g.NodeCount() != 0 {
		t.Errorf("expected 0 nodes, got %d", g.NodeCount())
	}

	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddNode("a")

	if g.NodeCount() != 3 {
		t.Errorf("expected 3 nodes, got %d", g.NodeCount())
	}
}

func TestGraph_AddEdge_Dedup(t *testing.T) {
	g := New()

	if !g.AddEdge("a", "b") {
		t.Error("first AddEdge should report a new edge")
	}
	if g.AddEdge("a", "b") {
		t.Error("second AddEdge should report a duplicate")
	}
	if g.EdgeCount() != 1 {
		t.Errorf("expected 1 edge, got %d", g.EdgeCount())
	}
	if !g.HasEdge("a", "b") || g.HasEdge("b", "a") {
		t.Error("HasEdge mismatch")
	}
	if len(g.Edges["a"]) != 1 || len(g.ReverseEdges["b"]) != 1 {
		t.Errorf("adjacency: out(a)=%v in(b)=%v", g.Edges["a"], g.ReverseEdges["b"])
	}
}

func TestGraph_ZeroValue(t *testing.T) {
	var g Graph
	g.AddEdge("x", "y")
	if g.EdgeCount() != 1 {
		t.Errorf("expected zero-value graph to accept edges, got %d", g.EdgeCount())
	}
}

func TestGraph_InsertionOrder(t *testing.T) {
	g := chain([2]string{"c", "a"}, [2]string{"b", "a"}, [2]string{"c", "b"})

	if got, want := g.Nodes(), []string{"c", "a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Nodes() = %v, want %v", got, want)
	}
	if got, want := g.Edges["c"], []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Edges[c] = %v, want %v", got, want)
	}
	if got, want := g.ReverseEdges["a"], []string{"c", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("ReverseEdges[a] = %v, want %v", got, want)
	}
	if got, want := g.Targets(), []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Targets() = %v, want %v", got, want)
	}
}

func TestGraph_Subgraph(t *testing.T) {
	g := chain([2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "d"})

	sub := g.Subgraph([]string{"a", "b", "c", "missing"})

	if sub.NodeCount() != 3 {
		t.Errorf("expected 3 nodes, got %d", sub.NodeCount())
	}
	if sub.EdgeCount() != 2 {
		t.Errorf("expected 2 edges, got %d", sub.EdgeCount())
	}
	if sub.HasEdge("c", "d") {
		t.Error("edge to excluded node should be dropped")
	}
}

func TestGraph_BFS(t *testing.T) {
	g := chain([2]string{"a", "b"}, [2]string{"a", "c"}, [2]string{"b", "d"}, [2]string{"c", "d"})

	if got, want := g.BFS("a"), []string{"a", "b", "c", "d"}; !reflect.DeepEqual(got, want) {
		t.Errorf("BFS forward = %v, want %v", got, want)
	}
	if got := g.BFS("zzz"); got != nil {
		t.Errorf("BFS from unknown node = %v, want nil", got)
	}
}

func TestGraph_TransitiveClosure(t *testing.T) {
	g := chain([2]string{"a", "b"}, [2]string{"b", "c"})

	if got, want := g.TransitiveClosure("a"), []string{"b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("TransitiveClosure(a) = %v, want %v", got, want)
	}
}

func TestGraph_FindCycles(t *testing.T) {
	tests := []struct {
		name  string
		edges [][2]string
		want  [][]string
	}{
		{
			name:  "empty",
			edges: nil,
			want:  nil,
		},
		{
			name:  "dag",
			edges: [][2]string{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}},
			want:  nil,
		},
		{
			name:  "two node loop",
			edges: [][2]string{{"A", "B"}, {"B", "A"}},
			want:  [][]string{{"A", "B"}},
		},
		{
			name:  "self loop",
			edges: [][2]string{{"a", "a"}},
			want:  [][]string{{"a"}},
		},
		{
			name:  "cycle below entry",
			edges: [][2]string{{"start", "x"}, {"x", "y"}, {"y", "z"}, {"z", "x"}},
			want:  [][]string{{"x", "y", "z"}},
		},
		{
			name: "one cycle per root",
			// Both loops hang off root r, only the first is reported.
			edges: [][2]string{{"r", "a"}, {"a", "r"}, {"r", "b"}, {"b", "r"}},
			want:  [][]string{{"r", "a"}},
		},
		{
			name:  "disconnected components",
			edges: [][2]string{{"a", "b"}, {"b", "a"}, {"c", "d"}, {"d", "c"}},
			want:  [][]string{{"a", "b"}, {"c", "d"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := chain(tt.edges...)
			got := g.FindCycles()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FindCycles() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatCycle(t *testing.T) {
	if got := FormatCycle([]string{"a", "b"}); got != "a → b → a" {
		t.Errorf("FormatCycle = %q", got)
	}
	if got := FormatCycle([]string{"a"}); got != "a → a" {
		t.Errorf("FormatCycle self loop = %q", got)
	}
	if got := FormatCycle(nil); got != "" {
		t.Errorf("FormatCycle(nil) = %q", got)
	}
}

func TestGraph_TopologicalSort(t *testing.T) {
	g := chain([2]string{"a", "b"}, [2]string{"a", "c"}, [2]string{"b", "d"}, [2]string{"c", "d"})
	if got, want := g.TopologicalSort(), []string{"a", "b", "c", "d"}; !reflect.DeepEqual(got, want) {
		t.Errorf("TopologicalSort() = %v, want %v", got, want)
	}

	cyclic := chain([2]string{"a", "b"}, [2]string{"b", "a"})
	if got := cyclic.TopologicalSort(); got != nil {
		t.Errorf("expected nil for cyclic graph, got %v", got)
	}

	if got := New().TopologicalSort(); len(got) != 0 {
		t.Errorf("expected empty order, got %v", got)
	}
}

func TestGraph_Mermaid(t *testing.T) {
	g := chain([2]string{"check-disk", "wipe-cache"}, [2]string{"wipe-cache", "check-disk"})
	g.AddNode("2nd step")

	out := g.Mermaid(&MermaidOptions{
		Direction: "TD",
		EdgeKind:  EdgeHandsOff,
		Types:     map[string]string{"check-disk": "command", "wipe-cache": "validation"},
		Cycles:    g.FindCycles(),
	})

	for _, want := range []string{
		"flowchart TD\n",
		`check_disk["check-disk"]:::cycle`,
		`wipe_cache{{"wipe-cache"}}:::cycle`,
		`_2nd_step(["2nd step"])`,
		"check_disk -.-> wipe_cache",
		"classDef cycle",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Mermaid output missing %q:\n%s", want, out)
		}
	}

	plain := chain([2]string{"a", "b"}).Mermaid(nil)
	if !strings.HasPrefix(plain, "flowchart LR\n") || !strings.Contains(plain, "a --> b") {
		t.Errorf("default Mermaid output unexpected:\n%s", plain)
	}
	if strings.Contains(plain, "classDef") {
		t.Error("classDef should only appear when cycles are highlighted")
	}
}
