package lint

import (
	"fmt"

	"github.com/hargabyte/scriptlint/internal/graph"
)

// Graph kinds accepted by Graphs.Select.
const (
	KindCommand = "command"
	KindScript  = "script"
)

// Select returns the reference graph of the given kind.
func (g *Graphs) Select(kind string) (*graph.Graph, error) {
	switch kind {
	case KindCommand, "":
		return g.Commands, nil
	case KindScript:
		return g.Scripts, nil
	default:
		return nil, fmt.Errorf("unknown graph kind %q (expected %s or %s)", kind, KindCommand, KindScript)
	}
}

// Mermaid renders the graph of the given kind as a flowchart. Node shapes
// follow the registry types and nodes on a cycle are highlighted. A non-empty
// from restricts the diagram to what is reachable from that node.
func (g *Graphs) Mermaid(kind, from, direction string) (string, error) {
	gr, err := g.Select(kind)
	if err != nil {
		return "", err
	}
	if from != "" {
		reach := gr.TransitiveClosure(from)
		if reach == nil {
			return "", fmt.Errorf("node %q is not in the %s graph", from, kindName(kind))
		}
		gr = gr.Subgraph(append([]string{from}, reach...))
	}

	opts := graph.DefaultMermaidOptions()
	if direction != "" {
		opts.Direction = direction
	}
	if kind == KindScript {
		opts.EdgeKind = graph.EdgeHandsOff
	}
	opts.Types = g.Registry.Types()
	opts.Cycles = gr.FindCycles()
	return gr.Mermaid(opts), nil
}

func kindName(kind string) string {
	if kind == "" {
		return KindCommand
	}
	return kind
}
