package graph

import (
	"fmt"
	"regexp"
	"strings"
)

// MermaidOptions configures Mermaid diagram generation.
type MermaidOptions struct {
	Direction string // Layout direction: "TD" (top-down) or "LR" (left-right)
	Title     string // Optional diagram title
	EdgeKind  string // EdgeTriggers or EdgeHandsOff
	// Types maps node IDs to script node types for shape selection.
	Types map[string]string
	// Cycles are highlighted with the "cycle" class.
	Cycles [][]string
}

// DefaultMermaidOptions returns sensible defaults for Mermaid diagram generation.
func DefaultMermaidOptions() *MermaidOptions {
	return &MermaidOptions{
		Direction: "LR",
		EdgeKind:  EdgeTriggers,
	}
}

// Mermaid renders the graph as a Mermaid flowchart. Nodes and edges are
// emitted in insertion order.
func (g *Graph) Mermaid(opts *MermaidOptions) string {
	if opts == nil {
		opts = DefaultMermaidOptions()
	}
	direction := opts.Direction
	if direction != "TD" && direction != "LR" {
		direction = "LR"
	}

	inCycle := make(map[string]bool)
	for _, c := range opts.Cycles {
		for _, id := range c {
			inCycle[id] = true
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "flowchart %s\n", direction)
	if opts.Title != "" {
		fmt.Fprintf(&sb, "    subgraph title[\"%s\"]\n", escapeMermaidString(opts.Title))
		sb.WriteString("    end\n")
	}

	for _, id := range g.order {
		shape := GetNodeShape(opts.Types[id])
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s", sanitizeMermaidID(id), shape.Open, escapeMermaidString(id), shape.Close)
		if inCycle[id] {
			sb.WriteString(":::cycle")
		}
		sb.WriteString("\n")
	}

	link := GetEdgeStyle(opts.EdgeKind)
	for _, from := range g.order {
		for _, to := range g.Edges[from] {
			fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(from), link, sanitizeMermaidID(to))
		}
	}

	if len(inCycle) > 0 {
		sb.WriteString("    classDef cycle stroke:#d33,stroke-width:3px\n")
	}
	return sb.String()
}

// Mermaid IDs can contain alphanumeric chars and underscores.
var mermaidIDRegex = regexp.MustCompile(`[^a-zA-Z0-9_]`)

func sanitizeMermaidID(id string) string {
	sanitized := mermaidIDRegex.ReplaceAllString(id, "_")

	// Ensure it starts with a letter or underscore (not a digit)
	if len(sanitized) > 0 && sanitized[0] >= '0' && sanitized[0] <= '9' {
		sanitized = "_" + sanitized
	}
	if sanitized == "" {
		sanitized = "_empty"
	}
	return sanitized
}

// escapeMermaidString escapes special characters in Mermaid string content.
func escapeMermaidString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "#quot;")
	s = strings.ReplaceAll(s, "<", "#lt;")
	s = strings.ReplaceAll(s, ">", "#gt;")
	return s
}
