package xref

import (
	"github.com/hargabyte/scriptlint/internal/diag"
	"github.com/hargabyte/scriptlint/internal/graph"
	"github.com/hargabyte/scriptlint/internal/script"
)

// BuildCommandGraph adds an edge from every conditional's source to each
// command node found anywhere in its then and else branches.
func BuildCommandGraph(doc *script.Document) *graph.Graph {
	g := graph.New()
	for _, c := range doc.Conditionals() {
		if c.Source == "" {
			continue
		}
		branch := append(c.Then.Nodes(), c.Else.Nodes()...)
		script.Walk(branch, func(n script.Node) bool {
			if cmd, ok := n.(*script.Command); ok && cmd.ID != "" {
				g.AddEdge(c.Source, cmd.ID)
			}
			return true
		})
	}
	return g
}

// BuildScriptGraph adds an edge between consecutive IDs of every
// script-reference array in a conditional branch.
func BuildScriptGraph(doc *script.Document) *graph.Graph {
	g := graph.New()
	for _, c := range doc.Conditionals() {
		for _, refs := range branchRefs(c) {
			for i := 0; i+1 < len(refs.IDs); i++ {
				g.AddEdge(refs.IDs[i], refs.IDs[i+1])
			}
		}
	}
	return g
}

func branchRefs(c *script.Conditional) []*script.ScriptRefs {
	return append(c.Then.Refs(), c.Else.Refs()...)
}

// ConditionalSources returns every non-empty condition source in document
// order.
func ConditionalSources(doc *script.Document) []string {
	var out []string
	for _, c := range doc.Conditionals() {
		if c.Source != "" {
			out = append(out, c.Source)
		}
	}
	return out
}

func conditionalName(c *script.Conditional) string {
	if c.ID == "" {
		return "unknown"
	}
	return c.ID
}

// ValidateReferences reports condition sources and script-reference IDs that
// are not defined anywhere in the document.
func ValidateReferences(doc *script.Document, r *Registry) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, c := range doc.Conditionals() {
		if c.Source != "" && !r.Has(c.Source) {
			out = append(out, diag.New(diag.CodeUnresolvedCommandRef,
				"Unresolved command reference '%s' in conditional '%s'", c.Source, conditionalName(c)).
				At(c.SourcePath, c.SourceLine).
				ForNode(c.ID).
				WithFix("Define a command with id '%s' or correct condition.source", c.Source))
		}
	}
	for _, c := range doc.Conditionals() {
		for _, refs := range branchRefs(c) {
			for _, id := range refs.IDs {
				if r.Has(id) {
					continue
				}
				out = append(out, diag.New(diag.CodeUnresolvedScriptRef,
					"Unresolved script reference '%s' in branch of conditional '%s'", id, conditionalName(c)).
					At(refs.Path, refs.Line).
					ForNode(c.ID).
					WithFix("Define a script with id '%s' or remove it from the reference list", id))
			}
		}
	}
	return out
}

// CheckCycles reports the cycles of both graphs under their own codes.
func CheckCycles(commands, scripts *graph.Graph) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, cycle := range commands.FindCycles() {
		out = append(out, diag.New(diag.CodeCommandCycle,
			"Infinite loop detected in command references: %s", graph.FormatCycle(cycle)).
			ForNode(cycle[0]))
	}
	for _, cycle := range scripts.FindCycles() {
		out = append(out, diag.New(diag.CodeScriptCycle,
			"Circular reference detected in script references: %s", graph.FormatCycle(cycle)).
			ForNode(cycle[0]))
	}
	return out
}
