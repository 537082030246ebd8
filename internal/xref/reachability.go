package xref

import (
	"strings"

	"github.com/hargabyte/scriptlint/internal/diag"
	"github.com/hargabyte/scriptlint/internal/graph"
	"github.com/hargabyte/scriptlint/internal/script"
)

// DefaultEntryMarker marks entry-point scripts that are never flagged as
// unreachable.
const DefaultEntryMarker = "main"

// IsEntryPoint reports whether an occurrence is an entry-point script: type
// script and an ID containing marker, case-insensitively.
func IsEntryPoint(id, typ, marker string) bool {
	if marker == "" || typ != script.TypeScript {
		return false
	}
	return strings.Contains(strings.ToLower(id), strings.ToLower(marker))
}

// FindUnreachable returns the registered IDs that are neither an edge target
// of either graph nor a conditional source, in registry order. An ID is
// kept if at least one of its occurrences is not an entry point.
func FindUnreachable(r *Registry, commands, scripts *graph.Graph, sources []string, marker string) []string {
	referenced := make(map[string]bool)
	for _, g := range []*graph.Graph{commands, scripts} {
		for _, id := range g.Targets() {
			referenced[id] = true
		}
	}
	for _, s := range sources {
		referenced[s] = true
	}

	var out []string
	for _, id := range r.IDs() {
		if referenced[id] {
			continue
		}
		for _, o := range r.Occurrences(id) {
			if !IsEntryPoint(id, o.Type, marker) {
				out = append(out, id)
				break
			}
		}
	}
	return out
}

// CheckUnreachable emits one warning per non-entry occurrence of each
// unreachable ID.
func CheckUnreachable(r *Registry, commands, scripts *graph.Graph, sources []string, marker string) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, id := range FindUnreachable(r, commands, scripts, sources, marker) {
		for _, o := range r.Occurrences(id) {
			if IsEntryPoint(id, o.Type, marker) {
				continue
			}
			out = append(out, diag.New(diag.CodeUnreachable, "Potentially unreachable element '%s'", id).
				At(o.Path, o.Line).
				ForNode(id))
		}
	}
	return out
}
