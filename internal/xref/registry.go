// Package xref resolves identifiers across a script: the ID registry, the
// command and script reference graphs, and the checks built on them.
package xref

import (
	"strings"

	"github.com/hargabyte/scriptlint/internal/diag"
	"github.com/hargabyte/scriptlint/internal/script"
)

// Occurrence is one place an ID is defined.
type Occurrence struct {
	Path string
	Type string
	Line int
	Node script.Node
}

// Registry maps every defined ID to its occurrences, in document order.
type Registry struct {
	order []string
	occ   map[string][]Occurrence
}

// BuildRegistry walks every node of doc, including nodes embedded in
// conditional branches, and records each one with a non-empty ID.
func BuildRegistry(doc *script.Document) *Registry {
	r := &Registry{occ: make(map[string][]Occurrence)}
	doc.Walk(func(n script.Node) bool {
		m := n.Info()
		if m.ID == "" {
			return true
		}
		if _, ok := r.occ[m.ID]; !ok {
			r.order = append(r.order, m.ID)
		}
		r.occ[m.ID] = append(r.occ[m.ID], Occurrence{Path: m.Path, Type: m.Type, Line: m.Line, Node: n})
		return true
	})
	return r
}

// Has reports whether id is defined.
func (r *Registry) Has(id string) bool {
	_, ok := r.occ[id]
	return ok
}

// IDs returns every defined ID in first-seen order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

// Occurrences returns where id is defined.
func (r *Registry) Occurrences(id string) []Occurrence {
	return r.occ[id]
}

// Type returns the declared type of the first occurrence of id.
func (r *Registry) Type(id string) string {
	if occ := r.occ[id]; len(occ) > 0 {
		return occ[0].Type
	}
	return ""
}

// Types maps each ID to the type of its first occurrence.
func (r *Registry) Types() map[string]string {
	out := make(map[string]string, len(r.order))
	for _, id := range r.order {
		out[id] = r.Type(id)
	}
	return out
}

// Duplicates returns the IDs defined more than once, in first-seen order.
func (r *Registry) Duplicates() []string {
	var out []string
	for _, id := range r.order {
		if len(r.occ[id]) > 1 {
			out = append(out, id)
		}
	}
	return out
}

// CheckDuplicates emits one error per duplicated ID listing every path.
func CheckDuplicates(r *Registry) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, id := range r.Duplicates() {
		occ := r.occ[id]
		paths := make([]string, len(occ))
		for i, o := range occ {
			paths[i] = o.Path
		}
		out = append(out, diag.New(diag.CodeDuplicateID, "Duplicate ID '%s' found at: %s", id, strings.Join(paths, ", ")).
			At(occ[0].Path, occ[0].Line).
			ForNode(id).
			WithFix("Rename all but one occurrence of '%s'", id))
	}
	return out
}
