package rules

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/hargabyte/scriptlint/internal/diag"
	"github.com/hargabyte/scriptlint/internal/script"
)

// Naming styles, in tie-break order.
const (
	StyleKebab = "kebab-case"
	StyleSnake = "snake_case"
	StyleCamel = "camelCase"
	StyleMixed = "mixed"
)

var styleOrder = []string{StyleKebab, StyleSnake, StyleCamel, StyleMixed}

var neutralID = regexp.MustCompile(`^[a-z0-9]+$`)

// NamingStyle classifies an ID. Lowercase single-word IDs fit every style
// and return "".
func NamingStyle(id string) string {
	hasDash := strings.Contains(id, "-")
	hasUnderscore := strings.Contains(id, "_")
	switch {
	case neutralID.MatchString(id):
		return ""
	case hasDash && !hasUnderscore:
		return StyleKebab
	case hasUnderscore && !hasDash:
		return StyleSnake
	case !hasDash && !hasUnderscore && strings.IndexFunc(id, unicode.IsUpper) >= 0:
		return StyleCamel
	}
	return StyleMixed
}

// DominantStyle returns the most common style among ids and the number of
// ids conforming to it (style-neutral ids always conform).
func DominantStyle(ids []string) (string, int) {
	counts := make(map[string]int, len(styleOrder))
	neutral := 0
	for _, id := range ids {
		if s := NamingStyle(id); s == "" {
			neutral++
		} else {
			counts[s]++
		}
	}
	best := ""
	for _, s := range styleOrder {
		if best == "" || counts[s] > counts[best] {
			best = s
		}
	}
	if counts[best] == 0 {
		return "", neutral
	}
	return best, counts[best] + neutral
}

// naming covers rule D's ID consistency check.
func (e *Engine) naming(doc *script.Document) []diag.Diagnostic {
	var ids []string
	doc.Walk(func(n script.Node) bool {
		if id := n.Info().ID; id != "" {
			ids = append(ids, id)
		}
		return true
	})
	if len(ids) == 0 {
		return nil
	}

	style, conforming := DominantStyle(ids)
	if style == "" || float64(conforming) >= e.opts.NamingThreshold*float64(len(ids)) {
		return nil
	}
	return []diag.Diagnostic{
		diag.New(diag.CodeNamingInconsistent,
			"Inconsistent ID naming patterns detected (consider using %s)", style).
			WithFix("Rename IDs to %s (%d of %d conform)", style, conforming, len(ids)),
	}
}
