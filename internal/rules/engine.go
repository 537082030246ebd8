// Package rules applies the business rules (destructive marking, logic-check
// promotion, security hygiene, naming and intent quality) and the semantic
// hygiene checks to a decoded script.
package rules

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/hargabyte/scriptlint/internal/diag"
	"github.com/hargabyte/scriptlint/internal/script"
	"github.com/hargabyte/scriptlint/internal/shell"
)

// Options tunes the rule thresholds.
type Options struct {
	// NamingThreshold is the share of IDs that must follow the dominant style.
	NamingThreshold float64
	// MinMetadataIntent is the shortest acceptable document intent.
	MinMetadataIntent int
	// MinNodeIntent is the shortest acceptable node intent.
	MinNodeIntent int
	// Verbose adds informational semantic diagnostics.
	Verbose bool
}

// DefaultOptions returns the standard thresholds.
func DefaultOptions() Options {
	return Options{
		NamingThreshold:   0.8,
		MinMetadataIntent: 20,
		MinNodeIntent:     10,
	}
}

func (o Options) String() string {
	return fmt.Sprintf("naming>=%.2f metadata-intent>=%d node-intent>=%d verbose=%t",
		o.NamingThreshold, o.MinMetadataIntent, o.MinNodeIntent, o.Verbose)
}

// Engine evaluates rules against documents. It is safe for concurrent use;
// classifications are memoized per command string.
type Engine struct {
	classifier *shell.Classifier
	opts       Options
	logger     hclog.Logger
	cache      sync.Map
}

// NewEngine creates an engine. A nil classifier gets the default one; a nil
// logger discards output.
func NewEngine(c *shell.Classifier, opts Options, logger hclog.Logger) *Engine {
	if c == nil {
		c = shell.NewClassifier()
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Engine{classifier: c, opts: opts, logger: logger}
}

func (e *Engine) classify(cmd string) shell.Analysis {
	if v, ok := e.cache.Load(cmd); ok {
		return v.(shell.Analysis)
	}
	a := e.classifier.Classify(cmd)
	e.cache.Store(cmd, a)
	return a
}

// Evaluate runs rules A to D and returns their diagnostics in rule order.
func (e *Engine) Evaluate(doc *script.Document) []diag.Diagnostic {
	var out []diag.Diagnostic
	out = append(out, e.destructive(doc)...)
	out = append(out, e.logicChecks(doc)...)
	out = append(out, e.naming(doc)...)
	out = append(out, e.intents(doc)...)
	return out
}

func commands(doc *script.Document) []*script.Command {
	var out []*script.Command
	doc.Walk(func(n script.Node) bool {
		if c, ok := n.(*script.Command); ok {
			out = append(out, c)
		}
		return true
	})
	return out
}

func nodeName(m script.Meta) string {
	if m.ID == "" {
		return "unknown"
	}
	return m.ID
}

// destructive covers rule A (marking) and rule C (security concerns on
// destructive commands).
func (e *Engine) destructive(doc *script.Document) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, c := range commands(doc) {
		id := nodeName(c.Meta)
		a := e.classify(c.Shell)
		if !a.Success {
			e.logger.Debug("command not analyzable", "id", id, "error", a.Error)
			out = append(out, diag.New(diag.CodeCannotAnalyze,
				"Cannot analyze command for destructive operations: %s (%s)", id, a.Error).
				At(c.Path, c.Line).ForNode(c.ID).WithCommand(c.Shell))
			continue
		}

		switch {
		case a.IsDestructive && !c.Destructive:
			reason := a.DestructiveReason
			if reason == "" {
				reason = "contains destructive operations"
			}
			out = append(out, diag.New(diag.CodeDestructiveUnmarked,
				"Destructive command not marked as destructive: %s (%s)", id, reason).
				At(c.Path, c.Line).ForNode(c.ID).WithCommand(c.Shell).
				WithFix("Add 'destructive: true' to command '%s'", id))
		case c.Destructive && !a.IsDestructive:
			out = append(out, diag.New(diag.CodeDestructiveOvermarked,
				"Command marked destructive but appears safe: %s", id).
				At(c.Path, c.Line).ForNode(c.ID).WithCommand(c.Shell).
				WithFix("Remove 'destructive: true' or verify the command is actually destructive"))
		}

		if a.IsDestructive {
			for _, issue := range a.SecurityIssues {
				out = append(out, diag.New(diag.CodeDestructiveSecurity,
					"Security concern in destructive command %s: %s", id, issue).
					At(c.Path, c.Line).ForNode(c.ID).WithCommand(c.Shell))
			}
		}
	}
	return out
}

// logicChecks covers rule B. Validation nodes are exempt.
func (e *Engine) logicChecks(doc *script.Document) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, c := range commands(doc) {
		a := e.classify(c.Shell)
		if !a.Success || !a.HasLogicChecks {
			continue
		}
		id := nodeName(c.Meta)
		out = append(out, diag.New(diag.CodeLogicCheck,
			"Command contains logic check, consider validation element: %s (%s)", id, strings.Join(a.LogicPatterns, ", ")).
			At(c.Path, c.Line).ForNode(c.ID).WithCommand(c.Shell).
			WithFix("Convert command '%s' to a validation element", id))
	}
	return out
}

// intents checks intent length and redundancy.
func (e *Engine) intents(doc *script.Document) []diag.Diagnostic {
	var out []diag.Diagnostic
	if intent := strings.TrimSpace(doc.Metadata.Intent); intent != "" && len(intent) < e.opts.MinMetadataIntent {
		out = append(out, diag.New(diag.CodeShortMetadataIntent, "Main script intent description is very short").
			At("metadata.intent", 0))
	}

	doc.Walk(func(n script.Node) bool {
		m := n.Info()
		intent := strings.TrimSpace(m.Intent)
		if intent == "" {
			return true
		}
		id := nodeName(m)
		switch {
		case len(intent) < e.opts.MinNodeIntent:
			out = append(out, diag.New(diag.CodeShortIntent, "Very short intent description for %s", id).
				At(m.Path, m.Line).ForNode(m.ID))
		case m.ID != "" && strings.EqualFold(intent, reword(m.ID)):
			out = append(out, diag.New(diag.CodeRedundantIntent, "Intent description is just a rewording of ID for %s", id).
				At(m.Path, m.Line).ForNode(m.ID).
				WithFix("Describe what '%s' achieves rather than restating its ID", id))
		}
		return true
	})
	return out
}

func reword(id string) string {
	return strings.NewReplacer("-", " ", "_", " ").Replace(strings.ToLower(id))
}
