package rules

import (
	"regexp"
	"strings"

	"github.com/hargabyte/scriptlint/internal/diag"
	"github.com/hargabyte/scriptlint/internal/script"
	"github.com/hargabyte/scriptlint/internal/shell"
)

var credentialRe = regexp.MustCompile(`(?i)\b(password|passwd|token|secret|api[_-]?key|key)=`)

var networkCommands = map[string]bool{
	"curl":  true,
	"wget":  true,
	"ssh":   true,
	"scp":   true,
	"rsync": true,
}

// Semantic runs the hygiene checks on every command and validation node.
// Unanalyzable commands are skipped here; rule A already reports them.
func (e *Engine) Semantic(doc *script.Document) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, n := range doc.ShellNodes() {
		cmd, _ := script.ShellText(n)
		a := e.classify(cmd)
		if !a.Success {
			continue
		}
		out = append(out, e.semanticNode(n.Info(), cmd, a)...)
	}
	return out
}

func (e *Engine) semanticNode(m script.Meta, cmd string, a shell.Analysis) []diag.Diagnostic {
	id := nodeName(m)
	at := func(d diag.Diagnostic) diag.Diagnostic {
		return d.At(m.Path, m.Line).ForNode(m.ID).WithCommand(cmd)
	}

	var out []diag.Diagnostic
	if a.CommandName == "" && a.CommandType != shell.TypeAssignment {
		out = append(out, at(diag.New(diag.CodeNoCommandName, "Cannot determine command name for %s", id)))
	}
	if a.UsesSudo {
		out = append(out, at(diag.New(diag.CodeSudo, "Command uses sudo: %s", id)).
			WithFix("Confirm '%s' needs elevated privileges", id))
	}
	for _, issue := range a.SecurityIssues {
		out = append(out, at(diag.New(diag.CodeSecurityIssue, "Security concern in %s: %s", id, issue)))
	}
	if credentialRe.MatchString(cmd) {
		out = append(out, at(diag.New(diag.CodeCredential, "Possible hard-coded credential in %s", id)).
			WithFix("Read the value from an environment variable or secret store"))
	}
	for _, name := range a.Commands {
		if networkCommands[name] {
			out = append(out, at(diag.New(diag.CodeNetwork, "Network operation in %s: %s", id, name)))
			break
		}
	}

	if !e.opts.Verbose {
		return out
	}
	out = append(out, at(diag.New(diag.CodeCommandType, "Command type for %s: %s", id, a.CommandType)))
	if len(a.VariablesRead) > 0 {
		out = append(out, at(diag.New(diag.CodeVarsRead, "Variables read by %s: %s", id, strings.Join(a.VariablesRead, ", "))))
	}
	if len(a.VariablesWritten) > 0 {
		out = append(out, at(diag.New(diag.CodeVarsWritten, "Variables written by %s: %s", id, strings.Join(a.VariablesWritten, ", "))))
	}
	if len(a.Redirections) > 0 {
		out = append(out, at(diag.New(diag.CodeRedirections, "Redirections in %s: %s", id, strings.Join(a.Redirections, " "))))
	}
	return out
}
