package diag

import (
	"fmt"
)

// Diagnostic is one finding.
type Diagnostic struct {
	Code     Code     `yaml:"code" json:"code"`
	Severity Severity `yaml:"severity" json:"severity"`
	Message  string   `yaml:"message" json:"message"`
	Path     string   `yaml:"path,omitempty" json:"path,omitempty"`
	Line     int      `yaml:"line,omitempty" json:"line,omitempty"`
	NodeID   string   `yaml:"node_id,omitempty" json:"node_id,omitempty"`
	Command  string   `yaml:"command,omitempty" json:"command,omitempty"`
	Fix      string   `yaml:"fix,omitempty" json:"fix,omitempty"`
}

// New creates a diagnostic with the code's default severity.
func New(code Code, format string, args ...any) Diagnostic {
	return Diagnostic{
		Code:     code,
		Severity: code.Severity(),
		Message:  fmt.Sprintf(format, args...),
	}
}

// At sets the structural location.
func (d Diagnostic) At(path string, line int) Diagnostic {
	d.Path = path
	d.Line = line
	return d
}

// ForNode sets the node the diagnostic refers to.
func (d Diagnostic) ForNode(id string) Diagnostic {
	d.NodeID = id
	return d
}

// WithCommand attaches the offending command text.
func (d Diagnostic) WithCommand(cmd string) Diagnostic {
	d.Command = cmd
	return d
}

// WithFix attaches a fix suggestion.
func (d Diagnostic) WithFix(format string, args ...any) Diagnostic {
	d.Fix = fmt.Sprintf(format, args...)
	return d
}

func (d Diagnostic) String() string {
	s := string(d.Code) + ": " + d.Message
	if d.Path != "" {
		s += " [" + d.Path + "]"
	}
	return s
}

// Exit codes returned by the CLI.
const (
	ExitSuccess  = 0
	ExitError    = 1
	ExitWarnings = 2
)

// Result aggregates the diagnostics of one document.
type Result struct {
	File     string       `yaml:"file,omitempty" json:"file,omitempty"`
	Errors   []Diagnostic `yaml:"errors" json:"errors"`
	Warnings []Diagnostic `yaml:"warnings" json:"warnings"`
	Info     []Diagnostic `yaml:"info,omitempty" json:"info,omitempty"`
}

// NewResult returns an empty result for file.
func NewResult(file string) *Result {
	return &Result{File: file}
}

// Add routes diagnostics into the bucket matching their severity.
func (r *Result) Add(ds ...Diagnostic) {
	for _, d := range ds {
		switch d.Severity {
		case SeverityError:
			r.Errors = append(r.Errors, d)
		case SeverityInfo:
			r.Info = append(r.Info, d)
		default:
			r.Warnings = append(r.Warnings, d)
		}
	}
}

// Success reports whether the result has no errors.
func (r *Result) Success() bool {
	return len(r.Errors) == 0
}

// All returns errors, warnings and info in that order.
func (r *Result) All() []Diagnostic {
	out := make([]Diagnostic, 0, len(r.Errors)+len(r.Warnings)+len(r.Info))
	out = append(out, r.Errors...)
	out = append(out, r.Warnings...)
	return append(out, r.Info...)
}

// ByCode returns the diagnostics carrying code, in order.
func (r *Result) ByCode(code Code) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.All() {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}

// Merge returns a new result holding r's diagnostics followed by those of
// others, in order and without de-duplication. The file of the first
// non-empty result wins.
func (r *Result) Merge(others ...*Result) *Result {
	out := &Result{File: r.File}
	for _, src := range append([]*Result{r}, others...) {
		if src == nil {
			continue
		}
		if out.File == "" {
			out.File = src.File
		}
		out.Errors = append(out.Errors, src.Errors...)
		out.Warnings = append(out.Warnings, src.Warnings...)
		out.Info = append(out.Info, src.Info...)
	}
	return out
}

// Strict returns a copy in which every warning has become an error.
func (r *Result) Strict() *Result {
	out := &Result{
		File:   r.File,
		Errors: append([]Diagnostic(nil), r.Errors...),
		Info:   append([]Diagnostic(nil), r.Info...),
	}
	for _, w := range r.Warnings {
		w.Severity = SeverityError
		out.Errors = append(out.Errors, w)
	}
	return out
}

// ExitCode maps the result to the CLI exit status.
func (r *Result) ExitCode() int {
	switch {
	case len(r.Errors) > 0:
		return ExitError
	case len(r.Warnings) > 0:
		return ExitWarnings
	}
	return ExitSuccess
}

// Summary returns e.g. "2 errors, 1 warning".
func (r *Result) Summary() string {
	return fmt.Sprintf("%s, %s", plural(len(r.Errors), "error"), plural(len(r.Warnings), "warning"))
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// ExitCode returns the worst exit code across results.
func ExitCode(results []*Result) int {
	code := ExitSuccess
	for _, r := range results {
		switch r.ExitCode() {
		case ExitError:
			return ExitError
		case ExitWarnings:
			code = ExitWarnings
		}
	}
	return code
}
