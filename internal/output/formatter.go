// Package output provides formatters for different output formats.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/owenrumney/go-sarif/v2/sarif"
	"gopkg.in/yaml.v3"

	"github.com/hargabyte/scriptlint/internal/diag"
)

// Formatter is the interface for rendering lint results in different formats.
type Formatter interface {
	// Format renders results and returns the formatted string or an error.
	Format(results []*diag.Result) (string, error)

	// FormatToWriter writes formatted output directly to a writer.
	FormatToWriter(w io.Writer, results []*diag.Result) error
}

// GetFormatter returns the formatter for f.
func GetFormatter(f Format) (Formatter, error) {
	switch f {
	case FormatText:
		return NewTextFormatter(), nil
	case FormatYAML:
		return NewYAMLFormatter(), nil
	case FormatJSON:
		return NewJSONFormatter(), nil
	case FormatSARIF:
		return NewSARIFFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", f)
	}
}

func formatString(f Formatter, results []*diag.Result) (string, error) {
	var buf bytes.Buffer
	if err := f.FormatToWriter(&buf, results); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Severity symbols used by the text formatter.
const (
	SymbolError   = "✗"
	SymbolWarning = "⚠"
	SymbolInfo    = "ℹ"
	SymbolPassed  = "✓"
)

var (
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))
	passedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	fileStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// TextFormatter renders results for terminals.
type TextFormatter struct {
	// Quiet suppresses files that have no diagnostics.
	Quiet bool
	// Color styles symbols and headings. The terminal's color profile still
	// decides whether escape codes are emitted.
	Color bool
}

// NewTextFormatter creates a new text formatter.
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{}
}

// Format renders results as text.
func (f *TextFormatter) Format(results []*diag.Result) (string, error) {
	return formatString(f, results)
}

// FormatToWriter writes text output to a writer.
func (f *TextFormatter) FormatToWriter(w io.Writer, results []*diag.Result) error {
	var b strings.Builder
	shown := 0
	var errs, warns, infos int
	for _, r := range results {
		if r == nil {
			continue
		}
		errs += len(r.Errors)
		warns += len(r.Warnings)
		infos += len(r.Info)
		if f.Quiet && len(r.All()) == 0 {
			continue
		}
		if shown > 0 {
			b.WriteString("\n")
		}
		shown++
		if r.File != "" {
			fmt.Fprintf(&b, "%s\n", f.style(fileStyle, r.File))
		}
		for _, d := range r.All() {
			f.writeDiagnostic(&b, d)
		}
		fmt.Fprintf(&b, "%s\n", f.status(len(r.Errors), len(r.Warnings), len(r.Info)))
	}
	if len(results) > 1 {
		fmt.Fprintf(&b, "\n%d files checked: %s\n", len(results), f.status(errs, warns, infos))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (f *TextFormatter) style(st lipgloss.Style, s string) string {
	if !f.Color {
		return s
	}
	return st.Render(s)
}

func (f *TextFormatter) status(errs, warns, infos int) string {
	line := statusLine(errs, warns, infos)
	if errs > 0 {
		return f.style(errorStyle, line)
	}
	return f.style(passedStyle, line)
}

func (f *TextFormatter) writeDiagnostic(b *strings.Builder, d diag.Diagnostic) {
	fmt.Fprintf(b, "%s %s: %s", f.style(severityStyle(d.Severity), symbol(d.Severity)), d.Code, d.Message)
	switch {
	case d.Line > 0:
		fmt.Fprintf(b, " [Line %d]", d.Line)
	case d.Path != "":
		fmt.Fprintf(b, " [%s]", d.Path)
	}
	b.WriteString("\n")
	if d.Command != "" {
		fmt.Fprintf(b, "    %s %s\n", f.style(dimStyle, "Command:"), d.Command)
	}
	if d.Fix != "" {
		fmt.Fprintf(b, "    %s %s\n", f.style(dimStyle, "Fix:"), d.Fix)
	}
}

func severityStyle(s diag.Severity) lipgloss.Style {
	switch s {
	case diag.SeverityError:
		return errorStyle
	case diag.SeverityWarning:
		return warningStyle
	default:
		return infoStyle
	}
}

func symbol(s diag.Severity) string {
	switch s {
	case diag.SeverityError:
		return SymbolError
	case diag.SeverityWarning:
		return SymbolWarning
	default:
		return SymbolInfo
	}
}

// statusLine returns e.g. "✗ Failed with 1 error, 2 warnings".
func statusLine(errs, warns, infos int) string {
	var parts []string
	if errs > 0 {
		parts = append(parts, plural(errs, "error"))
	}
	if warns > 0 {
		parts = append(parts, plural(warns, "warning"))
	}
	if infos > 0 {
		parts = append(parts, fmt.Sprintf("%d info", infos))
	}
	if len(parts) == 0 {
		return SymbolPassed + " Passed"
	}
	status := SymbolPassed + " Passed"
	if errs > 0 {
		status = SymbolError + " Failed"
	}
	return status + " with " + strings.Join(parts, ", ")
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// YAMLFormatter formats results as YAML output.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// Format formats results as YAML.
func (f *YAMLFormatter) Format(results []*diag.Result) (string, error) {
	return formatString(f, results)
}

// FormatToWriter writes YAML output to a writer.
func (f *YAMLFormatter) FormatToWriter(w io.Writer, results []*diag.Result) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	return encoder.Encode(NewReport(results))
}

// JSONFormatter formats results as JSON output.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format formats results as JSON.
func (f *JSONFormatter) Format(results []*diag.Result) (string, error) {
	return formatString(f, results)
}

// FormatToWriter writes JSON output to a writer.
func (f *JSONFormatter) FormatToWriter(w io.Writer, results []*diag.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(NewReport(results))
}

// ToolName and ToolURI identify the analyzer in SARIF runs.
const (
	ToolName = "scriptlint"
	ToolURI  = "https://github.com/hargabyte/scriptlint"
)

// SARIFFormatter formats results as a SARIF 2.1.0 log.
type SARIFFormatter struct{}

// NewSARIFFormatter creates a new SARIF formatter.
func NewSARIFFormatter() *SARIFFormatter {
	return &SARIFFormatter{}
}

// Format formats results as SARIF.
func (f *SARIFFormatter) Format(results []*diag.Result) (string, error) {
	return formatString(f, results)
}

// FormatToWriter writes a SARIF log to a writer.
func (f *SARIFFormatter) FormatToWriter(w io.Writer, results []*diag.Result) error {
	report, err := f.Report(results)
	if err != nil {
		return err
	}
	return report.PrettyWrite(w)
}

// Report builds the SARIF log: a single run, one rule per diagnostic code.
func (f *SARIFFormatter) Report(results []*diag.Result) (*sarif.Report, error) {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("creating SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(ToolName, ToolURI)
	for _, r := range results {
		if r == nil {
			continue
		}
		for _, d := range r.All() {
			rule := run.AddRule(string(d.Code)).
				WithDescription(d.Code.Description()).
				WithDefaultConfiguration(&sarif.ReportingConfiguration{
					Level: sarifLevel(d.Code.Severity()),
				})

			physical := sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(r.File))
			if d.Line > 0 {
				physical = physical.WithRegion(sarif.NewRegion().WithStartLine(d.Line))
			}
			location := sarif.NewLocation().WithPhysicalLocation(physical)

			result := sarif.NewRuleResult(rule.ID).
				WithMessage(sarif.NewTextMessage(d.Message)).
				WithLevel(sarifLevel(d.Severity)).
				WithLocations([]*sarif.Location{location})
			result.Properties = properties(d)
			run.AddResult(result)
		}
	}
	report.AddRun(run)
	return report, nil
}

func properties(d diag.Diagnostic) sarif.Properties {
	props := sarif.Properties{}
	if d.Path != "" {
		props["path"] = d.Path
	}
	if d.NodeID != "" {
		props["nodeId"] = d.NodeID
	}
	if d.Command != "" {
		props["command"] = d.Command
	}
	if d.Fix != "" {
		props["fix"] = d.Fix
	}
	if len(props) == 0 {
		return nil
	}
	return props
}

func sarifLevel(s diag.Severity) string {
	switch s {
	case diag.SeverityError:
		return "error"
	case diag.SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}
