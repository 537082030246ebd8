package output

import (
	"github.com/hargabyte/scriptlint/internal/diag"
)

// Report is the structured form of a lint run, shared by the yaml and json
// formatters.
type Report struct {
	Files   []FileReport  `yaml:"files" json:"files"`
	Summary SummaryOutput `yaml:"summary" json:"summary"`
}

// FileReport holds the diagnostics of one file.
type FileReport struct {
	File     string            `yaml:"file" json:"file"`
	Success  bool              `yaml:"success" json:"success"`
	Errors   []diag.Diagnostic `yaml:"errors" json:"errors"`
	Warnings []diag.Diagnostic `yaml:"warnings" json:"warnings"`
	Info     []diag.Diagnostic `yaml:"info,omitempty" json:"info,omitempty"`
}

// SummaryOutput totals a lint run.
type SummaryOutput struct {
	Files    int `yaml:"files" json:"files"`
	Errors   int `yaml:"errors" json:"errors"`
	Warnings int `yaml:"warnings" json:"warnings"`
	Info     int `yaml:"info" json:"info"`
	ExitCode int `yaml:"exit_code" json:"exit_code"`
}

// NewReport builds a Report from per-file results, keeping their order.
// Nil results are skipped.
func NewReport(results []*diag.Result) *Report {
	r := &Report{Files: make([]FileReport, 0, len(results))}
	kept := make([]*diag.Result, 0, len(results))
	for _, res := range results {
		if res == nil {
			continue
		}
		kept = append(kept, res)
		r.Files = append(r.Files, FileReport{
			File:     res.File,
			Success:  res.Success(),
			Errors:   nonNil(res.Errors),
			Warnings: nonNil(res.Warnings),
			Info:     res.Info,
		})
		r.Summary.Errors += len(res.Errors)
		r.Summary.Warnings += len(res.Warnings)
		r.Summary.Info += len(res.Info)
	}
	r.Summary.Files = len(r.Files)
	r.Summary.ExitCode = diag.ExitCode(kept)
	return r
}

func nonNil(ds []diag.Diagnostic) []diag.Diagnostic {
	if ds == nil {
		return []diag.Diagnostic{}
	}
	return ds
}
