// Package output renders lint results.
//
// # Formats
//
// Four output formats are supported:
//
//   - text (default): one line per diagnostic with a severity symbol,
//     followed by Command: and Fix: context lines and a per-file summary
//   - yaml: the Report structure, self-documenting keys
//   - json: the same structure as yaml
//   - sarif: SARIF 2.1.0 with one rule per diagnostic code
//
// All formatters accept the per-file results produced by the lint package
// and never reorder diagnostics within a file.
//
// # Usage
//
//	f, err := output.GetFormatter(output.FormatSARIF)
//	if err != nil {
//		return err
//	}
//	return f.FormatToWriter(os.Stdout, results)
package output
