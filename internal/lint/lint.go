// Package lint orchestrates the analysis phases over one document and
// aggregates their diagnostics into a diag.Result.
package lint

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/hargabyte/scriptlint/internal/cache"
	"github.com/hargabyte/scriptlint/internal/diag"
	"github.com/hargabyte/scriptlint/internal/graph"
	"github.com/hargabyte/scriptlint/internal/rules"
	"github.com/hargabyte/scriptlint/internal/script"
	"github.com/hargabyte/scriptlint/internal/shell"
	"github.com/hargabyte/scriptlint/internal/xref"
)

// Options controls which phases run and how results are post-processed.
type Options struct {
	// Strict promotes warnings to errors.
	Strict bool
	// Semantic enables the semantic hygiene phase.
	Semantic bool
	// EntryMarker marks entry-point scripts for reachability.
	EntryMarker string
	// Disabled codes are dropped from the result.
	Disabled []diag.Code
	Rules    rules.Options
}

// DefaultOptions returns the options used when no config is present.
func DefaultOptions() Options {
	return Options{
		Semantic:    true,
		EntryMarker: xref.DefaultEntryMarker,
		Rules:       rules.DefaultOptions(),
	}
}

// Analyzer runs every phase over a document.
type Analyzer struct {
	engine   *rules.Engine
	opts     Options
	disabled map[diag.Code]bool
	logger   hclog.Logger
	cache    ResultCache
}

// ResultCache stores finished results keyed by path and content hash. The
// implementation is responsible for invalidating entries when settings change.
type ResultCache interface {
	Get(path, hash string) (*diag.Result, bool, error)
	Put(path, hash string, result *diag.Result) error
}

// WithCache makes AnalyzeFile consult c before analyzing and store what it
// computes. Cache failures are logged and never fail an analysis.
func (a *Analyzer) WithCache(c ResultCache) *Analyzer {
	a.cache = c
	return a
}

// NewAnalyzer creates an analyzer. A nil classifier gets the default one; a
// nil logger discards output.
func NewAnalyzer(c *shell.Classifier, opts Options, logger hclog.Logger) *Analyzer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	disabled := make(map[diag.Code]bool, len(opts.Disabled))
	for _, c := range opts.Disabled {
		disabled[c] = true
	}
	return &Analyzer{
		engine:   rules.NewEngine(c, opts.Rules, logger.Named("rules")),
		opts:     opts,
		disabled: disabled,
		logger:   logger,
	}
}

// Graphs holds the per-run reference structures of a document.
type Graphs struct {
	Registry *xref.Registry
	Commands *graph.Graph
	Scripts  *graph.Graph
	Sources  []string
}

// BuildGraphs builds the registry and both reference graphs.
func BuildGraphs(doc *script.Document) *Graphs {
	return &Graphs{
		Registry: xref.BuildRegistry(doc),
		Commands: xref.BuildCommandGraph(doc),
		Scripts:  xref.BuildScriptGraph(doc),
		Sources:  xref.ConditionalSources(doc),
	}
}

type phase struct {
	name string
	run  func() []diag.Diagnostic
}

// Analyze runs the phases concurrently and merges their diagnostics in a
// fixed order: duplicates, references, cycles, reachability, business rules,
// semantic. The only error returned is a cancelled context.
func (a *Analyzer) Analyze(ctx context.Context, doc *script.Document) (*diag.Result, error) {
	g := BuildGraphs(doc)

	phases := []phase{
		{"duplicates", func() []diag.Diagnostic { return xref.CheckDuplicates(g.Registry) }},
		{"references", func() []diag.Diagnostic { return xref.ValidateReferences(doc, g.Registry) }},
		{"cycles", func() []diag.Diagnostic { return xref.CheckCycles(g.Commands, g.Scripts) }},
		{"reachability", func() []diag.Diagnostic {
			return xref.CheckUnreachable(g.Registry, g.Commands, g.Scripts, g.Sources, a.opts.EntryMarker)
		}},
		{"rules", func() []diag.Diagnostic { return a.engine.Evaluate(doc) }},
	}
	if a.opts.Semantic {
		phases = append(phases, phase{"semantic", func() []diag.Diagnostic { return a.engine.Semantic(doc) }})
	}

	slots := make([][]diag.Diagnostic, len(phases))
	eg, ctx := errgroup.WithContext(ctx)
	for i, p := range phases {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			slots[i] = p.run()
			a.logger.Debug("phase complete", "file", doc.File, "phase", p.name, "diagnostics", len(slots[i]))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", displayName(doc.File), err)
	}

	result := diag.NewResult(doc.File)
	for _, ds := range slots {
		for _, d := range ds {
			if !a.disabled[d.Code] {
				result.Add(d)
			}
		}
	}
	if a.opts.Strict {
		result = result.Strict()
	}
	a.logger.Debug("analysis complete", "file", displayName(doc.File), "summary", result.Summary())
	return result, nil
}

// AnalyzeFile loads and analyzes path. A document that cannot be decoded
// yields a result holding a single syntax error rather than an error; read
// failures are returned as errors.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*diag.Result, error) {
	if a.cache != nil {
		return a.analyzeCached(ctx, path)
	}
	doc, err := script.Load(path)
	if err != nil {
		return a.decodeFailure(path, err)
	}
	return a.Analyze(ctx, doc)
}

func (a *Analyzer) analyzeCached(ctx context.Context, path string) (*diag.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script %s: %w", path, err)
	}
	sum := cache.HashContent(data)

	cached, ok, err := a.cache.Get(path, sum)
	if err != nil {
		a.logger.Warn("cache lookup failed", "file", path, "error", err)
	}
	if ok {
		a.logger.Debug("cache hit", "file", path)
		return cached, nil
	}

	result, err := a.AnalyzeBytes(ctx, path, data)
	if err != nil {
		return nil, err
	}
	if err := a.cache.Put(path, sum, result); err != nil {
		a.logger.Warn("cache store failed", "file", path, "error", err)
	}
	return result, nil
}

// AnalyzeBytes analyzes an in-memory document reported under name.
func (a *Analyzer) AnalyzeBytes(ctx context.Context, name string, data []byte) (*diag.Result, error) {
	doc, err := script.Parse(data)
	if err != nil {
		return a.decodeFailure(name, err)
	}
	doc.File = name
	return a.Analyze(ctx, doc)
}

func (a *Analyzer) decodeFailure(name string, err error) (*diag.Result, error) {
	var de *script.DecodeError
	if !errors.As(err, &de) {
		return nil, err
	}
	a.logger.Debug("decode failed", "file", name, "error", err)
	result := diag.NewResult(name)
	result.Add(diag.New(diag.CodeSyntax, "%s", de.Message).At("", de.Line))
	if a.opts.Strict {
		result = result.Strict()
	}
	return result, nil
}

func displayName(file string) string {
	if file == "" {
		return "<input>"
	}
	return file
}

// AnalyzeFiles analyzes paths with at most workers files in flight. Results
// keep the order of paths.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, paths []string, workers int) ([]*diag.Result, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]*diag.Result, len(paths))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, path := range paths {
		eg.Go(func() error {
			r, err := a.AnalyzeFile(ctx, path)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
