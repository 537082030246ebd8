package config

import (
	"fmt"

	"github.com/hargabyte/scriptlint/internal/diag"
	"github.com/hargabyte/scriptlint/internal/lint"
	"github.com/hargabyte/scriptlint/internal/rules"
	"github.com/hargabyte/scriptlint/internal/shell"
	"github.com/hargabyte/scriptlint/internal/xref"
)

// DefaultConfig returns configuration with sensible defaults.
// These defaults are used when no config file exists or when
// config file is missing specific fields.
func DefaultConfig() *Config {
	semantic := true
	return &Config{
		Analysis: AnalysisConfig{
			Semantic:    &semantic,
			EntryMarker: xref.DefaultEntryMarker,
			Workers:     4,
		},
		Rules: RulesConfig{
			NamingThreshold:   0.8,
			MinMetadataIntent: 20,
			MinNodeIntent:     10,
		},
		Classifier: ClassifierConfig{
			Strategy: "ast",
		},
		Output: OutputConfig{
			Format: "text",
		},
		Scan: ScanConfig{
			Include: []string{"*.yaml", "*.yml"},
			Exclude: []string{
				".git/**",
				".scriptlint/**",
				"node_modules/**",
				"vendor/**",
				"**/testdata/**",
			},
		},
	}
}

// Merge merges loaded config with defaults.
// Values from loaded config take precedence over defaults.
// Returns a new Config with merged values.
func Merge(loaded, defaults *Config) *Config {
	result := &Config{}

	result.Analysis = mergeAnalysisConfig(loaded.Analysis, defaults.Analysis)
	result.Rules = mergeRulesConfig(loaded.Rules, defaults.Rules)
	result.Classifier = mergeClassifierConfig(loaded.Classifier, defaults.Classifier)
	result.Output = mergeOutputConfig(loaded.Output, defaults.Output)
	result.Scan = mergeScanConfig(loaded.Scan, defaults.Scan)

	return result
}

func mergeAnalysisConfig(loaded, defaults AnalysisConfig) AnalysisConfig {
	result := AnalysisConfig{}

	// Strict: YAML unmarshals missing as false, which is also the default
	result.Strict = loaded.Strict
	result.Cache = loaded.Cache

	if loaded.Semantic != nil {
		result.Semantic = loaded.Semantic
	} else {
		result.Semantic = defaults.Semantic
	}

	if loaded.EntryMarker != "" {
		result.EntryMarker = loaded.EntryMarker
	} else {
		result.EntryMarker = defaults.EntryMarker
	}

	if loaded.Workers != 0 {
		result.Workers = loaded.Workers
	} else {
		result.Workers = defaults.Workers
	}

	return result
}

func mergeRulesConfig(loaded, defaults RulesConfig) RulesConfig {
	result := RulesConfig{}

	if len(loaded.Disable) > 0 {
		result.Disable = loaded.Disable
	} else {
		result.Disable = defaults.Disable
	}

	if loaded.NamingThreshold != 0 {
		result.NamingThreshold = loaded.NamingThreshold
	} else {
		result.NamingThreshold = defaults.NamingThreshold
	}

	if loaded.MinMetadataIntent != 0 {
		result.MinMetadataIntent = loaded.MinMetadataIntent
	} else {
		result.MinMetadataIntent = defaults.MinMetadataIntent
	}

	if loaded.MinNodeIntent != 0 {
		result.MinNodeIntent = loaded.MinNodeIntent
	} else {
		result.MinNodeIntent = defaults.MinNodeIntent
	}

	return result
}

func mergeClassifierConfig(loaded, defaults ClassifierConfig) ClassifierConfig {
	result := loaded

	if loaded.Strategy == "" {
		result.Strategy = defaults.Strategy
	}
	if len(loaded.DestructiveCommands) == 0 {
		result.DestructiveCommands = defaults.DestructiveCommands
	}
	if len(loaded.DestructivePatterns) == 0 {
		result.DestructivePatterns = defaults.DestructivePatterns
	}
	if len(loaded.LogicPatterns) == 0 {
		result.LogicPatterns = defaults.LogicPatterns
	}
	if len(loaded.SecurityPatterns) == 0 {
		result.SecurityPatterns = defaults.SecurityPatterns
	}

	return result
}

func mergeOutputConfig(loaded, defaults OutputConfig) OutputConfig {
	result := OutputConfig{}

	if loaded.Format != "" {
		result.Format = loaded.Format
	} else {
		result.Format = defaults.Format
	}

	return result
}

func mergeScanConfig(loaded, defaults ScanConfig) ScanConfig {
	result := ScanConfig{}

	if len(loaded.Include) > 0 {
		result.Include = loaded.Include
	} else {
		result.Include = defaults.Include
	}

	if len(loaded.Exclude) > 0 {
		result.Exclude = loaded.Exclude
	} else {
		result.Exclude = defaults.Exclude
	}

	return result
}

// ValidStrategies lists the classifier strategies
var ValidStrategies = []string{"ast", "regex"}

// ValidFormats lists the valid values for output format
var ValidFormats = []string{"text", "yaml", "json", "sarif"}

func isOneOf(v string, valid []string) bool {
	for _, s := range valid {
		if v == s {
			return true
		}
	}
	return false
}

// SemanticEnabled reports whether the semantic phase runs.
func (c *Config) SemanticEnabled() bool {
	return c.Analysis.Semantic == nil || *c.Analysis.Semantic
}

// Patterns builds the classifier tables: built-in defaults with the
// configured overrides applied.
func (c *Config) Patterns() (shell.Patterns, error) {
	p := shell.DefaultPatterns()
	for verb, reason := range c.Classifier.DestructiveCommands {
		p.DestructiveCommands[verb] = reason
	}

	var err error
	if p.Destructive, err = compileRules(c.Classifier.DestructivePatterns, p.Destructive); err != nil {
		return p, fmt.Errorf("destructive_patterns: %w", err)
	}
	if p.Logic, err = compileRules(c.Classifier.LogicPatterns, p.Logic); err != nil {
		return p, fmt.Errorf("logic_patterns: %w", err)
	}
	if p.Security, err = compileRules(c.Classifier.SecurityPatterns, p.Security); err != nil {
		return p, fmt.Errorf("security_patterns: %w", err)
	}
	return p, nil
}

func compileRules(cfg []PatternConfig, fallback []shell.Rule) ([]shell.Rule, error) {
	if len(cfg) == 0 {
		return fallback, nil
	}
	out := make([]shell.Rule, 0, len(cfg))
	for _, pc := range cfg {
		r, err := shell.NewRule(pc.Pattern, pc.Reason, pc.IgnoreCase)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// NewClassifier builds the command classifier described by the config.
func (c *Config) NewClassifier(opts ...shell.Option) (*shell.Classifier, error) {
	patterns, err := c.Patterns()
	if err != nil {
		return nil, err
	}
	strategy, err := shell.StrategyByName(c.Classifier.Strategy)
	if err != nil {
		return nil, err
	}
	return shell.NewClassifier(append([]shell.Option{shell.WithStrategy(strategy), shell.WithPatterns(patterns)}, opts...)...), nil
}

// LintOptions converts the config into analyzer options.
func (c *Config) LintOptions() lint.Options {
	disabled := make([]diag.Code, 0, len(c.Rules.Disable))
	for _, code := range c.Rules.Disable {
		disabled = append(disabled, diag.Code(code))
	}
	return lint.Options{
		Strict:      c.Analysis.Strict,
		Semantic:    c.SemanticEnabled(),
		EntryMarker: c.Analysis.EntryMarker,
		Disabled:    disabled,
		Rules: rules.Options{
			NamingThreshold:   c.Rules.NamingThreshold,
			MinMetadataIntent: c.Rules.MinMetadataIntent,
			MinNodeIntent:     c.Rules.MinNodeIntent,
		},
	}
}
