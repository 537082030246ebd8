package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Classifier.Strategy != "ast" {
		t.Errorf("expected strategy ast, got %s", cfg.Classifier.Strategy)
	}

	if !cfg.SemanticEnabled() {
		t.Error("expected semantic analysis enabled by default")
	}

	if cfg.Analysis.EntryMarker != "main" {
		t.Errorf("expected entry marker main, got %s", cfg.Analysis.EntryMarker)
	}

	if cfg.Rules.NamingThreshold != 0.8 {
		t.Errorf("expected naming_threshold 0.8, got %f", cfg.Rules.NamingThreshold)
	}

	if cfg.Rules.MinMetadataIntent != 20 || cfg.Rules.MinNodeIntent != 10 {
		t.Errorf("unexpected intent minimums %d/%d", cfg.Rules.MinMetadataIntent, cfg.Rules.MinNodeIntent)
	}

	if cfg.Output.Format != "text" {
		t.Errorf("expected format text, got %s", cfg.Output.Format)
	}

	if len(cfg.Scan.Include) != 2 {
		t.Errorf("expected 2 include patterns, got %d", len(cfg.Scan.Include))
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "unknown strategy",
			modify: func(c *Config) {
				c.Classifier.Strategy = "llm"
			},
			wantErr: true,
		},
		{
			name: "unknown format",
			modify: func(c *Config) {
				c.Output.Format = "xml"
			},
			wantErr: true,
		},
		{
			name: "naming threshold too high",
			modify: func(c *Config) {
				c.Rules.NamingThreshold = 1.5
			},
			wantErr: true,
		},
		{
			name: "negative intent minimum",
			modify: func(c *Config) {
				c.Rules.MinNodeIntent = -1
			},
			wantErr: true,
		},
		{
			name: "negative workers",
			modify: func(c *Config) {
				c.Analysis.Workers = -2
			},
			wantErr: true,
		},
		{
			name: "disable accepts codes",
			modify: func(c *Config) {
				c.Rules.Disable = []string{"W601", "I200"}
			},
			wantErr: false,
		},
		{
			name: "disable rejects names",
			modify: func(c *Config) {
				c.Rules.Disable = []string{"unreachable"}
			},
			wantErr: true,
		},
		{
			name: "disable rejects unknown codes",
			modify: func(c *Config) {
				c.Rules.Disable = []string{"W999"}
			},
			wantErr: true,
		},
		{
			name: "bad pattern",
			modify: func(c *Config) {
				c.Classifier.LogicPatterns = []PatternConfig{{Pattern: "(", Reason: "broken"}}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	off := false
	loaded := &Config{
		Analysis: AnalysisConfig{Strict: true, Semantic: &off},
		Rules:    RulesConfig{MinNodeIntent: 5},
		Output:   OutputConfig{Format: "sarif"},
	}

	merged := Merge(loaded, DefaultConfig())

	if !merged.Analysis.Strict {
		t.Error("expected strict from loaded config")
	}
	if merged.SemanticEnabled() {
		t.Error("expected explicit semantic: false to survive merge")
	}
	if merged.Analysis.EntryMarker != "main" {
		t.Errorf("expected default entry marker, got %s", merged.Analysis.EntryMarker)
	}
	if merged.Rules.MinNodeIntent != 5 {
		t.Errorf("expected min_node_intent 5, got %d", merged.Rules.MinNodeIntent)
	}
	if merged.Rules.MinMetadataIntent != 20 {
		t.Errorf("expected default min_metadata_intent, got %d", merged.Rules.MinMetadataIntent)
	}
	if merged.Output.Format != "sarif" {
		t.Errorf("expected format sarif, got %s", merged.Output.Format)
	}
	if merged.Classifier.Strategy != "ast" {
		t.Errorf("expected default strategy, got %s", merged.Classifier.Strategy)
	}
}

func TestLoadFromPath(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, ConfigFileName)
	content := `analysis:
  strict: true
  entry_marker: entry
rules:
  disable: [W601]
classifier:
  strategy: regex
  destructive_commands:
    vault-purge: Secret store purge
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}

	if cfg.Classifier.Strategy != "regex" {
		t.Errorf("expected strategy regex, got %s", cfg.Classifier.Strategy)
	}

	opts := cfg.LintOptions()
	if !opts.Strict || opts.EntryMarker != "entry" || !opts.Semantic {
		t.Errorf("unexpected lint options %+v", opts)
	}
	if len(opts.Disabled) != 1 || opts.Disabled[0] != "W601" {
		t.Errorf("expected disabled [W601], got %v", opts.Disabled)
	}

	c, err := cfg.NewClassifier()
	if err != nil {
		t.Fatalf("NewClassifier() error = %v", err)
	}
	if c.StrategyName() != "regex" {
		t.Errorf("expected regex classifier, got %s", c.StrategyName())
	}
	a := c.Classify("vault-purge --all")
	if !a.IsDestructive || a.DestructiveReason != "Secret store purge" {
		t.Errorf("expected configured verb to be destructive, got %+v", a)
	}
	if !c.Classify("rm -rf /tmp/x").IsDestructive {
		t.Error("expected built-in verbs to remain")
	}
}

func TestLoadFromPath_Missing(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if cfg.Output.Format != "text" {
		t.Errorf("expected defaults, got format %s", cfg.Output.Format)
	}
}

func TestLoadFromPath_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte("output:\n  format: xml\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadFromPath(path)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestPatterns_Replace(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Classifier.LogicPatterns = []PatternConfig{{Pattern: `\bjq\b`, Reason: "JSON probing"}}

	p, err := cfg.Patterns()
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Logic) != 1 || p.Logic[0].Reason != "JSON probing" {
		t.Errorf("expected logic table replaced, got %d rules", len(p.Logic))
	}
	if len(p.Security) == 0 {
		t.Error("expected built-in security rules kept")
	}
}

func TestFindConfigDir(t *testing.T) {
	tmpDir := t.TempDir()
	nested := filepath.Join(tmpDir, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	if _, err := FindConfigDir(nested); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("expected ErrConfigNotFound, got %v", err)
	}

	if _, err := EnsureConfigDir(tmpDir); err != nil {
		t.Fatal(err)
	}

	dir, err := FindConfigDir(nested)
	if err != nil {
		t.Fatalf("FindConfigDir() error = %v", err)
	}
	if filepath.Base(dir) != ConfigDirName {
		t.Errorf("expected %s, got %s", ConfigDirName, dir)
	}
}

func TestSaveDefault(t *testing.T) {
	tmpDir := t.TempDir()

	path, err := SaveDefault(tmpDir)
	if err != nil {
		t.Fatalf("SaveDefault() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# scriptlint configuration") {
		t.Error("expected header comment")
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Rules.NamingThreshold != 0.8 {
		t.Errorf("expected round-tripped defaults, got %f", cfg.Rules.NamingThreshold)
	}

	if _, err := SaveDefault(tmpDir); err == nil {
		t.Error("expected error when config already exists")
	}
}
