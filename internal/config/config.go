package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/hargabyte/scriptlint/internal/diag"
)

// ConfigFileName is the name of the scriptlint configuration file
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the scriptlint configuration directory
const ConfigDirName = ".scriptlint"

// Config holds all scriptlint configuration
type Config struct {
	Analysis   AnalysisConfig   `yaml:"analysis"`
	Rules      RulesConfig      `yaml:"rules"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Output     OutputConfig     `yaml:"output"`
	Scan       ScanConfig       `yaml:"scan"`
}

// AnalysisConfig controls which phases run
type AnalysisConfig struct {
	Strict bool `yaml:"strict"`
	// Semantic is a pointer so an explicit false survives merging.
	Semantic    *bool  `yaml:"semantic,omitempty"`
	EntryMarker string `yaml:"entry_marker"`
	Workers     int    `yaml:"workers"`
	// Cache reuses results for unchanged files from cache.db.
	Cache bool `yaml:"cache"`
}

// RulesConfig holds business rule thresholds
type RulesConfig struct {
	Disable           []string `yaml:"disable,omitempty"`
	NamingThreshold   float64  `yaml:"naming_threshold"`
	MinMetadataIntent int      `yaml:"min_metadata_intent"`
	MinNodeIntent     int      `yaml:"min_node_intent"`
}

// ClassifierConfig selects the classifier strategy and overrides its tables.
// Extra destructive commands extend the built-in verb table; a non-empty
// pattern list replaces the corresponding built-in list.
type ClassifierConfig struct {
	Strategy            string            `yaml:"strategy"`
	DestructiveCommands map[string]string `yaml:"destructive_commands,omitempty"`
	DestructivePatterns []PatternConfig   `yaml:"destructive_patterns,omitempty"`
	LogicPatterns       []PatternConfig   `yaml:"logic_patterns,omitempty"`
	SecurityPatterns    []PatternConfig   `yaml:"security_patterns,omitempty"`
}

// PatternConfig is one regular-expression rule
type PatternConfig struct {
	Pattern    string `yaml:"pattern"`
	Reason     string `yaml:"reason"`
	IgnoreCase bool   `yaml:"ignore_case,omitempty"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	Format string `yaml:"format"`
}

// ScanConfig holds configuration for directory scanning
type ScanConfig struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// ErrConfigNotFound is returned when no config file can be found
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads config from .scriptlint/config.yaml, falling back to defaults.
// It searches for the config directory starting from workDir and walking up
// the directory tree. If no config is found, returns defaults.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		return DefaultConfig(), nil
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	return LoadFromPath(configPath)
}

// LoadFromPath reads config from a specific path.
// Merges loaded config with defaults and validates the result.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	merged := Merge(loaded, DefaultConfig())
	if err := Validate(merged); err != nil {
		return nil, err
	}

	return merged, nil
}

// FindConfigDir locates the .scriptlint directory by walking up from startDir.
// Returns the path to the .scriptlint directory if found.
func FindConfigDir(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		configDir := filepath.Join(currentDir, ConfigDirName)
		info, err := os.Stat(configDir)
		if err == nil && info.IsDir() {
			return configDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// EnsureConfigDir creates the .scriptlint directory if it doesn't exist.
// Returns the path to the .scriptlint directory.
func EnsureConfigDir(workDir string) (string, error) {
	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	configDir := filepath.Join(absDir, ConfigDirName)

	info, err := os.Stat(configDir)
	if err == nil {
		if info.IsDir() {
			return configDir, nil
		}
		return "", fmt.Errorf("%s exists but is not a directory", configDir)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	return configDir, nil
}

// Validate checks that config values are valid.
// Returns an error if validation fails.
func Validate(cfg *Config) error {
	if !isOneOf(cfg.Classifier.Strategy, ValidStrategies) {
		return fmt.Errorf("%w: classifier.strategy must be one of %v, got %q",
			ErrInvalidConfig, ValidStrategies, cfg.Classifier.Strategy)
	}

	if !isOneOf(cfg.Output.Format, ValidFormats) {
		return fmt.Errorf("%w: output.format must be one of %v, got %q",
			ErrInvalidConfig, ValidFormats, cfg.Output.Format)
	}

	if cfg.Rules.NamingThreshold < 0 || cfg.Rules.NamingThreshold > 1 {
		return fmt.Errorf("%w: naming_threshold must be between 0 and 1, got %f",
			ErrInvalidConfig, cfg.Rules.NamingThreshold)
	}

	if cfg.Rules.MinMetadataIntent < 0 || cfg.Rules.MinNodeIntent < 0 {
		return fmt.Errorf("%w: intent minimums must be non-negative", ErrInvalidConfig)
	}

	if cfg.Analysis.Workers < 0 {
		return fmt.Errorf("%w: workers must be non-negative, got %d",
			ErrInvalidConfig, cfg.Analysis.Workers)
	}

	known := make(map[diag.Code]bool)
	for _, c := range diag.Codes() {
		known[c] = true
	}
	for _, code := range cfg.Rules.Disable {
		if !known[diag.Code(code)] {
			return fmt.Errorf("%w: rules.disable entry %q is not a diagnostic code", ErrInvalidConfig, code)
		}
	}

	if _, err := cfg.Patterns(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return nil
}

// SaveDefault writes the default configuration to .scriptlint/config.yaml in workDir.
// Creates the .scriptlint directory if it doesn't exist.
func SaveDefault(workDir string) (string, error) {
	configDir, err := EnsureConfigDir(workDir)
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(configDir, ConfigFileName)

	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}

	header := "# scriptlint configuration\n# Pattern lists under classifier replace the built-in tables when set.\n\n"
	data = append([]byte(header), data...)

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}

	return configPath, nil
}
