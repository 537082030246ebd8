package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hargabyte/scriptlint/internal/cache"
	"github.com/hargabyte/scriptlint/internal/config"
	"github.com/hargabyte/scriptlint/internal/diag"
	"github.com/hargabyte/scriptlint/internal/exclude"
	"github.com/hargabyte/scriptlint/internal/lint"
	"github.com/hargabyte/scriptlint/internal/output"
	"github.com/hargabyte/scriptlint/internal/shell"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [file-or-dir...]",
	Short: "Lint automation scripts",
	Long: `Lint one or more automation scripts.

Files named on the command line are always linted. Directories are walked
and every file matching scan.include (default *.yaml, *.yml) is linted,
except paths matching scan.exclude and detected dependency directories.

Phases:
  duplicates     E603 duplicate IDs
  references     E601/E602 unresolved script and command references
  cycles         E501/E502 circular references
  reachability   W601 elements nothing leads to
  rules          E301/W301-W303 destructive marking, W401 logic checks,
                 W501 naming, W502-W504 intents
  semantic       W201-W212 command hygiene (disable with --no-semantic)

Examples:
  scriptlint check deploy.yaml                # Lint one file
  scriptlint check .                          # Lint every script under .
  scriptlint check ops/ --strict              # Warnings become errors
  scriptlint check ops/ --disable W601,W501   # Drop codes
  scriptlint check ops/ --format sarif > scriptlint.sarif
  scriptlint check ops/ --cache               # Skip unchanged files`,
	RunE: runCheck,
}

var (
	checkStrict     bool
	checkNoSemantic bool
	checkInfo       bool
	checkQuiet      bool
	checkStrategy   string
	checkDisable    []string
	checkExclude    []string
	checkWorkers    int
	checkCache      bool
	checkNoCache    bool
)

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVar(&checkStrict, "strict", false, "Treat warnings as errors")
	checkCmd.Flags().BoolVar(&checkNoSemantic, "no-semantic", false, "Skip the semantic hygiene phase")
	checkCmd.Flags().BoolVar(&checkInfo, "info", false, "Include informational diagnostics (I200-I203)")
	checkCmd.Flags().BoolVarP(&checkQuiet, "quiet", "q", false, "Only print files with diagnostics (text format)")
	checkCmd.Flags().StringVar(&checkStrategy, "strategy", "", "Classifier strategy (ast|regex)")
	checkCmd.Flags().StringSliceVar(&checkDisable, "disable", nil, "Diagnostic codes to drop")
	checkCmd.Flags().StringSliceVar(&checkExclude, "exclude", nil, "Additional exclude patterns")
	checkCmd.Flags().IntVar(&checkWorkers, "workers", 0, "Files analyzed in parallel (default from config)")
	checkCmd.Flags().BoolVar(&checkCache, "cache", false, "Reuse results for unchanged files")
	checkCmd.Flags().BoolVar(&checkNoCache, "no-cache", false, "Ignore analysis.cache from config")
}

// applyCheckFlags layers command-line overrides on top of the loaded config.
func applyCheckFlags(cfg *config.Config) error {
	if checkStrict {
		cfg.Analysis.Strict = true
	}
	if checkNoSemantic {
		off := false
		cfg.Analysis.Semantic = &off
	}
	if checkStrategy != "" {
		cfg.Classifier.Strategy = checkStrategy
	}
	if checkWorkers > 0 {
		cfg.Analysis.Workers = checkWorkers
	}
	if checkCache {
		cfg.Analysis.Cache = true
	}
	if checkNoCache {
		cfg.Analysis.Cache = false
	}
	cfg.Rules.Disable = append(cfg.Rules.Disable, checkDisable...)
	cfg.Scan.Exclude = append(cfg.Scan.Exclude, checkExclude...)
	return config.Validate(cfg)
}

func runCheck(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"."}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyCheckFlags(cfg); err != nil {
		return err
	}

	format, err := resolveFormat(cfg)
	if err != nil {
		return err
	}

	logger := newLogger(cmd)

	matcher, err := exclude.NewMatcher(cfg.Scan.Include, cfg.Scan.Exclude)
	if err != nil {
		return fmt.Errorf("scan patterns: %w", err)
	}
	files, err := matcher.Collect(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no script files found in %v", args)
	}
	logger.Debug("collected files", "count", len(files))

	classifier, err := cfg.NewClassifier(shell.WithLogger(logger.Named("classifier")))
	if err != nil {
		return err
	}
	opts := cfg.LintOptions()
	opts.Rules.Verbose = checkInfo
	logger.Debug("lint options", "strict", opts.Strict, "semantic", opts.Semantic, "rules", opts.Rules.String())

	analyzer := lint.NewAnalyzer(classifier, opts, logger.Named("lint"))
	if cfg.Analysis.Cache {
		c, err := openCache(cfg, checkInfo)
		if err != nil {
			return err
		}
		defer c.Close()
		logger.Debug("result cache", "path", c.Path(), "fingerprint", c.Fingerprint())
		analyzer.WithCache(c)
	}
	results, err := analyzer.AnalyzeFiles(cmd.Context(), files, cfg.Analysis.Workers)
	if err != nil {
		return err
	}

	formatter, err := output.GetFormatter(format)
	if err != nil {
		return err
	}
	if tf, ok := formatter.(*output.TextFormatter); ok {
		tf.Quiet = checkQuiet
		tf.Color = !noColor
	}
	if err := formatter.FormatToWriter(cmd.OutOrStdout(), results); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if code := diag.ExitCode(results); code != diag.ExitSuccess {
		return &ExitError{Code: code}
	}
	return nil
}

// cacheDir places cache.db next to the config in use.
func cacheDir() (string, error) {
	if configPath != "" {
		return filepath.Dir(configPath), nil
	}
	if dir, err := config.FindConfigDir("."); err == nil {
		return dir, nil
	}
	return config.EnsureConfigDir(".")
}

// openCache opens the result cache keyed by everything that shapes a result.
func openCache(cfg *config.Config, info bool) (*cache.Cache, error) {
	dir, err := cacheDir()
	if err != nil {
		return nil, err
	}
	// Settings that never change a result stay out of the fingerprint.
	shaping := *cfg
	shaping.Analysis.Cache = false
	shaping.Analysis.Workers = 0
	shaping.Output = config.OutputConfig{}
	shaping.Scan = config.ScanConfig{}
	fp, err := cache.Fingerprint(struct {
		Version string
		Config  config.Config
		Info    bool
	}{Version, shaping, info})
	if err != nil {
		return nil, err
	}
	return cache.Open(dir, fp)
}
