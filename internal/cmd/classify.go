package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hargabyte/scriptlint/internal/output"
	"github.com/hargabyte/scriptlint/internal/shell"
)

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify <command>",
	Short: "Classify a single shell command",
	Long: `Run the command classifier on one shell command and print the analysis:
structure (command name, arguments, type, variables, redirections), whether it
is destructive and why, logic-check patterns and security concerns.

Arguments are joined with spaces, so quoting the whole command is optional.

Examples:
  scriptlint classify 'rm -rf /var/cache/app'
  scriptlint classify --format json 'test -f /etc/ready && echo ok'
  scriptlint classify --strategy regex 'sudo systemctl restart nginx'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

var classifyStrategy string

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().StringVar(&classifyStrategy, "strategy", "", "Classifier strategy (ast|regex)")
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if classifyStrategy != "" {
		cfg.Classifier.Strategy = classifyStrategy
	}

	format, err := resolveFormat(cfg)
	if err != nil {
		return err
	}

	logger := newLogger(cmd)
	classifier, err := cfg.NewClassifier(shell.WithLogger(logger.Named("classifier")))
	if err != nil {
		return err
	}

	analysis := classifier.Classify(strings.Join(args, " "))

	w := cmd.OutOrStdout()
	switch format {
	case output.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	case output.FormatSARIF:
		return fmt.Errorf("sarif output is only available for check")
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(analysis)
	}
}
