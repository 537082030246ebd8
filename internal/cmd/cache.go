package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or reset the result cache",
	Long: `Show statistics for the result cache used by 'check --cache'.

Entries are keyed by file path and content hash and are only reused when
the scriptlint version and effective settings match the run that wrote them.

Examples:
  scriptlint cache            # Show entry counts
  scriptlint cache --prune    # Drop entries for files that no longer exist
  scriptlint cache --clear    # Remove every entry`,
	RunE: runCache,
}

var (
	cacheClear bool
	cachePrune bool
)

func init() {
	rootCmd.AddCommand(cacheCmd)

	cacheCmd.Flags().BoolVar(&cacheClear, "clear", false, "Remove every cached result")
	cacheCmd.Flags().BoolVar(&cachePrune, "prune", false, "Remove results for deleted files")
}

func runCache(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	c, err := openCache(cfg, false)
	if err != nil {
		return err
	}
	defer c.Close()

	out := cmd.OutOrStdout()
	switch {
	case cacheClear:
		if err := c.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(out, "Cache cleared")
		return nil
	case cachePrune:
		n, err := c.Prune(func(path string) bool {
			_, err := os.Stat(path)
			return err == nil
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Pruned %d entries\n", n)
		return nil
	}

	stats, err := c.GetStats()
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(stats); err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}
	return enc.Close()
}
