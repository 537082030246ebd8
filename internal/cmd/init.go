package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hargabyte/scriptlint/internal/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .scriptlint/config.yaml with the default settings",
	Long: `Create the .scriptlint directory and a config.yaml holding the default
settings in the current directory. Every scriptlint command run in this
directory or below picks it up.

Examples:
  scriptlint init          # Write the default config
  scriptlint init --force  # Overwrite an existing config`,
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	cfgPath := filepath.Join(cwd, config.ConfigDirName, config.ConfigFileName)
	relPath, _ := filepath.Rel(cwd, cfgPath)

	_, err = os.Stat(cfgPath)
	if err == nil {
		if !initForce {
			fmt.Fprintf(cmd.OutOrStdout(), "Already initialized at %s\n", relPath)
			return nil
		}
		if err := os.Remove(cfgPath); err != nil {
			return fmt.Errorf("removing existing config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking config path: %w", err)
	}

	if _, err := config.SaveDefault(cwd); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized scriptlint config at %s\n", relPath)
	return nil
}
