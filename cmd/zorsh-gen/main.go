package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/zorsh-gen/cmd/zorsh-gen/commands"
	"github.com/teranos/zorsh-gen/logger"
)

var rootCmd = &cobra.Command{
	Use:   "zorsh-gen",
	Short: "zorsh-gen - Zorsh TypeScript schemas from Go types",
	Long: `zorsh-gen - Generate Zorsh (Borsh for TypeScript) schemas from Go source.

Go structs and enums marked with //zorsh:generate or //zorsh:enum become
b.struct and b.enum schemas, one TypeScript file per Go package, with imports
between packages and types ordered so every schema is defined before use.

Available commands:
  generate - Write schemas for a directory of Go packages
  check    - Fail if committed schemas are stale (CI)
  watch    - Regenerate on every change
  inspect  - Print the emission plan as YAML
  init     - Write a zorsh.toml with defaults
  version  - Show version information

Examples:
  zorsh-gen generate ./models ./ts/schemas
  zorsh-gen check ./models ./ts/schemas
  zorsh-gen inspect -v ./models`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize global logger before any command runs
		if err := commands.InitLogging(cmd); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Only report errors")
	rootCmd.PersistentFlags().Bool("json", false, "JSON logs and machine-readable output")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to zorsh.toml (default: search upwards from the working directory)")

	// Add commands
	rootCmd.AddCommand(commands.GenerateCmd)
	rootCmd.AddCommand(commands.CheckCmd)
	rootCmd.AddCommand(commands.WatchCmd)
	rootCmd.AddCommand(commands.InspectCmd)
	rootCmd.AddCommand(commands.InitCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		commands.ReportError(os.Stderr, err)
		logger.Cleanup()
		os.Exit(1)
	}
}
