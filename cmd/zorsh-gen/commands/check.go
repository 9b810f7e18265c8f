package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/zorsh-gen/logger"
	"github.com/teranos/zorsh-gen/output"
)

// CheckCmd represents the check command
var CheckCmd = &cobra.Command{
	Use:   "check [INPUT] [OUTPUT]",
	Short: "Verify generated schemas are up to date",
	Long: `Regenerate in memory and compare with the files under OUTPUT.

Fails when a schema file is missing, differs, or is left over from a module
that no longer exists. Nothing is written. Intended for CI.

Examples:
  zorsh-gen check ./models ./ts/schemas`,
	Args: cobra.MaximumNArgs(2),
	RunE: runCheck,
}

func init() {
	addGenerateFlags(CheckCmd.Flags())
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, conv, err := setupConverter(cmd, args)
	if err != nil {
		return err
	}
	if err := requireOutput(cfg); err != nil {
		return err
	}

	result, err := conv.Generate(cmd.Context(), cfg.Input.Dir)
	if err != nil {
		return err
	}
	check, err := output.Check(cfg.Output.Dir, result.Files)
	if err != nil {
		return err
	}
	if err := check.Err(); err != nil {
		logger.Warnw("Generated schemas are stale",
			logger.FieldDir, cfg.Output.Dir,
			"missing", len(check.Missing),
			"changed", len(check.Changed),
			"orphaned", len(check.Orphaned))
		return err
	}

	if !Quiet {
		pterm.Success.WithWriter(cmd.OutOrStdout()).Printf("%d schema files up to date\n", len(result.Files))
	}
	return nil
}
