package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/zorsh-gen/config"
)

var (
	initPath  string
	initForce bool
)

// InitCmd represents the init command
var InitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a zorsh.toml with the default settings",
	Long: `Write a zorsh.toml holding every setting at its default value.

zorsh-gen finds the file by searching upwards from the working directory, so
commands run anywhere in the project pick it up.

Examples:
  zorsh-gen init
  zorsh-gen init --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.WriteDefault(initPath, initForce); err != nil {
			return err
		}
		if !Quiet {
			pterm.Success.WithWriter(cmd.OutOrStdout()).Printf("Wrote %s\n", initPath)
		}
		return nil
	},
}

func init() {
	InitCmd.Flags().StringVarP(&initPath, "output", "o", config.FileName, "Path of the file to write")
	InitCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing file")
}
