package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/zorsh-gen/config"
	"github.com/teranos/zorsh-gen/convert"
)

// GenerateCmd represents the generate command
var GenerateCmd = &cobra.Command{
	Use:   "generate [INPUT] [OUTPUT]",
	Short: "Generate Zorsh schemas from Go source",
	Long: `Generate Zorsh TypeScript schemas from Go structs and enums.

Every directory under INPUT becomes one module and one .ts file under OUTPUT.
Types are converted when marked with a directive:

  //zorsh:generate      a struct becomes b.struct({...})
  //zorsh:enum          a struct of cases or an integer type with
                        constants becomes b.enum({...})

Field tags:
  zorsh:"name"          rename the field
  zorsh:"-"             skip the field
  zorshtype:"u64"       force a primitive
  zorsh:",tuple"        render a case payload as a tuple

Nothing is written unless every type converts.

Examples:
  zorsh-gen generate ./models ./ts/schemas
  zorsh-gen generate --structure flat ./models ./ts/schemas
  zorsh-gen generate --cycles allow-indirect ./models ./ts/schemas`,
	Args: cobra.MaximumNArgs(2),
	RunE: runGenerate,
}

func init() {
	addGenerateFlags(GenerateCmd.Flags())
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, conv, err := setupConverter(cmd, args)
	if err != nil {
		return err
	}
	if err := requireOutput(cfg); err != nil {
		return err
	}

	result, err := conv.Convert(cmd.Context(), cfg.Input.Dir, cfg.Output.Dir)
	if err != nil {
		return err
	}
	printSummary(cmd.OutOrStdout(), "Generated", result, cfg.Output.Dir)
	return nil
}

// setupConverter loads the settings shared by generate, check, watch and
// inspect.
func setupConverter(cmd *cobra.Command, args []string) (*config.Config, *convert.Converter, error) {
	cfg, err := loadSettings(cmd, args)
	if err != nil {
		return nil, nil, err
	}
	if err := applyLogConfig(cfg.Log.JSON); err != nil {
		return nil, nil, err
	}
	if err := requireInput(cfg); err != nil {
		return nil, nil, err
	}
	opts, err := cfg.ConvertOptions()
	if err != nil {
		return nil, nil, err
	}
	return cfg, convert.New(opts), nil
}
