package commands

import (
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/zorsh-gen/errors"
	"github.com/teranos/zorsh-gen/typegen"
)

// InspectCmd represents the inspect command
var InspectCmd = &cobra.Command{
	Use:   "inspect [INPUT]",
	Short: "Print the emission plan as YAML",
	Long: `Show how zorsh-gen sees INPUT without writing anything: the modules found,
the file each becomes, the order types are emitted in, the cross-module imports
and the references rendered lazily.

Examples:
  zorsh-gen inspect ./models
  zorsh-gen inspect --cycles allow-indirect ./models`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

func init() {
	addGenerateFlags(InspectCmd.Flags())
}

type inspectModule struct {
	Module   string   `yaml:"module"`
	File     string   `yaml:"file"`
	Order    []string `yaml:"order"`
	Imports  []string `yaml:"imports,omitempty"`
	Deferred []string `yaml:"deferred,omitempty"`
}

type inspectReport struct {
	Modules []inspectModule `yaml:"modules"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, conv, err := setupConverter(cmd, args)
	if err != nil {
		return err
	}
	result, err := conv.Generate(cmd.Context(), cfg.Input.Dir)
	if err != nil {
		return err
	}
	return writeReport(cmd.OutOrStdout(), result)
}

func writeReport(w io.Writer, result *typegen.Result) error {
	report := inspectReport{Modules: []inspectModule{}}
	for _, mp := range result.Plan.Modules {
		f, _ := result.File(mp.Module)
		report.Modules = append(report.Modules, inspectModule{
			Module:   mp.Module,
			File:     f.Path,
			Order:    mp.Order,
			Imports:  mp.Imports,
			Deferred: mp.Deferred,
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return errors.Wrap(err, "failed to encode plan")
	}
	return enc.Close()
}
