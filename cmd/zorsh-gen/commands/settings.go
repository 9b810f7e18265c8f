package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/teranos/zorsh-gen/config"
	"github.com/teranos/zorsh-gen/errors"
	"github.com/teranos/zorsh-gen/logger"
)

// flagKeys maps command-line flags to configuration keys. Flags that are set
// take precedence over zorsh.toml and the environment.
var flagKeys = map[string]string{
	"structure":        "output.structure",
	"import-source":    "output.import_source",
	"only-annotated":   "input.only_annotated",
	"ignored-patterns": "input.ignored_patterns",
	"loader":           "input.loader",
	"field-case":       "generate.field_case",
	"cycles":           "generate.cycles",
	"workers":          "generate.workers",
	"json":             "log.json",
}

// addGenerateFlags registers the flags shared by every command that runs the
// pipeline.
func addGenerateFlags(fs *pflag.FlagSet) {
	fs.String("structure", "nested", "Output structure: nested (a/b.ts) or flat (a_b.ts)")
	fs.String("import-source", "@zorsh/zorsh", "Module the b builder is imported from")
	fs.Bool("only-annotated", true, "Only convert types marked with //zorsh:generate or //zorsh:enum")
	fs.StringSlice("ignored-patterns", nil, "Path substrings to skip (default tests/, examples/, target/)")
	fs.String("loader", "walk", "Source discovery: walk (every .go file) or packages (go command, build tags)")
	fs.String("field-case", "preserve", "Field naming when no tag sets one: preserve, snake or camel")
	fs.String("cycles", "reject", "Cycle policy: reject or allow-indirect")
	fs.Int("workers", 1, "Modules extracted concurrently")
}

// loadSettings merges defaults, zorsh.toml, ZORSH_* variables, flags and the
// positional INPUT and OUTPUT arguments, in that order.
func loadSettings(cmd *cobra.Command, args []string) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	v, err := config.NewViper(path)
	if err != nil {
		return nil, err
	}

	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, errors.Wrapf(err, "failed to bind --%s", name)
			}
		}
	}
	if len(args) > 0 {
		v.Set("input.dir", args[0])
	}
	if len(args) > 1 {
		v.Set("output.dir", args[1])
	}

	cfg, err := config.LoadWithViper(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if used := config.UsedFile(v); used != "" {
		logger.Debugw("Loaded configuration", logger.FieldConfig, used)
	}
	return cfg, nil
}

func requireInput(cfg *config.Config) error {
	if cfg.Input.Dir == "" {
		return errors.WithHint(errors.New("no input directory"),
			"pass INPUT or set input.dir in zorsh.toml")
	}
	return nil
}

func requireOutput(cfg *config.Config) error {
	if err := requireInput(cfg); err != nil {
		return err
	}
	if cfg.Output.Dir == "" {
		return errors.WithHint(errors.New("no output directory"),
			"pass OUTPUT or set output.dir in zorsh.toml")
	}
	return nil
}
