package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/teranos/zorsh-gen/errors"
)

const fileHeader = `# zorsh-gen configuration
#
# Every key can be overridden with an environment variable, e.g.
# ZORSH_OUTPUT_STRUCTURE=flat. Command-line flags take precedence over both.
#
# Custom type mappings are listed as tables:
#
#   [[generate.type_mappings]]
#   go = "decimal.Decimal"
#   zorsh = "u128"

`

// Marshal renders cfg as TOML.
func Marshal(cfg *Config) ([]byte, error) {
	body, err := toml.Marshal(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal config")
	}
	return append([]byte(fileHeader), body...), nil
}

// WriteDefault writes a configuration file holding the defaults. An existing
// file is only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.WithHint(errors.Newf("%s already exists", path),
				"pass --force to overwrite it")
		}
	}

	data, err := Marshal(Default())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
