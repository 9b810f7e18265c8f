// Package config loads zorsh-gen settings from zorsh.toml, ZORSH_* environment
// variables and built-in defaults, in increasing order of precedence.
package config

import (
	"github.com/teranos/zorsh-gen/convert"
	"github.com/teranos/zorsh-gen/source"
	"github.com/teranos/zorsh-gen/typegen/emit"
	"github.com/teranos/zorsh-gen/typegen/extract"
	"github.com/teranos/zorsh-gen/typegen/layout"
	"github.com/teranos/zorsh-gen/typegen/resolve"
	"github.com/teranos/zorsh-gen/typegen/util"
)

// FileName is the project configuration file searched for upwards from the
// working directory.
const FileName = "zorsh.toml"

// Config represents the zorsh-gen configuration
type Config struct {
	Input    InputConfig    `mapstructure:"input" toml:"input"`
	Output   OutputConfig   `mapstructure:"output" toml:"output"`
	Generate GenerateConfig `mapstructure:"generate" toml:"generate"`
	Log      LogConfig      `mapstructure:"log" toml:"log"`
}

// InputConfig selects the Go sources to read
type InputConfig struct {
	Dir             string   `mapstructure:"dir" toml:"dir"`
	IgnoredPatterns []string `mapstructure:"ignored_patterns" toml:"ignored_patterns"` // path substrings to skip
	OnlyAnnotated   bool     `mapstructure:"only_annotated" toml:"only_annotated"`     // require //zorsh:generate
	Loader          string   `mapstructure:"loader" toml:"loader"`                     // walk | packages
}

// OutputConfig controls where and how schema files are written
type OutputConfig struct {
	Dir          string `mapstructure:"dir" toml:"dir"`
	Structure    string `mapstructure:"structure" toml:"structure"` // nested | flat
	ImportSource string `mapstructure:"import_source" toml:"import_source"`
}

// GenerateConfig tunes extraction and resolution
type GenerateConfig struct {
	FieldCase    string        `mapstructure:"field_case" toml:"field_case"` // preserve | snake | camel
	Cycles       string        `mapstructure:"cycles" toml:"cycles"`         // reject | allow-indirect
	Workers      int           `mapstructure:"workers" toml:"workers"`       // concurrent module extraction
	TypeMappings []TypeMapping `mapstructure:"type_mappings" toml:"type_mappings,omitempty"`
}

// TypeMapping maps a Go spelling such as "decimal.Decimal" to a primitive name
// or "string". Mappings are a list rather than a table because Viper folds the
// case of table keys and splits them on dots.
type TypeMapping struct {
	Go    string `mapstructure:"go" toml:"go"`
	Zorsh string `mapstructure:"zorsh" toml:"zorsh"`
}

type LogConfig struct {
	JSON bool `mapstructure:"json" toml:"json"`
}

// ConvertOptions translates the configuration into pipeline options. It fails
// on the same values Validate rejects.
func (c *Config) ConvertOptions() (convert.Options, error) {
	if err := c.Validate(); err != nil {
		return convert.Options{}, err
	}
	loader, _ := source.ParseLoader(c.Input.Loader)
	structure, _ := layout.ParseStructure(c.Output.Structure)
	fieldCase, _ := util.ParseFieldCase(c.Generate.FieldCase)
	cycles, _ := resolve.ParseCyclePolicy(c.Generate.Cycles)

	var mappings map[string]string
	if len(c.Generate.TypeMappings) > 0 {
		mappings = make(map[string]string, len(c.Generate.TypeMappings))
		for _, m := range c.Generate.TypeMappings {
			mappings[m.Go] = m.Zorsh
		}
	}

	return convert.Options{
		Source: source.Options{
			IgnoredPatterns: c.Input.IgnoredPatterns,
			Loader:          loader,
		},
		Extract: extract.Options{
			OnlyAnnotated: c.Input.OnlyAnnotated,
			FieldCase:     fieldCase,
			TypeMappings:  mappings,
		},
		Resolve: resolve.Options{Cycles: cycles},
		Emit: emit.Options{
			ImportSource: c.Output.ImportSource,
			Layout:       layout.Layout{Structure: structure},
		},
		Workers: c.Generate.Workers,
	}, nil
}
