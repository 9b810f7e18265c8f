package config

import (
	"github.com/spf13/viper"

	"github.com/teranos/zorsh-gen/source"
	"github.com/teranos/zorsh-gen/typegen/emit"
	"github.com/teranos/zorsh-gen/typegen/layout"
	"github.com/teranos/zorsh-gen/typegen/resolve"
	"github.com/teranos/zorsh-gen/typegen/util"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Input defaults
	v.SetDefault("input.dir", "")
	v.SetDefault("input.ignored_patterns", source.DefaultIgnoredPatterns)
	v.SetDefault("input.only_annotated", true)
	v.SetDefault("input.loader", string(source.LoaderWalk))

	// Output defaults
	v.SetDefault("output.dir", "")
	v.SetDefault("output.structure", string(layout.Nested))
	v.SetDefault("output.import_source", emit.DefaultImportSource)

	// Generation defaults
	v.SetDefault("generate.field_case", string(util.CasePreserve))
	v.SetDefault("generate.cycles", string(resolve.CyclesReject))
	v.SetDefault("generate.workers", 1)

	v.SetDefault("log.json", false)
}

// Default returns the configuration used when no file or environment
// variable overrides anything.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadWithViper(v)
	if err != nil {
		// Defaults always decode.
		panic(err)
	}
	return cfg
}
