package config

import (
	"github.com/teranos/zorsh-gen/errors"
	"github.com/teranos/zorsh-gen/source"
	"github.com/teranos/zorsh-gen/typegen/extract"
	"github.com/teranos/zorsh-gen/typegen/layout"
	"github.com/teranos/zorsh-gen/typegen/model"
	"github.com/teranos/zorsh-gen/typegen/resolve"
	"github.com/teranos/zorsh-gen/typegen/util"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if _, err := source.ParseLoader(c.Input.Loader); err != nil {
		return errors.Wrap(err, "input.loader")
	}
	if _, err := layout.ParseStructure(c.Output.Structure); err != nil {
		return errors.Wrap(err, "output.structure")
	}
	if _, err := util.ParseFieldCase(c.Generate.FieldCase); err != nil {
		return errors.Wrap(err, "generate.field_case")
	}
	if _, err := resolve.ParseCyclePolicy(c.Generate.Cycles); err != nil {
		return errors.Wrap(err, "generate.cycles")
	}

	// Workers: 0 would extract nothing, negative is invalid
	if c.Generate.Workers < 1 {
		return errors.Newf("generate.workers must be >= 1, got %d", c.Generate.Workers)
	}

	seen := make(map[string]bool)
	for i, m := range c.Generate.TypeMappings {
		if m.Go == "" {
			return errors.Newf("generate.type_mappings[%d]: go type cannot be empty", i)
		}
		if seen[m.Go] {
			return errors.Newf("generate.type_mappings: %s is mapped twice", m.Go)
		}
		seen[m.Go] = true
		if _, ok := extract.ShapeForName(m.Zorsh); !ok {
			return errors.WithHintf(
				errors.Newf("generate.type_mappings: %s maps to unknown type %q", m.Go, m.Zorsh),
				"use one of %v or string", model.PrimitiveNames)
		}
	}
	return nil
}
