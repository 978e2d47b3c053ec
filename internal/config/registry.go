package config

import (
	"errors"
	"fmt"
	"regexp"

	"modelviz.dev/modelviz/odm"
)

// Path converts the field declaration into a schema path. A field that only
// names an element type with "of" is an Array.
func (f Field) Path() (odm.Path, error) {
	instance, err := odm.ParseInstance(f.Type)
	if err != nil {
		return odm.Path{}, fmt.Errorf("field %q: %w", f.Name, err)
	}
	caster, err := odm.ParseInstance(f.Of)
	if err != nil {
		return odm.Path{}, fmt.Errorf("field %q: %w", f.Name, err)
	}
	if caster != "" && instance == "" {
		instance = odm.Array
	}
	if caster != "" && instance != odm.Array {
		return odm.Path{}, fmt.Errorf("field %q: \"of\" requires type Array, got %s", f.Name, instance)
	}

	p := odm.Path{
		Name:     f.Name,
		Instance: instance,
		Caster:   caster,
		Required: f.Required,
		Options: odm.Options{
			Unique:      f.Unique,
			Index:       f.Index,
			Default:     f.Default,
			NullDefault: f.NullDefault,
			Enum:        f.Enum,
			Ref:         f.Ref,
			Min:         f.Min,
			Max:         f.Max,
			MinLength:   f.MinLength,
			MaxLength:   f.MaxLength,
			Lowercase:   f.Lowercase,
			Uppercase:   f.Uppercase,
			Trim:        f.Trim,
		},
	}
	if f.Match != "" {
		re, err := regexp.Compile(f.Match)
		if err != nil {
			return odm.Path{}, fmt.Errorf("field %q: invalid match: %w", f.Name, err)
		}
		p.Options.Match = re
	}
	return p, nil
}

// Schema builds the schema of the model.
func (m Model) Schema() (*odm.Schema, error) {
	paths := make([]odm.Path, 0, len(m.Fields))
	var errs []error
	for _, f := range m.Fields {
		p, err := f.Path()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		paths = append(paths, p)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	var opts []odm.SchemaOption
	if m.ID != nil && !*m.ID {
		opts = append(opts, odm.WithoutID())
	}
	return odm.NewSchema(paths, opts...)
}

func (m Model) options() []odm.ModelOption {
	var opts []odm.ModelOption
	if m.Collection != "" {
		opts = append(opts, odm.WithCollectionName(m.Collection))
	}
	if m.VersionKey != nil && !*m.VersionKey {
		opts = append(opts, odm.WithoutVersionKey())
	}
	return opts
}

// Register compiles every configured model into registry, in file order.
func (c *Config) Register(registry *odm.Registry) error {
	for _, m := range c.Models {
		schema, err := m.Schema()
		if err != nil {
			return fmt.Errorf("model %q: %w", m.Name, err)
		}
		if _, err := registry.Model(m.Name, schema, m.options()...); err != nil {
			return fmt.Errorf("model %q: %w", m.Name, err)
		}
	}
	return nil
}
