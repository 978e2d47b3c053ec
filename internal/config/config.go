// Package config loads the configuration of the modelviz server.
//
// A configuration file is YAML (or JSON) and looks like this:
//
//	addr: ":8080"
//	path: /visualizer
//	title: Shop models
//	models:
//	  - name: User
//	    fixtures: users.ndjson
//	    fields:
//	      - {name: email, type: String, required: true, unique: true, lowercase: true}
//	      - {name: age, type: Number, min: 0}
//	      - {name: tags, type: Array, of: String}
//
// Relative file references are resolved against the directory of the file.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"sigs.k8s.io/yaml"
)

const (
	DefaultAddr = ":8080"
	DefaultPath = "/"
)

//go:embed schema.json
var rawSchema []byte

const schemaURL = "modelviz-config.schema.json"

var schema = func() *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(rawSchema))
	if err != nil {
		panic(fmt.Errorf("failed to decode config schema: %w", err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, doc); err != nil {
		panic(fmt.Errorf("failed to add config schema: %w", err))
	}
	compiled, err := compiler.Compile(schemaURL)
	if err != nil {
		panic(fmt.Errorf("failed to compile config schema: %w", err))
	}
	return compiled
}()

type Config struct {
	Addr   string  `json:"addr,omitempty"`
	Path   string  `json:"path,omitempty"`
	Title  string  `json:"title,omitempty"`
	UI     UI      `json:"ui,omitempty"`
	Models []Model `json:"models,omitempty"`
}

// UI selects where the browsing UI is served from.
type UI struct {
	Dir     string `json:"dir,omitempty"`
	Archive string `json:"archive,omitempty"`
}

type Model struct {
	Name       string  `json:"name"`
	Collection string  `json:"collection,omitempty"`
	ID         *bool   `json:"id,omitempty"`
	VersionKey *bool   `json:"versionKey,omitempty"`
	Fixtures   string  `json:"fixtures,omitempty"`
	Fields     []Field `json:"fields,omitempty"`
}

// Field declares one schema path. Optional constraints are pointers so that
// a constraint explicitly set to its zero value is kept. NullDefault is set
// when the file declares "default: null".
type Field struct {
	Name        string   `json:"name"`
	Type        string   `json:"type,omitempty"`
	Of          string   `json:"of,omitempty"`
	Required    bool     `json:"required,omitempty"`
	Unique      *bool    `json:"unique,omitempty"`
	Index       *bool    `json:"index,omitempty"`
	Default     any      `json:"default,omitempty"`
	NullDefault bool     `json:"-"`
	Enum        []any    `json:"enum,omitempty"`
	Ref         string   `json:"ref,omitempty"`
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	MinLength   *int     `json:"minlength,omitempty"`
	MaxLength   *int     `json:"maxlength,omitempty"`
	Match       string   `json:"match,omitempty"`
	Lowercase   *bool    `json:"lowercase,omitempty"`
	Uppercase   *bool    `json:"uppercase,omitempty"`
	Trim        *bool    `json:"trim,omitempty"`
}

func (f *Field) UnmarshalJSON(data []byte) error {
	type plain Field
	var in struct {
		plain
		Default json.RawMessage `json:"default"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*f = Field(in.plain)
	if in.Default != nil {
		if err := json.Unmarshal(in.Default, &f.Default); err != nil {
			return fmt.Errorf("field %q: default: %w", f.Name, err)
		}
		f.NullDefault = f.Default == nil
	}
	return nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{Addr: DefaultAddr, Path: DefaultPath}
}

// Load reads, validates and decodes the file at path. Relative file
// references in it are made relative to the directory of path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	cfg.resolve(filepath.Dir(path))
	return cfg, nil
}

// Parse validates and decodes a YAML or JSON document. Unset values are
// filled with defaults.
func Parse(data []byte) (*Config, error) {
	raw, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to convert yaml: %w", err)
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		raw = []byte("{}")
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := schema.Validate(inst); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	return cfg, nil
}

func (c *Config) resolve(dir string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	c.UI.Dir = abs(c.UI.Dir)
	c.UI.Archive = abs(c.UI.Archive)
	for i := range c.Models {
		c.Models[i].Fixtures = abs(c.Models[i].Fixtures)
	}
}
