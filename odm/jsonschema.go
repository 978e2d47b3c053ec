package odm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/invopop/jsonschema"
	stjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

const objectIDPattern = "^[0-9a-fA-F]{24}$"

// JSONSchema renders the schema as a JSON Schema (draft 2020-12) object.
// Dotted paths become nested object properties. Mapper specific constraints
// without a JSON Schema keyword are kept as x-ref, x-unique and x-index.
func (s *Schema) JSONSchema() *jsonschema.Schema {
	root := newObjectSchema()
	root.Version = jsonschema.Version

	for _, p := range s.Paths() {
		segments := strings.Split(p.Name, ".")
		parents := make([]*jsonschema.Schema, 0, len(segments))
		current := root
		for _, seg := range segments[:len(segments)-1] {
			parents = append(parents, current)
			child, ok := current.Properties.Get(seg)
			if !ok {
				child = newObjectSchema()
				current.Properties.Set(seg, child)
			}
			if child.Properties == nil {
				child.Properties = jsonschema.NewProperties()
			}
			if child.Type == "" {
				child.Type = "object"
			}
			current = child
		}
		leaf := segments[len(segments)-1]
		current.Properties.Set(leaf, pathSchema(&p))

		if p.Required {
			current.Required = appendMissing(current.Required, leaf)
			for i, parent := range parents {
				parent.Required = appendMissing(parent.Required, segments[i])
			}
		}
	}
	return root
}

func newObjectSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:       "object",
		Properties: jsonschema.NewProperties(),
	}
}

func appendMissing(list []string, v string) []string {
	if slices.Contains(list, v) {
		return list
	}
	return append(list, v)
}

func pathSchema(p *Path) *jsonschema.Schema {
	var s *jsonschema.Schema
	if p.IsArray() {
		items := instanceSchema(p.Caster.OrMixed())
		applyConstraints(items, p.Caster.OrMixed(), p.Options)
		s = &jsonschema.Schema{Type: "array", Items: items}
	} else {
		s = instanceSchema(p.Instance.OrMixed())
		applyConstraints(s, p.Instance.OrMixed(), p.Options)
	}

	if p.Options.Default != nil {
		s.Default = p.Options.Default
	}
	extras := map[string]any{}
	if p.Options.Ref != "" {
		extras["x-ref"] = p.Options.Ref
	}
	if p.Options.Unique != nil {
		extras["x-unique"] = *p.Options.Unique
	}
	if p.Options.Index != nil {
		extras["x-index"] = *p.Options.Index
	}
	if len(extras) > 0 {
		s.Extras = extras
	}
	return s
}

func instanceSchema(i Instance) *jsonschema.Schema {
	switch i {
	case String:
		return &jsonschema.Schema{Type: "string"}
	case Number, Decimal128:
		return &jsonschema.Schema{Type: "number"}
	case BigInt:
		return &jsonschema.Schema{Type: "integer"}
	case Boolean:
		return &jsonschema.Schema{Type: "boolean"}
	case Date:
		return &jsonschema.Schema{Type: "string", Format: "date-time"}
	case ObjectID:
		return &jsonschema.Schema{Type: "string", Pattern: objectIDPattern}
	case UUID:
		return &jsonschema.Schema{Type: "string", Format: "uuid"}
	case Buffer:
		return &jsonschema.Schema{Type: "string", ContentEncoding: "base64"}
	case Map:
		return &jsonschema.Schema{Type: "object"}
	case Array:
		return &jsonschema.Schema{Type: "array"}
	default:
		return &jsonschema.Schema{}
	}
}

func applyConstraints(s *jsonschema.Schema, i Instance, o Options) {
	if len(o.Enum) > 0 {
		s.Enum = slices.Clone(o.Enum)
	}
	switch i {
	case Number, Decimal128, BigInt:
		if o.Min != nil {
			s.Minimum = formatNumber(*o.Min)
		}
		if o.Max != nil {
			s.Maximum = formatNumber(*o.Max)
		}
	case String:
		if o.MinLength != nil {
			s.MinLength = Ptr(uint64(*o.MinLength))
		}
		if o.MaxLength != nil {
			s.MaxLength = Ptr(uint64(*o.MaxLength))
		}
		if o.Match != nil {
			s.Pattern = o.Match.String()
		}
	}
}

func formatNumber(f float64) json.Number {
	return json.Number(strconv.FormatFloat(f, 'g', -1, 64))
}

// validator checks documents against a compiled JSON Schema.
type validator struct {
	schema *stjsonschema.Schema
}

func newValidator(s *jsonschema.Schema) (*validator, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal json schema: %w", err)
	}
	doc, err := stjsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode json schema: %w", err)
	}
	compiler := stjsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", doc); err != nil {
		return nil, err
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile json schema: %w", err)
	}
	return &validator{schema: compiled}, nil
}

func (v *validator) Validate(doc Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	inst, err := stjsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := v.schema.Validate(inst); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}
