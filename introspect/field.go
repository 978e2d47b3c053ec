package introspect

import (
	"encoding/json"
	"slices"

	"modelviz.dev/modelviz/odm"
)

// FieldDescriptor is the flat projection of one schema path.
//
// required, unique, index and isArray are always present. Every other key is
// present exactly when the path sets the corresponding option, including
// options explicitly set to a zero value such as trim=false or min=0. An
// explicit null default is encoded as "default": null.
//
// enum is the exception: it is present only when the path declares at least
// one value, so an empty enum list is left out.
type FieldDescriptor struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
	Unique   bool   `json:"unique"`
	Index    bool   `json:"index"`
	// Default is only meaningful when HasDefault is true.
	Default    any      `json:"-"`
	HasDefault bool     `json:"-"`
	Enum       []any    `json:"enum,omitempty"`
	Ref        string   `json:"ref,omitempty"`
	Min        *float64 `json:"min,omitempty"`
	Max        *float64 `json:"max,omitempty"`
	MinLength  *int     `json:"minlength,omitempty"`
	MaxLength  *int     `json:"maxlength,omitempty"`
	Match      string   `json:"match,omitempty"`
	Lowercase  *bool    `json:"lowercase,omitempty"`
	Uppercase  *bool    `json:"uppercase,omitempty"`
	Trim       *bool    `json:"trim,omitempty"`
	IsArray    bool     `json:"isArray"`
}

// MarshalJSON encodes the descriptor, writing default whenever HasDefault is
// set, even when the default is null.
func (f FieldDescriptor) MarshalJSON() ([]byte, error) {
	type fields FieldDescriptor
	out := struct {
		fields
		Default *any `json:"default,omitempty"`
	}{fields: fields(f)}
	if f.HasDefault {
		out.Default = &f.Default
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a descriptor, setting HasDefault when the default key
// is present.
func (f *FieldDescriptor) UnmarshalJSON(data []byte) error {
	type fields FieldDescriptor
	var in struct {
		fields
		Default json.RawMessage `json:"default"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*f = FieldDescriptor(in.fields)
	if in.Default != nil {
		f.HasDefault = true
		if err := json.Unmarshal(in.Default, &f.Default); err != nil {
			return err
		}
	}
	return nil
}

// ParseSchema projects every path of the schema in enumeration order.
func ParseSchema(s *odm.Schema) []FieldDescriptor {
	fields := make([]FieldDescriptor, 0, s.Len())
	s.EachPath(func(name string, p *odm.Path) {
		fields = append(fields, projectPath(name, p))
	})
	return fields
}

func projectPath(name string, p *odm.Path) FieldDescriptor {
	o := p.Options
	f := FieldDescriptor{
		Name:       name,
		Type:       p.Instance.OrMixed().String(),
		Required:   p.Required,
		Unique:     isSet(o.Unique),
		Index:      isSet(o.Index),
		Default:    o.Default,
		HasDefault: o.HasDefault(),
		Ref:        o.Ref,
		Min:        copyPtr(o.Min),
		Max:        copyPtr(o.Max),
		MinLength:  copyPtr(o.MinLength),
		MaxLength:  copyPtr(o.MaxLength),
		Lowercase:  copyPtr(o.Lowercase),
		Uppercase:  copyPtr(o.Uppercase),
		Trim:       copyPtr(o.Trim),
		IsArray:    p.IsArray(),
	}
	if len(o.Enum) > 0 {
		f.Enum = slices.Clone(o.Enum)
	}
	if o.Match != nil {
		f.Match = "/" + o.Match.String() + "/"
	}
	return f
}

func isSet(b *bool) bool {
	return b != nil && *b
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
