package odm

import (
	"fmt"
	"regexp"
)

// Path is the descriptor of a single schema path.
// Nested documents are flattened, so a path name may contain dots.
type Path struct {
	Name string
	// Instance is the kind tag. An empty Instance means the path did not
	// declare a type and is treated as Mixed.
	Instance Instance
	// Caster is the element kind of an Array path.
	Caster   Instance
	Required bool
	Options  Options
}

// Options holds the optional constraints of a path.
// Pointer and nil values mean "not set", which is different from a
// constraint explicitly set to its zero value.
type Options struct {
	Unique *bool
	Index  *bool
	// Default is the value of the path when a document leaves it out.
	// A nil Default is unset unless NullDefault declares an explicit null.
	Default     any
	NullDefault bool
	Enum        []any
	Ref         string
	Min         *float64
	Max         *float64
	MinLength   *int
	MaxLength   *int
	Match       *regexp.Regexp
	Lowercase   *bool
	Uppercase   *bool
	Trim        *bool
}

// HasDefault reports whether the options declare a default, including an
// explicit null.
func (o Options) HasDefault() bool {
	return o.Default != nil || o.NullDefault
}

// Ptr returns a pointer to v. It is a convenience for filling Options.
func Ptr[T any](v T) *T {
	return &v
}

// IsArray reports whether the path holds a list of values.
func (p *Path) IsArray() bool {
	return p.Instance == Array
}

// EnumValues returns the declared enum values, or nil.
func (p *Path) EnumValues() []any {
	return p.Options.Enum
}

// Validate checks that the path is well-formed.
func (p *Path) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("path name must not be empty")
	}
	if _, err := ParseInstance(string(p.Instance)); err != nil {
		return fmt.Errorf("path %q: %w", p.Name, err)
	}
	if p.Caster != "" {
		if p.Instance != Array {
			return fmt.Errorf("path %q: element type %q is only allowed on arrays", p.Name, p.Caster)
		}
		if _, err := ParseInstance(string(p.Caster)); err != nil {
			return fmt.Errorf("path %q: %w", p.Name, err)
		}
	}
	o := p.Options
	for _, v := range o.Enum {
		switch v.(type) {
		case string, bool, int, int32, int64, float32, float64:
		default:
			return fmt.Errorf("path %q: enum value %v (%T) is not a primitive", p.Name, v, v)
		}
	}
	if o.Min != nil && o.Max != nil && *o.Min > *o.Max {
		return fmt.Errorf("path %q: min %v is greater than max %v", p.Name, *o.Min, *o.Max)
	}
	if o.MinLength != nil && *o.MinLength < 0 {
		return fmt.Errorf("path %q: minlength must not be negative", p.Name)
	}
	if o.MaxLength != nil && *o.MaxLength < 0 {
		return fmt.Errorf("path %q: maxlength must not be negative", p.Name)
	}
	if o.MinLength != nil && o.MaxLength != nil && *o.MinLength > *o.MaxLength {
		return fmt.Errorf("path %q: minlength %d is greater than maxlength %d", p.Name, *o.MinLength, *o.MaxLength)
	}
	return nil
}

func (p *Path) clone() *Path {
	c := *p
	if p.Options.Enum != nil {
		c.Options.Enum = append([]any(nil), p.Options.Enum...)
	}
	return &c
}
