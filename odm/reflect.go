package odm

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TagName is the struct tag read by SchemaFor.
const TagName = "odm"

var (
	timeType     = reflect.TypeFor[time.Time]()
	objectIDType = reflect.TypeFor[ObjectId]()
	byteSlice    = reflect.TypeFor[[]byte]()
)

// SchemaFor derives a schema from a Go struct (or pointer to one).
//
// Path names come from the json tag, then the bson tag, then the field name.
// Nested structs are flattened into dotted paths. Constraints are read from
// the odm tag, a comma separated list of:
//
//	required, unique, index, lowercase, uppercase, trim  flags, optionally =true/=false
//	type=UUID                                            overrides the derived kind
//	ref=User                                             reference target
//	enum=a|b|c                                           allowed values
//	min=0, max=10                                        numeric bounds
//	minlength=1, maxlength=5                             string length bounds
//	default=x                                            default value
//	match=^[a-z]+$                                       pattern, must be the last entry
func SchemaFor(v any, opts ...SchemaOption) (*Schema, error) {
	t := reflect.TypeOf(v)
	if t == nil {
		return nil, fmt.Errorf("cannot derive schema from nil")
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("cannot derive schema from %s, expected a struct", t)
	}

	var paths []Path
	if err := collectPaths(t, "", &paths); err != nil {
		return nil, fmt.Errorf("deriving schema from %s: %w", t, err)
	}
	return NewSchema(paths, opts...)
}

// MustSchemaFor is like SchemaFor but panics on error.
func MustSchemaFor(v any, opts ...SchemaOption) *Schema {
	s, err := SchemaFor(v, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func collectPaths(t reflect.Type, prefix string, paths *[]Path) error {
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() && !(f.Anonymous && indirect(f.Type).Kind() == reflect.Struct) {
			continue
		}
		name, inline, skip := fieldName(f)
		if skip {
			continue
		}

		ft := indirect(f.Type)
		if (inline || f.Anonymous && name == f.Name) && ft.Kind() == reflect.Struct && ft != timeType {
			if err := collectPaths(ft, prefix, paths); err != nil {
				return err
			}
			continue
		}

		full := prefix + name
		if ft.Kind() == reflect.Struct && ft != timeType && f.Tag.Get(TagName) == "" {
			if err := collectPaths(ft, full+".", paths); err != nil {
				return err
			}
			continue
		}

		p := Path{Name: full}
		p.Instance, p.Caster = instanceFor(ft)
		if err := parseTag(f.Tag.Get(TagName), ft, &p); err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
		*paths = append(*paths, p)
	}
	return nil
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func fieldName(f reflect.StructField) (name string, inline, skip bool) {
	for _, key := range []string{"json", "bson"} {
		tag, ok := f.Tag.Lookup(key)
		if !ok {
			continue
		}
		if tag == "-" {
			return "", false, true
		}
		parts := strings.Split(tag, ",")
		for _, opt := range parts[1:] {
			if opt == "inline" {
				inline = true
			}
		}
		if parts[0] != "" {
			return parts[0], inline, false
		}
		if inline {
			return f.Name, true, false
		}
	}
	return f.Name, false, false
}

func instanceFor(t reflect.Type) (Instance, Instance) {
	switch {
	case t == timeType:
		return Date, ""
	case t == objectIDType:
		return ObjectID, ""
	case t == byteSlice:
		return Buffer, ""
	}

	switch t.Kind() {
	case reflect.String:
		return String, ""
	case reflect.Bool:
		return Boolean, ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return Number, ""
	case reflect.Map:
		return Map, ""
	case reflect.Slice, reflect.Array:
		caster, _ := instanceFor(indirect(t.Elem()))
		if caster == Array {
			caster = Mixed
		}
		return Array, caster
	case reflect.Interface:
		return Mixed, ""
	default:
		return Mixed, ""
	}
}

func parseTag(tag string, t reflect.Type, p *Path) error {
	if tag == "" {
		return nil
	}

	elem := t
	if p.Instance == Array {
		elem = indirect(t.Elem())
	}

	rest := tag
	for rest != "" {
		var entry string
		if strings.HasPrefix(rest, "match=") {
			entry, rest = rest, ""
		} else {
			entry, rest, _ = strings.Cut(rest, ",")
		}
		key, value, hasValue := strings.Cut(strings.TrimSpace(entry), "=")

		var err error
		switch key {
		case "":
		case "required":
			p.Required, err = flagValue(value, hasValue)
		case "unique":
			p.Options.Unique, err = flagPtr(value, hasValue)
		case "index":
			p.Options.Index, err = flagPtr(value, hasValue)
		case "lowercase":
			p.Options.Lowercase, err = flagPtr(value, hasValue)
		case "uppercase":
			p.Options.Uppercase, err = flagPtr(value, hasValue)
		case "trim":
			p.Options.Trim, err = flagPtr(value, hasValue)
		case "type":
			var i Instance
			if i, err = ParseInstance(value); err == nil {
				if p.Instance == Array {
					p.Caster = i
				} else {
					p.Instance = i
				}
			}
		case "ref":
			p.Options.Ref = value
		case "enum":
			for _, raw := range strings.Split(value, "|") {
				v, perr := scalarFor(elem, raw)
				if perr != nil {
					return fmt.Errorf("enum: %w", perr)
				}
				p.Options.Enum = append(p.Options.Enum, v)
			}
		case "min", "max":
			var f float64
			if f, err = strconv.ParseFloat(value, 64); err == nil {
				if key == "min" {
					p.Options.Min = &f
				} else {
					p.Options.Max = &f
				}
			}
		case "minlength", "maxlength":
			var n int
			if n, err = strconv.Atoi(value); err == nil {
				if key == "minlength" {
					p.Options.MinLength = &n
				} else {
					p.Options.MaxLength = &n
				}
			}
		case "match":
			p.Options.Match, err = regexp.Compile(value)
		case "default":
			if p.Instance == Array {
				p.Options.Default = []any{}
				if value != "" {
					return fmt.Errorf("default: only an empty default is supported on arrays")
				}
			} else {
				p.Options.Default, err = scalarFor(t, value)
			}
		default:
			return fmt.Errorf("unknown tag option %q", key)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

func flagValue(value string, hasValue bool) (bool, error) {
	if !hasValue {
		return true, nil
	}
	return strconv.ParseBool(value)
}

func flagPtr(value string, hasValue bool) (*bool, error) {
	b, err := flagValue(value, hasValue)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func scalarFor(t reflect.Type, raw string) (any, error) {
	if t == timeType || t == objectIDType {
		return raw, nil
	}
	switch t.Kind() {
	case reflect.Bool:
		return strconv.ParseBool(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return strconv.ParseFloat(raw, 64)
	default:
		return raw, nil
	}
}
