package odm

import (
	"context"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
)

// VersionKey is the document revision path added to every model unless disabled.
const VersionKey = "__v"

// Model binds a schema to a collection under a registered name.
type Model struct {
	name       string
	schema     *Schema
	collection Collection
}

type modelOptions struct {
	collectionName string
	collection     Collection
	noVersionKey   bool
}

type ModelOption func(*modelOptions)

// WithCollectionName overrides the derived collection name.
func WithCollectionName(name string) ModelOption {
	return func(o *modelOptions) {
		o.collectionName = name
	}
}

// WithCollection sets the storage of the model. By default a
// MemoryCollection is created.
func WithCollection(c Collection) ModelOption {
	return func(o *modelOptions) {
		o.collection = c
	}
}

// WithoutVersionKey disables the __v path.
func WithoutVersionKey() ModelOption {
	return func(o *modelOptions) {
		o.noVersionKey = true
	}
}

func newModel(name string, schema *Schema, opts ...ModelOption) (*Model, error) {
	if name == "" {
		return nil, fmt.Errorf("model name must not be empty")
	}
	if schema == nil {
		return nil, fmt.Errorf("model %q: schema is required", name)
	}
	options := &modelOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if !options.noVersionKey && !schema.Has(VersionKey) {
		if err := schema.Add(Path{Name: VersionKey, Instance: Number}); err != nil {
			return nil, fmt.Errorf("model %q: %w", name, err)
		}
	}
	coll := options.collection
	if coll == nil {
		collName := options.collectionName
		if collName == "" {
			collName = CollectionName(name)
		}
		coll = NewMemoryCollection(collName)
	}
	return &Model{name: name, schema: schema, collection: coll}, nil
}

func (m *Model) Name() string {
	return m.name
}

func (m *Model) CollectionName() string {
	return m.collection.Name()
}

func (m *Model) Schema() *Schema {
	return m.schema
}

func (m *Model) Collection() Collection {
	return m.collection
}

// JSONSchema returns the JSON Schema of the model's documents.
func (m *Model) JSONSchema() *jsonschema.Schema {
	s := m.schema.JSONSchema()
	s.Title = m.name
	return s
}

func (m *Model) Find(ctx context.Context, opts FindOptions) ([]Document, error) {
	return m.collection.Find(ctx, opts)
}

func (m *Model) CountDocuments(ctx context.Context, filter string) (int64, error) {
	return m.collection.CountDocuments(ctx, filter)
}

// Create casts v into a document, applies defaults and string modifiers,
// assigns _id and __v when missing, validates the result and inserts it.
// The stored document is returned.
func (m *Model) Create(ctx context.Context, v any) (Document, error) {
	doc, err := NewDocument(v)
	if err != nil {
		return nil, fmt.Errorf("model %q: %w", m.name, err)
	}

	for _, p := range m.schema.Paths() {
		value, ok := doc.Get(p.Name)
		if (!ok || value == nil) && p.Options.HasDefault() {
			value, ok = nil, true
			if p.Options.Default != nil {
				def, err := NewDocument(map[string]any{"v": p.Options.Default})
				if err != nil {
					return nil, fmt.Errorf("model %q: default of %q: %w", m.name, p.Name, err)
				}
				value = def["v"]
			}
			doc.Set(p.Name, value)
		}
		if ok {
			if modified, changed := applyModifiers(&p, value); changed {
				doc.Set(p.Name, modified)
			}
		}
	}
	if m.schema.Has(IDPath) {
		if v, ok := doc.Get(IDPath); !ok || v == nil {
			doc.Set(IDPath, NewObjectId().Hex())
		}
	}
	if m.schema.Has(VersionKey) {
		if v, ok := doc.Get(VersionKey); !ok || v == nil {
			doc.Set(VersionKey, float64(0))
		}
	}

	if err := m.Validate(doc); err != nil {
		return nil, fmt.Errorf("model %q: %w", m.name, err)
	}
	if err := m.collection.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("model %q: %w", m.name, err)
	}
	return doc, nil
}

// Validate checks a document against the model's JSON Schema.
// Null values of optional paths are accepted.
func (m *Model) Validate(doc Document) error {
	v, err := newValidator(m.schema.JSONSchema())
	if err != nil {
		return err
	}
	return v.Validate(withoutOptionalNulls(doc.Clone(), m.schema))
}

func withoutOptionalNulls(doc Document, s *Schema) Document {
	for _, p := range s.Paths() {
		if p.Required {
			continue
		}
		if v, ok := doc.Get(p.Name); ok && v == nil {
			segments := strings.Split(p.Name, ".")
			parent := map[string]any(doc)
			if len(segments) > 1 {
				pv, _ := doc.Get(strings.Join(segments[:len(segments)-1], "."))
				parent, _ = asMap(pv)
			}
			delete(parent, segments[len(segments)-1])
		}
	}
	return doc
}

func applyModifiers(p *Path, value any) (any, bool) {
	o := p.Options
	if o.Trim == nil && o.Lowercase == nil && o.Uppercase == nil {
		return value, false
	}
	modify := func(s string) string {
		if o.Trim != nil && *o.Trim {
			s = strings.TrimSpace(s)
		}
		if o.Lowercase != nil && *o.Lowercase {
			s = strings.ToLower(s)
		}
		if o.Uppercase != nil && *o.Uppercase {
			s = strings.ToUpper(s)
		}
		return s
	}
	switch v := value.(type) {
	case string:
		return modify(v), true
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			if s, ok := e.(string); ok {
				out[i] = modify(s)
			} else {
				out[i] = e
			}
		}
		return out, true
	default:
		return value, false
	}
}
