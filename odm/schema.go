package odm

import (
	"fmt"
	"sync"
)

// IDPath is the primary key path added to every schema unless disabled.
const IDPath = "_id"

// Schema is an ordered collection of paths describing one model's documents.
// Paths are enumerated in the order they were added.
type Schema struct {
	mu    sync.RWMutex
	paths []*Path
	index map[string]int
}

type schemaOptions struct {
	noID bool
}

type SchemaOption func(*schemaOptions)

// WithoutID disables the automatic _id path.
func WithoutID() SchemaOption {
	return func(o *schemaOptions) {
		o.noID = true
	}
}

// NewSchema creates a schema from the given paths. Unless WithoutID is
// passed, an ObjectId _id path is appended after the declared paths when
// none of them is called _id.
func NewSchema(paths []Path, opts ...SchemaOption) (*Schema, error) {
	options := &schemaOptions{}
	for _, opt := range opts {
		opt(options)
	}

	s := &Schema{index: make(map[string]int)}
	for _, p := range paths {
		if err := s.Add(p); err != nil {
			return nil, err
		}
	}
	if !options.noID && !s.Has(IDPath) {
		if err := s.Add(Path{Name: IDPath, Instance: ObjectID}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MustNewSchema is like NewSchema but panics on error.
func MustNewSchema(paths []Path, opts ...SchemaOption) *Schema {
	s, err := NewSchema(paths, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Add appends a path to the schema.
func (s *Schema) Add(p Path) error {
	if err := p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[p.Name]; exists {
		return fmt.Errorf("path %q is already declared", p.Name)
	}
	s.index[p.Name] = len(s.paths)
	s.paths = append(s.paths, p.clone())
	return nil
}

// Has reports whether the schema declares the named path.
func (s *Schema) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[name]
	return ok
}

// Path returns a copy of the named path.
func (s *Schema) Path(name string) (Path, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[name]
	if !ok {
		return Path{}, false
	}
	return *s.paths[i].clone(), true
}

// Len returns the number of declared paths.
func (s *Schema) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.paths)
}

// Paths returns copies of all paths in declaration order.
func (s *Schema) Paths() []Path {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Path, 0, len(s.paths))
	for _, p := range s.paths {
		out = append(out, *p.clone())
	}
	return out
}

// EachPath calls fn for every path in declaration order.
// fn receives a copy taken before the first call.
func (s *Schema) EachPath(fn func(name string, p *Path)) {
	for _, p := range s.Paths() {
		fn(p.Name, &p)
	}
}
