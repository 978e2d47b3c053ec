package odm

import (
	"fmt"
	"slices"
	"sync"
)

// Registry is a table of models keyed by name.
// It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	models map[string]*Model
	order  []string
}

// Default is the process-wide registry used by the package level functions.
var Default = NewRegistry()

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		models: make(map[string]*Model),
	}
}

// Model compiles and registers a model under the given name.
func (r *Registry) Model(name string, schema *Schema, opts ...ModelOption) (*Model, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.models[name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateModel, name)
	}
	m, err := newModel(name, schema, opts...)
	if err != nil {
		return nil, err
	}
	r.models[name] = m
	r.order = append(r.order, name)
	return m, nil
}

// MustModel is like Model but panics on error.
func (r *Registry) MustModel(name string, schema *Schema, opts ...ModelOption) *Model {
	m, err := r.Model(name, schema, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// ModelNames returns the registered names in registration order.
func (r *Registry) ModelNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Lookup returns the named model or an error wrapping ErrModelNotFound.
func (r *Registry) Lookup(name string) (*Model, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrModelNotFound, name)
	}
	return m, nil
}

// DeleteModel removes a model from the registry.
func (r *Registry) DeleteModel(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.models[name]; !ok {
		return fmt.Errorf("%w: %q", ErrModelNotFound, name)
	}
	delete(r.models, name)
	r.order = slices.DeleteFunc(r.order, func(n string) bool { return n == name })
	return nil
}

// Register adds a model to the Default registry.
func Register(name string, schema *Schema, opts ...ModelOption) (*Model, error) {
	return Default.Model(name, schema, opts...)
}

// Lookup returns a model from the Default registry.
func Lookup(name string) (*Model, error) {
	return Default.Lookup(name)
}
