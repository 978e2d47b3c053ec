// Package introspect projects the registered models of an odm.Registry into
// plain, serializable summaries.
package introspect

import (
	"fmt"

	"modelviz.dev/modelviz/odm"
)

// Registry is the read-only view of a model registry used for scanning.
// *odm.Registry implements it.
type Registry interface {
	ModelNames() []string
	Lookup(name string) (*odm.Model, error)
}

var _ Registry = (*odm.Registry)(nil)

// ScannedModel is a registered model with its raw schema handle.
type ScannedModel struct {
	Name       string
	Collection string
	Schema     *odm.Schema
}

// ModelSummary is the serializable description of one model.
type ModelSummary struct {
	Name       string            `json:"name"`
	Collection string            `json:"collection"`
	Fields     []FieldDescriptor `json:"fields"`
}

// ScanModels lists every registered model in registry order.
// Lookup errors of the registry are returned unchanged.
func ScanModels(r Registry) ([]ScannedModel, error) {
	names := r.ModelNames()
	models := make([]ScannedModel, 0, len(names))
	for _, name := range names {
		m, err := r.Lookup(name)
		if err != nil {
			return nil, err
		}
		models = append(models, ScannedModel{
			Name:       name,
			Collection: m.CollectionName(),
			Schema:     m.Schema(),
		})
	}
	return models, nil
}

// Summarize scans the registry and projects every model.
func Summarize(r Registry) ([]ModelSummary, error) {
	scanned, err := ScanModels(r)
	if err != nil {
		return nil, err
	}
	summaries := make([]ModelSummary, 0, len(scanned))
	for _, m := range scanned {
		summaries = append(summaries, ModelSummary{
			Name:       m.Name,
			Collection: m.Collection,
			Fields:     ParseSchema(m.Schema),
		})
	}
	return summaries, nil
}

// Describe projects a single model. Unknown names yield an error wrapping
// odm.ErrModelNotFound.
func Describe(r Registry, name string) (*ModelSummary, error) {
	m, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: %q", odm.ErrModelNotFound, name)
	}
	return &ModelSummary{
		Name:       name,
		Collection: m.CollectionName(),
		Fields:     ParseSchema(m.Schema()),
	}, nil
}
