package odm

import "errors"

var (
	// ErrModelNotFound is returned when a model name is not registered.
	ErrModelNotFound = errors.New("model not found")

	// ErrDuplicateModel is returned when a model name is registered twice.
	ErrDuplicateModel = errors.New("model already registered")

	// ErrValidation is returned when a document does not satisfy its schema.
	ErrValidation = errors.New("document validation failed")

	ErrInvalidFilter = errors.New("invalid filter expression")
	ErrInvalidSort   = errors.New("invalid sort specification")
)
