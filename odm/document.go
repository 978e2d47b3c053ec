package odm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Document is a stored record. Values are plain JSON values: string,
// float64, bool, nil, []any and map[string]any.
type Document map[string]any

// Get returns the value at a dotted path.
func (d Document) Get(path string) (any, bool) {
	var current any = map[string]any(d)
	for _, seg := range strings.Split(path, ".") {
		m, ok := asMap(current)
		if !ok {
			return nil, false
		}
		if current, ok = m[seg]; !ok {
			return nil, false
		}
	}
	return current, true
}

// Set stores a value at a dotted path, creating intermediate objects.
// Intermediate values that are not objects are replaced.
func (d Document) Set(path string, v any) {
	segments := strings.Split(path, ".")
	m := map[string]any(d)
	for _, seg := range segments[:len(segments)-1] {
		next, ok := asMap(m[seg])
		if !ok {
			next = map[string]any{}
			m[seg] = next
		}
		m = next
	}
	m[segments[len(segments)-1]] = v
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Document:
		return m, true
	default:
		return nil, false
	}
}

// NewDocument converts any JSON-marshalable value into a Document.
// The result shares no memory with v.
func NewDocument(v any) (Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("document must be a JSON object")
	}
	return doc, nil
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	return cloneValue(map[string]any(d)).(map[string]any)
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case Document:
		return cloneValue(map[string]any(t))
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
