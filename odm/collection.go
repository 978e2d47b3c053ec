package odm

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// FindOptions select, order and page documents.
type FindOptions struct {
	// Filter is a CEL expression over the document bound as doc.
	Filter string
	// Sort is a sort specification, see ParseSort.
	Sort string
	Skip int64
	// Limit caps the number of returned documents; zero means no limit.
	Limit int64
}

// Collection is the storage behind a model.
type Collection interface {
	Name() string
	Find(ctx context.Context, opts FindOptions) ([]Document, error)
	CountDocuments(ctx context.Context, filter string) (int64, error)
	InsertOne(ctx context.Context, doc Document) error
}

// MemoryCollection keeps documents in insertion order in memory.
// It is safe for concurrent use.
type MemoryCollection struct {
	name string

	mu   sync.RWMutex
	docs []Document
}

var _ Collection = (*MemoryCollection)(nil)

func NewMemoryCollection(name string) *MemoryCollection {
	return &MemoryCollection{name: name}
}

func (c *MemoryCollection) Name() string {
	return c.name
}

// Find returns clones of the matching documents.
func (c *MemoryCollection) Find(ctx context.Context, opts FindOptions) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.Skip < 0 || opts.Limit < 0 {
		return nil, fmt.Errorf("skip and limit must not be negative")
	}
	filter, err := CompileFilter(opts.Filter)
	if err != nil {
		return nil, err
	}
	order, err := ParseSort(opts.Sort)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	matched := make([]Document, 0, len(c.docs))
	for _, doc := range c.docs {
		if filter.Match(doc) {
			matched = append(matched, doc)
		}
	}
	c.mu.RUnlock()

	if len(order) > 0 {
		slices.SortStableFunc(matched, func(a, b Document) int {
			return compareDocuments(a, b, order)
		})
	}

	if opts.Skip >= int64(len(matched)) {
		return []Document{}, nil
	}
	matched = matched[opts.Skip:]
	if opts.Limit > 0 && opts.Limit < int64(len(matched)) {
		matched = matched[:opts.Limit]
	}

	out := make([]Document, len(matched))
	for i, doc := range matched {
		out[i] = doc.Clone()
	}
	return out, nil
}

func (c *MemoryCollection) CountDocuments(ctx context.Context, filter string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	f, err := CompileFilter(filter)
	if err != nil {
		return 0, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if f == nil {
		return int64(len(c.docs)), nil
	}
	var n int64
	for _, doc := range c.docs {
		if f.Match(doc) {
			n++
		}
	}
	return n, nil
}

// InsertOne stores a clone of the document.
func (c *MemoryCollection) InsertOne(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("cannot insert nil document")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs = append(c.docs, doc.Clone())
	return nil
}
