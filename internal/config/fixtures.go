package config

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"modelviz.dev/modelviz/odm"
)

// FixtureConcurrency bounds how many fixture files are loaded at once.
const FixtureConcurrency = 4

// LoadFixtures inserts the fixture documents of every model that declares a
// fixture file. Files are read concurrently; the documents of one file are
// inserted in file order.
func (c *Config) LoadFixtures(ctx context.Context, registry *odm.Registry) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(FixtureConcurrency)
	for _, m := range c.Models {
		if m.Fixtures == "" {
			continue
		}
		eg.Go(func() error {
			model, err := registry.Lookup(m.Name)
			if err != nil {
				return err
			}
			n, err := loadFixtureFile(ctx, model, m.Fixtures)
			if err != nil {
				return fmt.Errorf("model %q: fixtures %s: %w", m.Name, m.Fixtures, err)
			}
			slog.DebugContext(ctx, "loaded fixtures",
				slog.String("realm", "config"),
				slog.String("model", m.Name),
				slog.Int("documents", n),
			)
			return nil
		})
	}
	return eg.Wait()
}

func loadFixtureFile(ctx context.Context, model *odm.Model, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	docs, err := DecodeDocuments(data)
	if err != nil {
		return 0, err
	}
	for i, doc := range docs {
		if _, err := model.Create(ctx, doc); err != nil {
			return i, fmt.Errorf("document %d: %w", i, err)
		}
	}
	return len(docs), nil
}

// DecodeDocuments decodes either a JSON array of objects or a stream of
// objects such as NDJSON.
func DecodeDocuments(data []byte) ([]map[string]any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var docs []map[string]any
		if err := json.Unmarshal(trimmed, &docs); err != nil {
			return nil, fmt.Errorf("failed to decode document array: %w", err)
		}
		return docs, nil
	}

	var docs []map[string]any
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	for {
		var doc map[string]any
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode document %d: %w", len(docs), err)
		}
		docs = append(docs, doc)
	}
}
