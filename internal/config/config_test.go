package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modelviz.dev/modelviz/internal/config"
	"modelviz.dev/modelviz/introspect"
	"modelviz.dev/modelviz/odm"
)

const shopConfig = `
addr: 127.0.0.1:9090
path: /visualizer
title: Shop
ui:
  dir: ui
models:
  - name: User
    fixtures: users.ndjson
    fields:
      - {name: email, type: String, required: true, unique: true, lowercase: true, trim: true}
      - {name: age, type: Number, min: 0}
      - {name: tags, of: String}
  - name: Category
    collection: taxonomy
    versionKey: false
    id: false
    fields:
      - {name: slug, type: String, match: "^[a-z-]+$", minlength: 0}
      - {name: featured, type: Boolean, default: false}
      - {name: kind, type: String, enum: [physical, digital]}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "modelviz.yaml", shopConfig)

	cfg, err := config.Load(path)
	r.NoError(err)
	r.Equal("127.0.0.1:9090", cfg.Addr)
	r.Equal("/visualizer", cfg.Path)
	r.Equal("Shop", cfg.Title)
	r.Equal(filepath.Join(dir, "ui"), cfg.UI.Dir)
	r.Empty(cfg.UI.Archive)
	r.Len(cfg.Models, 2)
	r.Equal(filepath.Join(dir, "users.ndjson"), cfg.Models[0].Fixtures)
	r.Equal(false, cfg.Models[1].Fields[1].Default)
	r.Equal(0, *cfg.Models[1].Fields[0].MinLength)
}

func TestParseDefaults(t *testing.T) {
	for _, doc := range []string{"", "{}", "models: []"} {
		cfg, err := config.Parse([]byte(doc))
		require.NoError(t, err, doc)
		require.Equal(t, config.DefaultAddr, cfg.Addr)
		require.Equal(t, config.DefaultPath, cfg.Path)
		require.Empty(t, cfg.Models)
	}
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	tests := map[string]string{
		"unknown key":        "port: 8080",
		"model without name": "models: [{fields: []}]",
		"unknown type":       "models: [{name: A, fields: [{name: x, type: Text}]}]",
		"negative minlength": "models: [{name: A, fields: [{name: x, minlength: -1}]}]",
		"wrong scalar":       "title: [a, b]",
		"malformed yaml":     "models: [",
		"unknown field key":  "models: [{name: A, fields: [{name: x, sparse: true}]}]",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := config.Parse([]byte(doc))
			require.Error(t, err)
		})
	}
}

func TestRegister(t *testing.T) {
	r := require.New(t)
	cfg, err := config.Parse([]byte(shopConfig))
	r.NoError(err)

	registry := odm.NewRegistry()
	r.NoError(cfg.Register(registry))
	r.Equal([]string{"User", "Category"}, registry.ModelNames())

	summaries, err := introspect.Summarize(registry)
	r.NoError(err)
	r.Equal("users", summaries[0].Collection)
	r.Equal("taxonomy", summaries[1].Collection)

	user := summaries[0].Fields
	r.Len(user, 5)
	assert.Equal(t, "email", user[0].Name)
	assert.True(t, user[0].Required)
	assert.True(t, user[0].Unique)
	assert.Equal(t, "Array", user[2].Type)
	assert.True(t, user[2].IsArray)
	assert.Equal(t, odm.IDPath, user[3].Name)
	assert.Equal(t, odm.VersionKey, user[4].Name)

	category := summaries[1].Fields
	r.Len(category, 3)
	assert.Equal(t, "/^[a-z-]+$/", category[0].Match)
	assert.Equal(t, false, category[1].Default)
	assert.Equal(t, []any{"physical", "digital"}, category[2].Enum)

	r.ErrorIs(cfg.Register(registry), odm.ErrDuplicateModel)
}

func TestRegisterRejectsBadFields(t *testing.T) {
	tests := map[string]string{
		"bad regexp":      `models: [{name: A, fields: [{name: x, type: String, match: "("}]}]`,
		"of on non array": `models: [{name: A, fields: [{name: x, type: String, of: Number}]}]`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			cfg, err := config.Parse([]byte(doc))
			require.NoError(t, err)
			require.ErrorContains(t, cfg.Register(odm.NewRegistry()), `field "x"`)
		})
	}
}

func TestParseNullDefault(t *testing.T) {
	r := require.New(t)
	cfg, err := config.Parse([]byte(`
models:
  - name: Category
    fields:
      - {name: parent, type: ObjectId, ref: Category, default: null}
      - {name: label, type: String, default: none}
      - {name: note, type: String}
`))
	r.NoError(err)
	fields := cfg.Models[0].Fields
	r.True(fields[0].NullDefault)
	r.Nil(fields[0].Default)
	r.False(fields[1].NullDefault)
	r.Equal("none", fields[1].Default)
	r.False(fields[2].NullDefault)
	r.Nil(fields[2].Default)

	registry := odm.NewRegistry()
	r.NoError(cfg.Register(registry))
	summary, err := introspect.Describe(registry, "Category")
	r.NoError(err)
	r.True(summary.Fields[0].HasDefault)
	r.Nil(summary.Fields[0].Default)
	r.True(summary.Fields[1].HasDefault)
	r.False(summary.Fields[2].HasDefault)
}

func TestLoadFixtures(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()
	writeFile(t, dir, "users.ndjson", `{"email":" Ada@Example.com ","age":36}
{"email":"grace@example.com","tags":["navy"]}
`)
	writeFile(t, dir, "categories.json", `[{"slug":"books"},{"slug":"music","featured":true}]`)
	path := writeFile(t, dir, "modelviz.yaml", `
models:
  - name: User
    fixtures: users.ndjson
    fields:
      - {name: email, type: String, required: true, lowercase: true, trim: true}
      - {name: age, type: Number}
      - {name: tags, of: String}
  - name: Category
    fixtures: categories.json
    fields:
      - {name: slug, type: String}
      - {name: featured, type: Boolean, default: false}
  - name: Empty
`)
	cfg, err := config.Load(path)
	r.NoError(err)
	registry := odm.NewRegistry()
	r.NoError(cfg.Register(registry))
	r.NoError(cfg.LoadFixtures(t.Context(), registry))

	users, err := registry.Lookup("User")
	r.NoError(err)
	docs, err := users.Find(t.Context(), odm.FindOptions{Sort: "email"})
	r.NoError(err)
	r.Len(docs, 2)
	r.Equal("ada@example.com", docs[0]["email"])
	r.Equal([]any{"navy"}, docs[1]["tags"])

	categories, err := registry.Lookup("Category")
	r.NoError(err)
	n, err := categories.CountDocuments(t.Context(), "doc.featured")
	r.NoError(err)
	r.EqualValues(1, n)
}

func TestLoadFixturesReportsInvalidDocuments(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "users.json", `[{"email":"a@b.c"},{"age":3}]`)
	path := writeFile(t, dir, "modelviz.yaml", `
models:
  - name: User
    fixtures: users.json
    fields:
      - {name: email, type: String, required: true}
      - {name: age, type: Number}
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	registry := odm.NewRegistry()
	require.NoError(t, cfg.Register(registry))

	err = cfg.LoadFixtures(t.Context(), registry)
	require.ErrorIs(t, err, odm.ErrValidation)
	require.ErrorContains(t, err, "document 1")
}

func TestDecodeDocuments(t *testing.T) {
	docs, err := config.DecodeDocuments([]byte(" \n "))
	require.NoError(t, err)
	require.Empty(t, docs)

	docs, err = config.DecodeDocuments([]byte(`{"a":1} {"a":2}`))
	require.NoError(t, err)
	require.Len(t, docs, 2)

	_, err = config.DecodeDocuments([]byte(`{"a":1}\n{"a":`))
	require.Error(t, err)

	_, err = config.DecodeDocuments([]byte(`[1, 2]`))
	require.Error(t, err)
}

func TestShopExample(t *testing.T) {
	r := require.New(t)
	cfg, err := config.Load(filepath.Join("..", "..", "examples", "shop", "modelviz.yaml"))
	r.NoError(err)
	r.Equal("/visualizer", cfg.Path)

	registry := odm.NewRegistry()
	r.NoError(cfg.Register(registry))
	r.NoError(cfg.LoadFixtures(t.Context(), registry))

	for name, want := range map[string]int64{"User": 3, "Product": 3, "Order": 0} {
		model, err := registry.Lookup(name)
		r.NoError(err)
		n, err := model.CountDocuments(t.Context(), "")
		r.NoError(err)
		r.Equal(want, n, name)
	}

	products, err := registry.Lookup("Product")
	r.NoError(err)
	docs, err := products.Find(t.Context(), odm.FindOptions{Filter: "doc.inStock", Sort: "price"})
	r.NoError(err)
	r.Len(docs, 2)
	r.Equal("BK-001", docs[0]["sku"])
}
