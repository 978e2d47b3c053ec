package introspect_test

import (
	"encoding/json"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modelviz.dev/modelviz/introspect"
	"modelviz.dev/modelviz/odm"
)

func newRegistry(t *testing.T) *odm.Registry {
	t.Helper()
	registry := odm.NewRegistry()
	registry.MustModel("User", odm.MustNewSchema([]odm.Path{
		{Name: "email", Instance: odm.String, Required: true},
		{Name: "age", Instance: odm.Number},
	}, odm.WithoutID()), odm.WithoutVersionKey())
	registry.MustModel("Post", odm.MustNewSchema([]odm.Path{
		{Name: "title", Instance: odm.String, Options: odm.Options{Trim: odm.Ptr(false), MinLength: odm.Ptr(0)}},
		{Name: "author", Instance: odm.ObjectID, Options: odm.Options{Ref: "User", Index: odm.Ptr(true)}},
		{Name: "tags", Instance: odm.Array, Caster: odm.String, Options: odm.Options{Default: []any{}}},
		{Name: "meta"},
		{Name: "slug", Instance: odm.String, Options: odm.Options{
			Unique:    odm.Ptr(true),
			Lowercase: odm.Ptr(true),
			Match:     regexp.MustCompile(`^[a-z0-9-]+$`),
		}},
		{Name: "status", Instance: odm.String, Options: odm.Options{Enum: []any{"draft", "live"}, Default: "draft"}},
		{Name: "published", Instance: odm.Boolean, Options: odm.Options{Default: false}},
		{Name: "rating", Instance: odm.Number, Options: odm.Options{Min: odm.Ptr(0.0), Max: odm.Ptr(5.0)}},
	}))
	return registry
}

func TestParseSchemaExample(t *testing.T) {
	registry := newRegistry(t)
	user, err := registry.Lookup("User")
	require.NoError(t, err)

	fields := introspect.ParseSchema(user.Schema())
	require.Len(t, fields, 2)

	raw, err := json.Marshal(fields)
	require.NoError(t, err)
	require.JSONEq(t, `[
		{"name":"email","type":"String","required":true,"unique":false,"index":false,"isArray":false},
		{"name":"age","type":"Number","required":false,"unique":false,"index":false,"isArray":false}
	]`, string(raw))
}

func TestParseSchemaPreservesOrderAndLength(t *testing.T) {
	registry := newRegistry(t)
	post, err := registry.Lookup("Post")
	require.NoError(t, err)

	fields := introspect.ParseSchema(post.Schema())
	require.Len(t, fields, post.Schema().Len())

	var names []string
	for _, f := range fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{
		"title", "author", "tags", "meta", "slug", "status", "published", "rating", "_id", "__v",
	}, names)
}

func TestParseSchemaOmitsOnlyUnsetOptions(t *testing.T) {
	registry := newRegistry(t)
	post, err := registry.Lookup("Post")
	require.NoError(t, err)

	raw, err := json.Marshal(introspect.ParseSchema(post.Schema()))
	require.NoError(t, err)

	var fields []map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	byName := map[string]map[string]any{}
	for _, f := range fields {
		for k, v := range f {
			require.NotNil(t, v, "%s.%s must be omitted rather than null", f["name"], k)
		}
		byName[f["name"].(string)] = f
	}

	title := byName["title"]
	assert.Equal(t, false, title["trim"])
	assert.Equal(t, 0.0, title["minlength"])
	assert.NotContains(t, title, "maxlength")
	assert.NotContains(t, title, "default")
	assert.NotContains(t, title, "enum")

	author := byName["author"]
	assert.Equal(t, "ObjectId", author["type"])
	assert.Equal(t, "User", author["ref"])
	assert.Equal(t, true, author["index"])

	tags := byName["tags"]
	assert.Equal(t, "Array", tags["type"])
	assert.Equal(t, true, tags["isArray"])
	assert.Equal(t, []any{}, tags["default"])

	assert.Equal(t, "Mixed", byName["meta"]["type"])

	slug := byName["slug"]
	assert.Equal(t, true, slug["unique"])
	assert.Equal(t, true, slug["lowercase"])
	assert.Equal(t, "/^[a-z0-9-]+$/", slug["match"])
	assert.NotContains(t, slug, "uppercase")

	status := byName["status"]
	assert.Equal(t, []any{"draft", "live"}, status["enum"])
	assert.Equal(t, "draft", status["default"])

	assert.Equal(t, false, byName["published"]["default"])

	rating := byName["rating"]
	assert.Equal(t, 0.0, rating["min"])
	assert.Equal(t, 5.0, rating["max"])

	assert.Equal(t, "ObjectId", byName["_id"]["type"])
	assert.Equal(t, "Number", byName["__v"]["type"])
}

func TestParseSchemaNullDefaultAndEmptyEnum(t *testing.T) {
	r := require.New(t)
	schema := odm.MustNewSchema([]odm.Path{
		{Name: "parent", Instance: odm.ObjectID, Options: odm.Options{NullDefault: true, Ref: "Category"}},
		{Name: "kind", Instance: odm.String, Options: odm.Options{Enum: []any{}}},
		{Name: "note", Instance: odm.String},
	}, odm.WithoutID())

	fields := introspect.ParseSchema(schema)
	r.Len(fields, 3)
	r.True(fields[0].HasDefault)
	r.Nil(fields[0].Default)
	r.False(fields[2].HasDefault)

	raw, err := json.Marshal(fields)
	r.NoError(err)
	r.JSONEq(`[
		{"name":"parent","type":"ObjectId","required":false,"unique":false,"index":false,"default":null,"ref":"Category","isArray":false},
		{"name":"kind","type":"String","required":false,"unique":false,"index":false,"isArray":false},
		{"name":"note","type":"String","required":false,"unique":false,"index":false,"isArray":false}
	]`, string(raw))

	var decoded []introspect.FieldDescriptor
	r.NoError(json.Unmarshal(raw, &decoded))
	r.Equal(fields, decoded)
}

func TestSummarize(t *testing.T) {
	r := require.New(t)
	registry := newRegistry(t)

	summaries, err := introspect.Summarize(registry)
	r.NoError(err)
	r.Len(summaries, 2)
	r.Equal("User", summaries[0].Name)
	r.Equal("users", summaries[0].Collection)
	r.Equal("Post", summaries[1].Name)
	r.Equal("posts", summaries[1].Collection)

	again, err := introspect.Summarize(registry)
	r.NoError(err)
	first, err := json.Marshal(summaries)
	r.NoError(err)
	second, err := json.Marshal(again)
	r.NoError(err)
	r.Equal(string(first), string(second))
}

func TestSummarizeEmptyRegistry(t *testing.T) {
	summaries, err := introspect.Summarize(odm.NewRegistry())
	require.NoError(t, err)
	raw, err := json.Marshal(summaries)
	require.NoError(t, err)
	require.Equal(t, "[]", string(raw))
}

func TestDescribe(t *testing.T) {
	registry := newRegistry(t)

	summary, err := introspect.Describe(registry, "Post")
	require.NoError(t, err)
	require.Equal(t, "posts", summary.Collection)
	require.Len(t, summary.Fields, 10)

	_, err = introspect.Describe(registry, "Nope")
	require.ErrorIs(t, err, odm.ErrModelNotFound)
}

type brokenRegistry struct {
	err error
}

func (b brokenRegistry) ModelNames() []string { return []string{"Ghost"} }

func (b brokenRegistry) Lookup(string) (*odm.Model, error) { return nil, b.err }

func TestScanModelsPropagatesRegistryErrors(t *testing.T) {
	boom := errors.New("inconsistent registry")
	_, err := introspect.ScanModels(brokenRegistry{err: boom})
	require.ErrorIs(t, err, boom)

	_, err = introspect.Summarize(brokenRegistry{err: boom})
	require.ErrorIs(t, err, boom)
}

func TestDescribeNilModel(t *testing.T) {
	_, err := introspect.Describe(brokenRegistry{}, "Ghost")
	require.ErrorIs(t, err, odm.ErrModelNotFound)
}
