package odm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modelviz.dev/modelviz/odm"
)

func seededCollection(t *testing.T) *odm.MemoryCollection {
	t.Helper()
	c := odm.NewMemoryCollection("people")
	docs := []odm.Document{
		{"_id": "a1", "name": "ada", "age": 36.0, "address": map[string]any{"city": "London"}},
		{"_id": "a2", "name": "grace", "age": 85.0, "address": map[string]any{"city": "New York"}},
		{"_id": "a3", "name": "alan", "age": 41.0},
		{"_id": "a4", "name": "barbara", "age": 36.0, "active": true},
	}
	for _, d := range docs {
		require.NoError(t, c.InsertOne(t.Context(), d))
	}
	return c
}

func ids(docs []odm.Document) []any {
	out := make([]any, 0, len(docs))
	for _, d := range docs {
		out = append(out, d["_id"])
	}
	return out
}

func TestMemoryCollectionFind(t *testing.T) {
	c := seededCollection(t)

	tests := []struct {
		name string
		opts odm.FindOptions
		want []any
	}{
		{name: "insertion order", opts: odm.FindOptions{}, want: []any{"a1", "a2", "a3", "a4"}},
		{name: "descending id", opts: odm.FindOptions{Sort: "-_id"}, want: []any{"a4", "a3", "a2", "a1"}},
		{name: "two keys", opts: odm.FindOptions{Sort: "age -name"}, want: []any{"a4", "a1", "a3", "a2"}},
		{name: "nested key, missing first", opts: odm.FindOptions{Sort: "address.city"}, want: []any{"a3", "a4", "a1", "a2"}},
		{name: "skip and limit", opts: odm.FindOptions{Sort: "_id", Skip: 1, Limit: 2}, want: []any{"a2", "a3"}},
		{name: "skip beyond end", opts: odm.FindOptions{Skip: 10}, want: []any{}},
		{name: "filter", opts: odm.FindOptions{Filter: "doc.age > 40"}, want: []any{"a2", "a3"}},
		{name: "filter with missing key", opts: odm.FindOptions{Filter: "doc.active"}, want: []any{"a4"}},
		{name: "filter with has", opts: odm.FindOptions{Filter: `has(doc.address) && doc.address.city.startsWith("New")`}, want: []any{"a2"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			docs, err := c.Find(t.Context(), tc.opts)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids(docs))
		})
	}
}

func TestMemoryCollectionFindErrors(t *testing.T) {
	c := seededCollection(t)

	_, err := c.Find(t.Context(), odm.FindOptions{Filter: "doc.age >"})
	require.ErrorIs(t, err, odm.ErrInvalidFilter)

	_, err = c.Find(t.Context(), odm.FindOptions{Filter: "1 + 2"})
	require.ErrorIs(t, err, odm.ErrInvalidFilter)

	_, err = c.Find(t.Context(), odm.FindOptions{Sort: "-"})
	require.ErrorIs(t, err, odm.ErrInvalidSort)

	_, err = c.Find(t.Context(), odm.FindOptions{Skip: -1})
	require.Error(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err = c.Find(ctx, odm.FindOptions{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestMemoryCollectionReturnsClones(t *testing.T) {
	c := seededCollection(t)
	docs, err := c.Find(t.Context(), odm.FindOptions{Limit: 1})
	require.NoError(t, err)
	docs[0]["name"] = "changed"
	docs[0]["address"].(map[string]any)["city"] = "Paris"

	again, err := c.Find(t.Context(), odm.FindOptions{Limit: 1})
	require.NoError(t, err)
	require.Equal(t, "ada", again[0]["name"])
	city, _ := again[0].Get("address.city")
	require.Equal(t, "London", city)
}

func TestMemoryCollectionCountDocuments(t *testing.T) {
	c := seededCollection(t)

	n, err := c.CountDocuments(t.Context(), "")
	require.NoError(t, err)
	require.EqualValues(t, 4, n)

	n, err = c.CountDocuments(t.Context(), "doc.age == 36.0")
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	_, err = c.CountDocuments(t.Context(), "(")
	require.ErrorIs(t, err, odm.ErrInvalidFilter)
}

func TestParseSort(t *testing.T) {
	fields, err := odm.ParseSort(" -createdAt  name +age ")
	require.NoError(t, err)
	require.Equal(t, []odm.SortField{
		{Path: "createdAt", Descending: true},
		{Path: "name"},
		{Path: "age"},
	}, fields)
	require.Equal(t, "-createdAt", fields[0].String())

	fields, err = odm.ParseSort("")
	require.NoError(t, err)
	require.Empty(t, fields)

	for _, bad := range []string{"-", "+", "a..b", ".a", "a."} {
		_, err := odm.ParseSort(bad)
		require.ErrorIs(t, err, odm.ErrInvalidSort, bad)
	}
}

func TestDocumentGetSet(t *testing.T) {
	d := odm.Document{"a": "x"}
	d.Set("b.c.d", 1.0)
	v, ok := d.Get("b.c.d")
	require.True(t, ok)
	require.Equal(t, 1.0, v)

	d.Set("a.b", true)
	v, ok = d.Get("a.b")
	require.True(t, ok)
	require.Equal(t, true, v)

	_, ok = d.Get("missing.path")
	require.False(t, ok)
}
