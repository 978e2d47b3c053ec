package visualizer

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"modelviz.dev/modelviz/odm"
)

func withSearchDirs(t *testing.T, dirs ...string) {
	t.Helper()
	previous := searchDirs
	searchDirs = func() []string { return dirs }
	t.Cleanup(func() { searchDirs = previous })
}

func TestResolveUIFallsBackToEmbedded(t *testing.T) {
	withSearchDirs(t, t.TempDir(), filepath.Join(t.TempDir(), "missing"))

	v, err := New(odm.NewRegistry(), WithTitle("Embedded UI"))
	require.NoError(t, err)
	require.Equal(t, "embedded", v.UIOrigin())

	rec := httptest.NewRecorder()
	v.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/models/User", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "<title>Embedded UI</title>")
	require.Contains(t, rec.Body.String(), `<base href="/">`)

	rec = httptest.NewRecorder()
	v.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/app.js", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `api("models")`)
}

func TestResolveUISearchesDirectoriesInOrder(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(second, indexFile), []byte("second"), 0o644))
	withSearchDirs(t, first, second)

	fsys, origin, err := resolveUI(&options{})
	require.NoError(t, err)
	require.Equal(t, "directory "+second, origin)
	require.True(t, hasIndex(fsys))

	require.NoError(t, os.WriteFile(filepath.Join(first, indexFile), []byte("first"), 0o644))
	_, origin, err = resolveUI(&options{})
	require.NoError(t, err)
	require.Equal(t, "directory "+first, origin)
}

func TestNormalizeMountPath(t *testing.T) {
	for in, want := range map[string]string{
		"":         "",
		"/":        "",
		" / ":      "",
		"viz":      "/viz",
		"/viz/":    "/viz",
		"/a/b/":    "/a/b",
		"//deep//": "/deep",
	} {
		require.Equal(t, want, normalizeMountPath(in), in)
	}
}

func TestEtagMatches(t *testing.T) {
	const tag = `"sha256:abc"`
	require.False(t, etagMatches("", tag))
	require.True(t, etagMatches(tag, tag))
	require.True(t, etagMatches(`W/"sha256:abc"`, tag))
	require.True(t, etagMatches(`"x", "sha256:abc"`, tag))
	require.True(t, etagMatches("*", tag))
	require.False(t, etagMatches(`"sha256:def"`, tag))
}
