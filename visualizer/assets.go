package visualizer

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/nlepage/go-tarfs"

	"modelviz.dev/modelviz/ui"
)

const indexFile = "index.html"

// searchDirs lists the directories searched for a UI build, in order.
var searchDirs = defaultSearchDirs

// assets serves the static UI files and the HTML shell.
type assets struct {
	fsys   fs.FS
	origin string
	shell  *template.Template
	files  http.Handler
}

type shellData struct {
	Title    string
	BasePath string
}

func loadAssets(o *options) (*assets, error) {
	fsys, origin, err := resolveUI(o)
	if err != nil {
		return nil, err
	}
	raw, err := fs.ReadFile(fsys, indexFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from %s: %w", indexFile, origin, err)
	}
	shell, err := template.New(indexFile).Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s from %s: %w", indexFile, origin, err)
	}
	return &assets{
		fsys:   fsys,
		origin: origin,
		shell:  shell,
		files:  http.FileServerFS(fsys),
	}, nil
}

// resolveUI picks the UI source. Explicitly configured sources must be
// usable; the searched directories are best effort and the embedded build is
// the final fallback.
func resolveUI(o *options) (fs.FS, string, error) {
	if o.uiArchive != "" {
		data, err := os.ReadFile(o.uiArchive)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read ui archive: %w", err)
		}
		fsys, err := tarfs.New(bytes.NewReader(data))
		if err != nil {
			return nil, "", fmt.Errorf("failed to open ui archive %s: %w", o.uiArchive, err)
		}
		if !hasIndex(fsys) {
			return nil, "", fmt.Errorf("ui archive %s does not contain %s", o.uiArchive, indexFile)
		}
		return fsys, "archive " + o.uiArchive, nil
	}
	if o.uiDir != "" {
		fsys := os.DirFS(o.uiDir)
		if !hasIndex(fsys) {
			return nil, "", fmt.Errorf("ui directory %s does not contain %s", o.uiDir, indexFile)
		}
		return fsys, "directory " + o.uiDir, nil
	}
	for _, dir := range searchDirs() {
		if fsys := os.DirFS(dir); hasIndex(fsys) {
			return fsys, "directory " + dir, nil
		}
	}
	return ui.Embedded(), "embedded", nil
}

func defaultSearchDirs() []string {
	dist := filepath.FromSlash(ui.DistDir)
	var dirs []string
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Join(filepath.Dir(exe), dist))
	}
	if _, file, _, ok := runtime.Caller(0); ok {
		dirs = append(dirs, filepath.Join(filepath.Dir(file), "..", dist))
	}
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, filepath.Join(wd, dist))
	}
	return dirs
}

func hasIndex(fsys fs.FS) bool {
	info, err := fs.Stat(fsys, indexFile)
	return err == nil && !info.IsDir()
}

// serve answers a static file if one exists at the request path and renders
// the HTML shell otherwise, so client side routes survive a reload.
func (a *assets) serve(w http.ResponseWriter, r *http.Request, data shellData) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeError(r.Context(), w, NewError(errMethodNotAllowed(r.Method), http.StatusMethodNotAllowed))
		return
	}

	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name != "" && name != indexFile {
		info, err := fs.Stat(a.fsys, name)
		if err == nil && !info.IsDir() {
			a.files.ServeHTTP(w, r)
			return
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			writeError(r.Context(), w, err)
			return
		}
	}

	var buf bytes.Buffer
	if err := a.shell.Execute(&buf, data); err != nil {
		writeError(r.Context(), w, fmt.Errorf("failed to render %s: %w", indexFile, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(buf.Bytes())
}
