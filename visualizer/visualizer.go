// Package visualizer serves the models of a document mapper registry as a
// JSON API and a browsing UI.
//
// The API lives under api/ relative to the mount path:
//
//	GET api/models                    summaries of all models
//	GET api/models/{modelName}        one summary
//	GET api/models/{modelName}/schema JSON Schema of the model
//	GET api/models/{modelName}/data   paginated documents
//
// Every response uses the Envelope shape. All other paths serve the UI.
package visualizer

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"modelviz.dev/modelviz/introspect"
)

// Visualizer is an http.Handler serving the model API and the browsing UI
// for the models of a registry.
type Visualizer struct {
	registry introspect.Registry
	title    string
	mount    string
	assets   *assets
	handler  http.Handler
	outside  http.Handler
}

var _ http.Handler = (*Visualizer)(nil)

// New builds a Visualizer for registry. It fails if an explicitly configured
// UI source cannot be used.
func New(registry introspect.Registry, opts ...Option) (*Visualizer, error) {
	o := &options{title: DefaultTitle}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.title == "" {
		o.title = DefaultTitle
	}

	a, err := loadAssets(o)
	if err != nil {
		return nil, err
	}

	v := &Visualizer{
		registry: registry,
		title:    o.title,
		mount:    normalizeMountPath(o.path),
		assets:   a,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/models", v.listModels)
	mux.HandleFunc("GET /api/models/{modelName}", v.getModel)
	mux.HandleFunc("GET /api/models/{modelName}/schema", v.getSchema)
	mux.HandleFunc("GET /api/models/{modelName}/data", v.getData)
	mux.HandleFunc("GET /api/models/{modelName}/data/{rest...}", v.getData)
	mux.HandleFunc("/api/", v.apiFallback)
	mux.HandleFunc("/", v.serveUI)
	v.handler = withLogging(o.logger, withRecovery(mux))
	v.outside = withLogging(o.logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(r.Context(), w, NewError(errNoRoute(r.URL.Path), http.StatusNotFound))
	}))

	o.logger.Debug("visualizer ready",
		slog.String("realm", "visualizer"),
		slog.String("mount", v.BasePath()),
		slog.String("ui", a.origin),
	)
	return v, nil
}

// BasePath is the path the UI is served at, always ending in a slash.
func (v *Visualizer) BasePath() string {
	return v.mount + "/"
}

// UIOrigin describes where the UI files are served from.
func (v *Visualizer) UIOrigin() string {
	return v.assets.origin
}

func (v *Visualizer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if v.mount == "" {
		v.handler.ServeHTTP(w, r)
		return
	}
	if r.URL.Path == v.mount {
		target := v.BasePath()
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		http.Redirect(w, r, target, http.StatusMovedPermanently)
		return
	}
	rest, ok := strings.CutPrefix(r.URL.Path, v.mount)
	if !ok || !strings.HasPrefix(rest, "/") {
		v.outside.ServeHTTP(w, r)
		return
	}

	r2 := new(http.Request)
	*r2 = *r
	r2.URL = new(url.URL)
	*r2.URL = *r.URL
	r2.URL.Path = rest
	r2.URL.RawPath = ""
	if r.URL.RawPath != "" {
		// Keep escaped separators such as %2F inside a single path segment.
		mount := (&url.URL{Path: v.mount}).EscapedPath()
		if raw, ok := strings.CutPrefix(r.URL.RawPath, mount); ok {
			r2.URL.RawPath = raw
		}
	}
	v.handler.ServeHTTP(w, r2)
}

func (v *Visualizer) serveUI(w http.ResponseWriter, r *http.Request) {
	v.assets.serve(w, r, shellData{
		Title:    v.title,
		BasePath: v.BasePath(),
	})
}
