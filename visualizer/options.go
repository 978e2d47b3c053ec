package visualizer

import (
	"log/slog"
	"strings"
)

// DefaultTitle is shown in the UI and returned by the listing endpoint when
// no title is configured.
const DefaultTitle = "MongoDB Model Visualizer"

type options struct {
	path      string
	title     string
	uiDir     string
	uiArchive string
	logger    *slog.Logger
}

type Option func(*options)

// WithPath sets the path the visualizer is mounted under, e.g. "/visualizer".
// Requests are expected to carry the full path; the prefix is stripped before
// routing. The default "/" mounts at the root.
func WithPath(p string) Option {
	return func(o *options) {
		o.path = p
	}
}

// WithTitle sets the display title.
func WithTitle(title string) Option {
	return func(o *options) {
		o.title = title
	}
}

// WithUIDir serves the browsing UI from a directory containing index.html.
func WithUIDir(dir string) Option {
	return func(o *options) {
		o.uiDir = dir
	}
}

// WithUIArchive serves the browsing UI from a tar archive containing index.html
// at its root.
func WithUIArchive(path string) Option {
	return func(o *options) {
		o.uiArchive = path
	}
}

// WithLogger sets the base logger for request logging.
// By default slog.Default is used.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// normalizeMountPath turns "", "/" into "" and "a/b/" into "/a/b".
func normalizeMountPath(p string) string {
	p = strings.TrimSpace(p)
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	return "/" + p
}
