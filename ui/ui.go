// Package ui holds the bundled browsing UI.
package ui

import (
	"embed"
	"io/fs"
)

// DistDir is the conventional location of the UI build relative to a
// module checkout, an executable or a working directory.
const DistDir = "ui/dist"

//go:embed all:dist
var dist embed.FS

// Embedded returns the UI compiled into the binary, rooted at its index.html.
func Embedded() fs.FS {
	sub, err := fs.Sub(dist, "dist")
	if err != nil {
		panic(err)
	}
	return sub
}
