// Package web serves the embedded single-page form that drives the API:
// paste or upload a transcript, generate a summary, edit it, save it, and
// optionally email it. The page is compiled into the binary so the server
// ships as a single artifact with no asset directory.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed index.html
var content embed.FS

// Handler returns an http.Handler that serves the embedded page at "/".
func Handler() http.Handler {
	sub, err := fs.Sub(content, ".")
	if err != nil {
		// embed.FS with a fixed path cannot fail at runtime; keep the
		// signature simple and surface the impossible case loudly.
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
