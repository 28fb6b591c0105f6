// Package site serves the embedded display screen shown to the audience.
package site

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ErrAssetMissing is returned when an embedded asset cannot be read.
var ErrAssetMissing = errors.New("display asset missing")

// Register attaches the display routes to r.
//
//	GET /          -> redirect to /display/
//	GET /display/* -> embedded display page and assets
func Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/display/", http.StatusFound)
	})
	r.Get("/display", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/display/", http.StatusMovedPermanently)
	})
	r.Handle("/display/*", http.StripPrefix("/display/", NewDisplayHandler()))
}

// DisplayHandler serves the embedded display files.
type DisplayHandler struct {
	files http.Handler
}

// NewDisplayHandler creates a handler over the embedded static tree.
func NewDisplayHandler() *DisplayHandler {
	return &DisplayHandler{files: http.FileServer(FS())}
}

func (h *DisplayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// The page polls the API; stale copies would show the wrong competitor.
	w.Header().Set("Cache-Control", "no-cache")
	h.files.ServeHTTP(w, r)
}
