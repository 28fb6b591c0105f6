package site

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
)

//go:embed static/*
var staticFS embed.FS

// FS returns the display tree rooted at static/.
func FS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return http.FS(staticFS)
	}
	return http.FS(sub)
}

// Asset returns one embedded file by name.
func Asset(name string) ([]byte, error) {
	b, err := staticFS.ReadFile("static/" + name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrAssetMissing, name, err)
	}
	return b, nil
}
