package web

import (
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// staticHandler serves the page assets with cache headers: HTML is never
// cached, other assets are cached for a day in production only.
type staticHandler struct {
	assets     fs.FS
	files      http.Handler
	production bool
}

func newStaticHandler(assets fs.FS, production bool) *staticHandler {
	return &staticHandler{
		assets:     assets,
		files:      http.FileServer(http.FS(assets)),
		production: production,
	}
}

func (h *staticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name == "" {
		name = "index.html"
	}

	info, err := fs.Stat(h.assets, name)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Cache-Control", h.cacheControl(name))
	h.files.ServeHTTP(w, r)
}

// favicon serves the SVG icon under the conventional /favicon.ico path.
func (h *staticHandler) favicon(w http.ResponseWriter, r *http.Request) {
	if _, err := fs.Stat(h.assets, "favicon.svg"); err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", h.cacheControl("favicon.svg"))
	http.ServeFileFS(w, r, h.assets, "favicon.svg")
}

func (h *staticHandler) cacheControl(name string) string {
	switch {
	case path.Ext(name) == ".html":
		return "no-store"
	case h.production:
		return "public, max-age=86400"
	default:
		return "no-cache"
	}
}
