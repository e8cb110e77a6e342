package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes registers the web routes on the provided mux. The bare "/"
// route is the SPA fallback, so any path not claimed by the API or static
// assets renders the UI.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	mux.HandleFunc("GET /stremio-redirect", h.StremioRedirect)
	mux.HandleFunc("GET /", h.Index)
}
