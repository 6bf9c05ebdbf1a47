// internal/app/features/home/routes.go
package home

import "github.com/go-chi/chi/v5"

// Routes serves the shell. Every intent redirects here, so "/" is the only
// page the browser ever loads.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeRoot)
	return r
}
