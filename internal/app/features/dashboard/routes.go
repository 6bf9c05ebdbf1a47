// internal/app/features/dashboard/routes.go
package dashboard

import "github.com/go-chi/chi/v5"

// Routes wires the navigation intents under whatever mount point the
// top-level router chooses (e.g., "/nav").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/dashboard", h.HandleDashboard)
	r.Post("/review", h.HandleReview)
	r.Post("/profile", h.HandleProfile)
	return r
}
