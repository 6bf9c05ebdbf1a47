// internal/app/features/admin/routes.go
package admin

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/panel", h.ServePanel)
	r.Post("/students/open", h.HandleOpenStudent)
	r.Post("/users/promote", h.HandlePromote)
	r.Post("/announcements", h.HandlePostAnnouncement)
	r.Post("/announcements/{id}/delete", h.HandleDeleteAnnouncement)
	return r
}
