// internal/app/features/exam/routes.go
package exam

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/open", h.HandleOpen)
	r.Post("/start", h.HandleStart)
	r.Get("/status", h.ServeStatus)
	r.Post("/answer", h.HandleAnswer)
	r.Post("/submit", h.HandleSubmit)
	return r
}
