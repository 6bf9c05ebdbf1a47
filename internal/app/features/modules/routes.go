// internal/app/features/modules/routes.go
package modules

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/content", h.ServeContent)
	r.Post("/{id}/open", h.HandleOpen)
	r.Get("/{id}/materials/{index}", h.ServeMaterial)

	// Admin editor. The controller denies these for students.
	r.Post("/new", h.HandleNew)
	r.Post("/{id}/edit", h.HandleEdit)
	r.Post("/{id}/delete", h.HandleDelete)
	r.Post("/editor/files", h.HandleFiles)
	r.Post("/editor/materials/{index}/remove", h.HandleRemoveMaterial)
	r.Post("/editor/save", h.HandleSave)
	return r
}
