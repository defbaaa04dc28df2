// internal/app/features/columns/routes.go
package columns

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Put("/order/{boardId}", h.Reorder)
	r.Put("/{id}", h.Rename)
	r.Delete("/{id}", h.Delete)
	return r
}
