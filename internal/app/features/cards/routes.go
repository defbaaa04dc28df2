// internal/app/features/cards/routes.go
package cards

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Put("/order/{columnId}", h.Reorder)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}
