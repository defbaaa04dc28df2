// internal/app/features/boards/routes.go
package boards

import "github.com/go-chi/chi/v5"

// Routes returns the board endpoints, mounted under /api/boards behind the
// bearer guard.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Rename)
	r.Delete("/{id}", h.Delete)
	return r
}
