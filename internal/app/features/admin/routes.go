// internal/app/features/admin/routes.go
package admin

import (
	"github.com/dalemusser/kanban/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the admin endpoints. Bootstrap mounts this under /api/admin
// behind RequireBearer; RequireAdmin here turns away non-admins with 403.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(authz.RequireAdmin)
		pr.Get("/all-users", h.AllUsers)
		pr.Delete("/{userId}", h.DeleteUser)
	})
	return r
}
