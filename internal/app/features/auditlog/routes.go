// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/kanban/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the audit trail. Bootstrap mounts it under /api/audit-log
// behind RequireBearer; only admins may read it.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(authz.RequireAdmin)
		pr.Get("/", h.ServeList)
	})
	return r
}
