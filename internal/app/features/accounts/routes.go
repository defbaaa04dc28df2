// internal/app/features/accounts/routes.go
package accounts

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /api/auth. register and login are public; me needs a
// bearer token.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.With(h.Tokens.RequireBearer).Get("/me", h.Me)
	return r
}
