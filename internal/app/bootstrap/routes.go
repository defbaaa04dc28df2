// internal/app/bootstrap/routes.go
package bootstrap

import (
	"errors"
	"net/http"

	accountsfeature "github.com/dalemusser/kanban/internal/app/features/accounts"
	adminfeature "github.com/dalemusser/kanban/internal/app/features/admin"
	auditlogfeature "github.com/dalemusser/kanban/internal/app/features/auditlog"
	boardsfeature "github.com/dalemusser/kanban/internal/app/features/boards"
	cardsfeature "github.com/dalemusser/kanban/internal/app/features/cards"
	columnsfeature "github.com/dalemusser/kanban/internal/app/features/columns"
	commentsfeature "github.com/dalemusser/kanban/internal/app/features/comments"
	apperrors "github.com/dalemusser/kanban/internal/app/features/errors"
	healthfeature "github.com/dalemusser/kanban/internal/app/features/health"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. Everything under /api except /api/auth requires a
// bearer token; /health and /metrics are left open for load balancers and scrapers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	if svc == nil {
		return nil, errors.New("bootstrap: Startup has not run")
	}
	return buildRouter(appCfg, deps, svc, logger), nil
}

func buildRouter(appCfg AppConfig, deps DBDeps, s *services, logger *zap.Logger) http.Handler {
	db := deps.MongoDatabase

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.Metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: appCfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(db, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", s.Metrics.Handler())

	r.Route("/api", func(api chi.Router) {
		accountsHandler := accountsfeature.NewHandler(db, s.Tokens, s.Limiter, s.AuditLog, s.Metrics, logger)
		api.Mount("/auth", accountsfeature.Routes(accountsHandler))

		api.Group(func(pr chi.Router) {
			pr.Use(s.Tokens.RequireBearer)

			boardsHandler := boardsfeature.NewHandler(s.Kanban, s.Metrics, logger)
			pr.Mount("/boards", boardsfeature.Routes(boardsHandler))

			columnsHandler := columnsfeature.NewHandler(s.Kanban, s.Metrics, logger)
			pr.Mount("/columns", columnsfeature.Routes(columnsHandler))

			cardsHandler := cardsfeature.NewHandler(s.Kanban, s.Metrics, logger)
			pr.Mount("/cards", cardsfeature.Routes(cardsHandler))

			commentsHandler := commentsfeature.NewHandler(s.Kanban, s.Metrics, logger)
			pr.Mount("/comments", commentsfeature.Routes(commentsHandler))

			adminHandler := adminfeature.NewHandler(db, s.Kanban, s.AuditLog, s.Metrics, logger)
			pr.Mount("/admin", adminfeature.Routes(adminHandler))

			auditHandler := auditlogfeature.NewHandler(db, logger)
			pr.Mount("/audit-log", auditlogfeature.Routes(auditHandler))
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apperrors.RenderNotFound(w, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		apperrors.Render(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}
