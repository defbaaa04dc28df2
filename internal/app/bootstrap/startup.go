// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/kanban/internal/app/kanban"
	"github.com/dalemusser/kanban/internal/app/store/audit"
	userstore "github.com/dalemusser/kanban/internal/app/store/users"
	"github.com/dalemusser/kanban/internal/app/system/auditlog"
	"github.com/dalemusser/kanban/internal/app/system/auth"
	"github.com/dalemusser/kanban/internal/app/system/metrics"
	"github.com/dalemusser/kanban/internal/app/system/ratelimit"
	"github.com/dalemusser/kanban/internal/app/system/timeouts"
	"github.com/dalemusser/kanban/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// services are the long-lived objects built once in Startup and shared by
// BuildHandler and Shutdown.
type services struct {
	Metrics  *metrics.Metrics
	Tokens   *auth.TokenService
	AuditLog *auditlog.Logger
	Limiter  *ratelimit.LoginLimiter // nil when login_rate_limit is 0
	Kanban   *kanban.Service
	Repair   *workers.OrderRepair // nil when order_repair_interval is 0
}

// svc is set by Startup. WAFFLE runs the hooks in order on one goroutine.
var svc *services

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	s, err := newServices(appCfg, deps, logger)
	if err != nil {
		return err
	}

	if err := ensureAdmin(ctx, deps, s.AuditLog, appCfg, logger); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	if s.Repair != nil {
		s.Repair.Start()
	}
	svc = s

	t := timeouts.Current()
	logger.Info("startup complete",
		zap.Duration("timeout_short", t.Short),
		zap.Duration("timeout_long", t.Long),
		zap.Bool("order_repair", s.Repair != nil),
		zap.Bool("login_rate_limit", s.Limiter != nil))
	return nil
}

func newServices(appCfg AppConfig, deps DBDeps, logger *zap.Logger) (*services, error) {
	db := deps.MongoDatabase

	tokens, err := auth.NewTokenService(appCfg.JWTSecret, appCfg.JWTTTL, appCfg.JWTIssuer, logger)
	if err != nil {
		return nil, fmt.Errorf("token service: %w", err)
	}

	m := metrics.New()
	m.WatchCollections(db, timeouts.Short())

	s := &services{
		Metrics: m,
		Tokens:  tokens,
		AuditLog: auditlog.New(audit.New(db), logger, auditlog.Config{
			Auth:  appCfg.AuditLogAuth,
			Admin: appCfg.AuditLogAdmin,
		}),
		Kanban: kanban.New(db, logger, m),
	}
	if appCfg.LoginRateLimit > 0 {
		s.Limiter = ratelimit.NewLoginLimiter(appCfg.LoginRateLimit, appCfg.LoginRateWindow)
	}
	if appCfg.OrderRepairInterval > 0 {
		s.Repair = workers.NewOrderRepair(s.Kanban, logger, appCfg.OrderRepairInterval, appCfg.OrderRepairBatch)
	}
	return s, nil
}

// ensureAdmin makes sure the configured admin exists and carries the admin
// flag. An existing account with that email is promoted and keeps its
// password; otherwise one is created with admin_password. With either
// setting blank it does nothing.
func ensureAdmin(ctx context.Context, deps DBDeps, al *auditlog.Logger, appCfg AppConfig, logger *zap.Logger) error {
	if appCfg.AdminEmail == "" || appCfg.AdminPassword == "" {
		return nil
	}
	users := userstore.New(deps.MongoDatabase)

	u, err := users.PromoteToAdmin(ctx, appCfg.AdminEmail)
	if err == nil {
		logger.Info("admin ensured", zap.String("user_id", u.ID.Hex()), zap.String("email", u.Email))
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	username := appCfg.AdminUsername
	if username == "" {
		username = "admin"
	}
	u, err = users.Create(ctx, username, appCfg.AdminEmail, appCfg.AdminPassword, true)
	if err != nil {
		return err
	}
	al.AdminBootstrapped(ctx, u.ID, u.Email)
	logger.Info("admin created", zap.String("user_id", u.ID.Hex()), zap.String("email", u.Email))
	return nil
}
