// internal/app/features/admin/handler.go
package admin

import (
	"context"
	"net/http"

	apperrors "github.com/dalemusser/kanban/internal/app/features/errors"
	"github.com/dalemusser/kanban/internal/app/features/shared"
	"github.com/dalemusser/kanban/internal/app/kanban"
	userstore "github.com/dalemusser/kanban/internal/app/store/users"
	"github.com/dalemusser/kanban/internal/app/system/auditlog"
	"github.com/dalemusser/kanban/internal/app/system/authz"
	"github.com/dalemusser/kanban/internal/app/system/metrics"
	"github.com/dalemusser/kanban/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the admin-only user management endpoints. Access is gated
// on the token's admin flag alone; no board ownership is involved.
type Handler struct {
	Svc      *kanban.Service
	Users    *userstore.Store
	AuditLog *auditlog.Logger
	Metrics  *metrics.Metrics
	Log      *zap.Logger
}

// NewHandler builds the admin Handler.
func NewHandler(db *mongo.Database, svc *kanban.Service, audit *auditlog.Logger, m *metrics.Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		Svc:      svc,
		Users:    userstore.New(db),
		AuditLog: audit,
		Metrics:  m,
		Log:      logger,
	}
}

// AllUsers handles GET /api/admin/all-users.
func (h *Handler) AllUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		apperrors.RenderServerError(w, h.Log, "admin: list users failed", err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, map[string]any{"users": users})
}

// DeleteUser handles DELETE /api/admin/{userId}. The user's boards go with
// them.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actorID, _, _ := authz.UserCtx(r)
	userID, ok := shared.IDParam(r, "userId")
	if !ok {
		apperrors.RenderNotFound(w, "User not found")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	boards, err := h.Svc.DeleteUser(ctx, userID)
	if err != nil {
		h.Metrics.Rejected(apperrors.Reason(err))
		apperrors.RenderFromError(w, h.Log, "User", err)
		return
	}
	h.AuditLog.UserDeleted(ctx, r, actorID, userID, boards)
	h.Log.Info("user deleted by admin",
		zap.String("actor_id", actorID.Hex()),
		zap.String("user_id", userID.Hex()),
		zap.Int("boards_deleted", boards))

	apperrors.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "User deleted successfully",
		"userId":  userID.Hex(),
	})
}
