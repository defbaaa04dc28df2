// Package health serves the liveness endpoint used by load balancers and the
// deploy scripts.
package health

import (
	"context"
	"net/http"

	apperrors "github.com/dalemusser/kanban/internal/app/features/errors"
	"github.com/dalemusser/kanban/internal/app/store/queries/orderqueries"
	"github.com/dalemusser/kanban/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Handler reports liveness and database reachability.
type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
}

// NewHandler creates a health Handler that pings db.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Ordering string `json:"ordering,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "ordering":"dense" }
//
// ordering is "drift" when some container's order values are not 0..n-1;
// the repair worker or the next read of that board will fix it. That is
// informational and does not change the status code.
//
// On DB failure: 503 and
//
//	{ "status":"error", "database":"disconnected", "message":"Database unavailable" }
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	if err := h.DB.Client().Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		apperrors.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{
			Status:   "error",
			Database: "disconnected",
			Message:  "Database unavailable",
		})
		return
	}

	resp := healthResponse{Status: "ok", Database: "connected", Ordering: "dense"}
	for _, c := range []orderqueries.Container{orderqueries.BoardColumns, orderqueries.ColumnCards} {
		drift, err := orderqueries.FindDrift(ctx, h.DB, c, 1)
		if err != nil {
			h.Log.Warn("health-check: drift check failed", zap.String("collection", c.Collection), zap.Error(err))
			resp.Ordering = ""
			break
		}
		if len(drift) > 0 {
			resp.Ordering = "drift"
			break
		}
	}
	apperrors.WriteJSON(w, http.StatusOK, resp)
}
