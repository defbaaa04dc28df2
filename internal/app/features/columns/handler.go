// internal/app/features/columns/handler.go
package columns

import (
	"context"
	"net/http"

	apperrors "github.com/dalemusser/kanban/internal/app/features/errors"
	"github.com/dalemusser/kanban/internal/app/features/shared"
	"github.com/dalemusser/kanban/internal/app/kanban"
	"github.com/dalemusser/kanban/internal/app/system/auth"
	"github.com/dalemusser/kanban/internal/app/system/metrics"
	"github.com/dalemusser/kanban/internal/app/system/timeouts"
	"github.com/dalemusser/kanban/internal/domain/ordering"
	"go.uber.org/zap"
)

// Handler serves the column endpoints.
type Handler struct {
	Svc     *kanban.Service
	Log     *zap.Logger
	Metrics *metrics.Metrics
}

// NewHandler creates a column Handler over svc.
func NewHandler(svc *kanban.Service, m *metrics.Metrics, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Log: logger, Metrics: m}
}

type createRequest struct {
	BoardID string `json:"boardId"`
	Name    string `json:"name"`
}

type renameRequest struct {
	Name string `json:"name"`
}

type orderRequest struct {
	Columns []ordering.Position `json:"columns"`
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	h.failAs(w, "Column", err)
}

func (h *Handler) failAs(w http.ResponseWriter, what string, err error) {
	h.Metrics.Rejected(apperrors.Reason(err))
	apperrors.RenderFromError(w, h.Log, what, err)
}

// Create handles POST /api/columns {boardId, name}. The column is appended.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentUser(r)
	if !ok {
		apperrors.RenderUnauthorized(w)
		return
	}
	var req createRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		apperrors.RenderBadRequest(w, "Invalid JSON body")
		return
	}
	if req.BoardID == "" {
		apperrors.RenderBadRequest(w, "boardId and column name are required")
		return
	}
	boardID, ok := shared.ParseID(req.BoardID)
	if !ok {
		apperrors.RenderNotFound(w, "Board not found")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	col, err := h.Svc.CreateColumn(ctx, id.UserID, boardID, req.Name)
	if err != nil {
		h.fail(w, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusCreated, map[string]any{"column": col})
}

// Rename handles PUT /api/columns/{id} {name}.
func (h *Handler) Rename(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentUser(r)
	if !ok {
		apperrors.RenderUnauthorized(w)
		return
	}
	columnID, ok := shared.IDParam(r, "id")
	if !ok {
		apperrors.RenderNotFound(w, "Column not found")
		return
	}
	var req renameRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		apperrors.RenderBadRequest(w, "Invalid JSON body")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	col, err := h.Svc.RenameColumn(ctx, id.UserID, columnID, req.Name)
	if err != nil {
		h.fail(w, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, map[string]any{"column": col})
}

// Delete handles DELETE /api/columns/{id}: cards and comments go with it and
// the remaining columns are renumbered.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentUser(r)
	if !ok {
		apperrors.RenderUnauthorized(w)
		return
	}
	columnID, ok := shared.IDParam(r, "id")
	if !ok {
		apperrors.RenderNotFound(w, "Column not found")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Svc.DeleteColumn(ctx, id.UserID, columnID); err != nil {
		h.fail(w, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, map[string]any{
		"message":  "Column deleted",
		"columnId": columnID.Hex(),
	})
}

// Reorder handles PUT /api/columns/order/{boardId} {columns: [{id, order}]}.
// Orders are written as given; the board's columns come back sorted.
func (h *Handler) Reorder(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentUser(r)
	if !ok {
		apperrors.RenderUnauthorized(w)
		return
	}
	boardID, ok := shared.IDParam(r, "boardId")
	if !ok {
		apperrors.RenderNotFound(w, "Board not found")
		return
	}
	var req orderRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		apperrors.RenderBadRequest(w, "Body must be {\"columns\": [{\"id\", \"order\"}]}")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	cols, err := h.Svc.ReorderColumns(ctx, id.UserID, boardID, req.Columns)
	if err != nil {
		h.failAs(w, "Board", err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Column order updated successfully",
		"columns": cols,
	})
}
