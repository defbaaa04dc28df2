// internal/app/features/boards/handler.go
package boards

import (
	"context"
	"net/http"

	apperrors "github.com/dalemusser/kanban/internal/app/features/errors"
	"github.com/dalemusser/kanban/internal/app/features/shared"
	"github.com/dalemusser/kanban/internal/app/kanban"
	"github.com/dalemusser/kanban/internal/app/system/auth"
	"github.com/dalemusser/kanban/internal/app/system/metrics"
	"github.com/dalemusser/kanban/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler serves the board endpoints for the authenticated owner.
type Handler struct {
	Svc     *kanban.Service
	Log     *zap.Logger
	Metrics *metrics.Metrics
}

// NewHandler creates a board Handler over svc.
func NewHandler(svc *kanban.Service, m *metrics.Metrics, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Log: logger, Metrics: m}
}

type nameRequest struct {
	Name string `json:"name"`
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	h.Metrics.Rejected(apperrors.Reason(err))
	apperrors.RenderFromError(w, h.Log, "Board", err)
}

// List handles GET /api/boards.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentUser(r)
	if !ok {
		apperrors.RenderUnauthorized(w)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	boards, err := h.Svc.ListBoards(ctx, id.UserID)
	if err != nil {
		h.fail(w, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, map[string]any{"boards": boards})
}

// Get handles GET /api/boards/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentUser(r)
	if !ok {
		apperrors.RenderUnauthorized(w)
		return
	}
	boardID, ok := shared.IDParam(r, "id")
	if !ok {
		apperrors.RenderNotFound(w, "Board not found")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	b, err := h.Svc.GetBoard(ctx, id.UserID, boardID)
	if err != nil {
		h.fail(w, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, map[string]any{"board": b})
}

// Create handles POST /api/boards {name}.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentUser(r)
	if !ok {
		apperrors.RenderUnauthorized(w)
		return
	}
	var req nameRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		apperrors.RenderBadRequest(w, "Invalid JSON body")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	b, err := h.Svc.CreateBoard(ctx, id.UserID, req.Name)
	if err != nil {
		h.fail(w, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusCreated, map[string]any{"board": b})
}

// Rename handles PUT /api/boards/{id} {name}.
func (h *Handler) Rename(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentUser(r)
	if !ok {
		apperrors.RenderUnauthorized(w)
		return
	}
	boardID, ok := shared.IDParam(r, "id")
	if !ok {
		apperrors.RenderNotFound(w, "Board not found")
		return
	}
	var req nameRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		apperrors.RenderBadRequest(w, "Invalid JSON body")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	b, err := h.Svc.RenameBoard(ctx, id.UserID, boardID, req.Name)
	if err != nil {
		h.fail(w, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, map[string]any{"board": b})
}

// Delete handles DELETE /api/boards/{id}. Columns, cards and comments on the
// board go with it.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentUser(r)
	if !ok {
		apperrors.RenderUnauthorized(w)
		return
	}
	boardID, ok := shared.IDParam(r, "id")
	if !ok {
		apperrors.RenderNotFound(w, "Board not found")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Svc.DeleteBoard(ctx, id.UserID, boardID); err != nil {
		h.fail(w, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Board deleted",
		"boardId": boardID.Hex(),
	})
}
