// internal/app/features/comments/handler.go
package comments

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

// Handler serves comment create, edit and delete.
type Handler struct {
	Svc     *kanban.Service
	Log     *zap.Logger
	Metrics *metrics.Metrics
}

// NewHandler creates a comment Handler over svc.
func NewHandler(svc *kanban.Service, m *metrics.Metrics, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Log: logger, Metrics: m}
}

type createRequest struct {
	CardID string `json:"cardId"`
	Text   string `json:"text"`
}

type updateRequest struct {
	Text string `json:"text"`
}

func (h *Handler) fail(w http.ResponseWriter, what string, err error) {
	h.Metrics.Rejected(apperrors.Reason(err))
	apperrors.RenderFromError(w, h.Log, what, err)
}

// Create handles POST /api/comments {cardId, text}.
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
	if req.CardID == "" {
		apperrors.RenderBadRequest(w, "cardId and text are required")
		return
	}
	cardID, ok := shared.ParseID(req.CardID)
	if !ok {
		apperrors.RenderNotFound(w, "Card not found")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	cm, err := h.Svc.AddComment(ctx, id.UserID, cardID, req.Text)
	if err != nil {
		h.fail(w, "Card", err)
		return
	}
	apperrors.WriteJSON(w, http.StatusCreated, map[string]any{"comment": cm})
}

// Update handles PUT /api/comments/{id} {text}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentUser(r)
	if !ok {
		apperrors.RenderUnauthorized(w)
		return
	}
	commentID, ok := shared.IDParam(r, "id")
	if !ok {
		apperrors.RenderNotFound(w, "Comment not found")
		return
	}
	var req updateRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		apperrors.RenderBadRequest(w, "Invalid JSON body")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	cm, err := h.Svc.EditComment(ctx, id.UserID, commentID, req.Text)
	if err != nil {
		h.fail(w, "Comment", err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, map[string]any{"comment": cm})
}

// Delete handles DELETE /api/comments/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentUser(r)
	if !ok {
		apperrors.RenderUnauthorized(w)
		return
	}
	commentID, ok := shared.IDParam(r, "id")
	if !ok {
		apperrors.RenderNotFound(w, "Comment not found")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Svc.DeleteComment(ctx, id.UserID, commentID); err != nil {
		h.fail(w, "Comment", err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, map[string]any{
		"message":   "Comment deleted successfully",
		"commentId": commentID.Hex(),
	})
}
