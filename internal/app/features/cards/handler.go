// internal/app/features/cards/handler.go
package cards

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

// Handler serves card create, edit, move, bulk reorder and delete.
type Handler struct {
	Svc     *kanban.Service
	Log     *zap.Logger
	Metrics *metrics.Metrics
}

// NewHandler creates a card Handler over svc.
func NewHandler(svc *kanban.Service, m *metrics.Metrics, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Log: logger, Metrics: m}
}

type createRequest struct {
	ColumnID    string `json:"columnId"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// updateRequest fields are pointers so an absent field is left alone.
type updateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	NewColumnID *string `json:"newColumnId"`
	Order       *int    `json:"order"`
}

type orderRequest struct {
	Cards []ordering.Position `json:"cards"`
}

func (h *Handler) fail(w http.ResponseWriter, what string, err error) {
	h.Metrics.Rejected(apperrors.Reason(err))
	apperrors.RenderFromError(w, h.Log, what, err)
}

// Create handles POST /api/cards {columnId, title, description?}. The card
// is appended to the column.
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
	if req.ColumnID == "" {
		apperrors.RenderBadRequest(w, "columnId and card title are required")
		return
	}
	columnID, ok := shared.ParseID(req.ColumnID)
	if !ok {
		apperrors.RenderNotFound(w, "Column not found")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	card, err := h.Svc.CreateCard(ctx, id.UserID, columnID, req.Title, req.Description)
	if err != nil {
		h.fail(w, "Column", err)
		return
	}
	apperrors.WriteJSON(w, http.StatusCreated, map[string]any{"card": card})
}

// Update handles PUT /api/cards/{id} {title?, description?, newColumnId?, order?}.
//
// newColumnId naming a different column moves the card there at index order
// (appended when order is absent), renumbering both columns. order alone
// repositions the card inside its column.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentUser(r)
	if !ok {
		apperrors.RenderUnauthorized(w)
		return
	}
	cardID, ok := shared.IDParam(r, "id")
	if !ok {
		apperrors.RenderNotFound(w, "Card not found")
		return
	}
	var req updateRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		apperrors.RenderBadRequest(w, "Invalid JSON body")
		return
	}

	upd := kanban.CardUpdate{
		Title:       req.Title,
		Description: req.Description,
		Order:       req.Order,
	}
	if req.NewColumnID != nil && *req.NewColumnID != "" {
		colID, ok := shared.ParseID(*req.NewColumnID)
		if !ok {
			apperrors.RenderNotFound(w, "New column not found")
			return
		}
		upd.NewColumnID = &colID
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	card, err := h.Svc.UpdateCard(ctx, id.UserID, cardID, upd)
	if err != nil {
		h.fail(w, "Card", err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, map[string]any{"card": card})
}

// Reorder handles PUT /api/cards/order/{columnId} {cards: [{id, order}]}.
// Ids that are not in the column are skipped; the column's cards come back
// sorted by their new order.
func (h *Handler) Reorder(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentUser(r)
	if !ok {
		apperrors.RenderUnauthorized(w)
		return
	}
	columnID, ok := shared.IDParam(r, "columnId")
	if !ok {
		apperrors.RenderNotFound(w, "Column not found")
		return
	}
	var req orderRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		apperrors.RenderBadRequest(w, "Body must be {\"cards\": [{\"id\", \"order\"}]}")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	cards, err := h.Svc.ReorderCards(ctx, id.UserID, columnID, req.Cards)
	if err != nil {
		h.fail(w, "Column", err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Card order updated successfully",
		"cards":   cards,
	})
}

// Delete handles DELETE /api/cards/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentUser(r)
	if !ok {
		apperrors.RenderUnauthorized(w)
		return
	}
	cardID, ok := shared.IDParam(r, "id")
	if !ok {
		apperrors.RenderNotFound(w, "Card not found")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Svc.DeleteCard(ctx, id.UserID, cardID); err != nil {
		h.fail(w, "Card", err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Card deleted successfully",
		"cardId":  cardID.Hex(),
	})
}
