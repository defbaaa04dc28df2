// internal/app/features/auditlog/list.go
package auditlog

import (
	"context"
	"net/http"
	"strings"

	apperrors "github.com/dalemusser/kanban/internal/app/features/errors"
	"github.com/dalemusser/kanban/internal/app/features/shared"
	"github.com/dalemusser/kanban/internal/app/store/audit"
	"github.com/dalemusser/kanban/internal/app/system/paging"
	"github.com/dalemusser/kanban/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeList handles GET / with optional category, eventType, userId,
// limit and cursor query parameters. Events come back newest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(query.Get(r, "category"))
	eventType := strings.TrimSpace(query.Get(r, "eventType"))
	limit := paging.ParseLimit(r)

	if category != "" && eventTypesForCategory(category) == nil {
		apperrors.RenderBadRequest(w, "Unknown category.")
		return
	}
	if eventType != "" && !knownEventType(category, eventType) {
		apperrors.RenderBadRequest(w, "Unknown event type.")
		return
	}

	filter := audit.Filter{
		Category:  category,
		EventType: eventType,
		Limit:     paging.LimitPlusOne(limit),
	}
	if raw := query.Get(r, "userId"); raw != "" {
		uid, ok := shared.ParseID(raw)
		if !ok {
			apperrors.RenderBadRequest(w, "Invalid user id.")
			return
		}
		filter.UserID = &uid
	}
	if raw := query.Get(r, "cursor"); raw != "" {
		before, ok := paging.ParseCursor(raw)
		if !ok {
			apperrors.RenderBadRequest(w, "Invalid cursor.")
			return
		}
		filter.Before = &before
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	events, err := h.Store.Query(ctx, filter)
	if err != nil {
		apperrors.RenderServerError(w, h.Log, "query audit events", err)
		return
	}
	next := paging.Trim(&events, limit, func(e audit.Event) primitive.ObjectID { return e.ID })

	items := make([]listItem, 0, len(events))
	for _, e := range events {
		items = append(items, toItem(e))
	}
	apperrors.WriteJSON(w, http.StatusOK, listResponse{Events: items, NextCursor: next})
}
