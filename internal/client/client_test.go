package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/kanban/internal/client"
	"github.com/dalemusser/kanban/internal/domain/models"
	"github.com/dalemusser/kanban/internal/domain/ordering"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newServer(t *testing.T, r chi.Router) *client.Client {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return client.New(srv.URL + "/")
}

func TestLoginStoresTokenForLaterCalls(t *testing.T) {
	uid := primitive.NewObjectID()
	r := chi.NewRouter()
	r.Post("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ada@example.com", body["email"])
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{
			"user":  models.User{ID: uid, Email: "ada@example.com"},
			"token": "tok-123",
		})
	})
	r.Get("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"user": models.User{ID: uid}})
	})
	c := newServer(t, r)
	ctx := context.Background()

	res, err := c.Login(ctx, "ada@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", res.Token)
	assert.Equal(t, "tok-123", c.Token())

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, uid, me.ID)
}

func TestErrorsMapToSentinels(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/boards/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Board not found"})
	})
	r.Delete("/api/cards/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "Not authorized"})
	})
	r.Post("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	c := newServer(t, r)
	ctx := context.Background()

	_, err := c.GetBoard(ctx, primitive.NilObjectID)
	require.ErrorIs(t, err, client.ErrNotFound)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Board not found", apiErr.Message)

	err = c.DeleteCard(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, client.ErrForbidden)
	assert.NotErrorIs(t, err, client.ErrNotFound)

	_, err = c.Login(ctx, "a@b.c", "x")
	require.ErrorIs(t, err, client.ErrRateLimited)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Too Many Requests", apiErr.Message)
	assert.Empty(t, c.Token(), "failed login must not store a token")
}

func TestReorderCardsSendsPositions(t *testing.T) {
	colID := primitive.NewObjectID()
	a, b := primitive.NewObjectID(), primitive.NewObjectID()

	r := chi.NewRouter()
	r.Put("/api/cards/order/{columnId}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, colID.Hex(), chi.URLParam(r, "columnId"))
		var body struct {
			Cards []struct {
				ID    string `json:"id"`
				Order int    `json:"order"`
			} `json:"cards"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Cards, 2)
		assert.Equal(t, b.Hex(), body.Cards[0].ID)
		assert.Equal(t, 0, body.Cards[0].Order)

		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Card order updated",
			"cards": []models.Card{
				{ID: b, ColumnID: colID, Order: 0},
				{ID: a, ColumnID: colID, Order: 1},
			},
		})
	})
	c := newServer(t, r)

	cards, err := c.ReorderCards(context.Background(), colID, []ordering.Position{{ID: b, Order: 0}, {ID: a, Order: 1}})
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, b, cards[0].ID)
}

func TestMoveCardSendsOnlyMoveFields(t *testing.T) {
	cardID, dst := primitive.NewObjectID(), primitive.NewObjectID()

	r := chi.NewRouter()
	r.Put("/api/cards/{id}", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"newColumnId": dst.Hex(), "order": float64(2)}, body)
		writeJSON(w, http.StatusOK, map[string]any{"card": models.Card{ID: cardID, ColumnID: dst, Order: 2}})
	})
	c := newServer(t, r)

	card, err := c.MoveCard(context.Background(), cardID, dst, 2)
	require.NoError(t, err)
	assert.Equal(t, dst, card.ColumnID)
	assert.Equal(t, 2, card.Order)
}

func TestCreateAndDeleteRoundTrip(t *testing.T) {
	boardID := primitive.NewObjectID()
	var deleted string

	r := chi.NewRouter()
	r.Post("/api/columns", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, boardID.Hex(), body["boardId"])
		writeJSON(w, http.StatusCreated, map[string]any{
			"column": models.Column{ID: primitive.NewObjectID(), BoardID: boardID, Name: body["name"], Order: 3},
		})
	})
	r.Delete("/api/columns/{id}", func(w http.ResponseWriter, r *http.Request) {
		deleted = chi.URLParam(r, "id")
		writeJSON(w, http.StatusOK, map[string]string{"message": "Column deleted"})
	})
	c := newServer(t, r)
	ctx := context.Background()

	col, err := c.CreateColumn(ctx, boardID, "Review")
	require.NoError(t, err)
	assert.Equal(t, "Review", col.Name)
	assert.Equal(t, 3, col.Order)

	require.NoError(t, c.DeleteColumn(ctx, col.ID))
	assert.Equal(t, col.ID.Hex(), deleted)
}

func TestAuditLogEncodesQuery(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/audit-log", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "auth", q.Get("category"))
		assert.Equal(t, "10", q.Get("limit"))
		assert.Equal(t, "abc", q.Get("cursor"))
		assert.False(t, q.Has("eventType"))
		writeJSON(w, http.StatusOK, map[string]any{
			"events":     []map[string]any{{"id": "1", "eventType": "login_success", "success": true}},
			"nextCursor": "def",
		})
	})
	c := newServer(t, r)

	page, err := c.AuditLog(context.Background(), client.AuditQuery{Category: "auth", Limit: 10, Cursor: "abc"})
	require.NoError(t, err)
	require.Len(t, page.Events, 1)
	assert.Equal(t, "login_success", page.Events[0].EventType)
	assert.Equal(t, "def", page.NextCursor)
}
