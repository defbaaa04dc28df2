package auditlog_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/kanban/internal/app/features/auditlog"
	"github.com/dalemusser/kanban/internal/app/store/audit"
	"github.com/dalemusser/kanban/internal/domain/models"
	"github.com/dalemusser/kanban/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type listBody struct {
	Events []struct {
		ID        string `json:"id"`
		EventType string `json:"eventType"`
		UserID    string `json:"userId"`
		ActorID   string `json:"actorId"`
	} `json:"events"`
	NextCursor string `json:"nextCursor"`
}

func setup(t *testing.T) (*auditlog.Handler, models.User, *audit.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	root := fx.CreateAdmin(ctx, "root@example.com")
	store := audit.New(db)
	for _, et := range []string{audit.EventRegistered, audit.EventLoginSuccess, audit.EventLoginFailedWrongPassword} {
		if err := store.Log(ctx, audit.Event{Category: audit.CategoryAuth, EventType: et, UserID: &root.ID}); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}
	if err := store.Log(ctx, audit.Event{Category: audit.CategoryAdmin, EventType: audit.EventAdminCreated, UserID: &root.ID}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	return auditlog.NewHandler(db, zap.NewNop()), root, store
}

func get(t *testing.T, h *auditlog.Handler, target string, u models.User) *testutil.ResponseRecorder {
	t.Helper()
	rec := testutil.NewRecorder()
	auditlog.Routes(h).ServeHTTP(rec, testutil.NewAuthenticatedRequest(t, http.MethodGet, target, nil, u))
	return rec
}

func TestServeList_NewestFirst(t *testing.T) {
	h, root, _ := setup(t)

	rec := get(t, h, "/", root)
	rec.AssertStatus(t, http.StatusOK)

	var body listBody
	rec.Decode(t, &body)
	if len(body.Events) != 4 {
		t.Fatalf("events: got %d, want 4", len(body.Events))
	}
	if body.Events[0].EventType != audit.EventAdminCreated {
		t.Errorf("newest: got %q", body.Events[0].EventType)
	}
	if body.Events[0].UserID != root.ID.Hex() {
		t.Errorf("userId: got %q", body.Events[0].UserID)
	}
	if body.NextCursor != "" {
		t.Errorf("single page should have no cursor, got %q", body.NextCursor)
	}
}

func TestServeList_Filters(t *testing.T) {
	h, root, _ := setup(t)

	rec := get(t, h, "/?category=auth", root)
	rec.AssertStatus(t, http.StatusOK)
	var body listBody
	rec.Decode(t, &body)
	if len(body.Events) != 3 {
		t.Errorf("category=auth: got %d, want 3", len(body.Events))
	}

	rec = get(t, h, "/?eventType=login_success", root)
	rec.AssertStatus(t, http.StatusOK)
	body = listBody{}
	rec.Decode(t, &body)
	if len(body.Events) != 1 || body.Events[0].EventType != audit.EventLoginSuccess {
		t.Errorf("eventType filter: got %+v", body.Events)
	}
}

func TestServeList_Pagination(t *testing.T) {
	h, root, _ := setup(t)

	seen := map[string]bool{}
	target := "/?limit=3"
	for pages := 0; pages < 3; pages++ {
		rec := get(t, h, target, root)
		rec.AssertStatus(t, http.StatusOK)
		var body listBody
		rec.Decode(t, &body)
		for _, e := range body.Events {
			if seen[e.ID] {
				t.Fatalf("event %s returned twice", e.ID)
			}
			seen[e.ID] = true
		}
		if body.NextCursor == "" {
			break
		}
		target = "/?limit=3&cursor=" + body.NextCursor
	}
	if len(seen) != 4 {
		t.Errorf("paged through %d events, want 4", len(seen))
	}
}

func TestServeList_BadInput(t *testing.T) {
	h, root, _ := setup(t)

	for _, target := range []string{
		"/?category=billing",
		"/?category=admin&eventType=login_success",
		"/?userId=nope",
		"/?cursor=%25%25%25",
	} {
		rec := get(t, h, target, root)
		rec.AssertStatus(t, http.StatusBadRequest)
	}
}

func TestServeList_AdminOnly(t *testing.T) {
	h, _, _ := setup(t)
	plain := models.User{ID: primitive.NewObjectID()}

	rec := get(t, h, "/", plain)
	rec.AssertStatus(t, http.StatusForbidden)
}
