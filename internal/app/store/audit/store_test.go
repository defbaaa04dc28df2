package audit_test

import (
	"testing"
	"time"

	"github.com/dalemusser/kanban/internal/app/store/audit"
	"github.com/dalemusser/kanban/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_LogAndGetByUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	uid := primitive.NewObjectID()
	older := time.Now().Add(-time.Hour).UTC()

	if err := store.Log(ctx, audit.Event{Category: audit.CategoryAuth, EventType: audit.EventRegistered, UserID: &uid, CreatedAt: older, Success: true}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	if err := store.Log(ctx, audit.Event{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, UserID: &uid, Success: true}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	other := primitive.NewObjectID()
	if err := store.Log(ctx, audit.Event{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, UserID: &other}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := store.GetByUser(ctx, uid, 10)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("GetByUser: got %d events, want 2", len(events))
	}
	if events[0].EventType != audit.EventLoginSuccess {
		t.Errorf("newest first: got %q, want %q", events[0].EventType, audit.EventLoginSuccess)
	}
	if events[0].ID.IsZero() || events[0].CreatedAt.IsZero() {
		t.Error("expected id and timestamp to be filled in")
	}

	n, err := store.CountByType(ctx, audit.EventLoginSuccess)
	if err != nil {
		t.Fatalf("CountByType failed: %v", err)
	}
	if n != 2 {
		t.Errorf("CountByType: got %d, want 2", n)
	}
}

func TestStore_Query(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := primitive.NewObjectID()
	victim := primitive.NewObjectID()
	log := func(e audit.Event) {
		t.Helper()
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}
	log(audit.Event{Category: audit.CategoryAuth, EventType: audit.EventRegistered, UserID: &victim})
	log(audit.Event{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, UserID: &admin})
	log(audit.Event{Category: audit.CategoryAdmin, EventType: audit.EventUserDeleted, UserID: &victim, ActorID: &admin})

	all, err := store.Query(ctx, audit.Filter{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(all) != 3 || all[0].EventType != audit.EventUserDeleted {
		t.Fatalf("Query all: got %d events, newest %q", len(all), all[0].EventType)
	}

	byCat, _ := store.Query(ctx, audit.Filter{Category: audit.CategoryAuth})
	if len(byCat) != 2 {
		t.Errorf("category filter: got %d, want 2", len(byCat))
	}

	// admin appears once as the subject and once as the actor.
	byUser, _ := store.Query(ctx, audit.Filter{UserID: &admin})
	if len(byUser) != 2 {
		t.Errorf("user filter: got %d, want 2", len(byUser))
	}

	page, _ := store.Query(ctx, audit.Filter{Before: &all[0].ID, Limit: 1})
	if len(page) != 1 || page[0].ID != all[1].ID {
		t.Errorf("keyset page: got %+v, want %s", page, all[1].ID.Hex())
	}
}
