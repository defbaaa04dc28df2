package auditlog_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/kanban/internal/app/store/audit"
	"github.com/dalemusser/kanban/internal/app/system/auditlog"
	"github.com/dalemusser/kanban/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_NilLogger(t *testing.T) {
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()
	req := httptest.NewRequest("POST", "/api/auth/login", nil)

	// All no-ops.
	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.LoginSuccess(ctx, req, primitive.NewObjectID(), "a@example.com")
	logger.UserDeleted(ctx, req, primitive.NewObjectID(), primitive.NewObjectID(), 1)
}

func TestLogger_LogOnly_DoesNotTouchStore(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := auditlog.New(nil, zap.New(core), auditlog.Config{Auth: auditlog.Log, Admin: auditlog.Off})
	ctx, cancel := testutil.TestContext()
	defer cancel()
	req := httptest.NewRequest("POST", "/api/auth/login", nil)
	req.RemoteAddr = "192.0.2.10:1234"

	logger.LoginSuccess(ctx, req, primitive.NewObjectID(), "a@example.com")
	logger.UserDeleted(ctx, req, primitive.NewObjectID(), primitive.NewObjectID(), 0)

	if logs.Len() != 1 {
		t.Fatalf("expected 1 zap entry (admin is off), got %d", logs.Len())
	}
	entry := logs.All()[0]
	if got := entry.ContextMap()["event_type"]; got != audit.EventLoginSuccess {
		t.Errorf("event_type: got %v, want %q", got, audit.EventLoginSuccess)
	}
	if got := entry.ContextMap()["ip"]; got != "192.0.2.10" {
		t.Errorf("ip: got %v, want 192.0.2.10", got)
	}
}

func TestLogger_FailuresLogAtWarn(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := auditlog.New(nil, zap.New(core), auditlog.Config{Auth: auditlog.Log})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger.LoginFailedUserNotFound(ctx, httptest.NewRequest("POST", "/", nil), "ghost@example.com")

	if logs.Len() != 1 || logs.All()[0].Level != zap.WarnLevel {
		t.Fatalf("expected one warn entry, got %+v", logs.All())
	}
}

func TestLogger_DBDestination(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	core, logs := observer.New(zap.InfoLevel)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.New(core), auditlog.Config{Auth: auditlog.DB, Admin: auditlog.All})
	uid := primitive.NewObjectID()
	admin := primitive.NewObjectID()
	req := httptest.NewRequest("POST", "/", nil)

	logger.Registered(ctx, req, uid, "new@example.com")
	logger.UserDeleted(ctx, req, admin, uid, 2)

	events, err := store.GetByUser(ctx, uid, 10)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 stored events, got %d", len(events))
	}
	if logs.Len() != 1 {
		t.Errorf("only the admin event should reach zap, got %d entries", logs.Len())
	}
	for _, e := range events {
		if e.EventType == audit.EventUserDeleted {
			if e.ActorID == nil || *e.ActorID != admin {
				t.Errorf("actor: got %v, want %v", e.ActorID, admin)
			}
			if e.Details["boards_deleted"] != "2" {
				t.Errorf("boards_deleted: got %q", e.Details["boards_deleted"])
			}
		}
	}
}
