// Package auditlog records authentication and admin events to zap, the
// audit_events collection, or both.
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/kanban/internal/app/store/audit"
	"github.com/dalemusser/kanban/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destinations for one category of events.
const (
	All = "all" // MongoDB + zap
	DB  = "db"  // MongoDB only
	Log = "log" // zap only
	Off = "off"
)

// Config picks a destination per category.
type Config struct {
	Auth  string
	Admin string
}

// Logger writes audit events. A nil *Logger is a no-op, so handlers and
// tests can run without one.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log routes event according to its category's setting. Unknown categories
// go everywhere. Store failures are logged, never returned: auditing must
// not fail the request it describes.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	setting := All
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	}

	switch setting {
	case Off:
		return
	case Log:
		l.logToZap(event)
	case DB:
		l.persist(ctx, event)
	default:
		l.logToZap(event)
		l.persist(ctx, event)
	}
}

func (l *Logger) persist(ctx context.Context, event audit.Event) {
	if l.store == nil {
		return
	}
	if err := l.store.Log(ctx, event); err != nil {
		l.zapLog.Error("failed to store audit event",
			zap.Error(err),
			zap.String("event_type", event.EventType))
	}
}

func fromRequest(r *http.Request, e audit.Event) audit.Event {
	if r != nil {
		e.IP = ratelimit.ClientIP(r)
		e.UserAgent = r.UserAgent()
	}
	return e
}

// --- Authentication Events ---

// Registered logs a new self-service account.
func (l *Logger) Registered(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventRegistered,
		UserID:    &userID,
		Success:   true,
		Details:   map[string]string{"email": email},
	}))
}

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    &userID,
		Success:   true,
		Details:   map[string]string{"email": email},
	}))
}

// LoginFailedUserNotFound logs a login for an email with no account.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, attemptedEmail string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedUserNotFound,
		FailureReason: "user not found",
		Details:       map[string]string{"attempted_email": attemptedEmail},
	}))
}

// LoginFailedWrongPassword logs a bad password for an existing account.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedWrongPassword,
		UserID:        &userID,
		FailureReason: "wrong password",
		Details:       map[string]string{"email": email},
	}))
}

// LoginRateLimited logs a credential attempt rejected by the limiter.
func (l *Logger) LoginRateLimited(ctx context.Context, r *http.Request, attemptedEmail string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedRateLimit,
		FailureReason: "rate limited",
		Details:       map[string]string{"attempted_email": attemptedEmail},
	}))
}

// --- Admin Events ---

// UserDeleted logs an admin removing an account and everything it owned.
func (l *Logger) UserDeleted(ctx context.Context, r *http.Request, actorID, userID primitive.ObjectID, boardsDeleted int) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventUserDeleted,
		UserID:    &userID,
		ActorID:   &actorID,
		Success:   true,
		Details:   map[string]string{"boards_deleted": strconv.Itoa(boardsDeleted)},
	}))
}

// AdminBootstrapped logs the startup creation of the configured admin.
func (l *Logger) AdminBootstrapped(ctx context.Context, userID primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventAdminCreated,
		UserID:    &userID,
		Success:   true,
		Details:   map[string]string{"email": email},
	})
}
