// Package auditlog serves the audit trail to administrators.
package auditlog

import (
	"github.com/dalemusser/kanban/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler lists recorded audit events for administrators.
type Handler struct {
	Store *audit.Store
	Log   *zap.Logger
}

// NewHandler creates a Handler reading from the audit_events collection.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Store: audit.New(db),
		Log:   logger,
	}
}
