// Package audit persists security-relevant events in the audit_events
// collection.
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories
const (
	CategoryAuth  = "auth"
	CategoryAdmin = "admin"
)

// Auth event types
const (
	EventRegistered               = "registered"
	EventLoginSuccess             = "login_success"
	EventLoginFailedUserNotFound  = "login_failed_user_not_found"
	EventLoginFailedWrongPassword = "login_failed_wrong_password"
	EventLoginFailedRateLimit     = "login_failed_rate_limit"
)

// Admin event types
const (
	EventUserDeleted  = "user_deleted"
	EventAdminCreated = "admin_bootstrapped"
)

// Event is one audit record.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`

	Category  string `bson:"category"`
	EventType string `bson:"event_type"`

	UserID  *primitive.ObjectID `bson:"user_id,omitempty"`  // affected user
	ActorID *primitive.ObjectID `bson:"actor_id,omitempty"` // admin who acted

	IP        string `bson:"ip"`
	UserAgent string `bson:"user_agent,omitempty"`

	Success       bool   `bson:"success"`
	FailureReason string `bson:"failure_reason,omitempty"`

	Details map[string]string `bson:"details,omitempty"`
}

// Store manages audit event records.
type Store struct {
	c *mongo.Collection
}

// New returns a Store over the audit_events collection.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_events")}
}

// Log inserts event, filling in the id and timestamp when unset.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, event)
	return err
}

// GetByUser returns the newest events about userID, at most limit of them.
func (s *Store) GetByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]Event, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Event
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Filter narrows Query. Zero fields match everything.
type Filter struct {
	Category  string
	EventType string
	UserID    *primitive.ObjectID // matches either the affected user or the actor
	Before    *primitive.ObjectID // keyset cursor: only events older than this id
	Limit     int64
}

// Query returns events newest first.
func (s *Store) Query(ctx context.Context, f Filter) ([]Event, error) {
	conds := bson.A{}
	if f.Category != "" {
		conds = append(conds, bson.M{"category": f.Category})
	}
	if f.EventType != "" {
		conds = append(conds, bson.M{"event_type": f.EventType})
	}
	if f.UserID != nil {
		conds = append(conds, bson.M{"$or": bson.A{
			bson.M{"user_id": *f.UserID},
			bson.M{"actor_id": *f.UserID},
		}})
	}
	if f.Before != nil {
		conds = append(conds, bson.M{"_id": bson.M{"$lt": *f.Before}})
	}
	filter := bson.M{}
	if len(conds) > 0 {
		filter = bson.M{"$and": conds}
	}

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []Event{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountByType counts events of one type, for tests and diagnostics.
func (s *Store) CountByType(ctx context.Context, eventType string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"event_type": eventType})
}
