// Package indexes reconciles the Mongo indexes each collection needs.
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
Errors are aggregated so every problem is visible and startup fails fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	for _, step := range []struct {
		name string
		fn   func(context.Context, *mongo.Database) error
	}{
		{"users", ensureUsers},
		{"boards", ensureBoards},
		{"columns", ensureColumns},
		{"cards", ensureCards},
		{"comments", ensureComments},
		{"audit_events", ensureAuditEvents},
	} {
		if err := step.fn(ctx, db); err != nil {
			problems = append(problems, step.name+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolOf(p *bool) bool { return p != nil && *p }

// Mongo/DocDB return IndexOptionsConflict when an index with the same keys
// exists under a different name or with different options.
func isOptionsConflictErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "IndexOptionsConflict")
}

func listBySig(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out, cur.Err()
}

func recreate(ctx context.Context, coll *mongo.Collection, oldName string, m mongo.IndexModel) error {
	if _, err := coll.Indexes().DropOne(ctx, oldName); err != nil {
		return fmt.Errorf("drop %s: %w", oldName, err)
	}
	if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("cannot create unique index, duplicates present: %w", err)
		}
		return err
	}
	return nil
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		var name string
		var unique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			unique = m.Options.Unique
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()
		fields := []zap.Field{
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", boolOf(unique)),
		}

		// A list failure (collection missing) just means nothing exists yet.
		existing, _ := listBySig(ctx, coll)

		if ex, ok := existing[sig]; ok {
			switch {
			case boolOf(ex.Unique) == boolOf(unique) && (name == "" || ex.Name == name):
				zap.L().Debug("reusing existing index", fields...)
			default:
				// Name or uniqueness differs: drop and recreate.
				if err := recreate(ctx, coll, ex.Name, m); err != nil {
					zap.L().Warn("index recreate failed", append(fields, zap.Error(err))...)
					errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
					continue
				}
				zap.L().Info("index recreated", append(fields,
					zap.String("from", ex.Name),
					zap.Duration("took", time.Since(start)))...)
			}
			continue
		}

		_, err := coll.Indexes().CreateOne(ctx, m)
		if isOptionsConflictErr(err) {
			// Raced with another instance or a differently named twin; retry once
			// against the fresh listing.
			if again, lerr := listBySig(ctx, coll); lerr == nil {
				if ex, ok := again[sig]; ok {
					if boolOf(ex.Unique) == boolOf(unique) {
						err = nil
					} else {
						err = recreate(ctx, coll, ex.Name, m)
					}
				}
			}
		}
		if err != nil {
			zap.L().Warn("index ensure failed", append(fields, zap.Error(err))...)
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			continue
		}
		zap.L().Info("index ensured", append(fields, zap.Duration("took", time.Since(start)))...)
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("users"), []mongo.IndexModel{
		// Emails are stored normalized, so this is case-insensitive in practice.
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
		},
		// Admin user list.
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_users_created_id"),
		},
	})
}

func ensureBoards(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("boards"), []mongo.IndexModel{
		// GET /boards lists the caller's boards oldest first.
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_boards_owner_created_id"),
		},
	})
}

func ensureColumns(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("columns"), []mongo.IndexModel{
		// Not unique: bulk overwrites may pass through duplicate orders.
		{
			Keys:    bson.D{{Key: "board_id", Value: 1}, {Key: "order", Value: 1}},
			Options: options.Index().SetName("idx_columns_board_order"),
		},
	})
}

func ensureCards(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("cards"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "column_id", Value: 1}, {Key: "order", Value: 1}},
			Options: options.Index().SetName("idx_cards_column_order"),
		},
	})
}

func ensureComments(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("comments"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "card_id", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_comments_card_created"),
		},
	})
}

func ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("audit_events"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_audit_created"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_audit_user_created"),
		},
	})
}
