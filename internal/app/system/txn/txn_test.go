package txn_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/kanban/internal/app/system/txn"
	"github.com/dalemusser/kanban/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func TestIsNotSupported(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unrelated", errors.New("duplicate key"), false},
		{"standalone server", mongo.CommandError{Code: 20, Message: "Transaction numbers are only allowed on a replica set member or mongos"}, true},
		{"older illegal operation code", mongo.CommandError{Code: 51}, true},
		{"not allowed in transaction", mongo.CommandError{Code: 263}, true},
		{"other code", mongo.CommandError{Code: 11000, Message: "E11000 duplicate key"}, false},
		{"wrapped replica set message", errors.New("renumber cards: Transaction requires a REPLICA SET"), true},
		{"sessions unsupported", errors.New("sessions are not supported by this deployment"), true},
		{"transaction alone", errors.New("transaction aborted"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := txn.IsNotSupported(tt.err); got != tt.want {
				t.Errorf("IsNotSupported(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

// Run must leave exactly one copy of the write whether the server accepted
// the transaction or Run fell back to a plain write.
func TestRun_WritesOnce(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := txn.Run(ctx, db, zap.NewNop(), func(ctx context.Context) error {
		_, err := db.Collection("columns").InsertOne(ctx, bson.M{"name": "Todo", "order": 0})
		return err
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	n, err := db.Collection("columns").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("columns: got %d, want 1", n)
	}
}

func TestRun_ReturnsCallbackError(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	boom := errors.New("boom")
	err := txn.Run(ctx, db, nil, func(context.Context) error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("Run: got %v, want %v", err, boom)
	}
}
