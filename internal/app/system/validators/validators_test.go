package validators_test

import (
	"testing"

	"github.com/dalemusser/kanban/internal/app/system/validators"
	"github.com/dalemusser/kanban/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("first EnsureAll failed: %v", err)
	}
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	have := map[string]bool{}
	for _, n := range names {
		have[n] = true
	}
	for _, want := range []string{"users", "boards", "columns", "cards", "comments", "audit_events"} {
		if !have[want] {
			t.Errorf("expected collection %q to exist", want)
		}
	}
}

func TestValidators(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	parent := primitive.NewObjectID()

	tests := []struct {
		name    string
		coll    string
		doc     bson.M
		wantErr bool
	}{
		{"valid user", "users", bson.M{"username": "ada", "email": "ada@example.com", "password_hash": "x", "is_admin": false}, false},
		{"user without email", "users", bson.M{"username": "ada", "password_hash": "x", "is_admin": false}, true},
		{"user with malformed email", "users", bson.M{"username": "ada", "email": "nope", "password_hash": "x", "is_admin": false}, true},
		{"valid board", "boards", bson.M{"name": "Work", "owner_id": parent}, false},
		{"board with blank name", "boards", bson.M{"name": "   ", "owner_id": parent}, true},
		{"board with string owner", "boards", bson.M{"name": "Work", "owner_id": parent.Hex()}, true},
		{"valid column", "columns", bson.M{"name": "To Do", "board_id": parent, "order": 0}, false},
		{"column with negative order", "columns", bson.M{"name": "To Do", "board_id": parent, "order": -1}, true},
		{"column without order", "columns", bson.M{"name": "To Do", "board_id": parent}, true},
		{"valid card", "cards", bson.M{"title": "X", "description": "", "column_id": parent, "order": int64(3)}, false},
		{"card without column", "cards", bson.M{"title": "X", "order": 0}, true},
		{"valid comment", "comments", bson.M{"text": "looks good", "card_id": parent}, false},
		{"empty comment", "comments", bson.M{"text": "", "card_id": parent}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.Collection(tt.coll).InsertOne(ctx, tt.doc)
			if (err != nil) != tt.wantErr {
				t.Errorf("InsertOne into %s: err=%v, wantErr=%v", tt.coll, err, tt.wantErr)
			}
		})
	}
}
