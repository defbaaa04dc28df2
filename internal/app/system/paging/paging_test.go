package paging

import (
	"net/http/httptest"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseLimit(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", PageSize},
		{"?limit=10", 10},
		{"?limit=0", PageSize},
		{"?limit=-3", PageSize},
		{"?limit=abc", PageSize},
		{"?limit=100000", MaxPageSize},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/"+tt.query, nil)
		if got := ParseLimit(r); got != tt.want {
			t.Errorf("ParseLimit(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}
}

func TestLimitPlusOne(t *testing.T) {
	if got := LimitPlusOne(25); got != 26 {
		t.Errorf("LimitPlusOne(25) = %d, want 26", got)
	}
}

func TestTrim(t *testing.T) {
	ids := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()}
	idFn := func(id primitive.ObjectID) primitive.ObjectID { return id }

	short := append([]primitive.ObjectID(nil), ids[:2]...)
	if next := Trim(&short, 2, idFn); next != "" {
		t.Errorf("exact page: got cursor %q, want none", next)
	}
	if len(short) != 2 {
		t.Errorf("exact page: got %d rows", len(short))
	}

	long := append([]primitive.ObjectID(nil), ids...)
	next := Trim(&long, 2, idFn)
	if len(long) != 2 {
		t.Fatalf("trimmed page: got %d rows, want 2", len(long))
	}
	got, ok := ParseCursor(next)
	if !ok {
		t.Fatalf("cursor %q did not decode", next)
	}
	if got != ids[1] {
		t.Errorf("cursor id: got %s, want last kept row %s", got.Hex(), ids[1].Hex())
	}
}

func TestParseCursor_Invalid(t *testing.T) {
	for _, tok := range []string{"", "%%%"} {
		if _, ok := ParseCursor(tok); ok {
			t.Errorf("ParseCursor(%q) should fail", tok)
		}
	}
}

func TestOlderThan(t *testing.T) {
	id := primitive.NewObjectID()
	want := bson.M{"_id": bson.M{"$lt": id}}
	got := OlderThan(id)
	if got["_id"].(bson.M)["$lt"] != want["_id"].(bson.M)["$lt"] {
		t.Errorf("OlderThan: got %v", got)
	}
}
