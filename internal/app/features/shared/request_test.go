package shared_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/kanban/internal/app/features/shared"
	"github.com/dalemusser/kanban/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","extra":1}`))
	if err := shared.DecodeJSON(httptest.NewRecorder(), req, &v); err != nil {
		t.Fatalf("DecodeJSON failed: %v", err)
	}
	if v.Name != "x" {
		t.Errorf("Name: got %q", v.Name)
	}

	empty := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	if err := shared.DecodeJSON(httptest.NewRecorder(), empty, &v); !errors.Is(err, shared.ErrEmptyBody) {
		t.Errorf("empty body: got %v", err)
	}

	bad := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
	if err := shared.DecodeJSON(httptest.NewRecorder(), bad, &v); err == nil {
		t.Error("expected error for truncated JSON")
	}
}

func TestIDParam(t *testing.T) {
	id := primitive.NewObjectID()
	req := testutil.WithChiURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", id.Hex())
	got, ok := shared.IDParam(req, "id")
	if !ok || got != id {
		t.Errorf("IDParam: got %v %v", got, ok)
	}

	for _, in := range []string{"", "nope", primitive.NilObjectID.Hex()} {
		if _, ok := shared.ParseID(in); ok {
			t.Errorf("ParseID(%q) should fail", in)
		}
	}
}
