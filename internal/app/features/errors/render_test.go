package errors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	apperrors "github.com/dalemusser/kanban/internal/app/features/errors"
	"github.com/dalemusser/kanban/internal/app/policy/boardpolicy"
	"github.com/dalemusser/kanban/internal/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRenderFromError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"invalid", boardpolicy.Invalid("Card title is required"), http.StatusBadRequest, "Card title is required"},
		{"bare bad request", boardpolicy.ErrBadRequest, http.StatusBadRequest, "Bad request"},
		{"wrapped not found", fmt.Errorf("card: %w", boardpolicy.ErrNotFound), http.StatusNotFound, "Card not found"},
		{"forbidden", boardpolicy.ErrForbidden, http.StatusForbidden, "Not authorized"},
		{"other", errors.New("connection reset"), http.StatusInternalServerError, "Server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			apperrors.RenderFromError(rec, zap.NewNop(), "Card", tt.err)
			rec.AssertStatus(t, tt.status)

			var got struct {
				Error string `json:"error"`
			}
			rec.Decode(t, &got)
			if got.Error != tt.body {
				t.Errorf("error: got %q, want %q", got.Error, tt.body)
			}
		})
	}
}

func TestRenderServerError_HidesDetails(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	rec := testutil.NewRecorder()

	apperrors.RenderServerError(rec, zap.New(core), "db write failed", errors.New("E11000 secret detail"))

	rec.AssertStatus(t, http.StatusInternalServerError)
	if got := rec.Body.String(); got != "{\"error\":\"Server error\"}\n" {
		t.Errorf("body: got %q", got)
	}
	if logs.FilterMessage("db write failed").Len() != 1 {
		t.Error("expected the error to be logged")
	}
}

func TestRenderUnauthorized(t *testing.T) {
	rec := testutil.NewRecorder()
	apperrors.RenderUnauthorized(rec)
	rec.AssertStatus(t, http.StatusUnauthorized)
	rec.AssertContains(t, `"error":"Unauthorized"`)
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q", ct)
	}
}

func TestReason(t *testing.T) {
	if got := apperrors.Reason(boardpolicy.Invalid("x")); got != "bad_request" {
		t.Errorf("Invalid: got %q", got)
	}
	if got := apperrors.Reason(fmt.Errorf("wrap: %w", boardpolicy.ErrForbidden)); got != "forbidden" {
		t.Errorf("Forbidden: got %q", got)
	}
	if got := apperrors.Reason(errors.New("x")); got != "server_error" {
		t.Errorf("other: got %q", got)
	}
}
