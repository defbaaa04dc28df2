// internal/app/features/errors/render.go
package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/dalemusser/kanban/internal/app/policy/boardpolicy"
	"go.uber.org/zap"
)

// body is the only error shape the API returns. There is no machine-readable
// code beyond the HTTP status.
type body struct {
	Error string `json:"error"`
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Render writes {"error": msg} with status.
func Render(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, body{Error: msg})
}

// RenderBadRequest reports a missing or malformed field.
func RenderBadRequest(w http.ResponseWriter, msg string) {
	if msg == "" {
		msg = "Bad request"
	}
	Render(w, http.StatusBadRequest, msg)
}

// RenderUnauthorized reports a missing or invalid credential. The body is the
// same whatever check failed.
func RenderUnauthorized(w http.ResponseWriter) {
	Render(w, http.StatusUnauthorized, "Unauthorized")
}

// RenderForbidden reports a valid caller acting on something they do not own.
func RenderForbidden(w http.ResponseWriter, msg string) {
	if msg == "" {
		msg = "Forbidden"
	}
	Render(w, http.StatusForbidden, msg)
}

// RenderNotFound reports an id that does not resolve.
func RenderNotFound(w http.ResponseWriter, msg string) {
	if msg == "" {
		msg = "Not found"
	}
	Render(w, http.StatusNotFound, msg)
}

// RenderTooManyRequests reports a rate-limited caller.
func RenderTooManyRequests(w http.ResponseWriter, msg string) {
	if msg == "" {
		msg = "Too many requests"
	}
	Render(w, http.StatusTooManyRequests, msg)
}

// RenderServerError logs err and writes a generic 500. Internal error text is
// never sent to the client.
func RenderServerError(w http.ResponseWriter, log *zap.Logger, msg string, err error) {
	if log != nil {
		log.Error(msg, zap.Error(err))
	}
	Render(w, http.StatusInternalServerError, "Server error")
}

// RenderFromError maps the aggregate's sentinel errors to a status. what
// names the entity for not-found messages ("Card", "Column", ...).
func RenderFromError(w http.ResponseWriter, log *zap.Logger, what string, err error) {
	var invalid *boardpolicy.InvalidError
	switch {
	case stderrors.As(err, &invalid):
		RenderBadRequest(w, invalid.Msg)
	case stderrors.Is(err, boardpolicy.ErrBadRequest):
		RenderBadRequest(w, "")
	case stderrors.Is(err, boardpolicy.ErrNotFound):
		RenderNotFound(w, what+" not found")
	case stderrors.Is(err, boardpolicy.ErrForbidden):
		RenderForbidden(w, "Not authorized")
	default:
		RenderServerError(w, log, "request failed", err)
	}
}

// Reason names the class of err for metrics labels.
func Reason(err error) string {
	switch {
	case stderrors.Is(err, boardpolicy.ErrBadRequest):
		return "bad_request"
	case stderrors.Is(err, boardpolicy.ErrNotFound):
		return "not_found"
	case stderrors.Is(err, boardpolicy.ErrForbidden):
		return "forbidden"
	default:
		return "server_error"
	}
}
