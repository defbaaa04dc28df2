// Package authz answers "who is calling and may they do this" for handlers.
// Ownership of boards is checked by policy/boardpolicy; this package only
// knows the admin flag carried by the token.
package authz

import (
	"net/http"

	"github.com/dalemusser/kanban/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the caller's id and admin flag. ok is false when the
// request carries no identity or a nil id, so ok=true can be trusted.
func UserCtx(r *http.Request) (userID primitive.ObjectID, isAdmin bool, ok bool) {
	id, found := auth.CurrentUser(r)
	if !found || id.UserID.IsZero() {
		return primitive.NilObjectID, false, false
	}
	return id.UserID, id.IsAdmin, true
}

// IsAdmin reports whether the caller's token carries isAdmin.
func IsAdmin(r *http.Request) bool {
	_, admin, ok := UserCtx(r)
	return ok && admin
}

// RequireAdmin lets only admins through. Callers without an identity get
// 401, authenticated non-admins get 403. Mount it behind RequireBearer.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, admin, ok := UserCtx(r)
		switch {
		case !ok:
			writeJSON(w, http.StatusUnauthorized, `{"error":"Unauthorized"}`)
		case !admin:
			writeJSON(w, http.StatusForbidden, `{"error":"Forbidden"}`)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body + "\n"))
}
