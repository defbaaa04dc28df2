// internal/app/features/shared/request.go
package shared

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxBodyBytes caps every JSON request body.
const MaxBodyBytes = 1 << 20

// ErrEmptyBody is returned by DecodeJSON when the request has no body.
var ErrEmptyBody = errors.New("request body is empty")

// DecodeJSON reads a single JSON value from r's body into v. Unknown fields
// are ignored so older clients keep working.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return err
	}
	return nil
}

// IDParam parses the chi URL parameter name as an ObjectID.
func IDParam(r *http.Request, name string) (primitive.ObjectID, bool) {
	return ParseID(chi.URLParam(r, name))
}

// ParseID parses a hex ObjectID; the zero id is rejected.
func ParseID(hex string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil || id.IsZero() {
		return primitive.NilObjectID, false
	}
	return id, true
}
