// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PageSize is the default number of rows in a page.
const PageSize = 50

// MaxPageSize caps the limit a caller may ask for.
const MaxPageSize = 200

// ParseLimit reads the "limit" query parameter, falling back to PageSize
// and clamping to [1, MaxPageSize].
func ParseLimit(r *http.Request) int {
	n, err := strconv.Atoi(query.Get(r, "limit"))
	if err != nil || n < 1 {
		return PageSize
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

// LimitPlusOne returns limit+1 for look-ahead fetching: the extra row tells
// whether another page exists.
func LimitPlusOne(limit int) int64 { return int64(limit + 1) }

// ParseCursor decodes an opaque cursor produced by Trim. ok is false for an
// empty or malformed token.
func ParseCursor(token string) (primitive.ObjectID, bool) {
	if token == "" {
		return primitive.NilObjectID, false
	}
	c, ok := wafflemongo.DecodeCursor(token)
	if !ok || c.ID.IsZero() {
		return primitive.NilObjectID, false
	}
	return c.ID, true
}

// OlderThan is the keyset window for newest-first lists ordered by _id.
// ObjectIDs grow with insert time, so _id alone is a stable key.
func OlderThan(id primitive.ObjectID) bson.M {
	return bson.M{"_id": bson.M{"$lt": id}}
}

// Trim cuts rows fetched with LimitPlusOne down to limit. When a row was cut,
// next is the cursor for the following page; otherwise it is empty.
func Trim[T any](rows *[]T, limit int, idFn func(T) primitive.ObjectID) (next string) {
	if len(*rows) <= limit {
		return ""
	}
	*rows = (*rows)[:limit]
	last := (*rows)[limit-1]
	return wafflemongo.EncodeCursor("", idFn(last))
}
