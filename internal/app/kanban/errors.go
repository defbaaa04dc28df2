// internal/app/kanban/errors.go
package kanban

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// notFoundOr maps a store's ErrNoDocuments (the entity vanished between the
// ownership check and the write) to ErrNotFound.
func notFoundOr(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
