// internal/domain/models/board.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Board is the top-level container owned by exactly one user.
//
// Columns are not stored on the board document. The column's board_id is the
// single source of truth; Columns is filled on read when a board tree is
// loaded.
type Board struct {
	ID      primitive.ObjectID `bson:"_id" json:"id"`
	Name    string             `bson:"name" json:"name"`
	OwnerID primitive.ObjectID `bson:"owner_id" json:"ownerId"` // never changes

	Columns []Column `bson:"-" json:"columns"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
