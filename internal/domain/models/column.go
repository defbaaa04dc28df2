// internal/domain/models/column.go
package models

import (
	"time"

	"github.com/dalemusser/kanban/internal/domain/ordering"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Column is an ordered container of cards inside a board.
// Order is dense (0..n-1) among the columns sharing BoardID.
type Column struct {
	ID      primitive.ObjectID `bson:"_id" json:"id"`
	Name    string             `bson:"name" json:"name"`
	BoardID primitive.ObjectID `bson:"board_id" json:"boardId"`
	Order   int                `bson:"order" json:"order"`

	Cards []Card `bson:"-" json:"cards"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Position returns the column's identity and order for the ordering engine.
func (c Column) Position() ordering.Position {
	return ordering.Position{ID: c.ID, Order: c.Order}
}

// ColumnPositions maps columns to ordering positions.
func ColumnPositions(cols []Column) []ordering.Position {
	out := make([]ordering.Position, len(cols))
	for i, c := range cols {
		out[i] = c.Position()
	}
	return out
}
