// internal/domain/models/card.go
package models

import (
	"time"

	"github.com/dalemusser/kanban/internal/domain/ordering"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Card is an ordered unit of work inside a column.
// Order is dense (0..n-1) among the cards sharing ColumnID.
type Card struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	ColumnID    primitive.ObjectID `bson:"column_id" json:"columnId"`
	Order       int                `bson:"order" json:"order"`

	Comments []Comment `bson:"-" json:"comments"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Position returns the card's identity and order for the ordering engine.
func (c Card) Position() ordering.Position {
	return ordering.Position{ID: c.ID, Order: c.Order}
}

// CardPositions maps cards to ordering positions.
func CardPositions(cards []Card) []ordering.Position {
	out := make([]ordering.Position, len(cards))
	for i, c := range cards {
		out[i] = c.Position()
	}
	return out
}
