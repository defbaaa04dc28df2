// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account that owns boards.
//
// NOTE:
//   - Boards are not embedded on User. A user's boards are the documents in
//     the boards collection whose owner_id matches.
//   - PasswordHash is never serialized to JSON.
type User struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	Username     string             `bson:"username" json:"username"`
	Email        string             `bson:"email" json:"email"` // lowercase, unique
	PasswordHash string             `bson:"password_hash" json:"-"`
	IsAdmin      bool               `bson:"is_admin" json:"isAdmin"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
