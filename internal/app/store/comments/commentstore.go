// internal/app/store/comments/commentstore.go
package commentstore

import (
	"context"
	"time"

	"github.com/dalemusser/kanban/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store reads and writes comments attached to cards.
type Store struct {
	c *mongo.Collection
}

// New returns a Store over the comments collection.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("comments")}
}

// GetByID loads a comment. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Comment, error) {
	var c models.Comment
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return models.Comment{}, err
	}
	return c, nil
}

// Create inserts a comment on cardID.
func (s *Store) Create(ctx context.Context, cardID primitive.ObjectID, text string) (models.Comment, error) {
	now := time.Now().UTC()
	c := models.Comment{
		ID:        primitive.NewObjectID(),
		Text:      text,
		CardID:    cardID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Comment{}, err
	}
	return c, nil
}

// ListByCards returns the comments on the given cards, oldest first.
func (s *Store) ListByCards(ctx context.Context, cardIDs []primitive.ObjectID) ([]models.Comment, error) {
	if len(cardIDs) == 0 {
		return []models.Comment{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"card_id": bson.M{"$in": cardIDs}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Comment{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateText replaces the text. Returns mongo.ErrNoDocuments if the comment is gone.
func (s *Store) UpdateText(ctx context.Context, id primitive.ObjectID, text string) (models.Comment, error) {
	var c models.Comment
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"text": text, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&c)
	if err != nil {
		return models.Comment{}, err
	}
	return c, nil
}

// Delete removes a comment by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByCards removes every comment on the given cards.
func (s *Store) DeleteByCards(ctx context.Context, cardIDs []primitive.ObjectID) (int64, error) {
	if len(cardIDs) == 0 {
		return 0, nil
	}
	res, err := s.c.DeleteMany(ctx, bson.M{"card_id": bson.M{"$in": cardIDs}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
