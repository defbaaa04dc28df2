// internal/app/store/boards/boardstore.go
package boardstore

import (
	"context"
	"time"

	"github.com/dalemusser/kanban/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store reads and writes board documents.
type Store struct {
	c *mongo.Collection
}

// New returns a Store over the boards collection.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("boards")}
}

// GetByID loads a board. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Board, error) {
	var b models.Board
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		return models.Board{}, err
	}
	return b, nil
}

// Create inserts a board owned by ownerID.
func (s *Store) Create(ctx context.Context, ownerID primitive.ObjectID, name string) (models.Board, error) {
	now := time.Now().UTC()
	b := models.Board{
		ID:        primitive.NewObjectID(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, b); err != nil {
		return models.Board{}, err
	}
	return b, nil
}

// ListByOwner returns ownerID's boards, oldest first. The first board is the
// one the single-board UI shows.
func (s *Store) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Board, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	boards := []models.Board{}
	if err := cur.All(ctx, &boards); err != nil {
		return nil, err
	}
	return boards, nil
}

// IDsByOwner returns the ids of ownerID's boards.
func (s *Store) IDsByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return distinctIDs(ctx, s.c, bson.M{"owner_id": ownerID})
}

// Rename sets the name. Returns mongo.ErrNoDocuments if the board is gone.
func (s *Store) Rename(ctx context.Context, id primitive.ObjectID, name string) (models.Board, error) {
	var b models.Board
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"name": name, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&b)
	if err != nil {
		return models.Board{}, err
	}
	return b, nil
}

// Delete removes a board by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteMany removes the boards with the given ids.
func (s *Store) DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.c.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func distinctIDs(ctx context.Context, c *mongo.Collection, filter bson.M) ([]primitive.ObjectID, error) {
	cur, err := c.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.ID)
	}
	return ids, cur.Err()
}
