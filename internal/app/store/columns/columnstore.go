// internal/app/store/columns/columnstore.go
package columnstore

import (
	"context"
	"time"

	"github.com/dalemusser/kanban/internal/domain/models"
	"github.com/dalemusser/kanban/internal/domain/ordering"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store reads and writes columns, ordered per board_id.
type Store struct {
	c *mongo.Collection
}

// New returns a Store over the columns collection.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("columns")}
}

// byOrder sorts siblings for display; _id breaks ties left by a permissive
// bulk overwrite.
var byOrder = bson.D{{Key: "order", Value: 1}, {Key: "_id", Value: 1}}

// GetByID loads a column. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Column, error) {
	var c models.Column
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return models.Column{}, err
	}
	return c, nil
}

// Create inserts a column at the given order. The caller computes order.
func (s *Store) Create(ctx context.Context, boardID primitive.ObjectID, name string, order int) (models.Column, error) {
	now := time.Now().UTC()
	c := models.Column{
		ID:        primitive.NewObjectID(),
		Name:      name,
		BoardID:   boardID,
		Order:     order,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Column{}, err
	}
	return c, nil
}

// CountByBoard returns how many columns boardID has.
func (s *Store) CountByBoard(ctx context.Context, boardID primitive.ObjectID) (int, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"board_id": boardID})
	return int(n), err
}

// ListByBoard returns boardID's columns sorted by order.
func (s *Store) ListByBoard(ctx context.Context, boardID primitive.ObjectID) ([]models.Column, error) {
	return s.find(ctx, bson.M{"board_id": boardID})
}

// ListByBoards returns the columns of several boards sorted by order.
func (s *Store) ListByBoards(ctx context.Context, boardIDs []primitive.ObjectID) ([]models.Column, error) {
	if len(boardIDs) == 0 {
		return []models.Column{}, nil
	}
	return s.find(ctx, bson.M{"board_id": bson.M{"$in": boardIDs}})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Column, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(byOrder))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	cols := []models.Column{}
	if err := cur.All(ctx, &cols); err != nil {
		return nil, err
	}
	return cols, nil
}

// Positions returns boardID's columns as ordering positions, sorted.
func (s *Store) Positions(ctx context.Context, boardID primitive.ObjectID) ([]ordering.Position, error) {
	cols, err := s.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	return models.ColumnPositions(cols), nil
}

// IDsByBoards returns the ids of every column on the given boards.
func (s *Store) IDsByBoards(ctx context.Context, boardIDs []primitive.ObjectID) ([]primitive.ObjectID, error) {
	if len(boardIDs) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"board_id": bson.M{"$in": boardIDs}}, options.Find().SetProjection(bson.M{"_id": 1}))
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

// Rename sets the name. Returns mongo.ErrNoDocuments if the column is gone.
func (s *Store) Rename(ctx context.Context, id primitive.ObjectID, name string) (models.Column, error) {
	var c models.Column
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"name": name, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&c)
	if err != nil {
		return models.Column{}, err
	}
	return c, nil
}

// SetOrders writes each position's order onto the column with that id, but
// only if the column belongs to boardID. Ids outside the board match nothing
// and are skipped without failing the batch. Returns how many matched.
func (s *Store) SetOrders(ctx context.Context, boardID primitive.ObjectID, positions []ordering.Position) (int64, error) {
	if len(positions) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	writes := make([]mongo.WriteModel, 0, len(positions))
	for _, p := range positions {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": p.ID, "board_id": boardID}).
			SetUpdate(bson.M{"$set": bson.M{"order": p.Order, "updated_at": now}}))
	}
	res, err := s.c.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// Delete removes a column by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByBoards removes every column on the given boards.
func (s *Store) DeleteByBoards(ctx context.Context, boardIDs []primitive.ObjectID) (int64, error) {
	if len(boardIDs) == 0 {
		return 0, nil
	}
	res, err := s.c.DeleteMany(ctx, bson.M{"board_id": bson.M{"$in": boardIDs}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
