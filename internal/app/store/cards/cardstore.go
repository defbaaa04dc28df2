// internal/app/store/cards/cardstore.go
package cardstore

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

// Store reads and writes cards. Orders are dense per column_id; the store
// writes what it is given and leaves renumbering to the caller.
type Store struct {
	c *mongo.Collection
}

// New returns a Store over the cards collection.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("cards")}
}

var byOrder = bson.D{{Key: "order", Value: 1}, {Key: "_id", Value: 1}}

// GetByID loads a card. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Card, error) {
	var c models.Card
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return models.Card{}, err
	}
	return c, nil
}

// Create inserts a card at the given order. The caller computes order.
func (s *Store) Create(ctx context.Context, columnID primitive.ObjectID, title, description string, order int) (models.Card, error) {
	now := time.Now().UTC()
	c := models.Card{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Description: description,
		ColumnID:    columnID,
		Order:       order,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Card{}, err
	}
	return c, nil
}

// CountByColumn returns how many cards columnID holds.
func (s *Store) CountByColumn(ctx context.Context, columnID primitive.ObjectID) (int, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"column_id": columnID})
	return int(n), err
}

// ListByColumn returns columnID's cards sorted by order.
func (s *Store) ListByColumn(ctx context.Context, columnID primitive.ObjectID) ([]models.Card, error) {
	return s.find(ctx, bson.M{"column_id": columnID})
}

// ListByColumns returns the cards of several columns sorted by order.
func (s *Store) ListByColumns(ctx context.Context, columnIDs []primitive.ObjectID) ([]models.Card, error) {
	if len(columnIDs) == 0 {
		return []models.Card{}, nil
	}
	return s.find(ctx, bson.M{"column_id": bson.M{"$in": columnIDs}})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Card, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(byOrder))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	cards := []models.Card{}
	if err := cur.All(ctx, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// Positions returns columnID's cards as ordering positions, sorted.
func (s *Store) Positions(ctx context.Context, columnID primitive.ObjectID) ([]ordering.Position, error) {
	cards, err := s.ListByColumn(ctx, columnID)
	if err != nil {
		return nil, err
	}
	return models.CardPositions(cards), nil
}

// IDsByColumns returns the ids of every card in the given columns.
func (s *Store) IDsByColumns(ctx context.Context, columnIDs []primitive.ObjectID) ([]primitive.ObjectID, error) {
	if len(columnIDs) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"column_id": bson.M{"$in": columnIDs}}, options.Find().SetProjection(bson.M{"_id": 1}))
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

// Update is a partial edit. Nil fields are left alone.
type Update struct {
	Title       *string
	Description *string
}

// Apply writes the set fields. Returns mongo.ErrNoDocuments if the card is gone.
func (s *Store) Apply(ctx context.Context, id primitive.ObjectID, upd Update) (models.Card, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	var c models.Card
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&c)
	if err != nil {
		return models.Card{}, err
	}
	return c, nil
}

// SetOrders writes each position's order onto the card with that id, but only
// if the card lives in columnID. Ids outside the column match nothing and are
// skipped without failing the batch. Returns how many matched.
func (s *Store) SetOrders(ctx context.Context, columnID primitive.ObjectID, positions []ordering.Position) (int64, error) {
	if len(positions) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	writes := make([]mongo.WriteModel, 0, len(positions))
	for _, p := range positions {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": p.ID, "column_id": columnID}).
			SetUpdate(bson.M{"$set": bson.M{"order": p.Order, "updated_at": now}}))
	}
	res, err := s.c.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// MoveTo reparents a card and sets its order in one write.
func (s *Store) MoveTo(ctx context.Context, id, columnID primitive.ObjectID, order int) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"column_id": columnID, "order": order, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a card by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByColumns removes every card in the given columns.
func (s *Store) DeleteByColumns(ctx context.Context, columnIDs []primitive.ObjectID) (int64, error) {
	if len(columnIDs) == 0 {
		return 0, nil
	}
	res, err := s.c.DeleteMany(ctx, bson.M{"column_id": bson.M{"$in": columnIDs}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
