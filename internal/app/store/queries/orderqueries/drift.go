// Package orderqueries finds ordered containers whose sibling orders are no
// longer exactly 0..n-1.
package orderqueries

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container names an ordered child collection and the field that points at
// its parent.
type Container struct {
	Collection  string
	ParentField string
}

var (
	// BoardColumns groups columns by board.
	BoardColumns = Container{Collection: "columns", ParentField: "board_id"}
	// ColumnCards groups cards by column.
	ColumnCards = Container{Collection: "cards", ParentField: "column_id"}
)

// Drift describes one parent whose children are not densely ordered.
type Drift struct {
	ParentID primitive.ObjectID `bson:"_id"`
	Count    int64              `bson:"count"`
	Min      int64              `bson:"min"`
	Max      int64              `bson:"max"`
	Distinct int64              `bson:"distinct"`
}

// FindDrift returns every parent in c whose children's orders have a gap, a
// duplicate, or do not start at zero. limit <= 0 means no limit.
func FindDrift(ctx context.Context, db *mongo.Database, c Container, limit int64) ([]Drift, error) {
	pipeline := []bson.M{
		{"$group": bson.M{
			"_id":    "$" + c.ParentField,
			"count":  bson.M{"$sum": 1},
			"min":    bson.M{"$min": "$order"},
			"max":    bson.M{"$max": "$order"},
			"orders": bson.M{"$addToSet": "$order"},
		}},
		{"$project": bson.M{
			"count":    1,
			"min":      1,
			"max":      1,
			"distinct": bson.M{"$size": "$orders"},
		}},
		{"$match": bson.M{"$expr": bson.M{"$or": bson.A{
			bson.M{"$ne": bson.A{"$min", 0}},
			bson.M{"$ne": bson.A{"$max", bson.M{"$subtract": bson.A{"$count", 1}}}},
			bson.M{"$ne": bson.A{"$distinct", "$count"}},
		}}}},
		{"$sort": bson.M{"_id": 1}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.M{"$limit": limit})
	}

	cur, err := db.Collection(c.Collection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []Drift{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
