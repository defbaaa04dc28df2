// internal/app/store/metrics/metricsstore.go
package metricsstore

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// Counts is the set of collection totals exported as gauges.
type Counts struct {
	Users    int64
	Boards   int64
	Columns  int64
	Cards    int64
	Comments int64
}

// FetchCounts returns one total per collection. Intentionally tolerant: a
// failed count reports 0 rather than failing the scrape.
func FetchCounts(ctx context.Context, db *mongo.Database) Counts {
	count := func(coll string) int64 {
		n, err := db.Collection(coll).EstimatedDocumentCount(ctx)
		if err != nil {
			return 0
		}
		return n
	}
	return Counts{
		Users:    count("users"),
		Boards:   count("boards"),
		Columns:  count("columns"),
		Cards:    count("cards"),
		Comments: count("comments"),
	}
}
