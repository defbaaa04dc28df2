// internal/app/kanban/repair.go
package kanban

import (
	"context"
	"fmt"

	"github.com/dalemusser/kanban/internal/app/store/queries/orderqueries"
	"go.uber.org/zap"
)

// RepairResult counts the containers a sweep renumbered.
type RepairResult struct {
	Boards  int // boards whose columns were renumbered
	Columns int // columns whose cards were renumbered
}

// RepairDrift finds containers whose orders are no longer 0..n-1 and
// renumbers them, keeping their current relative order. At most limit
// containers of each kind are fixed per call; limit <= 0 means all.
func (s *Service) RepairDrift(ctx context.Context, limit int64) (RepairResult, error) {
	var res RepairResult

	boards, err := orderqueries.FindDrift(ctx, s.db, orderqueries.BoardColumns, limit)
	if err != nil {
		return res, fmt.Errorf("find column drift: %w", err)
	}
	for _, d := range boards {
		if _, err := s.renumberColumns(ctx, d.ParentID); err != nil {
			return res, err
		}
		s.log.Info("renumbered drifted columns",
			zap.String("board_id", d.ParentID.Hex()),
			zap.Int64("count", d.Count),
			zap.Int64("distinct", d.Distinct))
		res.Boards++
	}

	columns, err := orderqueries.FindDrift(ctx, s.db, orderqueries.ColumnCards, limit)
	if err != nil {
		return res, fmt.Errorf("find card drift: %w", err)
	}
	for _, d := range columns {
		if _, err := s.renumberCards(ctx, d.ParentID); err != nil {
			return res, err
		}
		s.log.Info("renumbered drifted cards",
			zap.String("column_id", d.ParentID.Hex()),
			zap.Int64("count", d.Count),
			zap.Int64("distinct", d.Distinct))
		res.Columns++
	}

	s.metrics.Repaired("board", "worker", res.Boards)
	s.metrics.Repaired("column", "worker", res.Columns)
	return res, nil
}
