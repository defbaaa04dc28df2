// internal/app/kanban/columns.go
package kanban

import (
	"context"
	"fmt"

	"github.com/dalemusser/kanban/internal/app/policy/boardpolicy"
	"github.com/dalemusser/kanban/internal/domain/models"
	"github.com/dalemusser/kanban/internal/domain/ordering"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CreateColumn appends a column to an owned board.
func (s *Service) CreateColumn(ctx context.Context, userID, boardID primitive.ObjectID, name string) (models.Column, error) {
	name, err := cleanName("Column name", name)
	if err != nil {
		return models.Column{}, err
	}
	if _, err := s.policy.Board(ctx, boardID, userID); err != nil {
		return models.Column{}, err
	}

	var col models.Column
	err = s.inTxn(ctx, func(ctx context.Context) error {
		n, err := s.columns.CountByBoard(ctx, boardID)
		if err != nil {
			return fmt.Errorf("count columns: %w", err)
		}
		col, err = s.columns.Create(ctx, boardID, name, ordering.AppendAtEnd(n))
		return err
	})
	if err != nil {
		return models.Column{}, fmt.Errorf("create column: %w", err)
	}
	col.Cards = []models.Card{}
	s.metrics.Mutation("column", "create")
	return col, nil
}

// RenameColumn renames a column on an owned board.
func (s *Service) RenameColumn(ctx context.Context, userID, columnID primitive.ObjectID, name string) (models.Column, error) {
	name, err := cleanName("Column name", name)
	if err != nil {
		return models.Column{}, err
	}
	if _, _, err := s.policy.Column(ctx, columnID, userID); err != nil {
		return models.Column{}, err
	}
	col, err := s.columns.Rename(ctx, columnID, name)
	if err != nil {
		return models.Column{}, notFoundOr("rename column", err)
	}
	s.metrics.Mutation("column", "rename")
	return s.withCards(ctx, col)
}

// DeleteColumn removes a column with its cards and their comments, then
// renumbers the board's remaining columns.
func (s *Service) DeleteColumn(ctx context.Context, userID, columnID primitive.ObjectID) error {
	col, _, err := s.policy.Column(ctx, columnID, userID)
	if err != nil {
		return err
	}
	err = s.inTxn(ctx, func(ctx context.Context) error {
		if err := s.deleteColumnContents(ctx, []primitive.ObjectID{col.ID}); err != nil {
			return err
		}
		if _, err := s.columns.Delete(ctx, col.ID); err != nil {
			return fmt.Errorf("delete column: %w", err)
		}
		_, err := s.renumberColumns(ctx, col.BoardID)
		return err
	})
	if err != nil {
		s.log.Error("delete column failed", zap.String("column_id", columnID.Hex()), zap.Error(err))
		return err
	}
	s.metrics.Mutation("column", "delete")
	return nil
}

// ReorderColumns writes the caller's order values verbatim onto the board's
// columns. Ids that are not columns of this board are skipped. The board's
// columns are returned sorted by their new order.
func (s *Service) ReorderColumns(ctx context.Context, userID, boardID primitive.ObjectID, positions []ordering.Position) ([]models.Column, error) {
	if err := checkPositions(positions); err != nil {
		return nil, err
	}
	if _, err := s.policy.Board(ctx, boardID, userID); err != nil {
		return nil, err
	}
	if _, err := s.columns.SetOrders(ctx, boardID, positions); err != nil {
		return nil, fmt.Errorf("reorder columns: %w", err)
	}
	s.metrics.Mutation("column", "reorder")

	cols, err := s.columns.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	return cols, nil
}

// renumberColumns re-densifies boardID's columns, writing only the ones whose
// order changed. Returns how many were rewritten.
func (s *Service) renumberColumns(ctx context.Context, boardID primitive.ObjectID) (int, error) {
	before, err := s.columns.Positions(ctx, boardID)
	if err != nil {
		return 0, fmt.Errorf("load column orders: %w", err)
	}
	changed := ordering.Changed(before, ordering.Renumber(before))
	if _, err := s.columns.SetOrders(ctx, boardID, changed); err != nil {
		return 0, fmt.Errorf("renumber columns: %w", err)
	}
	return len(changed), nil
}

func (s *Service) withCards(ctx context.Context, col models.Column) (models.Column, error) {
	cols := []models.Column{col}
	if err := s.fillColumns(ctx, cols); err != nil {
		return models.Column{}, err
	}
	return cols[0], nil
}

// checkPositions rejects a bulk payload with a negative order. Duplicates and
// gaps are allowed; the caller vouches for its permutation.
func checkPositions(positions []ordering.Position) error {
	for _, p := range positions {
		if p.ID.IsZero() {
			return boardpolicy.Invalid("Every entry needs an id")
		}
		if p.Order < 0 {
			return boardpolicy.Invalid("Order must not be negative")
		}
	}
	return nil
}
