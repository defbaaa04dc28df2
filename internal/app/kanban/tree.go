// internal/app/kanban/tree.go
package kanban

import (
	"context"
	"fmt"

	"github.com/dalemusser/kanban/internal/domain/models"
	"github.com/dalemusser/kanban/internal/domain/ordering"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// treeLoadConcurrency bounds how many boards LoadTrees fetches at once.
const treeLoadConcurrency = 4

// LoadTrees fills every board's tree, a few boards at a time.
func (s *Service) LoadTrees(ctx context.Context, boards []models.Board) ([]models.Board, error) {
	out := make([]models.Board, len(boards))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(treeLoadConcurrency)
	for i := range boards {
		i := i
		g.Go(func() error {
			b, err := s.LoadTree(gctx, boards[i])
			if err != nil {
				return err
			}
			out[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadTree fills b.Columns, each column's Cards and each card's Comments.
// Containers whose orders are not dense are renumbered on the way out, so a
// cascade that failed halfway is healed by the next read.
func (s *Service) LoadTree(ctx context.Context, b models.Board) (models.Board, error) {
	cols, err := s.columns.ListByBoard(ctx, b.ID)
	if err != nil {
		return models.Board{}, fmt.Errorf("list columns: %w", err)
	}
	if !ordering.IsDense(models.ColumnPositions(cols)) {
		if err := s.repairColumnsOnRead(ctx, b.ID, cols); err != nil {
			return models.Board{}, err
		}
	}
	if err := s.fillColumns(ctx, cols); err != nil {
		return models.Board{}, err
	}
	b.Columns = cols
	return b, nil
}

// fillColumns loads the cards of cols and their comments in place.
func (s *Service) fillColumns(ctx context.Context, cols []models.Column) error {
	colIDs := make([]primitive.ObjectID, len(cols))
	for i, c := range cols {
		colIDs[i] = c.ID
	}
	cards, err := s.cards.ListByColumns(ctx, colIDs)
	if err != nil {
		return fmt.Errorf("list cards: %w", err)
	}

	byColumn := make(map[primitive.ObjectID][]models.Card, len(cols))
	cardIDs := make([]primitive.ObjectID, len(cards))
	for i, c := range cards {
		cardIDs[i] = c.ID
		byColumn[c.ColumnID] = append(byColumn[c.ColumnID], c)
	}
	for i := range cols {
		cols[i].Cards = byColumn[cols[i].ID]
		if cols[i].Cards == nil {
			cols[i].Cards = []models.Card{}
		}
	}

	// Comments and card repairs touch different collections.
	var comments []models.Comment
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		comments, err = s.comments.ListByCards(gctx, cardIDs)
		if err != nil {
			return fmt.Errorf("list comments: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		for i := range cols {
			if ordering.IsDense(models.CardPositions(cols[i].Cards)) {
				continue
			}
			if err := s.repairCardsOnRead(gctx, &cols[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	byCard := make(map[primitive.ObjectID][]models.Comment, len(cards))
	for _, cm := range comments {
		byCard[cm.CardID] = append(byCard[cm.CardID], cm)
	}
	for i := range cols {
		for j := range cols[i].Cards {
			c := &cols[i].Cards[j]
			c.Comments = byCard[c.ID]
			if c.Comments == nil {
				c.Comments = []models.Comment{}
			}
		}
	}
	return nil
}

// repairColumnsOnRead renumbers cols (already sorted) and persists the
// changed orders.
func (s *Service) repairColumnsOnRead(ctx context.Context, boardID primitive.ObjectID, cols []models.Column) error {
	before := models.ColumnPositions(cols)
	after := ordering.Renumber(before)
	if _, err := s.columns.SetOrders(ctx, boardID, ordering.Changed(before, after)); err != nil {
		return fmt.Errorf("repair column orders: %w", err)
	}
	for i := range cols {
		cols[i].Order = after[i].Order
	}
	s.log.Info("renumbered drifted columns on read", zap.String("board_id", boardID.Hex()))
	s.metrics.Repaired("board", "read", 1)
	return nil
}

func (s *Service) repairCardsOnRead(ctx context.Context, col *models.Column) error {
	before := models.CardPositions(col.Cards)
	after := ordering.Renumber(before)
	if _, err := s.cards.SetOrders(ctx, col.ID, ordering.Changed(before, after)); err != nil {
		return fmt.Errorf("repair card orders: %w", err)
	}
	for i := range col.Cards {
		col.Cards[i].Order = after[i].Order
	}
	s.log.Info("renumbered drifted cards on read", zap.String("column_id", col.ID.Hex()))
	s.metrics.Repaired("column", "read", 1)
	return nil
}
