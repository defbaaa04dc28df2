// internal/app/kanban/boards.go
package kanban

import (
	"context"
	"fmt"

	"github.com/dalemusser/kanban/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ListBoards returns the caller's boards with their columns, cards and
// comments filled in. The first board is the one the UI shows.
func (s *Service) ListBoards(ctx context.Context, userID primitive.ObjectID) ([]models.Board, error) {
	boards, err := s.boards.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	return s.LoadTrees(ctx, boards)
}

// GetBoard returns one owned board with its tree filled in.
func (s *Service) GetBoard(ctx context.Context, userID, boardID primitive.ObjectID) (models.Board, error) {
	b, err := s.policy.Board(ctx, boardID, userID)
	if err != nil {
		return models.Board{}, err
	}
	return s.LoadTree(ctx, b)
}

// CreateBoard creates an empty board owned by userID.
func (s *Service) CreateBoard(ctx context.Context, userID primitive.ObjectID, name string) (models.Board, error) {
	name, err := cleanName("Board name", name)
	if err != nil {
		return models.Board{}, err
	}
	b, err := s.boards.Create(ctx, userID, name)
	if err != nil {
		return models.Board{}, fmt.Errorf("create board: %w", err)
	}
	b.Columns = []models.Column{}
	s.metrics.Mutation("board", "create")
	return b, nil
}

// RenameBoard renames an owned board.
func (s *Service) RenameBoard(ctx context.Context, userID, boardID primitive.ObjectID, name string) (models.Board, error) {
	name, err := cleanName("Board name", name)
	if err != nil {
		return models.Board{}, err
	}
	if _, err := s.policy.Board(ctx, boardID, userID); err != nil {
		return models.Board{}, err
	}
	b, err := s.boards.Rename(ctx, boardID, name)
	if err != nil {
		return models.Board{}, notFoundOr("rename board", err)
	}
	s.metrics.Mutation("board", "rename")
	return s.LoadTree(ctx, b)
}

// DeleteBoard removes an owned board and every column, card and comment
// beneath it.
func (s *Service) DeleteBoard(ctx context.Context, userID, boardID primitive.ObjectID) error {
	if _, err := s.policy.Board(ctx, boardID, userID); err != nil {
		return err
	}
	err := s.inTxn(ctx, func(ctx context.Context) error {
		_, err := s.deleteBoards(ctx, []primitive.ObjectID{boardID})
		return err
	})
	if err != nil {
		s.log.Error("delete board failed", zap.String("board_id", boardID.Hex()), zap.Error(err))
		return err
	}
	s.metrics.Mutation("board", "delete")
	return nil
}

// deleteBoards removes boards bottom-up: comments, cards, columns, then the
// boards. Each step is a filter delete, so re-running after a partial failure
// finishes the job.
func (s *Service) deleteBoards(ctx context.Context, boardIDs []primitive.ObjectID) (int64, error) {
	colIDs, err := s.columns.IDsByBoards(ctx, boardIDs)
	if err != nil {
		return 0, fmt.Errorf("list columns: %w", err)
	}
	if err := s.deleteColumnContents(ctx, colIDs); err != nil {
		return 0, err
	}
	if _, err := s.columns.DeleteByBoards(ctx, boardIDs); err != nil {
		return 0, fmt.Errorf("delete columns: %w", err)
	}
	n, err := s.boards.DeleteMany(ctx, boardIDs)
	if err != nil {
		return 0, fmt.Errorf("delete boards: %w", err)
	}
	return n, nil
}

// deleteColumnContents removes every card in colIDs and their comments.
func (s *Service) deleteColumnContents(ctx context.Context, colIDs []primitive.ObjectID) error {
	cardIDs, err := s.cards.IDsByColumns(ctx, colIDs)
	if err != nil {
		return fmt.Errorf("list cards: %w", err)
	}
	if _, err := s.comments.DeleteByCards(ctx, cardIDs); err != nil {
		return fmt.Errorf("delete comments: %w", err)
	}
	if _, err := s.cards.DeleteByColumns(ctx, colIDs); err != nil {
		return fmt.Errorf("delete cards: %w", err)
	}
	return nil
}
