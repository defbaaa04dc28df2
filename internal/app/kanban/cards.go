// internal/app/kanban/cards.go
package kanban

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/kanban/internal/app/policy/boardpolicy"
	cardstore "github.com/dalemusser/kanban/internal/app/store/cards"
	"github.com/dalemusser/kanban/internal/domain/models"
	"github.com/dalemusser/kanban/internal/domain/ordering"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CardUpdate is a partial card edit. Nil fields are left alone.
//
// NewColumnID different from the card's column moves the card there, at
// index Order (appended when Order is nil). Order without a column change
// repositions the card inside its column.
type CardUpdate struct {
	Title       *string
	Description *string
	NewColumnID *primitive.ObjectID
	Order       *int
}

// CreateCard appends a card to a column on an owned board.
func (s *Service) CreateCard(ctx context.Context, userID, columnID primitive.ObjectID, title, description string) (models.Card, error) {
	title, err := cleanName("Card title", title)
	if err != nil {
		return models.Card{}, err
	}
	description, err = cleanText("Description", description, false, maxDescriptionLen)
	if err != nil {
		return models.Card{}, err
	}
	if _, _, err := s.policy.Column(ctx, columnID, userID); err != nil {
		return models.Card{}, err
	}

	var card models.Card
	err = s.inTxn(ctx, func(ctx context.Context) error {
		n, err := s.cards.CountByColumn(ctx, columnID)
		if err != nil {
			return fmt.Errorf("count cards: %w", err)
		}
		card, err = s.cards.Create(ctx, columnID, title, description, ordering.AppendAtEnd(n))
		return err
	})
	if err != nil {
		return models.Card{}, fmt.Errorf("create card: %w", err)
	}
	card.Comments = []models.Comment{}
	s.metrics.Mutation("card", "create")
	return card, nil
}

// UpdateCard applies a partial edit, a cross-column move, or an in-column
// reposition. A move renumbers both columns and reparents the card in one
// transaction.
func (s *Service) UpdateCard(ctx context.Context, userID, cardID primitive.ObjectID, upd CardUpdate) (models.Card, error) {
	var edit cardstore.Update
	if upd.Order != nil && *upd.Order < 0 {
		return models.Card{}, boardpolicy.Invalid("Order must not be negative")
	}
	if upd.Title != nil {
		t, err := cleanName("Card title", *upd.Title)
		if err != nil {
			return models.Card{}, err
		}
		edit.Title = &t
	}
	if upd.Description != nil {
		d, err := cleanText("Description", *upd.Description, false, maxDescriptionLen)
		if err != nil {
			return models.Card{}, err
		}
		edit.Description = &d
	}

	card, _, err := s.policy.Card(ctx, cardID, userID)
	if err != nil {
		return models.Card{}, err
	}

	moving := upd.NewColumnID != nil && *upd.NewColumnID != card.ColumnID
	if moving {
		// The destination must also be on a board the caller owns.
		if _, _, err := s.policy.Column(ctx, *upd.NewColumnID, userID); err != nil {
			return models.Card{}, err
		}
	}

	err = s.inTxn(ctx, func(ctx context.Context) error {
		if edit.Title != nil || edit.Description != nil {
			if _, err := s.cards.Apply(ctx, cardID, edit); err != nil {
				return notFoundOr("update card", err)
			}
		}
		switch {
		case moving:
			index := -1
			if upd.Order != nil {
				index = *upd.Order
			}
			return s.moveCard(ctx, cardID, card.ColumnID, *upd.NewColumnID, index)
		case upd.Order != nil:
			return s.repositionCard(ctx, cardID, card.ColumnID, *upd.Order)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Error("update card failed", zap.String("card_id", cardID.Hex()), zap.Error(err))
		}
		return models.Card{}, err
	}

	switch {
	case moving:
		s.metrics.Mutation("card", "move")
	case upd.Order != nil:
		s.metrics.Mutation("card", "reposition")
	default:
		s.metrics.Mutation("card", "update")
	}
	return s.cardWithComments(ctx, cardID)
}

// moveCard takes cardID out of from, renumbering it, and inserts it into to
// at index (append when index < 0), renumbering that too.
func (s *Service) moveCard(ctx context.Context, cardID, from, to primitive.ObjectID, index int) error {
	src, err := s.cards.Positions(ctx, from)
	if err != nil {
		return fmt.Errorf("load source orders: %w", err)
	}
	dst, err := s.cards.Positions(ctx, to)
	if err != nil {
		return fmt.Errorf("load destination orders: %w", err)
	}
	if index < 0 {
		index = ordering.AppendAtEnd(len(dst))
	}

	newSrc, newDst, err := ordering.Move(src, dst, cardID, index)
	if errors.Is(err, ordering.ErrUnknownItem) {
		// Someone else moved it since we checked.
		return fmt.Errorf("move card: %w", ErrNotFound)
	}
	if err != nil {
		return err
	}

	if err := s.cards.MoveTo(ctx, cardID, to, newDst[ordering.IndexOf(newDst, cardID)].Order); err != nil {
		return notFoundOr("move card", err)
	}
	if _, err := s.cards.SetOrders(ctx, from, ordering.Changed(src, newSrc)); err != nil {
		return fmt.Errorf("renumber source column: %w", err)
	}
	if _, err := s.cards.SetOrders(ctx, to, ordering.Changed(dst, newDst)); err != nil {
		return fmt.Errorf("renumber destination column: %w", err)
	}
	return nil
}

// repositionCard moves cardID to index inside its own column.
func (s *Service) repositionCard(ctx context.Context, cardID, columnID primitive.ObjectID, index int) error {
	before, err := s.cards.Positions(ctx, columnID)
	if err != nil {
		return fmt.Errorf("load card orders: %w", err)
	}
	if ordering.IndexOf(before, cardID) < 0 {
		return fmt.Errorf("reposition card: %w", ErrNotFound)
	}
	after := ordering.Insert(before, cardID, index)
	if _, err := s.cards.SetOrders(ctx, columnID, ordering.Changed(before, after)); err != nil {
		return fmt.Errorf("reposition card: %w", err)
	}
	return nil
}

// DeleteCard removes a card and its comments, then renumbers the column.
func (s *Service) DeleteCard(ctx context.Context, userID, cardID primitive.ObjectID) error {
	card, _, err := s.policy.Card(ctx, cardID, userID)
	if err != nil {
		return err
	}
	err = s.inTxn(ctx, func(ctx context.Context) error {
		if _, err := s.comments.DeleteByCards(ctx, []primitive.ObjectID{card.ID}); err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		if _, err := s.cards.Delete(ctx, card.ID); err != nil {
			return fmt.Errorf("delete card: %w", err)
		}
		_, err := s.renumberCards(ctx, card.ColumnID)
		return err
	})
	if err != nil {
		s.log.Error("delete card failed", zap.String("card_id", cardID.Hex()), zap.Error(err))
		return err
	}
	s.metrics.Mutation("card", "delete")
	return nil
}

// ReorderCards writes the caller's order values verbatim onto the column's
// cards. Ids that are not cards of this column are skipped. The column's cards
// are returned sorted by their new order.
func (s *Service) ReorderCards(ctx context.Context, userID, columnID primitive.ObjectID, positions []ordering.Position) ([]models.Card, error) {
	if err := checkPositions(positions); err != nil {
		return nil, err
	}
	if _, _, err := s.policy.Column(ctx, columnID, userID); err != nil {
		return nil, err
	}
	if _, err := s.cards.SetOrders(ctx, columnID, positions); err != nil {
		return nil, fmt.Errorf("reorder cards: %w", err)
	}
	s.metrics.Mutation("card", "reorder")

	cards, err := s.cards.ListByColumn(ctx, columnID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return cards, nil
}

// renumberCards re-densifies columnID's cards. Returns how many were rewritten.
func (s *Service) renumberCards(ctx context.Context, columnID primitive.ObjectID) (int, error) {
	before, err := s.cards.Positions(ctx, columnID)
	if err != nil {
		return 0, fmt.Errorf("load card orders: %w", err)
	}
	changed := ordering.Changed(before, ordering.Renumber(before))
	if _, err := s.cards.SetOrders(ctx, columnID, changed); err != nil {
		return 0, fmt.Errorf("renumber cards: %w", err)
	}
	return len(changed), nil
}

func (s *Service) cardWithComments(ctx context.Context, cardID primitive.ObjectID) (models.Card, error) {
	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return models.Card{}, notFoundOr("load card", err)
	}
	comments, err := s.comments.ListByCards(ctx, []primitive.ObjectID{cardID})
	if err != nil {
		return models.Card{}, fmt.Errorf("list comments: %w", err)
	}
	card.Comments = comments
	return card, nil
}
