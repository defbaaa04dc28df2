// internal/app/kanban/comments.go
package kanban

import (
	"context"
	"fmt"

	"github.com/dalemusser/kanban/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AddComment attaches a comment to a card on an owned board.
func (s *Service) AddComment(ctx context.Context, userID, cardID primitive.ObjectID, text string) (models.Comment, error) {
	text, err := cleanText("Comment text", text, true, maxCommentLen)
	if err != nil {
		return models.Comment{}, err
	}
	if _, _, err := s.policy.Card(ctx, cardID, userID); err != nil {
		return models.Comment{}, err
	}
	cm, err := s.comments.Create(ctx, cardID, text)
	if err != nil {
		return models.Comment{}, fmt.Errorf("create comment: %w", err)
	}
	s.metrics.Mutation("comment", "create")
	return cm, nil
}

// EditComment replaces a comment's text.
func (s *Service) EditComment(ctx context.Context, userID, commentID primitive.ObjectID, text string) (models.Comment, error) {
	text, err := cleanText("Comment text", text, true, maxCommentLen)
	if err != nil {
		return models.Comment{}, err
	}
	if _, err := s.policy.Comment(ctx, commentID, userID); err != nil {
		return models.Comment{}, err
	}
	cm, err := s.comments.UpdateText(ctx, commentID, text)
	if err != nil {
		return models.Comment{}, notFoundOr("update comment", err)
	}
	s.metrics.Mutation("comment", "update")
	return cm, nil
}

// DeleteComment removes a comment. Comments are unordered, so nothing is
// renumbered.
func (s *Service) DeleteComment(ctx context.Context, userID, commentID primitive.ObjectID) error {
	if _, err := s.policy.Comment(ctx, commentID, userID); err != nil {
		return err
	}
	if _, err := s.comments.Delete(ctx, commentID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	s.metrics.Mutation("comment", "delete")
	return nil
}
