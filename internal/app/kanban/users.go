// internal/app/kanban/users.go
package kanban

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DeleteUser removes a user and every board they own, with everything
// beneath those boards. It does no ownership check; callers gate it on admin.
// Returns how many boards were removed.
func (s *Service) DeleteUser(ctx context.Context, userID primitive.ObjectID) (int, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return 0, notFoundOr("load user", err)
	}

	var boards int64
	err := s.inTxn(ctx, func(ctx context.Context) error {
		ids, err := s.boards.IDsByOwner(ctx, userID)
		if err != nil {
			return fmt.Errorf("list boards: %w", err)
		}
		if boards, err = s.deleteBoards(ctx, ids); err != nil {
			return err
		}
		if _, err := s.users.Delete(ctx, userID); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		s.log.Error("delete user failed", zap.String("user_id", userID.Hex()), zap.Error(err))
		return 0, err
	}
	s.metrics.Mutation("user", "delete")
	return int(boards), nil
}
