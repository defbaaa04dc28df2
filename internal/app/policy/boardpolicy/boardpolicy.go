// internal/app/policy/boardpolicy/boardpolicy.go
package boardpolicy

import (
	"context"
	"errors"
	"fmt"

	boardstore "github.com/dalemusser/kanban/internal/app/store/boards"
	cardstore "github.com/dalemusser/kanban/internal/app/store/cards"
	columnstore "github.com/dalemusser/kanban/internal/app/store/columns"
	commentstore "github.com/dalemusser/kanban/internal/app/store/comments"
	"github.com/dalemusser/kanban/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound means an id did not resolve, or a parent in the chain is missing.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the chain resolved to a board the caller does not own.
	ErrForbidden = errors.New("forbidden")
	// ErrBadRequest means the request itself was malformed.
	ErrBadRequest = errors.New("bad request")
)

// InvalidError is a bad request with a message safe to show the caller.
// errors.Is(err, ErrBadRequest) holds for it.
type InvalidError struct {
	Msg string
}

func (e *InvalidError) Error() string { return e.Msg }

func (e *InvalidError) Is(target error) bool { return target == ErrBadRequest }

// Invalid returns an *InvalidError with msg.
func Invalid(msg string) error {
	return &InvalidError{Msg: msg}
}

// Resolver walks Comment -> Card -> Column -> Board and checks that the board
// belongs to the caller. Children only point at their immediate parent, so
// every check is a walk up to the board.
type Resolver struct {
	Boards   *boardstore.Store
	Columns  *columnstore.Store
	Cards    *cardstore.Store
	Comments *commentstore.Store
}

func NewResolver(db *mongo.Database) *Resolver {
	return &Resolver{
		Boards:   boardstore.New(db),
		Columns:  columnstore.New(db),
		Cards:    cardstore.New(db),
		Comments: commentstore.New(db),
	}
}

// notFound turns ErrNoDocuments into ErrNotFound and wraps anything else.
func notFound(what string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("load %s: %w", what, err)
}

// Board loads boardID and checks it belongs to userID.
func (r *Resolver) Board(ctx context.Context, boardID, userID primitive.ObjectID) (models.Board, error) {
	b, err := r.Boards.GetByID(ctx, boardID)
	if err != nil {
		return models.Board{}, notFound("board", err)
	}
	if b.OwnerID != userID {
		return models.Board{}, ErrForbidden
	}
	return b, nil
}

// Column loads columnID and its board, and checks ownership.
func (r *Resolver) Column(ctx context.Context, columnID, userID primitive.ObjectID) (models.Column, models.Board, error) {
	col, err := r.Columns.GetByID(ctx, columnID)
	if err != nil {
		return models.Column{}, models.Board{}, notFound("column", err)
	}
	b, err := r.Board(ctx, col.BoardID, userID)
	if err != nil {
		return models.Column{}, models.Board{}, err
	}
	return col, b, nil
}

// Card loads cardID, its column and its board, and checks ownership.
func (r *Resolver) Card(ctx context.Context, cardID, userID primitive.ObjectID) (models.Card, models.Column, error) {
	card, err := r.Cards.GetByID(ctx, cardID)
	if err != nil {
		return models.Card{}, models.Column{}, notFound("card", err)
	}
	col, _, err := r.Column(ctx, card.ColumnID, userID)
	if err != nil {
		return models.Card{}, models.Column{}, err
	}
	return card, col, nil
}

// Comment loads commentID and walks up to its board.
func (r *Resolver) Comment(ctx context.Context, commentID, userID primitive.ObjectID) (models.Comment, error) {
	cm, err := r.Comments.GetByID(ctx, commentID)
	if err != nil {
		return models.Comment{}, notFound("comment", err)
	}
	if _, _, err := r.Card(ctx, cm.CardID, userID); err != nil {
		return models.Comment{}, err
	}
	return cm, nil
}
