// Package kanban is the board aggregate: every structural change to a board,
// its columns, cards and comments goes through Service so that ownership is
// checked before anything is written and sibling orders stay dense.
package kanban

import (
	"context"

	"github.com/dalemusser/kanban/internal/app/policy/boardpolicy"
	boardstore "github.com/dalemusser/kanban/internal/app/store/boards"
	cardstore "github.com/dalemusser/kanban/internal/app/store/cards"
	columnstore "github.com/dalemusser/kanban/internal/app/store/columns"
	commentstore "github.com/dalemusser/kanban/internal/app/store/comments"
	userstore "github.com/dalemusser/kanban/internal/app/store/users"
	"github.com/dalemusser/kanban/internal/app/system/htmlsanitize"
	"github.com/dalemusser/kanban/internal/app/system/metrics"
	"github.com/dalemusser/kanban/internal/app/system/normalize"
	"github.com/dalemusser/kanban/internal/app/system/txn"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Re-exported so handlers only need this package to branch on outcomes.
var (
	ErrNotFound   = boardpolicy.ErrNotFound
	ErrForbidden  = boardpolicy.ErrForbidden
	ErrBadRequest = boardpolicy.ErrBadRequest
)

const (
	maxNameLen        = 200
	maxDescriptionLen = 10000
	maxCommentLen     = 5000
)

// Service owns every structural mutation of the board tree. Callers pass the
// authenticated user id; ownership is checked through boardpolicy before any
// write, and multi-document writes run inside txn.Run.
type Service struct {
	db      *mongo.Database
	log     *zap.Logger
	metrics *metrics.Metrics

	policy   *boardpolicy.Resolver
	boards   *boardstore.Store
	columns  *columnstore.Store
	cards    *cardstore.Store
	comments *commentstore.Store
	users    *userstore.Store
}

// New builds a Service. m may be nil.
func New(db *mongo.Database, log *zap.Logger, m *metrics.Metrics) *Service {
	pol := boardpolicy.NewResolver(db)
	return &Service{
		db:       db,
		log:      log,
		metrics:  m,
		policy:   pol,
		boards:   pol.Boards,
		columns:  pol.Columns,
		cards:    pol.Cards,
		comments: pol.Comments,
		users:    userstore.New(db),
	}
}

// Policy exposes the ownership resolver for read-only checks.
func (s *Service) Policy() *boardpolicy.Resolver {
	return s.policy
}

func (s *Service) inTxn(ctx context.Context, fn func(ctx context.Context) error) error {
	return txn.Run(ctx, s.db, s.log, fn)
}

// cleanName sanitizes a board or column name or a card title.
func cleanName(field, raw string) (string, error) {
	v := normalize.Title(htmlsanitize.PlainText(raw))
	if v == "" {
		return "", boardpolicy.Invalid(field + " is required")
	}
	if len([]rune(v)) > maxNameLen {
		return "", boardpolicy.Invalid(field + " is too long")
	}
	return v, nil
}

func cleanText(field, raw string, required bool, max int) (string, error) {
	v := htmlsanitize.PlainText(raw)
	if required && v == "" {
		return "", boardpolicy.Invalid(field + " is required")
	}
	if len([]rune(v)) > max {
		return "", boardpolicy.Invalid(field + " is too long")
	}
	return v, nil
}
