// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/kanban/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// FixturePassword is the plaintext password of every fixture user.
const FixturePassword = "correct horse battery"

var fixtureHash []byte

func init() {
	// MinCost keeps fixture setup fast; production hashes use DefaultCost.
	h, err := bcrypt.GenerateFromPassword([]byte(FixturePassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	fixtureHash = h
}

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that call a handler method directly.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// Fixtures inserts documents directly, bypassing stores and services, so a
// test can set up state (including broken state) without going through the
// code under test.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to insert test %s: %v", coll, err)
	}
}

func (f *Fixtures) count(ctx context.Context, coll string, filter bson.M) int {
	f.t.Helper()
	n, err := f.db.Collection(coll).CountDocuments(ctx, filter)
	if err != nil {
		f.t.Fatalf("failed to count %s: %v", coll, err)
	}
	return int(n)
}

// CreateUser creates a regular user whose password is FixturePassword.
func (f *Fixtures) CreateUser(ctx context.Context, email string) models.User {
	f.t.Helper()
	return f.createUser(ctx, email, false)
}

// CreateAdmin creates an admin user whose password is FixturePassword.
func (f *Fixtures) CreateAdmin(ctx context.Context, email string) models.User {
	f.t.Helper()
	return f.createUser(ctx, email, true)
}

func (f *Fixtures) createUser(ctx context.Context, email string, admin bool) models.User {
	f.t.Helper()
	now := time.Now().UTC().Truncate(time.Millisecond)
	u := models.User{
		ID:           primitive.NewObjectID(),
		Username:     email,
		Email:        email,
		PasswordHash: string(fixtureHash),
		IsAdmin:      admin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.insert(ctx, "users", u)
	return u
}

// CreateBoard creates a board owned by ownerID.
func (f *Fixtures) CreateBoard(ctx context.Context, ownerID primitive.ObjectID, name string) models.Board {
	f.t.Helper()
	now := time.Now().UTC().Truncate(time.Millisecond)
	b := models.Board{
		ID:        primitive.NewObjectID(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "boards", b)
	return b
}

// CreateColumn appends a column to boardID (order = current count).
func (f *Fixtures) CreateColumn(ctx context.Context, boardID primitive.ObjectID, name string) models.Column {
	f.t.Helper()
	return f.CreateColumnAt(ctx, boardID, name, f.count(ctx, "columns", bson.M{"board_id": boardID}))
}

// CreateColumnAt creates a column with an explicit order, which may break
// density on purpose.
func (f *Fixtures) CreateColumnAt(ctx context.Context, boardID primitive.ObjectID, name string, order int) models.Column {
	f.t.Helper()
	now := time.Now().UTC().Truncate(time.Millisecond)
	c := models.Column{
		ID:        primitive.NewObjectID(),
		Name:      name,
		BoardID:   boardID,
		Order:     order,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "columns", c)
	return c
}

// CreateCard appends a card to columnID (order = current count).
func (f *Fixtures) CreateCard(ctx context.Context, columnID primitive.ObjectID, title string) models.Card {
	f.t.Helper()
	return f.CreateCardAt(ctx, columnID, title, f.count(ctx, "cards", bson.M{"column_id": columnID}))
}

// CreateCardAt creates a card with an explicit order.
func (f *Fixtures) CreateCardAt(ctx context.Context, columnID primitive.ObjectID, title string, order int) models.Card {
	f.t.Helper()
	now := time.Now().UTC().Truncate(time.Millisecond)
	c := models.Card{
		ID:        primitive.NewObjectID(),
		Title:     title,
		ColumnID:  columnID,
		Order:     order,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "cards", c)
	return c
}

// CreateComment attaches a comment to cardID.
func (f *Fixtures) CreateComment(ctx context.Context, cardID primitive.ObjectID, text string) models.Comment {
	f.t.Helper()
	now := time.Now().UTC().Truncate(time.Millisecond)
	c := models.Comment{
		ID:        primitive.NewObjectID(),
		Text:      text,
		CardID:    cardID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "comments", c)
	return c
}

// BoardTree is the standard scenario board: "To Do" holds X, Y, Z and
// "Done" holds one card, D.
type BoardTree struct {
	Owner      models.User
	Board      models.Board
	Todo, Done models.Column
	X, Y, Z, D models.Card
}

// CreateBoardTree builds the scenario board for ownerEmail.
func (f *Fixtures) CreateBoardTree(ctx context.Context, ownerEmail string) BoardTree {
	f.t.Helper()
	var bt BoardTree
	bt.Owner = f.CreateUser(ctx, ownerEmail)
	bt.Board = f.CreateBoard(ctx, bt.Owner.ID, "B1")
	bt.Todo = f.CreateColumn(ctx, bt.Board.ID, "To Do")
	bt.Done = f.CreateColumn(ctx, bt.Board.ID, "Done")
	bt.X = f.CreateCard(ctx, bt.Todo.ID, "X")
	bt.Y = f.CreateCard(ctx, bt.Todo.ID, "Y")
	bt.Z = f.CreateCard(ctx, bt.Todo.ID, "Z")
	bt.D = f.CreateCard(ctx, bt.Done.ID, "D")
	return bt
}

// Orders returns id -> order for every document in coll matching filter.
func (f *Fixtures) Orders(ctx context.Context, coll string, filter bson.M) map[primitive.ObjectID]int {
	f.t.Helper()
	cur, err := f.db.Collection(coll).Find(ctx, filter)
	if err != nil {
		f.t.Fatalf("find %s: %v", coll, err)
	}
	defer cur.Close(ctx)

	out := map[primitive.ObjectID]int{}
	for cur.Next(ctx) {
		var doc struct {
			ID    primitive.ObjectID `bson:"_id"`
			Order int                `bson:"order"`
		}
		if err := cur.Decode(&doc); err != nil {
			f.t.Fatalf("decode %s: %v", coll, err)
		}
		out[doc.ID] = doc.Order
	}
	return out
}

// Count returns how many documents in coll match filter.
func (f *Fixtures) Count(ctx context.Context, coll string, filter bson.M) int {
	f.t.Helper()
	return f.count(ctx, coll, filter)
}
