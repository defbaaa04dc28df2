// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/kanban/internal/app/system/normalize"
	"github.com/dalemusser/kanban/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is enforced by Create.
const MinPasswordLength = 8

var (
	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrWeakPassword is returned for passwords shorter than MinPasswordLength.
	ErrWeakPassword = errors.New("password must be at least 8 characters")
)

// Store manages user accounts.
type Store struct {
	c    *mongo.Collection
	cost int
}

// New returns a Store over the users collection.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users"), cost: bcrypt.DefaultCost}
}

// WithHashCost returns a copy of s hashing with cost. Tests lower it to
// bcrypt.MinCost.
func (s *Store) WithHashCost(cost int) *Store {
	cp := *s
	cp.cost = cost
	return &cp
}

// GetByID loads a user by ObjectID. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// Create hashes password and inserts the user with a normalized email.
func (s *Store) Create(ctx context.Context, username, email, password string, isAdmin bool) (models.User, error) {
	if len(password) < MinPasswordLength {
		return models.User{}, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return models.User{}, err
	}

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Username:     normalize.Name(username),
		Email:        normalize.Email(email),
		PasswordHash: string(hash),
		IsAdmin:      isAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// CheckPassword reports whether plain matches u's stored hash.
func CheckPassword(u models.User, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}

// dummyHash is compared against when the email is unknown so a failed login
// costs the same whether or not the account exists.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("kanban-timing-equalizer"), bcrypt.DefaultCost)

// Authenticate returns the user for email when password matches. found
// distinguishes an unknown email from a wrong password for audit logging;
// callers must not reveal it to the client.
func (s *Store) Authenticate(ctx context.Context, email, password string) (u models.User, found bool, err error) {
	u, err = s.GetByEmail(ctx, email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return models.User{}, false, mongo.ErrNoDocuments
	}
	if err != nil {
		return models.User{}, false, err
	}
	if !CheckPassword(u, password) {
		return u, true, bcrypt.ErrMismatchedHashAndPassword
	}
	return u, true, nil
}

// List returns every user, oldest first.
func (s *Store) List(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Delete removes a user by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// PromoteToAdmin sets is_admin on the user with email. Returns
// mongo.ErrNoDocuments when there is no such user.
func (s *Store) PromoteToAdmin(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"email": normalize.Email(email)},
		bson.M{"$set": bson.M{"is_admin": true, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}
