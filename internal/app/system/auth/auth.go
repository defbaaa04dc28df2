// Package auth issues and verifies bearer tokens and carries the caller's
// identity through the request context.
//
// Tokens are HS256 JWTs. The signing secret belongs to a TokenService value
// built at startup from configuration; nothing here reads a process-wide
// secret.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ErrInvalidToken covers every reason a token is rejected: missing,
// malformed, expired, wrong signature, wrong algorithm, wrong issuer or a
// subject that is not an ObjectID. Callers never learn which one.
var ErrInvalidToken = errors.New("invalid token")

// Identity is what a verified token says about its bearer.
type Identity struct {
	UserID  primitive.ObjectID
	IsAdmin bool
	TokenID string
	Expires time.Time
}

// Claims is the JWT payload: sub, isAdmin, exp, iat, jti (and iss when an
// issuer is configured).
type Claims struct {
	jwt.RegisteredClaims
	IsAdmin bool `json:"isAdmin"`
}

// TokenService mints and checks tokens with one secret.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	log    *zap.Logger
	now    func() time.Time
}

// NewTokenService returns a service signing with secret. ttl must be
// positive; issuer may be empty.
func NewTokenService(secret string, ttl time.Duration, issuer string, log *zap.Logger) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("auth: empty signing secret")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: token ttl must be positive")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: issuer,
		log:    log,
		now:    time.Now,
	}, nil
}

// Issue signs a token for userID.
func (s *TokenService) Issue(userID primitive.ObjectID, isAdmin bool) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.Hex(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
		IsAdmin: isAdmin,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify parses and checks token. Any failure returns ErrInvalidToken.
func (s *TokenService) Verify(token string) (Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}

	uid, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	return Identity{
		UserID:  uid,
		IsAdmin: claims.IsAdmin,
		TokenID: claims.ID,
		Expires: claims.ExpiresAt.Time,
	}, nil
}

// RequireBearer rejects requests without a valid "Authorization: Bearer"
// token with 401 and an identical body whatever the cause. Accepted requests
// carry the Identity in their context.
func (s *TokenService) RequireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			unauthorized(w)
			return
		}
		id, err := s.Verify(raw)
		if err != nil {
			s.log.Debug("bearer token rejected",
				zap.String("path", r.URL.Path),
				zap.String("method", r.Method))
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, tok, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

// unauthorized is written here rather than through features/errors so the
// guard has no dependency on the HTTP feature packages.
func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("WWW-Authenticate", `Bearer realm="kanban"`)
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Unauthorized"}` + "\n"))
}

type ctxKey struct{}

// WithIdentity returns ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity attached by RequireBearer.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// CurrentUser returns the identity of the authenticated caller.
func CurrentUser(r *http.Request) (Identity, bool) {
	return FromContext(r.Context())
}

// WithTestUser attaches id to r as if RequireBearer had accepted a token.
// Handler tests use it to skip token minting.
func WithTestUser(r *http.Request, id Identity) *http.Request {
	return r.WithContext(WithIdentity(r.Context(), id))
}
