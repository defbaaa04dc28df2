// internal/app/features/accounts/handler.go
package accounts

import (
	"context"
	"errors"
	"net/http"

	apperrors "github.com/dalemusser/kanban/internal/app/features/errors"
	"github.com/dalemusser/kanban/internal/app/features/shared"
	userstore "github.com/dalemusser/kanban/internal/app/store/users"
	"github.com/dalemusser/kanban/internal/app/system/auditlog"
	"github.com/dalemusser/kanban/internal/app/system/auth"
	"github.com/dalemusser/kanban/internal/app/system/inputval"
	"github.com/dalemusser/kanban/internal/app/system/metrics"
	"github.com/dalemusser/kanban/internal/app/system/normalize"
	"github.com/dalemusser/kanban/internal/app/system/ratelimit"
	"github.com/dalemusser/kanban/internal/app/system/timeouts"
	"github.com/dalemusser/kanban/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Handler serves registration, login and the current-user endpoint.
type Handler struct {
	Users    *userstore.Store
	Tokens   *auth.TokenService
	Limiter  *ratelimit.LoginLimiter // nil disables rate limiting
	AuditLog *auditlog.Logger
	Metrics  *metrics.Metrics
	Log      *zap.Logger
}

// NewHandler wires the account endpoints. limiter may be nil to disable
// login throttling.
func NewHandler(db *mongo.Database, tokens *auth.TokenService, limiter *ratelimit.LoginLimiter, audit *auditlog.Logger, m *metrics.Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		Users:    userstore.New(db),
		Tokens:   tokens,
		Limiter:  limiter,
		AuditLog: audit,
		Metrics:  m,
		Log:      logger,
	}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,max=50" label:"Username"`
	Email    string `json:"email" validate:"required,email,max=254" label:"Email"`
	Password string `json:"password" validate:"required,min=8,max=72" label:"Password"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required" label:"Email"`
	Password string `json:"password" validate:"required" label:"Password"`
}

type authResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

// invalidCredentials is the one message for every failed login, so the
// response never says whether the email exists.
const invalidCredentials = "Invalid email or password"

// Register handles POST /api/auth/register {username, email, password}.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		apperrors.RenderBadRequest(w, "Invalid JSON body")
		return
	}
	req.Email = normalize.Email(req.Email)
	if res := inputval.Validate(req); res.HasErrors() {
		h.Metrics.Rejected("bad_request")
		apperrors.RenderBadRequest(w, res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Create(ctx, req.Username, req.Email, req.Password, false)
	switch {
	case errors.Is(err, userstore.ErrDuplicateEmail):
		h.Metrics.Rejected("bad_request")
		apperrors.RenderBadRequest(w, "An account with that email already exists")
		return
	case errors.Is(err, userstore.ErrWeakPassword):
		apperrors.RenderBadRequest(w, "Password must be at least 8 characters.")
		return
	case err != nil:
		apperrors.RenderServerError(w, h.Log, "register: create user failed", err)
		return
	}

	token, err := h.Tokens.Issue(u.ID, u.IsAdmin)
	if err != nil {
		apperrors.RenderServerError(w, h.Log, "register: issue token failed", err)
		return
	}
	h.AuditLog.Registered(ctx, r, u.ID, u.Email)
	h.Metrics.Mutation("user", "create")
	apperrors.WriteJSON(w, http.StatusCreated, authResponse{User: u, Token: token})
}

// Login handles POST /api/auth/login {email, password}.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		apperrors.RenderBadRequest(w, "Invalid JSON body")
		return
	}
	req.Email = normalize.Email(req.Email)
	if res := inputval.Validate(req); res.HasErrors() {
		apperrors.RenderBadRequest(w, res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if h.Limiter != nil && !h.Limiter.Check(r, req.Email) {
		h.AuditLog.LoginRateLimited(ctx, r, req.Email)
		h.Metrics.Rejected("rate_limited")
		apperrors.RenderTooManyRequests(w, "Too many login attempts. Try again later.")
		return
	}

	u, found, err := h.Users.Authenticate(ctx, req.Email, req.Password)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		h.AuditLog.LoginFailedUserNotFound(ctx, r, req.Email)
		h.Metrics.Rejected("unauthorized")
		apperrors.Render(w, http.StatusUnauthorized, invalidCredentials)
		return
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) && found:
		h.AuditLog.LoginFailedWrongPassword(ctx, r, u.ID, u.Email)
		h.Metrics.Rejected("unauthorized")
		apperrors.Render(w, http.StatusUnauthorized, invalidCredentials)
		return
	case err != nil:
		apperrors.RenderServerError(w, h.Log, "login: authenticate failed", err)
		return
	}

	token, err := h.Tokens.Issue(u.ID, u.IsAdmin)
	if err != nil {
		apperrors.RenderServerError(w, h.Log, "login: issue token failed", err)
		return
	}
	if h.Limiter != nil {
		h.Limiter.Succeeded(req.Email)
	}
	h.AuditLog.LoginSuccess(ctx, r, u.ID, u.Email)
	apperrors.WriteJSON(w, http.StatusOK, authResponse{User: u, Token: token})
}

// Me handles GET /api/auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentUser(r)
	if !ok {
		apperrors.RenderUnauthorized(w)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, id.UserID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Token outlived its account.
		apperrors.RenderUnauthorized(w)
		return
	}
	if err != nil {
		apperrors.RenderServerError(w, h.Log, "me: load user failed", err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, map[string]any{"user": u})
}
