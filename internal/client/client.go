// Package client is a typed Go client for the kanban REST API.
//
// Every method takes a context and returns the server's authoritative echo
// of the entity it touched. Login and Register store the returned bearer
// token on the Client; later calls send it automatically.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/kanban/internal/domain/models"
	"github.com/dalemusser/kanban/internal/domain/ordering"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultTimeout = 15 * time.Second

type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

// WithHTTPClient replaces the default client (15s timeout).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithToken starts the client already signed in.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New returns a client for the API rooted at baseURL, e.g.
// "http://localhost:8080". The /api prefix is added per call.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// do sends in as JSON (when non-nil) and decodes a 2xx body into out (when
// non-nil). Non-2xx responses become *APIError.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api"+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// ---- accounts ----

type AuthResult struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

func (c *Client) Register(ctx context.Context, username, email, password string) (AuthResult, error) {
	var res AuthResult
	err := c.do(ctx, http.MethodPost, "/auth/register", map[string]string{
		"username": username, "email": email, "password": password,
	}, &res)
	if err == nil {
		c.SetToken(res.Token)
	}
	return res, err
}

func (c *Client) Login(ctx context.Context, email, password string) (AuthResult, error) {
	var res AuthResult
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email": email, "password": password,
	}, &res)
	if err == nil {
		c.SetToken(res.Token)
	}
	return res, err
}

func (c *Client) Me(ctx context.Context) (models.User, error) {
	var res struct {
		User models.User `json:"user"`
	}
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, &res)
	return res.User, err
}

// ---- boards ----

func (c *Client) ListBoards(ctx context.Context) ([]models.Board, error) {
	var res struct {
		Boards []models.Board `json:"boards"`
	}
	err := c.do(ctx, http.MethodGet, "/boards", nil, &res)
	return res.Boards, err
}

// GetBoard returns the board with its columns, cards and comments.
func (c *Client) GetBoard(ctx context.Context, id primitive.ObjectID) (models.Board, error) {
	var res struct {
		Board models.Board `json:"board"`
	}
	err := c.do(ctx, http.MethodGet, "/boards/"+id.Hex(), nil, &res)
	return res.Board, err
}

func (c *Client) CreateBoard(ctx context.Context, name string) (models.Board, error) {
	var res struct {
		Board models.Board `json:"board"`
	}
	err := c.do(ctx, http.MethodPost, "/boards", map[string]string{"name": name}, &res)
	return res.Board, err
}

func (c *Client) RenameBoard(ctx context.Context, id primitive.ObjectID, name string) (models.Board, error) {
	var res struct {
		Board models.Board `json:"board"`
	}
	err := c.do(ctx, http.MethodPut, "/boards/"+id.Hex(), map[string]string{"name": name}, &res)
	return res.Board, err
}

func (c *Client) DeleteBoard(ctx context.Context, id primitive.ObjectID) error {
	return c.do(ctx, http.MethodDelete, "/boards/"+id.Hex(), nil, nil)
}

// ---- columns ----

func (c *Client) CreateColumn(ctx context.Context, boardID primitive.ObjectID, name string) (models.Column, error) {
	var res struct {
		Column models.Column `json:"column"`
	}
	err := c.do(ctx, http.MethodPost, "/columns", map[string]string{
		"boardId": boardID.Hex(), "name": name,
	}, &res)
	return res.Column, err
}

func (c *Client) RenameColumn(ctx context.Context, id primitive.ObjectID, name string) (models.Column, error) {
	var res struct {
		Column models.Column `json:"column"`
	}
	err := c.do(ctx, http.MethodPut, "/columns/"+id.Hex(), map[string]string{"name": name}, &res)
	return res.Column, err
}

func (c *Client) DeleteColumn(ctx context.Context, id primitive.ObjectID) error {
	return c.do(ctx, http.MethodDelete, "/columns/"+id.Hex(), nil, nil)
}

// ReorderColumns overwrites the orders of boardID's columns verbatim and
// returns the board's columns as stored afterwards (without cards).
func (c *Client) ReorderColumns(ctx context.Context, boardID primitive.ObjectID, positions []ordering.Position) ([]models.Column, error) {
	var res struct {
		Columns []models.Column `json:"columns"`
	}
	err := c.do(ctx, http.MethodPut, "/columns/order/"+boardID.Hex(),
		map[string]any{"columns": positions}, &res)
	return res.Columns, err
}

// ---- cards ----

func (c *Client) CreateCard(ctx context.Context, columnID primitive.ObjectID, title, description string) (models.Card, error) {
	var res struct {
		Card models.Card `json:"card"`
	}
	err := c.do(ctx, http.MethodPost, "/cards", map[string]string{
		"columnId": columnID.Hex(), "title": title, "description": description,
	}, &res)
	return res.Card, err
}

// CardUpdate is a partial card update; nil fields are left alone. Setting
// NewColumnID moves the card, inserting it at Order (appended when nil).
type CardUpdate struct {
	Title       *string
	Description *string
	NewColumnID *primitive.ObjectID
	Order       *int
}

func (u CardUpdate) wire() map[string]any {
	m := map[string]any{}
	if u.Title != nil {
		m["title"] = *u.Title
	}
	if u.Description != nil {
		m["description"] = *u.Description
	}
	if u.NewColumnID != nil {
		m["newColumnId"] = u.NewColumnID.Hex()
	}
	if u.Order != nil {
		m["order"] = *u.Order
	}
	return m
}

func (c *Client) UpdateCard(ctx context.Context, id primitive.ObjectID, upd CardUpdate) (models.Card, error) {
	var res struct {
		Card models.Card `json:"card"`
	}
	err := c.do(ctx, http.MethodPut, "/cards/"+id.Hex(), upd.wire(), &res)
	return res.Card, err
}

// MoveCard moves a card to columnID at index order.
func (c *Client) MoveCard(ctx context.Context, id, columnID primitive.ObjectID, order int) (models.Card, error) {
	return c.UpdateCard(ctx, id, CardUpdate{NewColumnID: &columnID, Order: &order})
}

func (c *Client) DeleteCard(ctx context.Context, id primitive.ObjectID) error {
	return c.do(ctx, http.MethodDelete, "/cards/"+id.Hex(), nil, nil)
}

// ReorderCards overwrites the orders of columnID's cards verbatim. Ids not
// in that column are ignored by the server.
func (c *Client) ReorderCards(ctx context.Context, columnID primitive.ObjectID, positions []ordering.Position) ([]models.Card, error) {
	var res struct {
		Cards []models.Card `json:"cards"`
	}
	err := c.do(ctx, http.MethodPut, "/cards/order/"+columnID.Hex(),
		map[string]any{"cards": positions}, &res)
	return res.Cards, err
}

// ---- comments ----

func (c *Client) AddComment(ctx context.Context, cardID primitive.ObjectID, text string) (models.Comment, error) {
	var res struct {
		Comment models.Comment `json:"comment"`
	}
	err := c.do(ctx, http.MethodPost, "/comments", map[string]string{
		"cardId": cardID.Hex(), "text": text,
	}, &res)
	return res.Comment, err
}

func (c *Client) EditComment(ctx context.Context, id primitive.ObjectID, text string) (models.Comment, error) {
	var res struct {
		Comment models.Comment `json:"comment"`
	}
	err := c.do(ctx, http.MethodPut, "/comments/"+id.Hex(), map[string]string{"text": text}, &res)
	return res.Comment, err
}

func (c *Client) DeleteComment(ctx context.Context, id primitive.ObjectID) error {
	return c.do(ctx, http.MethodDelete, "/comments/"+id.Hex(), nil, nil)
}

// ---- admin ----

func (c *Client) AllUsers(ctx context.Context) ([]models.User, error) {
	var res struct {
		Users []models.User `json:"users"`
	}
	err := c.do(ctx, http.MethodGet, "/admin/all-users", nil, &res)
	return res.Users, err
}

func (c *Client) DeleteUser(ctx context.Context, userID primitive.ObjectID) error {
	return c.do(ctx, http.MethodDelete, "/admin/"+userID.Hex(), nil, nil)
}

// AuditQuery narrows AuditLog. Empty fields are not sent.
type AuditQuery struct {
	Category  string
	EventType string
	UserID    string
	Limit     int
	Cursor    string
}

// AuditEvent is one entry of the audit trail.
type AuditEvent struct {
	ID            string            `json:"id"`
	CreatedAt     time.Time         `json:"createdAt"`
	Category      string            `json:"category"`
	EventType     string            `json:"eventType"`
	UserID        string            `json:"userId,omitempty"`
	ActorID       string            `json:"actorId,omitempty"`
	IP            string            `json:"ip"`
	Success       bool              `json:"success"`
	FailureReason string            `json:"failureReason,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
}

// AuditPage is one page of events, newest first. NextCursor is empty on the
// last page.
type AuditPage struct {
	Events     []AuditEvent `json:"events"`
	NextCursor string       `json:"nextCursor,omitempty"`
}

func (c *Client) AuditLog(ctx context.Context, q AuditQuery) (AuditPage, error) {
	v := url.Values{}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.EventType != "" {
		v.Set("eventType", q.EventType)
	}
	if q.UserID != "" {
		v.Set("userId", q.UserID)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Cursor != "" {
		v.Set("cursor", q.Cursor)
	}
	path := "/audit-log"
	if enc := v.Encode(); enc != "" {
		path += "?" + enc
	}
	var res AuditPage
	err := c.do(ctx, http.MethodGet, path, nil, &res)
	return res, err
}
