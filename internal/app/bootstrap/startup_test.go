package bootstrap

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	userstore "github.com/dalemusser/kanban/internal/app/store/users"
	"github.com/dalemusser/kanban/internal/app/system/indexes"
	"github.com/dalemusser/kanban/internal/domain/models"
	"github.com/dalemusser/kanban/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func testAppConfig() AppConfig {
	return AppConfig{
		MongoURI:           "mongodb://localhost:27017",
		MongoDatabase:      "kanban_test",
		JWTSecret:          "0123456789abcdef0123456789abcdef",
		JWTTTL:             time.Hour,
		CORSAllowedOrigins: []string{"http://localhost:5173"},
		AdminEmail:         "root@test.com",
		AdminPassword:      "root-password",
		AdminUsername:      "root",
		AuditLogAuth:       "db",
		AuditLogAdmin:      "db",
		LoginRateLimit:     5,
		LoginRateWindow:    time.Minute,
	}
}

func TestEnsureAdmin_CreatesNew(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoDatabase: db}
	if err := ensureAdmin(ctx, deps, nil, testAppConfig(), testLogger()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}

	var user models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"email": "root@test.com"}).Decode(&user); err != nil {
		t.Fatalf("failed to find created user: %v", err)
	}
	if !user.IsAdmin {
		t.Error("expected created user to be admin")
	}
	if user.Username != "root" {
		t.Errorf("username: got %q, want %q", user.Username, "root")
	}
	if !userstore.CheckPassword(user, "root-password") {
		t.Error("expected admin_password to be the login password")
	}
}

func TestEnsureAdmin_PromotesExisting(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	existing := fx.CreateUser(ctx, "root@test.com")

	deps := DBDeps{MongoDatabase: db}
	if err := ensureAdmin(ctx, deps, nil, testAppConfig(), testLogger()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}

	var user models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": existing.ID}).Decode(&user); err != nil {
		t.Fatalf("failed to find user: %v", err)
	}
	if !user.IsAdmin {
		t.Error("expected existing user to be promoted")
	}
	// Promotion keeps the user's own password.
	if !userstore.CheckPassword(user, testutil.FixturePassword) {
		t.Error("expected existing password to survive promotion")
	}
	if n := fx.Count(ctx, "users", bson.M{}); n != 1 {
		t.Errorf("users: got %d, want 1", n)
	}
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoDatabase: db}
	for i := 0; i < 3; i++ {
		if err := ensureAdmin(ctx, deps, nil, testAppConfig(), testLogger()); err != nil {
			t.Fatalf("ensureAdmin call %d failed: %v", i, err)
		}
	}
	count, err := db.Collection("users").CountDocuments(ctx, bson.M{"email": "root@test.com"})
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 admin user, got %d", count)
	}
}

func TestEnsureAdmin_SkippedWithoutCredentials(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cfg := testAppConfig()
	cfg.AdminPassword = ""
	if err := ensureAdmin(ctx, DBDeps{MongoDatabase: db}, nil, cfg, testLogger()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}
	count, _ := db.Collection("users").CountDocuments(ctx, bson.M{})
	if count != 0 {
		t.Errorf("expected no users, got %d", count)
	}
}

func TestValidateConfig(t *testing.T) {
	prod := &config.CoreConfig{Env: "prod"}
	dev := &config.CoreConfig{Env: "dev"}

	tests := []struct {
		name    string
		core    *config.CoreConfig
		mutate  func(*AppConfig)
		wantErr string
	}{
		{"valid", prod, func(*AppConfig) {}, ""},
		{"bad uri", prod, func(c *AppConfig) { c.MongoURI = "not-a-mongo-uri" }, "invalid MongoDB URI"},
		{"empty secret", dev, func(c *AppConfig) { c.JWTSecret = "  " }, "jwt_secret is required"},
		{"short secret in prod", prod, func(c *AppConfig) { c.JWTSecret = "short" }, "at least 32 bytes"},
		{"short secret in dev", dev, func(c *AppConfig) { c.JWTSecret = "short" }, ""},
		{"zero ttl", prod, func(c *AppConfig) { c.JWTTTL = 0 }, "jwt_ttl"},
		{"bad audit mode", prod, func(c *AppConfig) { c.AuditLogAdmin = "loud" }, "audit_log_admin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testAppConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(tt.core, cfg, testLogger())
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error: got %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" http://a.test, ,http://b.test ,")
	if len(got) != 2 || got[0] != "http://a.test" || got[1] != "http://b.test" {
		t.Errorf("splitList: got %q", got)
	}
	if splitList("") != nil {
		t.Error("splitList(\"\") should be nil")
	}
}

// TestRouter_EndToEnd drives the mounted API the way the web client does:
// register, then create a board and a column with the returned token.
func TestRouter_EndToEnd(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}

	cfg := testAppConfig()
	s, err := newServices(cfg, DBDeps{MongoDatabase: db}, testLogger())
	if err != nil {
		t.Fatalf("newServices: %v", err)
	}
	t.Cleanup(s.Limiter.Stop)
	h := buildRouter(cfg, DBDeps{MongoDatabase: db}, s, testLogger())

	call := func(method, path, token, body string) *httptest.ResponseRecorder {
		t.Helper()
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := call(http.MethodPost, "/api/auth/register", "", `{"username":"ada","email":"ada@test.com","password":"long-enough"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: got %d, body %s", rec.Code, rec.Body.String())
	}
	var reg struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &reg); err != nil || reg.Token == "" {
		t.Fatalf("register body: %s", rec.Body.String())
	}

	if rec := call(http.MethodGet, "/api/boards", "", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("boards without token: got %d, want 401", rec.Code)
	}
	if rec := call(http.MethodGet, "/api/boards", "garbage", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("boards with bad token: got %d, want 401", rec.Code)
	}

	rec = call(http.MethodPost, "/api/boards", reg.Token, `{"name":"Work"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create board: got %d, body %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Board models.Board `json:"board"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("board body: %v", err)
	}

	rec = call(http.MethodPost, "/api/columns", reg.Token, `{"boardId":"`+created.Board.ID.Hex()+`","name":"Todo"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create column: got %d, body %s", rec.Code, rec.Body.String())
	}

	rec = call(http.MethodGet, "/api/boards/"+created.Board.ID.Hex(), reg.Token, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"Todo"`) {
		t.Errorf("get board: got %d, body %s", rec.Code, rec.Body.String())
	}

	// Non-admins are turned away from the admin surface.
	if rec := call(http.MethodGet, "/api/admin/all-users", reg.Token, ""); rec.Code != http.StatusForbidden {
		t.Errorf("admin as user: got %d, want 403", rec.Code)
	}

	if rec := call(http.MethodGet, "/health", "", ""); rec.Code != http.StatusOK {
		t.Errorf("health: got %d", rec.Code)
	}
	rec = call(http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "kanban_") {
		t.Errorf("metrics: got %d", rec.Code)
	}
	if rec := call(http.MethodGet, "/api/nope", reg.Token, ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown route: got %d, want 404", rec.Code)
	}
}
