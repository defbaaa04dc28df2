// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework side (ports, TLS, log level); everything the kanban API itself
// needs lives here and is passed to every lifecycle hook.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer tokens
	JWTSecret string        // HS256 signing secret (at least 32 bytes outside dev)
	JWTTTL    time.Duration // token lifetime
	JWTIssuer string        // optional iss claim

	// Comma separated origins allowed to call the API from a browser.
	CORSAllowedOrigins []string

	// Bootstrap admin, ensured at startup when email and password are set.
	AdminEmail    string
	AdminPassword string
	AdminUsername string

	// Audit logging: "all", "db", "log" or "off"
	AuditLogAuth  string
	AuditLogAdmin string

	// Background order repair; 0 disables the worker.
	OrderRepairInterval time.Duration
	OrderRepairBatch    int64

	// Login throttling per email (the per-IP limit is twice this).
	LoginRateLimit  int
	LoginRateWindow time.Duration
}
