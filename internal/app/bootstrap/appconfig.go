// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// Store backends.
const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Session record stores. "db" keeps sessions in the active store backend.
const (
	SessionStoreDB     = "db"
	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"
)

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig handles the
// framework-level settings (ports, TLS, logging, CORS); AppConfig is where
// everything specific to the donor registry lives.
type AppConfig struct {
	// Store backend: "mongo", "postgres" or "memory".
	StoreBackend string

	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// PostgreSQL connection string (only used when StoreBackend is "postgres")
	PostgresDSN string

	// Session management configuration
	SessionStore  string // "db", "redis" or "memory"
	RedisURL      string // redis://host:6379/0 (only used when SessionStore is "redis")
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name (default: auth_session)
	SessionDomain string // Cookie domain (blank means current host)
	SessionTTL    time.Duration
	SessionSecure bool // Mark the cookie Secure; disable only for plain-http development

	SessionCleanupInterval time.Duration

	// Admin authentication
	BcryptCost             int
	LoginRateLimit         int           // attempts per client IP per window; 0 disables
	LoginRateWindow        time.Duration
	BootstrapAdminUsername string // created at startup when both are set
	BootstrapAdminPassword string

	// Audit logging: "all", "db", "log" or "off" per category
	AuditLogAuth  string
	AuditLogAdmin string

	// Store call timeouts
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration

	// Export
	ExportTitle string
}
