// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	healthfeature "github.com/dalemusser/donorhub/internal/app/features/health"
	"github.com/dalemusser/donorhub/internal/app/registry"
	"github.com/dalemusser/donorhub/internal/app/system/auditlog"
	"github.com/dalemusser/donorhub/internal/app/system/auth"
	"github.com/dalemusser/donorhub/internal/app/system/workers"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds the backend clients and the stores built on them. Only the
// clients for the configured backends are set.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	Postgres      *pgxpool.Pool
	Redis         *redis.Client

	Donors     registry.DonorRepository
	AdminUsers auth.UserStore
	Sessions   auth.SessionStore
	AuditSink  auditlog.Sink // nil when the backend has no audit collection

	DatabasePinger healthfeature.Pinger
	SessionPinger  healthfeature.Pinger // nil when sessions live in the database

	// SessionCleanup sweeps stores that do not expire records on their own.
	SessionCleanup *workers.SessionCleanup
}
