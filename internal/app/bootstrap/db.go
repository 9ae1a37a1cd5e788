// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	healthfeature "github.com/dalemusser/donorhub/internal/app/features/health"
	"github.com/dalemusser/donorhub/internal/app/store/adminusers"
	"github.com/dalemusser/donorhub/internal/app/store/audit"
	donorstore "github.com/dalemusser/donorhub/internal/app/store/donors"
	memstore "github.com/dalemusser/donorhub/internal/app/store/memory"
	pgstore "github.com/dalemusser/donorhub/internal/app/store/postgres"
	"github.com/dalemusser/donorhub/internal/app/store/redissessions"
	"github.com/dalemusser/donorhub/internal/app/store/sessions"
	"github.com/dalemusser/donorhub/internal/app/system/migrations"
	"github.com/dalemusser/donorhub/internal/app/system/timeouts"
	"github.com/dalemusser/donorhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens the configured store backend and session store and
// builds the stores on top of them.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	timeouts.Configure(timeouts.Config{Short: appCfg.TimeoutShort, Medium: appCfg.TimeoutMedium})

	var deps DBDeps
	switch appCfg.StoreBackend {
	case BackendMongo:
		if err := connectMongo(ctx, appCfg, &deps, logger); err != nil {
			return DBDeps{}, err
		}
	case BackendPostgres:
		if err := connectPostgres(ctx, appCfg, &deps, logger); err != nil {
			return DBDeps{}, err
		}
	case BackendMemory:
		deps.Donors = memstore.NewDonors()
		deps.AdminUsers = memstore.NewAdminUsers()
		deps.Sessions = memstore.NewSessions()
		deps.DatabasePinger = healthfeature.PingFunc(func(context.Context) error { return nil })
		logger.Warn("using in-memory store; data is lost on restart")
	default:
		return DBDeps{}, fmt.Errorf("unknown store_backend %q", appCfg.StoreBackend)
	}

	switch appCfg.SessionStore {
	case SessionStoreRedis:
		pctx, cancel := context.WithTimeout(ctx, timeouts.Ping())
		defer cancel()
		client, err := redissessions.Open(pctx, appCfg.RedisURL)
		if err != nil {
			closeDeps(context.Background(), deps, logger)
			return DBDeps{}, fmt.Errorf("connect redis: %w", err)
		}
		store := redissessions.New(client)
		deps.Redis = client
		deps.Sessions = store
		deps.SessionPinger = store
		logger.Info("session records in redis")
	case SessionStoreMemory:
		store := memstore.NewSessions()
		deps.Sessions = store
		logger.Warn("session records in memory; sign-ins are lost on restart")
	}

	if p, ok := deps.Sessions.(workers.ExpiredPurger); ok {
		deps.SessionCleanup = workers.NewSessionCleanup(p, logger, appCfg.SessionCleanupInterval)
	}

	return deps, nil
}

func connectMongo(ctx context.Context, appCfg AppConfig, deps *DBDeps, logger *zap.Logger) error {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	pctx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(appCfg.MongoDatabase)
	deps.MongoClient = client
	deps.MongoDatabase = db
	deps.Donors = donorstore.New(db)
	deps.AdminUsers = adminusers.New(db)
	deps.Sessions = sessions.New(db)
	deps.AuditSink = audit.New(db)
	deps.DatabasePinger = healthfeature.MongoPinger(client)

	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))
	return nil
}

func connectPostgres(ctx context.Context, appCfg AppConfig, deps *DBDeps, logger *zap.Logger) error {
	pctx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()

	pool, err := pgstore.Open(pctx, appCfg.PostgresDSN)
	if err != nil {
		return err
	}

	deps.Postgres = pool
	deps.Donors = pgstore.NewDonorStore(pool)
	deps.AdminUsers = pgstore.NewAdminUserStore(pool)
	deps.Sessions = pgstore.NewSessionStore(pool)
	deps.DatabasePinger = pool

	logger.Info("connected to PostgreSQL")
	return nil
}

// EnsureSchema applies the pending migrations of the active backend.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Migrate())
	defer cancel()

	switch {
	case deps.MongoDatabase != nil:
		n, err := migrations.Run(ctx, deps.MongoDatabase, logger)
		if err != nil {
			return fmt.Errorf("mongo migrations: %w", err)
		}
		logger.Info("mongo schema up to date", zap.Int("applied", n))
	case deps.Postgres != nil:
		n, err := pgstore.Migrate(ctx, deps.Postgres, logger)
		if err != nil {
			return fmt.Errorf("postgres migrations: %w", err)
		}
		logger.Info("postgres schema up to date", zap.Int("applied", n))
	}
	return nil
}
