// Command migrate applies the embedded PostgreSQL migrations and exits.
//
// It reads DONORHUB_POSTGRES_DSN (or DATABASE_URL) from the environment.
package main

import (
	"context"
	"os"

	pgstore "github.com/dalemusser/donorhub/internal/app/store/postgres"
	"github.com/dalemusser/donorhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	dsn := os.Getenv("DONORHUB_POSTGRES_DSN")
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		log.Fatal("DONORHUB_POSTGRES_DSN is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Migrate())
	defer cancel()

	pool, err := pgstore.Open(ctx, dsn)
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	n, err := pgstore.Migrate(ctx, pool, log)
	if err != nil {
		log.Fatal("migrations failed", zap.Int("applied", n), zap.Error(err))
	}
	log.Info("migrations complete", zap.Int("applied", n))
}
