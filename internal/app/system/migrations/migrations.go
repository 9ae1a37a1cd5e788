// Package migrations applies versioned schema changes to the MongoDB
// backend. Applied versions are recorded in schema_migrations, so each
// step runs once per database; every step is also idempotent, so two
// instances starting together may both run it safely.
package migrations

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dalemusser/donorhub/internal/app/store/audit"
	"github.com/dalemusser/donorhub/internal/app/system/indexes"
	"github.com/dalemusser/donorhub/internal/app/system/validators"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const collection = "schema_migrations"

// Migration is one schema step.
type Migration struct {
	Version int
	Name    string
	Up      func(ctx context.Context, db *mongo.Database, log *zap.Logger) error
}

// Record is a row in schema_migrations.
type Record struct {
	Version   int       `bson:"_id"`
	Name      string    `bson:"name"`
	AppliedAt time.Time `bson:"applied_at"`
}

// All lists the migrations in version order.
var All = []Migration{
	{Version: 1, Name: "collections, validators and indexes", Up: baseline},
	{Version: 2, Name: "backfill donors.is_marrow_donor", Up: backfillMarrowDonor},
	{Version: 3, Name: "session expiry index", Up: sessionIndexes},
}

// Run applies every migration newer than the database's recorded versions
// and returns how many ran.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger) (int, error) {
	return apply(ctx, db, All, log)
}

func apply(ctx context.Context, db *mongo.Database, steps []Migration, log *zap.Logger) (int, error) {
	done, err := appliedSet(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("read schema_migrations: %w", err)
	}

	sorted := append([]Migration(nil), steps...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })

	n := 0
	for _, m := range sorted {
		if done[m.Version] {
			continue
		}
		start := time.Now()
		log.Info("applying migration", zap.Int("version", m.Version), zap.String("name", m.Name))
		if err := m.Up(ctx, db, log); err != nil {
			return n, fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		rec := Record{Version: m.Version, Name: m.Name, AppliedAt: time.Now().UTC()}
		if _, err := db.Collection(collection).InsertOne(ctx, rec); err != nil && !mongo.IsDuplicateKeyError(err) {
			return n, fmt.Errorf("record migration %d: %w", m.Version, err)
		}
		log.Info("migration applied", zap.Int("version", m.Version), zap.Duration("took", time.Since(start)))
		n++
	}
	return n, nil
}

// Applied returns the recorded migrations, oldest first.
func Applied(ctx context.Context, db *mongo.Database) ([]Record, error) {
	cur, err := db.Collection(collection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Record
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func appliedSet(ctx context.Context, db *mongo.Database) (map[int]bool, error) {
	recs, err := Applied(ctx, db)
	if err != nil {
		return nil, err
	}
	set := make(map[int]bool, len(recs))
	for _, r := range recs {
		set[r.Version] = true
	}
	return set, nil
}

/* ------------------------------- steps ------------------------------- */

func baseline(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	if err := validators.EnsureAll(ctx, db, log); err != nil {
		return err
	}
	if err := indexes.EnsureAll(ctx, db, log); err != nil {
		return err
	}
	return audit.New(db).EnsureIndexes(ctx)
}

// Donors stored before the marrow-donor flag existed default to false.
func backfillMarrowDonor(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	res, err := db.Collection("donors").UpdateMany(ctx,
		bson.M{"is_marrow_donor": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"is_marrow_donor": false}},
	)
	if err != nil {
		return err
	}
	log.Info("backfilled is_marrow_donor", zap.Int64("modified", res.ModifiedCount))
	return nil
}

func sessionIndexes(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	return indexes.EnsureSessions(ctx, db, log)
}
