// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Index names referenced elsewhere (tests, error messages).
const (
	DonorsNationalID   = "uniq_donors_dni"
	DonorsCreated      = "idx_donors_created"
	AdminUsersUsername = "uniq_admin_users_username"
	SessionsExpiry     = "ttl_sessions_expires_at"
	SessionsUser       = "idx_sessions_user"
)

/*
EnsureAll reconciles every collection's index set. Each ensure* function is
idempotent. Errors are aggregated so every problem is visible at once.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	var problems []string

	if err := EnsureDonors(ctx, db, log); err != nil {
		problems = append(problems, "donors: "+err.Error())
	}
	if err := EnsureAdminUsers(ctx, db, log); err != nil {
		problems = append(problems, "admin_users: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name               string `bson:"name"`
	Key                bson.D `bson:"key"`
	Unique             *bool  `bson:"unique,omitempty"`
	ExpireAfterSeconds *int32 `bson:"expireAfterSeconds,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolOf(p *bool) bool {
	return p != nil && *p
}

func ttlOf(p *int32) int32 {
	if p == nil {
		return -1
	}
	return *p
}

// IndexOptionsConflict (85) and IndexKeySpecsConflict (86).
func isOptionsConflictErr(err error) bool {
	var ce mongo.CommandError
	return errors.As(err, &ce) && (ce.Code == 85 || ce.Code == 86)
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel, log *zap.Logger) error {
	var errs []string

	existing := map[string]existingIndex{}
	// A missing collection lists no indexes; CreateOne below creates it.
	if cur, err := coll.Indexes().List(ctx); err == nil {
		for cur.Next(ctx) {
			var idx existingIndex
			if err := cur.Decode(&idx); err != nil {
				log.Warn("failed to decode existing index", zap.String("collection", coll.Name()), zap.Error(err))
				continue
			}
			existing[keySig(idx.Key)] = idx
		}
		cur.Close(ctx)
	}

	for _, m := range models {
		opts := m.Options
		if opts == nil {
			opts = options.Index()
		}
		desiredName := ""
		if opts.Name != nil {
			desiredName = *opts.Name
		}
		desiredSig := keySig(m.Keys.(bson.D))
		start := time.Now()

		fields := []zap.Field{
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", desiredSig),
			zap.Bool("unique", boolOf(opts.Unique)),
		}

		if ex, ok := existing[desiredSig]; ok {
			same := boolOf(ex.Unique) == boolOf(opts.Unique) &&
				ttlOf(ex.ExpireAfterSeconds) == ttlOf(opts.ExpireAfterSeconds) &&
				(desiredName == "" || ex.Name == desiredName)
			if same {
				log.Debug("reusing existing index", fields...)
				continue
			}
			// Options or name differ: drop and recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				log.Warn("drop existing index failed", append(fields, zap.Error(err))...)
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			switch {
			case mongo.IsDuplicateKeyError(err) && boolOf(opts.Unique):
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)%s",
					coll.Name(), desiredName, duplicateFinder(coll.Name(), m.Keys.(bson.D))))
			case isOptionsConflictErr(err):
				errs = append(errs, fmt.Sprintf("%s(%s): conflicting index exists: %v", coll.Name(), desiredName, err))
			default:
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
			}
			log.Warn("index ensure failed", append(fields, zap.Error(err))...)
			continue
		}
		log.Info("index ensured", append(fields, zap.Duration("took", time.Since(start)))...)
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func duplicateFinder(coll string, keys bson.D) string {
	if len(keys) != 1 {
		return ""
	}
	return fmt.Sprintf(". Example finder:\ndb.%s.aggregate([{ $group: { _id: \"$%s\", n: { $sum: 1 } } }, { $match: { n: { $gt: 1 } } }])",
		coll, keys[0].Key)
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func EnsureDonors(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("donors"), []mongo.IndexModel{
		// National ID is unique across all donors.
		{
			Keys:    bson.D{{Key: "dni", Value: 1}},
			Options: options.Index().SetName(DonorsNationalID).SetUnique(true),
		},
		// Listing and search sort.
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName(DonorsCreated),
		},
	}, log)
}

func EnsureAdminUsers(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("admin_users"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName(AdminUsersUsername).SetUnique(true),
		},
	}, log)
}

// EnsureSessions adds the TTL index that lets MongoDB reap expired session
// records, plus a per-user lookup index.
func EnsureSessions(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("sessions"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName(SessionsExpiry).SetExpireAfterSeconds(0),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName(SessionsUser),
		},
	}, log)
}
