// internal/app/store/adminusers/store.go
package adminusers

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/donorhub/internal/app/store/sequences"
	"github.com/dalemusser/donorhub/internal/app/system/apperr"
	"github.com/dalemusser/donorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const Collection = "admin_users"

// Store manages admin accounts in MongoDB. Usernames are stored
// normalised and kept unique by the uniq_admin_users_username index.
type Store struct {
	c   *mongo.Collection
	seq *sequences.Store
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection), seq: sequences.New(db)}
}

// Create inserts a new admin. apperr.ErrAlreadyExists when the username is taken.
func (s *Store) Create(ctx context.Context, username, passwordHash string) (models.AdminUser, error) {
	id, err := s.seq.Next(ctx, Collection)
	if err != nil {
		return models.AdminUser{}, apperr.Wrap("admin_users.create: next id", err)
	}
	u := models.AdminUser{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.AdminUser{}, apperr.ErrAlreadyExists
		}
		return models.AdminUser{}, apperr.Wrap("admin_users.create", err)
	}
	return u, nil
}

func (s *Store) GetByUsername(ctx context.Context, username string) (models.AdminUser, error) {
	return s.findOne(ctx, bson.M{"username": username})
}

func (s *Store) GetByID(ctx context.Context, id int64) (models.AdminUser, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (models.AdminUser, error) {
	var u models.AdminUser
	err := s.c.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.AdminUser{}, apperr.ErrNotFound
	}
	if err != nil {
		return models.AdminUser{}, apperr.Wrap("admin_users.get", err)
	}
	return u, nil
}
