// internal/app/store/sessions/store.go
package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/donorhub/internal/app/system/apperr"
	"github.com/dalemusser/donorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store keeps server-side session records in MongoDB. The TTL index on
// expires_at (migration 3) lets the server reap expired records; Get also
// rejects them so expiry does not depend on the reaper's schedule.
type Store struct {
	c   *mongo.Collection
	now func() time.Time
}

// New creates a new sessions Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("sessions"), now: time.Now}
}

// Create stores sess, keyed by its token.
func (s *Store) Create(ctx context.Context, sess models.Session) error {
	if _, err := s.c.InsertOne(ctx, sess); err != nil {
		return apperr.Wrap("sessions.create", err)
	}
	return nil
}

// Get returns the live session for token, or apperr.ErrNotFound when it is
// missing or expired.
func (s *Store) Get(ctx context.Context, token string) (models.Session, error) {
	var sess models.Session
	err := s.c.FindOne(ctx, bson.M{"_id": token}).Decode(&sess)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Session{}, apperr.ErrNotFound
	}
	if err != nil {
		return models.Session{}, apperr.Wrap("sessions.get", err)
	}
	if sess.Expired(s.now()) {
		return models.Session{}, apperr.ErrNotFound
	}
	return sess, nil
}

// Delete removes the session. Missing tokens are not an error.
func (s *Store) Delete(ctx context.Context, token string) error {
	if _, err := s.c.DeleteOne(ctx, bson.M{"_id": token}); err != nil {
		return apperr.Wrap("sessions.delete", err)
	}
	return nil
}

// Ping checks the backing database.
func (s *Store) Ping(ctx context.Context) error {
	return s.c.Database().Client().Ping(ctx, nil)
}
