// Package redissessions keeps session records in Redis, one JSON value per
// token with a TTL matching the session's expiry.
package redissessions

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dalemusser/donorhub/internal/app/system/apperr"
	"github.com/dalemusser/donorhub/internal/domain/models"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "donorhub:session:"

type Store struct {
	client *redis.Client
}

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// Open parses a redis:// URL and verifies the server with a ping.
func Open(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func key(token string) string {
	return keyPrefix + token
}

func (s *Store) Create(ctx context.Context, sess models.Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	b, err := json.Marshal(sess)
	if err != nil {
		return apperr.Wrap("sessions.create: encode", err)
	}
	return apperr.Wrap("sessions.create", s.client.Set(ctx, key(sess.Token), b, ttl).Err())
}

func (s *Store) Get(ctx context.Context, token string) (models.Session, error) {
	b, err := s.client.Get(ctx, key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Session{}, apperr.ErrNotFound
	}
	if err != nil {
		return models.Session{}, apperr.Wrap("sessions.get", err)
	}
	var sess models.Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return models.Session{}, apperr.Wrap("sessions.get: decode", err)
	}
	if sess.Expired(time.Now()) {
		return models.Session{}, apperr.ErrNotFound
	}
	return sess, nil
}

func (s *Store) Delete(ctx context.Context, token string) error {
	return apperr.Wrap("sessions.delete", s.client.Del(ctx, key(token)).Err())
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
