// Package memstore holds process-local stores used by the "memory" backend
// and by handler and service tests. Each store guards its maps with one
// mutex, so uniqueness checks and writes are atomic.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/donorhub/internal/app/system/apperr"
	"github.com/dalemusser/donorhub/internal/domain/models"
)

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// Donors is an in-memory donor repository.
type Donors struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]models.Donor
	byDNI  map[string]int64
}

func NewDonors() *Donors {
	return &Donors{byID: map[int64]models.Donor{}, byDNI: map[string]int64{}}
}

func (s *Donors) Create(ctx context.Context, in models.DonorInput) (models.Donor, error) {
	if err := ctx.Err(); err != nil {
		return models.Donor{}, apperr.Wrap("donors.create", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byDNI[in.NationalID]; taken {
		return models.Donor{}, apperr.NewDuplicateNationalID()
	}
	s.nextID++
	ts := now()
	d := models.Donor{ID: s.nextID, CreatedAt: ts, UpdatedAt: ts}
	in.Apply(&d)
	s.byID[d.ID] = d
	s.byDNI[d.NationalID] = d.ID
	return d, nil
}

func (s *Donors) Update(ctx context.Context, id int64, in models.DonorInput) (models.Donor, error) {
	if err := ctx.Err(); err != nil {
		return models.Donor{}, apperr.Wrap("donors.update", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.byID[id]
	if !ok {
		return models.Donor{}, apperr.ErrNotFound
	}
	if owner, taken := s.byDNI[in.NationalID]; taken && owner != id {
		return models.Donor{}, apperr.NewDuplicateNationalID()
	}
	delete(s.byDNI, d.NationalID)
	in.Apply(&d)
	d.UpdatedAt = now()
	s.byID[id] = d
	s.byDNI[d.NationalID] = id
	return d, nil
}

func (s *Donors) GetByID(ctx context.Context, id int64) (models.Donor, error) {
	if err := ctx.Err(); err != nil {
		return models.Donor{}, apperr.Wrap("donors.get", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.byID[id]
	if !ok {
		return models.Donor{}, apperr.ErrNotFound
	}
	return d, nil
}

func (s *Donors) Search(ctx context.Context, q string) ([]models.Donor, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Wrap("donors.search", err)
	}
	q = strings.ToLower(strings.TrimSpace(q))

	s.mu.Lock()
	out := make([]models.Donor, 0, len(s.byID))
	for _, d := range s.byID {
		if q == "" ||
			strings.Contains(strings.ToLower(d.FirstName), q) ||
			strings.Contains(strings.ToLower(d.LastName), q) ||
			strings.Contains(d.NationalID, q) {
			out = append(out, d)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Donors) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return apperr.Wrap("donors.delete", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if d, ok := s.byID[id]; ok {
		delete(s.byDNI, d.NationalID)
		delete(s.byID, id)
	}
	return nil
}

// AdminUsers is an in-memory admin account store.
type AdminUsers struct {
	mu     sync.Mutex
	nextID int64
	byName map[string]models.AdminUser
}

func NewAdminUsers() *AdminUsers {
	return &AdminUsers{byName: map[string]models.AdminUser{}}
}

func (s *AdminUsers) Create(_ context.Context, username, passwordHash string) (models.AdminUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byName[username]; taken {
		return models.AdminUser{}, apperr.ErrAlreadyExists
	}
	s.nextID++
	u := models.AdminUser{ID: s.nextID, Username: username, PasswordHash: passwordHash, CreatedAt: now()}
	s.byName[username] = u
	return u, nil
}

func (s *AdminUsers) GetByUsername(_ context.Context, username string) (models.AdminUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byName[username]
	if !ok {
		return models.AdminUser{}, apperr.ErrNotFound
	}
	return u, nil
}

func (s *AdminUsers) GetByID(_ context.Context, id int64) (models.AdminUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.byName {
		if u.ID == id {
			return u, nil
		}
	}
	return models.AdminUser{}, apperr.ErrNotFound
}

// Sessions is an in-memory session record store.
type Sessions struct {
	mu      sync.Mutex
	byToken map[string]models.Session
	now     func() time.Time
}

func NewSessions() *Sessions {
	return &Sessions{byToken: map[string]models.Session{}, now: time.Now}
}

func (s *Sessions) Create(_ context.Context, sess models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byToken[sess.Token] = sess
	return nil
}

func (s *Sessions) Get(_ context.Context, token string) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byToken[token]
	if !ok {
		return models.Session{}, apperr.ErrNotFound
	}
	if sess.Expired(s.now()) {
		delete(s.byToken, token)
		return models.Session{}, apperr.ErrNotFound
	}
	return sess, nil
}

func (s *Sessions) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byToken, token)
	return nil
}

// DeleteExpired drops every record that expired at or before now.
func (s *Sessions) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for tok, sess := range s.byToken {
		if sess.Expired(now) {
			delete(s.byToken, tok)
			n++
		}
	}
	return n, nil
}

// Ping always succeeds.
func (s *Sessions) Ping(context.Context) error {
	return nil
}
