// Package pgstore is the PostgreSQL backend: donor, admin user and session
// stores on a pgx connection pool, plus the embedded schema migrations.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/donorhub/internal/app/system/apperr"
	"github.com/dalemusser/donorhub/internal/domain/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// Open creates a pool for dsn and verifies it with a ping.
func Open(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// likePattern escapes LIKE metacharacters so q matches literally.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

const donorColumns = `id, first_name, last_name, national_id, birth_date, address, phone,
	has_donated_before, is_marrow_donor, created_at, updated_at`

func scanDonor(row pgx.Row) (models.Donor, error) {
	var d models.Donor
	err := row.Scan(&d.ID, &d.FirstName, &d.LastName, &d.NationalID, &d.BirthDate,
		&d.Address, &d.Phone, &d.HasDonatedBefore, &d.IsMarrowDonor, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return models.Donor{}, err
	}
	d.BirthDate = d.BirthDate.UTC()
	d.CreatedAt = d.CreatedAt.UTC()
	d.UpdatedAt = d.UpdatedAt.UTC()
	return d, nil
}

// DonorStore is the PostgreSQL donor repository.
type DonorStore struct {
	pool *pgxpool.Pool
}

func NewDonorStore(pool *pgxpool.Pool) *DonorStore {
	return &DonorStore{pool: pool}
}

func (s *DonorStore) Create(ctx context.Context, in models.DonorInput) (models.Donor, error) {
	ts := now()
	row := s.pool.QueryRow(ctx, `
		INSERT INTO donors (first_name, last_name, national_id, birth_date, address, phone,
			has_donated_before, is_marrow_donor, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING `+donorColumns,
		in.FirstName, in.LastName, in.NationalID, in.BirthDate, in.Address, in.Phone,
		in.HasDonatedBefore, in.IsMarrowDonor, ts)
	d, err := scanDonor(row)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Donor{}, apperr.NewDuplicateNationalID()
		}
		return models.Donor{}, apperr.Wrap("donors.create", err)
	}
	return d, nil
}

func (s *DonorStore) Update(ctx context.Context, id int64, in models.DonorInput) (models.Donor, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE donors SET first_name = $2, last_name = $3, national_id = $4, birth_date = $5,
			address = $6, phone = $7, has_donated_before = $8, is_marrow_donor = $9, updated_at = $10
		WHERE id = $1
		RETURNING `+donorColumns,
		id, in.FirstName, in.LastName, in.NationalID, in.BirthDate, in.Address, in.Phone,
		in.HasDonatedBefore, in.IsMarrowDonor, now())
	d, err := scanDonor(row)
	switch {
	case err == nil:
		return d, nil
	case errors.Is(err, pgx.ErrNoRows):
		return models.Donor{}, apperr.ErrNotFound
	case isUniqueViolation(err):
		return models.Donor{}, apperr.NewDuplicateNationalID()
	default:
		return models.Donor{}, apperr.Wrap("donors.update", err)
	}
}

func (s *DonorStore) GetByID(ctx context.Context, id int64) (models.Donor, error) {
	d, err := scanDonor(s.pool.QueryRow(ctx, `SELECT `+donorColumns+` FROM donors WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Donor{}, apperr.ErrNotFound
	}
	if err != nil {
		return models.Donor{}, apperr.Wrap("donors.get", err)
	}
	return d, nil
}

// Search matches q case-insensitively as a substring of first name, last
// name or national ID. An empty q lists everything. Newest first.
func (s *DonorStore) Search(ctx context.Context, q string) ([]models.Donor, error) {
	q = strings.TrimSpace(q)

	var (
		rows pgx.Rows
		err  error
	)
	if q == "" {
		rows, err = s.pool.Query(ctx, `SELECT `+donorColumns+` FROM donors ORDER BY created_at DESC, id DESC`)
	} else {
		rows, err = s.pool.Query(ctx, `
			SELECT `+donorColumns+` FROM donors
			WHERE first_name ILIKE $1 ESCAPE '\' OR last_name ILIKE $1 ESCAPE '\' OR national_id ILIKE $1 ESCAPE '\'
			ORDER BY created_at DESC, id DESC`, likePattern(q))
	}
	if err != nil {
		return nil, apperr.Wrap("donors.search", err)
	}
	defer rows.Close()

	out := []models.Donor{}
	for rows.Next() {
		d, err := scanDonor(rows)
		if err != nil {
			return nil, apperr.Wrap("donors.search: scan", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap("donors.search", err)
	}
	return out, nil
}

// Delete removes the donor. Deleting a missing id is not an error.
func (s *DonorStore) Delete(ctx context.Context, id int64) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM donors WHERE id = $1`, id)
	return apperr.Wrap("donors.delete", err)
}

// AdminUserStore holds admin accounts.
type AdminUserStore struct {
	pool *pgxpool.Pool
}

func NewAdminUserStore(pool *pgxpool.Pool) *AdminUserStore {
	return &AdminUserStore{pool: pool}
}

func (s *AdminUserStore) Create(ctx context.Context, username, passwordHash string) (models.AdminUser, error) {
	u := models.AdminUser{Username: username, PasswordHash: passwordHash, CreatedAt: now()}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO admin_users (username, password_hash, created_at) VALUES ($1, $2, $3) RETURNING id`,
		username, passwordHash, u.CreatedAt).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return models.AdminUser{}, apperr.ErrAlreadyExists
		}
		return models.AdminUser{}, apperr.Wrap("admin_users.create", err)
	}
	return u, nil
}

func (s *AdminUserStore) GetByUsername(ctx context.Context, username string) (models.AdminUser, error) {
	return s.getOne(ctx, `WHERE username = $1`, username)
}

func (s *AdminUserStore) GetByID(ctx context.Context, id int64) (models.AdminUser, error) {
	return s.getOne(ctx, `WHERE id = $1`, id)
}

func (s *AdminUserStore) getOne(ctx context.Context, where string, arg any) (models.AdminUser, error) {
	var u models.AdminUser
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at FROM admin_users `+where, arg).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.AdminUser{}, apperr.ErrNotFound
	}
	if err != nil {
		return models.AdminUser{}, apperr.Wrap("admin_users.get", err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}

// SessionStore holds server-side session records.
type SessionStore struct {
	pool *pgxpool.Pool
}

func NewSessionStore(pool *pgxpool.Pool) *SessionStore {
	return &SessionStore{pool: pool}
}

// Create inserts sess and prunes expired rows in the same transaction.
func (s *SessionStore) Create(ctx context.Context, sess models.Session) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM admin_sessions WHERE expires_at <= now()`); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO admin_sessions (token, user_id, username, ip, user_agent, created_at, expires_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			sess.Token, sess.UserID, sess.Username, sess.IP, sess.UserAgent, sess.CreatedAt, sess.ExpiresAt)
		return err
	})
	return apperr.Wrap("sessions.create", err)
}

// Get returns the live session for token; missing and expired are both ErrNotFound.
func (s *SessionStore) Get(ctx context.Context, token string) (models.Session, error) {
	var sess models.Session
	err := s.pool.QueryRow(ctx, `
		SELECT token, user_id, username, ip, user_agent, created_at, expires_at
		FROM admin_sessions WHERE token = $1 AND expires_at > now()`, token).
		Scan(&sess.Token, &sess.UserID, &sess.Username, &sess.IP, &sess.UserAgent, &sess.CreatedAt, &sess.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Session{}, apperr.ErrNotFound
	}
	if err != nil {
		return models.Session{}, apperr.Wrap("sessions.get", err)
	}
	return sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM admin_sessions WHERE token = $1`, token)
	return apperr.Wrap("sessions.delete", err)
}

// DeleteExpired removes rows that expired at or before now.
func (s *SessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM admin_sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, apperr.Wrap("sessions.delete_expired", err)
	}
	return tag.RowsAffected(), nil
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
