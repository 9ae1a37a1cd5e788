package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dalemusser/donorhub/internal/app/store/audit"
	"github.com/dalemusser/donorhub/internal/app/system/apperr"
	"github.com/dalemusser/donorhub/internal/app/system/auditlog"
	"github.com/dalemusser/donorhub/internal/app/system/authutil"
	"github.com/dalemusser/donorhub/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserStore holds admin accounts.
type UserStore interface {
	Create(ctx context.Context, username, passwordHash string) (models.AdminUser, error)
	GetByUsername(ctx context.Context, username string) (models.AdminUser, error)
}

// SessionStore holds server-side session records. Get returns
// apperr.ErrNotFound for missing or expired tokens.
type SessionStore interface {
	Create(ctx context.Context, sess models.Session) error
	Get(ctx context.Context, token string) (models.Session, error)
	Delete(ctx context.Context, token string) error
}

// GateConfig tunes the gate. Zero values take the defaults.
type GateConfig struct {
	SessionTTL time.Duration
	BcryptCost int
}

// Credentials is one login attempt.
type Credentials struct {
	Username  string
	Password  string
	IP        string
	UserAgent string
}

// Gate verifies admin credentials and manages session records.
type Gate struct {
	users    UserStore
	sessions SessionStore
	audit    *auditlog.Logger
	cfg      GateConfig
	log      *zap.Logger
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewGate(users UserStore, sessions SessionStore, audit *auditlog.Logger, cfg GateConfig, log *zap.Logger) *Gate {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	return &Gate{users: users, sessions: sessions, audit: audit, cfg: cfg, log: log, now: time.Now}
}

// Login checks c and, on success, stores a new session record. Unknown
// users and wrong passwords both yield apperr.ErrInvalidCredentials.
func (g *Gate) Login(ctx context.Context, c Credentials) (models.Session, error) {
	username := authutil.NormalizeUsername(c.Username)

	ve := apperr.NewValidationError()
	if username == "" {
		ve.Add("username", "Username is required.")
	}
	if c.Password == "" {
		ve.Add("password", "Password is required.")
	}
	if !ve.Empty() {
		return models.Session{}, ve
	}

	actor := auditlog.Actor{Username: username, IP: c.IP, UserAgent: c.UserAgent}

	u, err := g.users.GetByUsername(ctx, username)
	if errors.Is(err, apperr.ErrNotFound) {
		// Burn the same bcrypt time as a real comparison.
		authutil.CheckPassword(c.Password, g.dummy())
		g.audit.LoginFailed(ctx, actor, audit.EventLoginFailedUserNotFound, "unknown username")
		return models.Session{}, apperr.ErrInvalidCredentials
	}
	if err != nil {
		return models.Session{}, err
	}

	if !authutil.CheckPassword(c.Password, u.PasswordHash) {
		g.audit.LoginFailed(ctx, actor, audit.EventLoginFailedWrongPassword, "wrong password")
		return models.Session{}, apperr.ErrInvalidCredentials
	}

	now := g.now().UTC().Truncate(time.Millisecond)
	sess := models.Session{
		Token:     uuid.NewString(),
		UserID:    u.ID,
		Username:  u.Username,
		IP:        c.IP,
		UserAgent: c.UserAgent,
		CreatedAt: now,
		ExpiresAt: now.Add(g.cfg.SessionTTL),
	}
	if err := g.sessions.Create(ctx, sess); err != nil {
		return models.Session{}, err
	}

	g.audit.LoginSuccess(ctx, actor)
	return sess, nil
}

// Authenticate resolves token to its user. It satisfies Resolver.
func (g *Gate) Authenticate(ctx context.Context, token string) (*SessionUser, error) {
	sess, err := g.sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if sess.Expired(g.now()) {
		return nil, apperr.ErrNotFound
	}
	return &SessionUser{ID: sess.UserID, Username: sess.Username}, nil
}

// Logout deletes the session record for token. An unknown token is not an error.
func (g *Gate) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if sess, err := g.sessions.Get(ctx, token); err == nil {
		g.audit.Logout(ctx, auditlog.Actor{Username: sess.Username, IP: sess.IP, UserAgent: sess.UserAgent})
	}
	return g.sessions.Delete(ctx, token)
}

// CreateUser stores a new admin with a bcrypt hash of password.
func (g *Gate) CreateUser(ctx context.Context, username, password string) (models.AdminUser, error) {
	username = authutil.NormalizeUsername(username)

	ve := apperr.NewValidationError()
	if err := authutil.ValidateUsername(username); err != nil {
		ve.Add("username", err.Error())
	}
	if err := authutil.ValidatePassword(password); err != nil {
		ve.Add("password", err.Error())
	}
	if !ve.Empty() {
		return models.AdminUser{}, ve
	}

	hash, err := authutil.HashPassword(password, g.cfg.BcryptCost)
	if err != nil {
		return models.AdminUser{}, err
	}
	u, err := g.users.Create(ctx, username, hash)
	if err != nil {
		return models.AdminUser{}, err
	}

	g.audit.AdminCreated(ctx, username)
	if g.log != nil {
		g.log.Info("admin user created", zap.String("username", username))
	}
	return u, nil
}

func (g *Gate) dummy() string {
	g.dummyOnce.Do(func() {
		cost := g.cfg.BcryptCost
		if cost < bcrypt.DefaultCost {
			cost = bcrypt.DefaultCost
		}
		h, err := bcrypt.GenerateFromPassword([]byte("donorhub-timing-equaliser"), cost)
		if err == nil {
			g.dummyHash = string(h)
		}
	})
	return g.dummyHash
}
