package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/donorhub/internal/app/system/apperr"
	"github.com/dalemusser/donorhub/internal/app/system/httpjson"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session constants                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	// DefaultSessionName is the cookie name used when none is configured.
	DefaultSessionName = "auth_session"

	tokenKey = "token"

	msgSignIn = "Please sign in to continue."
)

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is what LoadSessionUser injects into r.Context().
type SessionUser struct {
	ID       int64
	Username string
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & “found?” flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// WithTestUser attaches u to the request context, bypassing the cookie.
// Intended for handler tests.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

/*─────────────────────────────────────────────────────────────────────────────*
| SessionManager                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// Resolver maps a session token to its user. It returns apperr.ErrNotFound
// for unknown or expired tokens.
type Resolver func(ctx context.Context, token string) (*SessionUser, error)

// SessionManager carries the session marker: a signed cookie holding only
// an opaque token. The server-side record is looked up through a Resolver.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	ttl     time.Duration
	log     *zap.Logger
	resolve Resolver
}

// NewSessionManager builds the cookie store. In production (secure=true)
// cookies are only sent over HTTPS; use secure=false for http://localhost.
func NewSessionManager(sessionKey, name, domain string, ttl time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = DefaultSessionName
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(int(ttl.Seconds()))

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Duration("ttl", ttl))

	return &SessionManager{store: store, name: name, ttl: ttl, log: logger}, nil
}

// Name returns the cookie name.
func (sm *SessionManager) Name() string { return sm.name }

// SetResolver installs the token lookup used by LoadSessionUser.
func (sm *SessionManager) SetResolver(fn Resolver) { sm.resolve = fn }

// Issue writes the session cookie carrying token.
func (sm *SessionManager) Issue(w http.ResponseWriter, r *http.Request, token string) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values = map[interface{}]interface{}{tokenKey: token}
	sess.Options.MaxAge = int(sm.ttl.Seconds())
	return sess.Save(r, w)
}

// Token returns the token in the request's cookie, or "" when there is no
// valid cookie.
func (sm *SessionManager) Token(r *http.Request) string {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		var scErr securecookie.Error
		if errors.As(err, &scErr) && scErr.IsDecode() {
			sm.log.Debug("discarding undecodable session cookie", zap.String("ip", r.RemoteAddr))
		} else {
			sm.log.Warn("session cookie read failed", zap.Error(err))
		}
		return ""
	}
	tok, _ := sess.Values[tokenKey].(string)
	return tok
}

// Clear expires the session cookie. It is unconditional.
func (sm *SessionManager) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// LoadSessionUser injects the user into context when the cookie names a
// live session. Anything else leaves the request anonymous.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sm.resolve == nil {
			next.ServeHTTP(w, r)
			return
		}
		tok := sm.Token(r)
		if tok == "" {
			next.ServeHTTP(w, r)
			return
		}

		u, err := sm.resolve(r.Context(), tok)
		switch {
		case err == nil:
			r = withUser(r, u)
		case errors.Is(err, apperr.ErrNotFound):
		default:
			sm.log.Warn("session lookup failed", zap.Error(err))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures there is a user in context (set by LoadSessionUser).
// Anonymous callers get 401 with the JSON failure envelope.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		httpjson.Fail(w, http.StatusUnauthorized, msgSignIn)
	})
}
