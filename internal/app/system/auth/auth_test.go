package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	memstore "github.com/dalemusser/donorhub/internal/app/store/memory"
	"github.com/dalemusser/donorhub/internal/app/system/apperr"
	"github.com/dalemusser/donorhub/internal/app/system/auth"
	"github.com/dalemusser/donorhub/internal/app/system/authutil"
	"github.com/dalemusser/donorhub/internal/app/system/httpjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testKey = "test-session-key-must-be-32-chars-long"

func newTestSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(testKey, "", "", 24*time.Hour, true, zap.NewNop())
	require.NoError(t, err)
	return sm
}

func newTestGate(t *testing.T) (*auth.Gate, *memstore.Sessions) {
	t.Helper()
	sessions := memstore.NewSessions()
	g := auth.NewGate(memstore.NewAdminUsers(), sessions, nil, auth.GateConfig{BcryptCost: 4}, zap.NewNop())
	_, err := g.CreateUser(context.Background(), "Admin", "correct horse")
	require.NoError(t, err)
	return g, sessions
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestNewSessionManager_EmptyKey(t *testing.T) {
	_, err := auth.NewSessionManager("", "", "", time.Hour, false, zap.NewNop())
	assert.Error(t, err)
}

func TestRequireSignedIn_NoUser_Returns401JSON(t *testing.T) {
	sm := newTestSessionManager(t)

	rec := httptest.NewRecorder()
	sm.RequireSignedIn(okHandler()).ServeHTTP(rec, httptest.NewRequest("GET", "/donors", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var env httpjson.Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Message)
}

func TestRequireSignedIn_WithUser_Passes(t *testing.T) {
	sm := newTestSessionManager(t)

	req := auth.WithTestUser(httptest.NewRequest("GET", "/donors", nil), &auth.SessionUser{ID: 1, Username: "admin"})
	rec := httptest.NewRecorder()
	sm.RequireSignedIn(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIssue_CookieAttributes(t *testing.T) {
	sm := newTestSessionManager(t)

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Issue(rec, httptest.NewRequest("POST", "/login", nil), "tok-123"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "auth_session", c.Name)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 86400, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.NotContains(t, c.Value, "tok-123", "token is encoded, not stored in clear")

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(c)
	assert.Equal(t, "tok-123", sm.Token(req))
}

func TestToken_TamperedCookieIsIgnored(t *testing.T) {
	sm := newTestSessionManager(t)

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "auth_session", Value: "garbage"})
	assert.Equal(t, "", sm.Token(req))
}

func TestClear_ExpiresCookie(t *testing.T) {
	sm := newTestSessionManager(t)

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Clear(rec, httptest.NewRequest("POST", "/logout", nil)))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].MaxAge < 0)
}

func TestGate_LoginFailuresAreIndistinguishable(t *testing.T) {
	g, _ := newTestGate(t)
	ctx := context.Background()

	_, errWrong := g.Login(ctx, auth.Credentials{Username: "admin", Password: "wrong password"})
	_, errUnknown := g.Login(ctx, auth.Credentials{Username: "ghost", Password: "whatever1"})

	require.ErrorIs(t, errWrong, apperr.ErrInvalidCredentials)
	require.ErrorIs(t, errUnknown, apperr.ErrInvalidCredentials)
	assert.Equal(t, errWrong.Error(), errUnknown.Error())
	assert.Equal(t, "Invalid username or password.", errWrong.Error())
}

func TestGate_LoginRequiresBothFields(t *testing.T) {
	g, _ := newTestGate(t)

	_, err := g.Login(context.Background(), auth.Credentials{Username: "  "})
	ve, ok := apperr.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "username")
	assert.Contains(t, ve.Fields, "password")
}

func TestGate_LoginAuthenticateLogout(t *testing.T) {
	g, _ := newTestGate(t)
	ctx := context.Background()

	sess, err := g.Login(ctx, auth.Credentials{Username: " ADMIN ", Password: "correct horse", IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, 24*time.Hour, sess.ExpiresAt.Sub(sess.CreatedAt))

	u, err := g.Authenticate(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", u.Username)

	require.NoError(t, g.Logout(ctx, sess.Token))
	require.NoError(t, g.Logout(ctx, sess.Token))

	_, err = g.Authenticate(ctx, sess.Token)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGate_CreateUser(t *testing.T) {
	g, _ := newTestGate(t)
	ctx := context.Background()

	_, err := g.CreateUser(ctx, "admin", "another password")
	assert.ErrorIs(t, err, apperr.ErrAlreadyExists)

	_, err = g.CreateUser(ctx, "ab", "short")
	ve, ok := apperr.AsValidation(err)
	require.True(t, ok)
	assert.Len(t, ve.Fields, 2)

	_, err = g.CreateUser(ctx, "operator", strings.Repeat("p", 73))
	ve, ok = apperr.AsValidation(err)
	require.True(t, ok, "expected a ValidationError, got %v", err)
	assert.Equal(t, authutil.ErrPasswordTooLong.Error(), ve.Fields["password"])
}

func TestLoadSessionUser(t *testing.T) {
	g, _ := newTestGate(t)
	sm := newTestSessionManager(t)
	sm.SetResolver(g.Authenticate)

	sess, err := g.Login(context.Background(), auth.Credentials{Username: "admin", Password: "correct horse"})
	require.NoError(t, err)

	issue := httptest.NewRecorder()
	require.NoError(t, sm.Issue(issue, httptest.NewRequest("POST", "/login", nil), sess.Token))
	cookie := issue.Result().Cookies()[0]

	var seen *auth.SessionUser
	h := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.CurrentUser(r)
	}))

	req := httptest.NewRequest("GET", "/donors", nil)
	req.AddCookie(cookie)
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, seen)
	assert.Equal(t, "admin", seen.Username)

	// After logout the same cookie no longer authenticates.
	require.NoError(t, g.Logout(context.Background(), sess.Token))
	seen = nil
	req = httptest.NewRequest("GET", "/donors", nil)
	req.AddCookie(cookie)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Nil(t, seen)
}
