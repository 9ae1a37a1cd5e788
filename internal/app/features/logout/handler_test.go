package logout_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/donorhub/internal/app/features/logout"
	memstore "github.com/dalemusser/donorhub/internal/app/store/memory"
	"github.com/dalemusser/donorhub/internal/app/system/auth"
	"go.uber.org/zap"
)

type env struct {
	handler *logout.Handler
	gate    *auth.Gate
	sm      *auth.SessionManager
}

func newTestEnv(t *testing.T) env {
	t.Helper()
	logger := zap.NewNop()

	sm, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", 24*time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	gate := auth.NewGate(memstore.NewAdminUsers(), memstore.NewSessions(), nil, auth.GateConfig{BcryptCost: 4}, logger)
	sm.SetResolver(gate.Authenticate)

	return env{handler: logout.NewHandler(gate, sm, logger), gate: gate, sm: sm}
}

func TestHandleLogout_Anonymous(t *testing.T) {
	e := newTestEnv(t)

	rec := httptest.NewRecorder()
	e.handler.HandleLogout(rec, httptest.NewRequest("POST", "/logout", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestHandleLogout_ClearsSessionCookie(t *testing.T) {
	e := newTestEnv(t)

	rec := httptest.NewRecorder()
	e.handler.HandleLogout(rec, httptest.NewRequest("POST", "/logout", nil))

	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" {
			found = true
			if c.MaxAge >= 0 {
				t.Errorf("MaxAge: got %d, want negative", c.MaxAge)
			}
		}
	}
	if !found {
		t.Error("expected a deletion cookie")
	}
}

func TestHandleLogout_InvalidatesServerSession(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	if _, err := e.gate.CreateUser(ctx, "admin", "correct horse"); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	sess, err := e.gate.Login(ctx, auth.Credentials{Username: "admin", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	issue := httptest.NewRecorder()
	if err := e.sm.Issue(issue, httptest.NewRequest("POST", "/login", nil), sess.Token); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	cookie := issue.Result().Cookies()[0]

	req := httptest.NewRequest("POST", "/logout", nil)
	req.AddCookie(cookie)
	e.handler.HandleLogout(httptest.NewRecorder(), req)

	if _, err := e.gate.Authenticate(ctx, sess.Token); err == nil {
		t.Error("session still valid after logout")
	}
}
