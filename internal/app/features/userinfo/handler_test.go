package userinfo_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/donorhub/internal/app/features/userinfo"
	"github.com/dalemusser/donorhub/internal/testutil"
)

type response struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	Username        string `json:"username"`
}

func serve(t *testing.T, r *http.Request) response {
	t.Helper()
	rec := httptest.NewRecorder()
	userinfo.NewHandler().ServeUserInfo(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q", ct)
	}
	var resp response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func TestServeUserInfo_Anonymous(t *testing.T) {
	resp := serve(t, testutil.NewRequest("GET", "/userinfo"))
	if resp.IsAuthenticated || resp.Username != "" {
		t.Errorf("got %+v, want anonymous", resp)
	}
}

func TestServeUserInfo_SignedIn(t *testing.T) {
	resp := serve(t, testutil.WithAdmin(testutil.NewRequest("GET", "/userinfo"), 1, "admin"))
	if !resp.IsAuthenticated || resp.Username != "admin" {
		t.Errorf("got %+v, want signed-in admin", resp)
	}
}
