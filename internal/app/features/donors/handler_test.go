package donors_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/donorhub/internal/app/features/donors"
	uierrors "github.com/dalemusser/donorhub/internal/app/features/errors"
	"github.com/dalemusser/donorhub/internal/app/features/export"
	"github.com/dalemusser/donorhub/internal/app/registry"
	memstore "github.com/dalemusser/donorhub/internal/app/store/memory"
	"github.com/dalemusser/donorhub/internal/app/system/auth"
	"github.com/dalemusser/donorhub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type donorJSON struct {
	ID         int64  `json:"id"`
	FirstName  string `json:"firstName"`
	NationalID string `json:"nationalId"`
	BirthDate  string `json:"birthDate"`
}

type envelope struct {
	Success     bool              `json:"success"`
	Message     string            `json:"message"`
	FieldErrors map[string]string `json:"fieldErrors"`
	Donor       donorJSON         `json:"donor"`
	Donors      []donorJSON       `json:"donors"`
}

func newRouter(t *testing.T) chi.Router {
	t.Helper()
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "", "", 24*time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	reg := registry.New(memstore.NewDonors(), nil, nil, logger)
	errLog := uierrors.NewErrorLogger(logger)
	return donors.Routes(
		donors.NewHandler(reg, errLog, logger),
		export.NewHandler(reg, nil, errLog, "", logger),
		sm,
	)
}

func donorBody(first, dni string) string {
	return fmt.Sprintf(`{"firstName":%q,"lastName":"Gómez","nationalId":%q,"birthDate":"1990-05-17",
		"address":"Av. Siempre Viva 742","phone":"1134567890","hasDonatedBefore":"yes","isMarrowDonor":false}`, first, dni)
}

func do(t *testing.T, h http.Handler, r *http.Request, signedIn bool) (int, envelope) {
	t.Helper()
	if signedIn {
		r = testutil.WithAdmin(r, 1, "admin")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s %s: %v (%s)", r.Method, r.URL, err, rec.Body.String())
	}
	return rec.Code, env
}

func TestRoutes_RequireSignIn(t *testing.T) {
	h := newRouter(t)

	code, env := do(t, h, testutil.NewRequest("GET", "/"), false)
	if code != http.StatusUnauthorized || env.Success {
		t.Errorf("got %d %+v, want 401", code, env)
	}
}

func TestCreate(t *testing.T) {
	h := newRouter(t)

	code, env := do(t, h, testutil.NewJSONRequest("POST", "/", donorBody("Ana", "30123456")), true)
	if code != http.StatusCreated {
		t.Fatalf("status: got %d (%+v)", code, env)
	}
	if !env.Success || env.Donor.ID == 0 || env.Donor.BirthDate != "1990-05-17" {
		t.Errorf("unexpected body: %+v", env)
	}

	code, env = do(t, h, testutil.NewJSONRequest("POST", "/", donorBody("Otra", "30123456")), true)
	if code != http.StatusConflict {
		t.Fatalf("duplicate status: got %d", code)
	}
	if env.FieldErrors["nationalId"] == "" {
		t.Errorf("expected nationalId field error, got %v", env.FieldErrors)
	}
}

func TestCreate_ValidationErrors(t *testing.T) {
	h := newRouter(t)

	body := `{"firstName":"A","lastName":"Gómez","nationalId":"12ab","birthDate":"1990-05-17",
		"address":"abc","phone":"123","hasDonatedBefore":"yes","isMarrowDonor":"no"}`
	code, env := do(t, h, testutil.NewJSONRequest("POST", "/", body), true)

	if code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d", code)
	}
	for _, k := range []string{"firstName", "nationalId", "address", "phone"} {
		if env.FieldErrors[k] == "" {
			t.Errorf("missing field error for %s", k)
		}
	}
	if len(env.FieldErrors) != 4 {
		t.Errorf("got %d field errors, want 4: %v", len(env.FieldErrors), env.FieldErrors)
	}
}

func TestCreate_BooleanTextFieldsRejected(t *testing.T) {
	h := newRouter(t)

	body := `{"firstName":true,"lastName":true,"nationalId":"30123456","birthDate":"1990-05-17",
		"address":"Av. Siempre Viva 742","phone":"1134567890","hasDonatedBefore":true,"isMarrowDonor":false}`
	code, env := do(t, h, testutil.NewJSONRequest("POST", "/", body), true)

	if code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d (%+v)", code, env)
	}
	for _, k := range []string{"firstName", "lastName"} {
		if env.FieldErrors[k] == "" {
			t.Errorf("missing field error for %s: %v", k, env.FieldErrors)
		}
	}
	if len(env.FieldErrors) != 2 {
		t.Errorf("got %d field errors, want 2: %v", len(env.FieldErrors), env.FieldErrors)
	}
}

func TestCreate_FormBody(t *testing.T) {
	h := newRouter(t)

	form := "firstName=Ana&lastName=G%C3%B3mez&nationalId=30123456&birthDate=17%2F05%2F1990" +
		"&address=Av.+Siempre+Viva+742&phone=1134567890&hasDonatedBefore=no&isMarrowDonor=yes"
	code, env := do(t, h, testutil.NewFormRequest("POST", "/", strings.NewReader(form)), true)
	if code != http.StatusCreated {
		t.Fatalf("status: got %d (%+v)", code, env)
	}
}

func TestShowEditDelete(t *testing.T) {
	h := newRouter(t)

	_, created := do(t, h, testutil.NewJSONRequest("POST", "/", donorBody("Ana", "30123456")), true)
	path := fmt.Sprintf("/%d", created.Donor.ID)

	code, env := do(t, h, testutil.NewRequest("GET", path), true)
	if code != http.StatusOK || env.Donor.FirstName != "Ana" {
		t.Fatalf("show: got %d %+v", code, env)
	}

	code, env = do(t, h, testutil.NewJSONRequest("PUT", path, donorBody("Ana María", "30123456")), true)
	if code != http.StatusOK || env.Donor.FirstName != "Ana María" {
		t.Fatalf("edit: got %d %+v", code, env)
	}

	code, _ = do(t, h, testutil.NewJSONRequest("POST", path+"/edit", donorBody("Ana", "30123456")), true)
	if code != http.StatusOK {
		t.Fatalf("post edit: got %d", code)
	}

	for i := 0; i < 2; i++ {
		code, env = do(t, h, testutil.NewRequest("DELETE", path), true)
		if code != http.StatusOK || !env.Success {
			t.Fatalf("delete #%d: got %d %+v", i+1, code, env)
		}
	}

	code, _ = do(t, h, testutil.NewRequest("GET", path), true)
	if code != http.StatusNotFound {
		t.Errorf("show after delete: got %d, want 404", code)
	}

	code, _ = do(t, h, testutil.NewJSONRequest("PUT", path, donorBody("Ana", "30123456")), true)
	if code != http.StatusNotFound {
		t.Errorf("edit after delete: got %d, want 404", code)
	}
}

func TestShow_BadID(t *testing.T) {
	h := newRouter(t)

	code, _ := do(t, h, testutil.NewRequest("GET", "/abc"), true)
	if code != http.StatusNotFound {
		t.Errorf("got %d, want 404", code)
	}
}

func TestList_SearchNewestFirst(t *testing.T) {
	h := newRouter(t)

	do(t, h, testutil.NewJSONRequest("POST", "/", donorBody("Ana", "30777111")), true)
	do(t, h, testutil.NewJSONRequest("POST", "/", donorBody("Bruno", "20111222")), true)
	do(t, h, testutil.NewJSONRequest("POST", "/", donorBody("Carla", "40111777")), true)

	code, env := do(t, h, testutil.NewRequest("GET", "/"), true)
	if code != http.StatusOK || len(env.Donors) != 3 {
		t.Fatalf("list: got %d, %d donors", code, len(env.Donors))
	}
	if env.Donors[0].FirstName != "Carla" || env.Donors[2].FirstName != "Ana" {
		t.Errorf("order: got %v", env.Donors)
	}

	_, env = do(t, h, testutil.NewRequest("GET", "/?q=777"), true)
	if len(env.Donors) != 2 {
		t.Errorf("search 777: got %d donors, want 2", len(env.Donors))
	}

	_, env = do(t, h, testutil.NewRequest("GET", "/?q=zzz"), true)
	if env.Donors == nil || len(env.Donors) != 0 {
		t.Errorf("search zzz: got %v, want empty list", env.Donors)
	}
}
