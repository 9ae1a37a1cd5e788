package httpjson

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestReadFields_JSON(t *testing.T) {
	body := `{"firstName":"Ana","nationalId":30123456,"hasDonatedBefore":true,"isMarrowDonor":false,"address":null}`
	r := httptest.NewRequest("POST", "/donors", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json; charset=utf-8")

	got, err := ReadFields(r, "hasDonatedBefore", "isMarrowDonor")
	if err != nil {
		t.Fatalf("ReadFields failed: %v", err)
	}

	want := map[string]string{
		"firstName":        "Ana",
		"nationalId":       "30123456",
		"hasDonatedBefore": "yes",
		"isMarrowDonor":    "no",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s: got %q, want %q", k, got[k], v)
		}
	}
	if _, ok := got["address"]; ok {
		t.Error("null values should be dropped")
	}
}

func TestReadFields_BoolOutsideYesNoKeysIsDropped(t *testing.T) {
	body := `{"firstName":true,"lastName":false,"isMarrowDonor":true}`
	r := httptest.NewRequest("POST", "/donors", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")

	got, err := ReadFields(r, "isMarrowDonor")
	if err != nil {
		t.Fatalf("ReadFields failed: %v", err)
	}
	if _, ok := got["firstName"]; ok {
		t.Errorf("firstName: got %q, want no value", got["firstName"])
	}
	if _, ok := got["lastName"]; ok {
		t.Errorf("lastName: got %q, want no value", got["lastName"])
	}
	if got["isMarrowDonor"] != "yes" {
		t.Errorf("isMarrowDonor: got %q, want %q", got["isMarrowDonor"], "yes")
	}
}

func TestReadFields_Form(t *testing.T) {
	form := url.Values{"firstName": {"Ana"}, "hasDonatedBefore": {"yes"}}
	r := httptest.NewRequest("POST", "/donors", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	got, err := ReadFields(r)
	if err != nil {
		t.Fatalf("ReadFields failed: %v", err)
	}
	if got["firstName"] != "Ana" || got["hasDonatedBefore"] != "yes" {
		t.Errorf("unexpected fields: %v", got)
	}
}

func TestReadFields_BadJSON(t *testing.T) {
	tests := []string{`{"firstName":`, `{"tags":["a"]}`, `[1,2]`}
	for _, body := range tests {
		r := httptest.NewRequest("POST", "/donors", strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
		if _, err := ReadFields(r); !errors.Is(err, ErrBadBody) {
			t.Errorf("body %s: expected ErrBadBody, got %v", body, err)
		}
	}
}

func TestFailFields(t *testing.T) {
	rec := httptest.NewRecorder()
	FailFields(rec, http.StatusUnprocessableEntity, "bad", map[string]string{"phone": "too short"})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status: got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q", ct)
	}
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Success || env.Message != "bad" || env.FieldErrors["phone"] != "too short" {
		t.Errorf("unexpected envelope: %+v", env)
	}
}
