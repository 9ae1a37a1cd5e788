// Package httpjson writes the JSON envelopes returned by every feature
// handler and reads submissions sent either as JSON or as a form.
package httpjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"slices"
	"strconv"
)

// MaxBodyBytes caps JSON submissions.
const MaxBodyBytes = 1 << 20

// Envelope is the common response shape.
type Envelope struct {
	Success     bool              `json:"success"`
	Message     string            `json:"message,omitempty"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

// Write encodes v as JSON with the given status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes {success:true,message}.
func OK(w http.ResponseWriter, status int, msg string) {
	Write(w, status, Envelope{Success: true, Message: msg})
}

// Fail writes {success:false,message}.
func Fail(w http.ResponseWriter, status int, msg string) {
	Write(w, status, Envelope{Success: false, Message: msg})
}

// FailFields writes {success:false,message,fieldErrors}.
func FailFields(w http.ResponseWriter, status int, msg string, fields map[string]string) {
	Write(w, status, Envelope{Success: false, Message: msg, FieldErrors: fields})
}

// ErrBadBody is returned by ReadFields for bodies it cannot parse.
var ErrBadBody = errors.New("malformed request body")

// ReadFields flattens a JSON object or a urlencoded/multipart form into a
// string map. Numbers keep their text. JSON booleans become "yes"/"no" only
// for yesNoKeys; a boolean under any other key is dropped, so validation
// sees the field as missing.
func ReadFields(r *http.Request, yesNoKeys ...string) (map[string]string, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		return readJSON(r, yesNoKeys)
	}
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadBody, err)
	}
	out := make(map[string]string, len(r.PostForm))
	for k := range r.PostForm {
		out[k] = r.PostForm.Get(k)
	}
	return out, nil
}

func readJSON(r *http.Request, yesNoKeys []string) (map[string]string, error) {
	var raw map[string]any
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, MaxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadBody, err)
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case nil:
		case string:
			out[k] = t
		case bool:
			if !slices.Contains(yesNoKeys, k) {
				continue
			}
			if t {
				out[k] = "yes"
			} else {
				out[k] = "no"
			}
		case json.Number:
			out[k] = t.String()
		case float64:
			out[k] = strconv.FormatFloat(t, 'f', -1, 64)
		default:
			return nil, fmt.Errorf("%w: field %q must be a scalar", ErrBadBody, k)
		}
	}
	return out, nil
}
