// Package apperr defines the error taxonomy shared by the validation layer,
// the repositories, the auth gate and the HTTP handlers.
//
// Stores translate driver errors into these values exactly once; handlers
// map them to status codes and user-facing messages and never see raw
// driver errors.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is matched by every *DuplicateKeyError via errors.Is.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidCredentials is the single login failure seen by callers,
	// whether the user is unknown or the password is wrong.
	ErrInvalidCredentials = errors.New("Invalid username or password.")

	// ErrAlreadyExists is returned when creating an admin whose username is taken.
	ErrAlreadyExists = errors.New("user already exists")
)

// Generic messages shown when an infrastructure failure is hidden from the user.
const (
	MsgSaveFailed = "We could not save the changes. Please try again."
	MsgLoadFailed = "We could not load the data. Please try again."
	MsgValidation = "Please correct the highlighted fields."
)

// ValidationError carries one message per failing field.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns an empty ValidationError ready for Add.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

// Add records msg for field, keeping the first message if one exists.
func (e *ValidationError) Add(field, msg string) {
	if _, ok := e.Fields[field]; ok {
		return
	}
	e.Fields[field] = msg
}

// Empty reports whether no field failed.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// First returns the message of the alphabetically first failing field.
func (e *ValidationError) First() string {
	keys := e.keys()
	if len(keys) == 0 {
		return ""
	}
	return e.Fields[keys[0]]
}

func (e *ValidationError) Error() string {
	keys := e.keys()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) keys() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DuplicateKeyError reports a uniqueness violation on Field.
type DuplicateKeyError struct {
	Field   string
	Message string
}

// NewDuplicateNationalID is the collision raised by donor writes.
func NewDuplicateNationalID() *DuplicateKeyError {
	return &DuplicateKeyError{
		Field:   "nationalId",
		Message: "This national ID is already registered.",
	}
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key on %s", e.Field)
}

// Is lets errors.Is(err, ErrDuplicateKey) match any DuplicateKeyError.
func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrDuplicateKey
}

// StoreError wraps an infrastructure failure. Its text is for logs only.
type StoreError struct {
	Op  string
	Err error
}

// Wrap returns a *StoreError for op, or nil when err is nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

func (e *StoreError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// AsValidation returns the *ValidationError inside err, if any.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// AsDuplicate returns the *DuplicateKeyError inside err, if any.
func AsDuplicate(err error) (*DuplicateKeyError, bool) {
	var de *DuplicateKeyError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
