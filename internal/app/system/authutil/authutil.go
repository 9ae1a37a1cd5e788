// internal/app/system/authutil/authutil.go
package authutil

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// Admin credential rules.
const (
	MinUsernameLen = 3
	MinPasswordLen = 8
	MaxPasswordLen = 72 // bytes; bcrypt rejects longer input
)

var (
	ErrUsernameTooShort = errors.New("Username must be at least 3 characters.")
	ErrPasswordTooShort = errors.New("Password must be at least 8 characters.")
	ErrPasswordTooLong  = errors.New("Password must be at most 72 bytes.")
)

// NormalizeUsername trims and lowercases a username so lookups and the
// unique index agree.
func NormalizeUsername(u string) string {
	return strings.ToLower(strings.TrimSpace(u))
}

// ValidateUsername checks an already-normalised username.
func ValidateUsername(u string) error {
	if utf8.RuneCountInString(u) < MinUsernameLen {
		return ErrUsernameTooShort
	}
	return nil
}

// ValidatePassword checks a new password against the rules.
func ValidatePassword(pw string) error {
	if utf8.RuneCountInString(pw) < MinPasswordLen {
		return ErrPasswordTooShort
	}
	if len(pw) > MaxPasswordLen {
		return ErrPasswordTooLong
	}
	return nil
}

// HashPassword hashes pw with bcrypt. Costs below bcrypt.DefaultCost are raised.
func HashPassword(pw string, cost int) (string, error) {
	if cost < bcrypt.DefaultCost {
		cost = bcrypt.DefaultCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether pw matches hash. The comparison is constant-time.
func CheckPassword(pw, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
