// internal/domain/models/session.go
package models

import "time"

// Session is the server-side record behind a session marker cookie.
// Token is opaque to the client and is the only value the cookie carries.
type Session struct {
	Token     string    `bson:"_id" json:"token"`
	UserID    int64     `bson:"user_id" json:"userId"`
	Username  string    `bson:"username" json:"username"`
	IP        string    `bson:"ip,omitempty" json:"ip,omitempty"`
	UserAgent string    `bson:"user_agent,omitempty" json:"userAgent,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	ExpiresAt time.Time `bson:"expires_at" json:"expiresAt"`
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
