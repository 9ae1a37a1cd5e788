// internal/domain/models/adminuser.go
package models

import "time"

// AdminUser is a staff account allowed to manage donors.
type AdminUser struct {
	ID           int64     `bson:"_id" json:"id"`
	Username     string    `bson:"username" json:"username"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
}
