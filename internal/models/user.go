package models

import (
	"time"

	"github.com/google/uuid"
)

// UserDB represents a user record in the database
type UserDB struct {
	UserID    uuid.UUID `json:"id" db:"user_id"`            // Primary key
	Username  string    `json:"username" db:"username"`     // Unique handle, 3-20 chars
	CreatedAt time.Time `json:"created_at" db:"created_at"` // Creation timestamp
}

// Link returns the public profile link for the user. The link is derived
// from the username and is never stored.
func (u *UserDB) Link(base string) string {
	return base + "/" + u.Username
}

// UserSummary is the admin-facing view of a user.
type UserSummary struct {
	Username      string    `json:"username" db:"username"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	MessagesCount int       `json:"messages_count" db:"messages_count"`
}
