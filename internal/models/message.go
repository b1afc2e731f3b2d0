package models

import (
	"time"

	"github.com/google/uuid"
)

// MessageDB represents an anonymous message record in the database.
// No sender identity is stored.
type MessageDB struct {
	MessageID   uuid.UUID `json:"id" db:"message_id"`        // Primary key
	RecipientID uuid.UUID `json:"-" db:"recipient_id"`       // Owning user
	Content     string    `json:"message" db:"content"`      // Message text
	CreatedAt   time.Time `json:"timestamp" db:"created_at"` // Creation timestamp
	Read        bool      `json:"read" db:"read"`            // Viewing flips this to true
}
