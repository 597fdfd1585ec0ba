package notification

import (
	"time"

	"github.com/google/uuid"
)

// Notification maps to the notifications table.
type Notification struct {
	ID              uuid.UUID              `db:"id" json:"id"`
	RecipientUserID uuid.UUID              `db:"recipient_user_id" json:"recipient_user_id"`
	Title           string                 `db:"title" json:"title"`
	Body            *string                `db:"body" json:"body,omitempty"`
	Meta            map[string]interface{} `db:"meta" json:"meta,omitempty"`
	Read            bool                   `db:"read" json:"read"`
	CreatedAt       time.Time              `db:"created_at" json:"created_at"`
}
