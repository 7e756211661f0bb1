package entities

import "time"

// HashtagGroup is an ad-hoc room keyed by (community, tag). The tag is
// lowercase alphanumeric and unique within its community. message_count
// and last_activity_at are bumped by the message-insert trigger, not by
// application code.
type HashtagGroup struct {
	ID             string    `json:"id" db:"id"`
	Community      string    `json:"community" db:"community"`
	Tag            string    `json:"tag" db:"tag"`
	MessageCount   int       `json:"message_count" db:"message_count"`
	LastActivityAt time.Time `json:"last_activity_at" db:"last_activity_at"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	OwnerID        string    `json:"owner_id,omitempty" db:"owner_id"`
	IsActive       bool      `json:"is_active" db:"is_active"`
}
