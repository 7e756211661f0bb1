package entities

import "time"

// Profile is the server-side record for a user: the mirrored anonymous
// identity plus the karma counter. Karma only ever goes up (posting,
// receiving a reaction); there is no decrement path.
type Profile struct {
	ID           string    `json:"id" db:"id"`
	Community    string    `json:"community" db:"community"`
	DisplayName  string    `json:"display_name" db:"display_name"`
	DisplayColor string    `json:"display_color" db:"display_color"`
	Karma        int       `json:"karma" db:"karma"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
