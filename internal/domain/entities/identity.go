package entities

// Identity is the anonymous persona a user posts under. It lives on the
// client and is mirrored into the account's profile; it is intended to
// be regenerated once per purge cycle.
type Identity struct {
	DisplayName  string `json:"display_name"`
	DisplayColor string `json:"display_color"`
}
