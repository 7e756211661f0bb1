package services

import "errors"

// Engine errors surfaced to callers. Store failures are wrapped driver
// errors; these are the typed rejections the engine itself produces.
var (
	// ErrInvalidTag is returned when a group name is empty after
	// normalization
	ErrInvalidTag = errors.New("invalid group tag")

	// ErrAlreadyOwnsGroup is returned when a user tries to create a
	// second active group
	ErrAlreadyOwnsGroup = errors.New("user already owns an active group")

	// ErrQuotaExceeded is returned when the daily confession cap is hit
	ErrQuotaExceeded = errors.New("confession quota exceeded")

	// ErrUnknownReaction is returned for a reaction kind outside the
	// closed set
	ErrUnknownReaction = errors.New("unknown reaction kind")
)

// IsRejection reports whether the error is an engine-level rejection the
// caller should surface to the user, as opposed to a store failure.
func IsRejection(err error) bool {
	return errors.Is(err, ErrInvalidTag) ||
		errors.Is(err, ErrAlreadyOwnsGroup) ||
		errors.Is(err, ErrQuotaExceeded) ||
		errors.Is(err, ErrUnknownReaction)
}
