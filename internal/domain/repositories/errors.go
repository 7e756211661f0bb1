package repositories

import "errors"

// Domain-specific repository errors
var (
	// ErrMessageNotFound is returned when a message cannot be found
	ErrMessageNotFound = errors.New("message not found")

	// ErrGroupNotFound is returned when a hashtag group cannot be found
	ErrGroupNotFound = errors.New("group not found")

	// ErrProfileNotFound is returned when a profile cannot be found
	ErrProfileNotFound = errors.New("profile not found")

	// ErrDuplicateGroup is returned when a (community, tag) row already exists
	ErrDuplicateGroup = errors.New("group already exists")
)
