package repositories

import (
	"context"

	"github.com/devilmonastery/blackhole/internal/domain/entities"
)

// ProfileRepository defines operations for profile persistence
type ProfileRepository interface {
	// Upsert creates or replaces the identity fields of a profile,
	// leaving karma untouched on conflict.
	Upsert(ctx context.Context, profile *entities.Profile) error

	// GetByID retrieves a profile by user ID
	GetByID(ctx context.Context, id string) (*entities.Profile, error)

	// AddKarma adjusts the user's karma by delta, creating the profile
	// row if it does not exist yet.
	AddKarma(ctx context.Context, id string, delta int) error

	// TopKarma lists the community's profiles by karma descending.
	TopKarma(ctx context.Context, community string, limit int) ([]*entities.Profile, error)
}
