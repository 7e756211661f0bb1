package repositories

import (
	"context"
	"time"

	"github.com/devilmonastery/blackhole/internal/domain/entities"
)

// GroupRepository defines operations for hashtag group persistence
type GroupRepository interface {
	// Create persists a new group. Returns ErrDuplicateGroup when the
	// (community, tag) pair already exists.
	Create(ctx context.Context, group *entities.HashtagGroup) error

	// GetByTag retrieves a group by its (community, tag) key
	GetByTag(ctx context.Context, community, tag string) (*entities.HashtagGroup, error)

	// Top lists groups by message_count descending; ties break on
	// insertion order (snowflake id ascending).
	Top(ctx context.Context, community string, limit int) ([]*entities.HashtagGroup, error)

	// ActiveOwnedBy returns the active group owned by ownerID, across
	// all communities. ErrGroupNotFound when the owner has none.
	ActiveOwnedBy(ctx context.Context, ownerID string) (*entities.HashtagGroup, error)

	// DeleteIdle removes groups whose last_activity_at is older than the
	// cutoff and reports how many rows went away.
	DeleteIdle(ctx context.Context, community string, cutoff time.Time) (int64, error)

	// DeleteCreatedBefore removes groups created before the cutoff.
	DeleteCreatedBefore(ctx context.Context, community string, cutoff time.Time) (int64, error)
}
