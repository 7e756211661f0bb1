package repositories

import (
	"context"
	"time"

	"github.com/devilmonastery/blackhole/internal/domain/entities"
)

// MessageRepository defines operations for message persistence
type MessageRepository interface {
	// Create persists a new message. Assigns ID and CreatedAt if unset.
	Create(ctx context.Context, msg *entities.Message) error

	// GetByID retrieves a message by ID
	GetByID(ctx context.Context, id string) (*entities.Message, error)

	// ListByGroup lists messages in a community group, oldest first
	ListByGroup(ctx context.Context, community, groupName string, limit int) ([]*entities.Message, error)

	// UpdateReactions replaces the reaction map of a message
	UpdateReactions(ctx context.Context, id string, reactions map[entities.ReactionKind][]string) error

	// UpdateReports replaces the report map of a message
	UpdateReports(ctx context.Context, id string, reports map[string]string) error

	// AddScore adjusts the message's aura by delta
	AddScore(ctx context.Context, id string, delta int) error

	// Delete removes a message outright. Deleting an absent row is a no-op.
	Delete(ctx context.Context, id string) error

	// DeleteCreatedBefore removes every message in the community older
	// than the cutoff and reports how many rows went away.
	DeleteCreatedBefore(ctx context.Context, community string, cutoff time.Time) (int64, error)

	// CountConfessionsSince counts confession messages by the author
	// created at or after the cutoff.
	CountConfessionsSince(ctx context.Context, authorID string, cutoff time.Time) (int, error)

	// TopByReactions lists the community's messages with the most total
	// reactions, highest first.
	TopByReactions(ctx context.Context, community string, limit int) ([]*entities.Message, error)
}
