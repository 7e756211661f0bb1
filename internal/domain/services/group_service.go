package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/devilmonastery/blackhole/internal/domain/entities"
	"github.com/devilmonastery/blackhole/internal/domain/repositories"
	"github.com/devilmonastery/blackhole/internal/pkg/idgen"
	"github.com/devilmonastery/blackhole/internal/pkg/metrics"
)

// GroupService is the group registry: it owns group existence and the
// one-active-group-per-user rule. It never touches message_count or
// last_activity_at; the message-insert trigger maintains those.
type GroupService struct {
	groups repositories.GroupRepository
	now    func() time.Time
}

// NewGroupService creates a new group registry
func NewGroupService(groups repositories.GroupRepository) *GroupService {
	return &GroupService{
		groups: groups,
		now:    time.Now,
	}
}

// NormalizeTag lowercases a raw tag and strips every non-alphanumeric
// rune. An empty result is ErrInvalidTag.
func NormalizeTag(raw string) (string, error) {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		if unicode.IsLower(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	tag := b.String()
	if tag == "" {
		return "", ErrInvalidTag
	}
	return tag, nil
}

// EnsureGroup returns the group for (community, tag), creating it if
// absent. An existing group comes back untouched. Two clients racing on
// the same new tag resolve at the store's (community, tag) uniqueness:
// the loser re-reads the winner's row.
func (s *GroupService) EnsureGroup(ctx context.Context, community, rawTag string) (*entities.HashtagGroup, error) {
	tag, err := NormalizeTag(rawTag)
	if err != nil {
		return nil, err
	}

	group, err := s.groups.GetByTag(ctx, community, tag)
	if err == nil {
		return group, nil
	}
	if !errors.Is(err, repositories.ErrGroupNotFound) {
		return nil, fmt.Errorf("failed to look up group: %w", err)
	}

	group = &entities.HashtagGroup{
		ID:             idgen.GenerateID(),
		Community:      community,
		Tag:            tag,
		MessageCount:   0,
		LastActivityAt: s.now(),
		CreatedAt:      s.now(),
		IsActive:       true,
	}
	if err := s.groups.Create(ctx, group); err != nil {
		if errors.Is(err, repositories.ErrDuplicateGroup) {
			return s.groups.GetByTag(ctx, community, tag)
		}
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	metrics.RecordEngineOperation("group", "ensure", nil)
	return group, nil
}

// CreateOwnedGroup creates a group owned by ownerID. A user may own at
// most one active group across all communities.
func (s *GroupService) CreateOwnedGroup(ctx context.Context, community, rawTag, ownerID string) (*entities.HashtagGroup, error) {
	tag, err := NormalizeTag(rawTag)
	if err != nil {
		return nil, err
	}

	existing, err := s.groups.ActiveOwnedBy(ctx, ownerID)
	if err == nil && existing != nil {
		return nil, fmt.Errorf("owner of #%s in %s: %w", existing.Tag, existing.Community, ErrAlreadyOwnsGroup)
	}
	if err != nil && !errors.Is(err, repositories.ErrGroupNotFound) {
		return nil, fmt.Errorf("failed to check group ownership: %w", err)
	}

	group := &entities.HashtagGroup{
		ID:             idgen.GenerateID(),
		Community:      community,
		Tag:            tag,
		MessageCount:   0,
		LastActivityAt: s.now(),
		CreatedAt:      s.now(),
		OwnerID:        ownerID,
		IsActive:       true,
	}
	if err := s.groups.Create(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	metrics.RecordEngineOperation("group", "create_owned", nil)
	return group, nil
}

// TopGroups lists the community's groups by message count, busiest first.
func (s *GroupService) TopGroups(ctx context.Context, community string, limit int) ([]*entities.HashtagGroup, error) {
	if limit <= 0 {
		limit = 50
	}
	groups, err := s.groups.Top(ctx, community, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list top groups: %w", err)
	}
	return groups, nil
}
