package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/devilmonastery/blackhole/internal/domain/entities"
	"github.com/devilmonastery/blackhole/internal/domain/repositories"
)

// In-memory repository fakes. They mirror the store's contract closely
// enough for the engine tests: predicate deletes, (community, tag)
// uniqueness, insertion-ordered listings.

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []*entities.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{}
}

func (r *fakeMessageRepo) Create(_ context.Context, msg *entities.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *msg
	r.messages = append(r.messages, &cp)
	return nil
}

func (r *fakeMessageRepo) GetByID(_ context.Context, id string) (*entities.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, repositories.ErrMessageNotFound
}

func (r *fakeMessageRepo) ListByGroup(_ context.Context, community, groupName string, limit int) ([]*entities.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Message
	for _, m := range r.messages {
		if m.Community == community && m.GroupName == groupName {
			cp := *m
			out = append(out, &cp)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) UpdateReactions(_ context.Context, id string, reactions map[entities.ReactionKind][]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == id {
			m.Reactions = reactions
			return nil
		}
	}
	return repositories.ErrMessageNotFound
}

func (r *fakeMessageRepo) UpdateReports(_ context.Context, id string, reports map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == id {
			m.Reports = reports
			return nil
		}
	}
	return repositories.ErrMessageNotFound
}

func (r *fakeMessageRepo) AddScore(_ context.Context, id string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == id {
			m.Score += delta
			return nil
		}
	}
	return repositories.ErrMessageNotFound
}

func (r *fakeMessageRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.messages {
		if m.ID == id {
			r.messages = append(r.messages[:i], r.messages[i+1:]...)
			return nil
		}
	}
	return nil // predicate delete: absent row is a no-op
}

func (r *fakeMessageRepo) DeleteCreatedBefore(_ context.Context, community string, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*entities.Message
	var deleted int64
	for _, m := range r.messages {
		if m.Community == community && m.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, m)
	}
	r.messages = kept
	return deleted, nil
}

func (r *fakeMessageRepo) CountConfessionsSince(_ context.Context, authorID string, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, m := range r.messages {
		if m.AuthorID == authorID && m.Kind == entities.KindConfession && !m.CreatedAt.Before(cutoff) {
			count++
		}
	}
	return count, nil
}

func (r *fakeMessageRepo) TopByReactions(_ context.Context, community string, limit int) ([]*entities.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Message
	for _, m := range r.messages {
		if m.Community == community {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalReactions() > out[j].TotalReactions()
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeGroupRepo struct {
	mu     sync.Mutex
	groups []*entities.HashtagGroup
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{}
}

func (r *fakeGroupRepo) Create(_ context.Context, group *entities.HashtagGroup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.groups {
		if g.Community == group.Community && g.Tag == group.Tag {
			return repositories.ErrDuplicateGroup
		}
	}
	cp := *group
	r.groups = append(r.groups, &cp)
	return nil
}

func (r *fakeGroupRepo) GetByTag(_ context.Context, community, tag string) (*entities.HashtagGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.groups {
		if g.Community == community && g.Tag == tag {
			cp := *g
			return &cp, nil
		}
	}
	return nil, repositories.ErrGroupNotFound
}

func (r *fakeGroupRepo) Top(_ context.Context, community string, limit int) ([]*entities.HashtagGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.HashtagGroup
	for _, g := range r.groups {
		if g.Community == community {
			cp := *g
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].MessageCount != out[j].MessageCount {
			return out[i].MessageCount > out[j].MessageCount
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeGroupRepo) ActiveOwnedBy(_ context.Context, ownerID string) (*entities.HashtagGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.groups {
		if g.OwnerID == ownerID && g.IsActive {
			cp := *g
			return &cp, nil
		}
	}
	return nil, repositories.ErrGroupNotFound
}

func (r *fakeGroupRepo) DeleteIdle(_ context.Context, community string, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*entities.HashtagGroup
	var deleted int64
	for _, g := range r.groups {
		if g.Community == community && g.LastActivityAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, g)
	}
	r.groups = kept
	return deleted, nil
}

func (r *fakeGroupRepo) DeleteCreatedBefore(_ context.Context, community string, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*entities.HashtagGroup
	var deleted int64
	for _, g := range r.groups {
		if g.Community == community && g.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, g)
	}
	r.groups = kept
	return deleted, nil
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*entities.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*entities.Profile)}
}

func (r *fakeProfileRepo) Upsert(_ context.Context, profile *entities.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.profiles[profile.ID]; ok {
		existing.DisplayName = profile.DisplayName
		existing.DisplayColor = profile.DisplayColor
		existing.Community = profile.Community
		return nil
	}
	cp := *profile
	r.profiles[profile.ID] = &cp
	return nil
}

func (r *fakeProfileRepo) GetByID(_ context.Context, id string) (*entities.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, repositories.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProfileRepo) AddKarma(_ context.Context, id string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		p = &entities.Profile{ID: id}
		r.profiles[id] = p
	}
	p.Karma += delta
	return nil
}

func (r *fakeProfileRepo) TopKarma(_ context.Context, community string, limit int) ([]*entities.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Profile
	for _, p := range r.profiles {
		if p.Community == community {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Karma > out[j].Karma })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
