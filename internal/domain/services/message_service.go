package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/devilmonastery/blackhole/internal/domain/entities"
	"github.com/devilmonastery/blackhole/internal/domain/repositories"
	"github.com/devilmonastery/blackhole/internal/pkg/idgen"
	"github.com/devilmonastery/blackhole/internal/pkg/metrics"
	"github.com/devilmonastery/blackhole/internal/pkg/textutil"
	"github.com/devilmonastery/blackhole/internal/pkg/timeutil"
)

// DefaultConfessionLimit is the per-user cap on confessions per civil day.
const DefaultConfessionLimit = 2

// PostRequest carries everything the router needs to file a message.
// ActiveFilter is the view the poster currently has open: "all" (or
// empty), "confession", or "#tag".
type PostRequest struct {
	Community      string
	Content        string
	AuthorID       string
	Identity       entities.Identity
	ConfessionMode bool
	ActiveFilter   string
	ReplyToID      string
}

// Route is the routing decision for a post request.
type Route struct {
	GroupName string
	Kind      entities.MessageKind
}

// MessageService routes posts into groups and enforces the confession
// quota against the purge boundary.
type MessageService struct {
	messages        repositories.MessageRepository
	profiles        repositories.ProfileRepository
	registry        *GroupService
	confessionLimit int
	now             func() time.Time
	logger          *slog.Logger
}

// NewMessageService creates a new message service
func NewMessageService(messages repositories.MessageRepository, profiles repositories.ProfileRepository, registry *GroupService, logger *slog.Logger) *MessageService {
	return &MessageService{
		messages:        messages,
		profiles:        profiles,
		registry:        registry,
		confessionLimit: DefaultConfessionLimit,
		now:             time.Now,
		logger:          logger.With("component", "message_service"),
	}
}

// SetConfessionLimit overrides the daily confession quota.
func (s *MessageService) SetConfessionLimit(n int) {
	if n > 0 {
		s.confessionLimit = n
	}
}

// ResolveRoute applies the routing decision table. Confession mode wins
// over everything; a hashtag filter targets the room being viewed; the
// default is the main room. Posting never re-derives tags from content.
func ResolveRoute(req PostRequest) (Route, error) {
	if req.ConfessionMode {
		return Route{GroupName: entities.GroupConfession, Kind: entities.KindConfession}, nil
	}
	if strings.HasPrefix(req.ActiveFilter, "#") {
		tag, err := NormalizeTag(strings.TrimPrefix(req.ActiveFilter, "#"))
		if err != nil {
			return Route{}, err
		}
		return Route{GroupName: tag, Kind: entities.KindNormal}, nil
	}
	return Route{GroupName: entities.GroupMain, Kind: entities.KindNormal}, nil
}

// Post routes the request, enforces the confession quota, ensures the
// target hashtag room exists, and persists the message.
//
// The quota check and the insert are two store calls, not one
// transaction: two rapid confessions can both pass the check before
// either commits and overshoot the cap by one. Accepted race.
func (s *MessageService) Post(ctx context.Context, req PostRequest) (*entities.Message, error) {
	route, err := ResolveRoute(req)
	if err != nil {
		return nil, err
	}

	if route.Kind == entities.KindConfession {
		remaining, err := s.RemainingConfessions(ctx, req.AuthorID)
		if err != nil {
			return nil, err
		}
		if remaining <= 0 {
			metrics.QuotaRejections.Inc()
			return nil, fmt.Errorf("limit %d per day: %w", s.confessionLimit, ErrQuotaExceeded)
		}
	}

	// Hashtag rooms must exist before the insert so the activity trigger
	// has a row to bump.
	if route.GroupName != entities.GroupMain && route.GroupName != entities.GroupConfession {
		if _, err := s.registry.EnsureGroup(ctx, req.Community, route.GroupName); err != nil {
			return nil, err
		}
	}

	msg := &entities.Message{
		ID:           idgen.GenerateID(),
		Community:    req.Community,
		Content:      req.Content,
		AuthorID:     req.AuthorID,
		DisplayName:  req.Identity.DisplayName,
		DisplayColor: req.Identity.DisplayColor,
		Kind:         route.Kind,
		GroupName:    route.GroupName,
		ReplyToID:    req.ReplyToID,
		Reactions:    map[entities.ReactionKind][]string{},
		Reports:      map[string]string{},
		Score:        0,
		CreatedAt:    s.now(),
	}
	msg.Hashtags = annotateTags(req.Content, route.GroupName)

	if err := s.messages.Create(ctx, msg); err != nil {
		metrics.RecordEngineOperation("message", "post", err)
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	// Posting earns the author a karma point. Best effort: a failed bump
	// does not unwind the post.
	if err := s.profiles.AddKarma(ctx, req.AuthorID, 1); err != nil {
		s.logger.Warn("could not bump poster karma", "author_id", req.AuthorID, "error", err)
	}

	metrics.MessagesPosted.WithLabelValues(req.Community, string(route.Kind)).Inc()
	metrics.RecordEngineOperation("message", "post", nil)
	return msg, nil
}

// annotateTags collects the tags a message should carry: every hashtag
// mentioned in its content plus the room it was filed into. Annotation
// only; routing never reads these.
func annotateTags(content, groupName string) []string {
	tags := textutil.ExtractHashtags(content)
	if groupName == entities.GroupMain || groupName == entities.GroupConfession {
		return tags
	}
	for _, tag := range tags {
		if tag == groupName {
			return tags
		}
	}
	tags = append(tags, groupName)
	sort.Strings(tags)
	return tags
}

// RemainingConfessions reports how many confessions the author may still
// post before the next purge boundary, in [0, limit].
func (s *MessageService) RemainingConfessions(ctx context.Context, authorID string) (int, error) {
	boundary := timeutil.CurrentBoundary(s.now())
	used, err := s.messages.CountConfessionsSince(ctx, authorID, boundary)
	if err != nil {
		return 0, fmt.Errorf("failed to count confessions: %w", err)
	}
	remaining := s.confessionLimit - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// ListMessages returns the messages visible under a view filter, oldest
// first.
func (s *MessageService) ListMessages(ctx context.Context, community, filter string, limit int) ([]*entities.Message, error) {
	if limit <= 0 {
		limit = 500
	}

	groupName := entities.GroupMain
	switch {
	case filter == "confession":
		groupName = entities.GroupConfession
	case strings.HasPrefix(filter, "#"):
		tag, err := NormalizeTag(strings.TrimPrefix(filter, "#"))
		if err != nil {
			return nil, err
		}
		groupName = tag
	}

	msgs, err := s.messages.ListByGroup(ctx, community, groupName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, nil
}

// TopMessages lists the community's most-reacted messages (the hall of
// fame).
func (s *MessageService) TopMessages(ctx context.Context, community string, limit int) ([]*entities.Message, error) {
	if limit <= 0 {
		limit = 3
	}
	msgs, err := s.messages.TopByReactions(ctx, community, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list top messages: %w", err)
	}
	return msgs, nil
}
