package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/devilmonastery/blackhole/internal/domain/entities"
	"github.com/devilmonastery/blackhole/internal/domain/repositories"
	"github.com/devilmonastery/blackhole/internal/pkg/metrics"
)

// DefaultFlagThreshold is the report count at which a message is removed.
const DefaultFlagThreshold = 5

// ReactionService maintains per-message reaction and report tallies and
// applies the auto-moderation threshold.
type ReactionService struct {
	messages      repositories.MessageRepository
	profiles      repositories.ProfileRepository
	flagThreshold int
	logger        *slog.Logger
}

// NewReactionService creates a new reaction/flag aggregator
func NewReactionService(messages repositories.MessageRepository, profiles repositories.ProfileRepository, logger *slog.Logger) *ReactionService {
	return &ReactionService{
		messages:      messages,
		profiles:      profiles,
		flagThreshold: DefaultFlagThreshold,
		logger:        logger.With("component", "reaction_service"),
	}
}

// SetFlagThreshold overrides the auto-removal report threshold.
func (s *ReactionService) SetFlagThreshold(n int) {
	if n > 0 {
		s.flagThreshold = n
	}
}

// ToggleReaction moves the author's single reaction on a message.
// Selecting the held kind clears it; selecting another kind moves it.
// A newly added reaction bumps the message's aura and its author's karma
// by one. Neither is decremented on removal.
func (s *ReactionService) ToggleReaction(ctx context.Context, messageID, authorID string, kind entities.ReactionKind) (map[entities.ReactionKind][]string, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%q: %w", kind, ErrUnknownReaction)
	}

	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	held, hadAny := msg.ReactionHeldBy(authorID)

	updated := make(map[entities.ReactionKind][]string, len(msg.Reactions))
	for k, authors := range msg.Reactions {
		kept := make([]string, 0, len(authors))
		for _, id := range authors {
			if id != authorID {
				kept = append(kept, id)
			}
		}
		if len(kept) > 0 {
			updated[k] = kept
		}
	}

	added := false
	if !hadAny || held != kind {
		updated[kind] = append(updated[kind], authorID)
		added = true
	}

	if err := s.messages.UpdateReactions(ctx, messageID, updated); err != nil {
		metrics.RecordEngineOperation("reaction", "toggle", err)
		return nil, fmt.Errorf("failed to update reactions: %w", err)
	}

	outcome := "removed"
	if added {
		if hadAny {
			outcome = "moved"
		} else {
			outcome = "added"
		}
		// One-way ratchet: churn on reactions must not drag scores below
		// where they started.
		if err := s.messages.AddScore(ctx, messageID, 1); err != nil {
			s.logger.Warn("could not bump message aura", "message_id", messageID, "error", err)
		}
		if err := s.profiles.AddKarma(ctx, msg.AuthorID, 1); err != nil {
			s.logger.Warn("could not bump author karma", "author_id", msg.AuthorID, "error", err)
		}
	}
	metrics.ReactionsToggled.WithLabelValues(string(kind), outcome).Inc()

	return updated, nil
}

// SubmitReport records reporterID's reason against the message,
// overwriting any earlier report from the same reporter. Crossing the
// flag threshold deletes the message outright in the same call; there is
// no appeal path.
func (s *ReactionService) SubmitReport(ctx context.Context, messageID, reporterID, reason string) error {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return fmt.Errorf("failed to get message: %w", err)
	}

	reports := make(map[string]string, len(msg.Reports)+1)
	for id, r := range msg.Reports {
		reports[id] = r
	}
	reports[reporterID] = reason

	metrics.ReportsSubmitted.Inc()

	if len(reports) >= s.flagThreshold {
		if err := s.messages.Delete(ctx, messageID); err != nil {
			return fmt.Errorf("failed to remove flagged message: %w", err)
		}
		metrics.MessagesAutoRemoved.Inc()
		s.logger.Info("message removed by flag threshold",
			"message_id", messageID,
			"community", msg.Community,
			"flag_count", len(reports))
		return nil
	}

	if err := s.messages.UpdateReports(ctx, messageID, reports); err != nil {
		return fmt.Errorf("failed to update reports: %w", err)
	}
	return nil
}
