package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/adhocore/gronx"

	"github.com/devilmonastery/blackhole/internal/domain/repositories"
	"github.com/devilmonastery/blackhole/internal/pkg/metrics"
	"github.com/devilmonastery/blackhole/internal/pkg/timeutil"
)

// DefaultGroupInactivityTimeout is how long a hashtag group may sit idle
// before the sweeper removes it.
const DefaultGroupInactivityTimeout = 120 * time.Minute

// DefaultSweepCron runs the sweeps every five minutes.
const DefaultSweepCron = "*/5 * * * *"

// PurgeService deletes idle groups and everything older than the daily
// purge boundary. Deletes are predicate-scoped, so concurrent sweepers
// need no coordination and repeated runs are no-ops.
type PurgeService struct {
	messages          repositories.MessageRepository
	groups            repositories.GroupRepository
	inactivityTimeout time.Duration
	now               func() time.Time
	logger            *slog.Logger
}

// NewPurgeService creates a new purge sweeper
func NewPurgeService(messages repositories.MessageRepository, groups repositories.GroupRepository, logger *slog.Logger) *PurgeService {
	return &PurgeService{
		messages:          messages,
		groups:            groups,
		inactivityTimeout: DefaultGroupInactivityTimeout,
		now:               time.Now,
		logger:            logger.With("component", "purge_service"),
	}
}

// SetInactivityTimeout overrides the idle-group timeout.
func (s *PurgeService) SetInactivityTimeout(d time.Duration) {
	if d > 0 {
		s.inactivityTimeout = d
	}
}

// SweepInactiveGroups deletes every group in the community whose last
// activity is older than the inactivity timeout.
func (s *PurgeService) SweepInactiveGroups(ctx context.Context, community string) error {
	start := s.now()
	cutoff := start.Add(-s.inactivityTimeout)

	deleted, err := s.groups.DeleteIdle(ctx, community, cutoff)
	metrics.SweepDuration.WithLabelValues("inactive_groups").Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.SweepRuns.WithLabelValues("inactive_groups", "error").Inc()
		return fmt.Errorf("failed to sweep idle groups: %w", err)
	}

	metrics.SweepRuns.WithLabelValues("inactive_groups", "success").Inc()
	metrics.SweepDeleted.WithLabelValues("hashtag_groups").Add(float64(deleted))
	if deleted > 0 {
		s.logger.Info("swept idle groups", "community", community, "deleted", deleted)
	}
	return nil
}

// SweepGlobalPurge deletes every message and group in the community
// created before the current purge boundary. The two phases are
// independent: a failure in one is reported but does not stop the other.
func (s *PurgeService) SweepGlobalPurge(ctx context.Context, community string) error {
	start := s.now()
	boundary := timeutil.CurrentBoundary(start)

	var firstErr error

	msgs, err := s.messages.DeleteCreatedBefore(ctx, community, boundary)
	if err != nil {
		s.logger.Error("message purge failed", "community", community, "error", err)
		firstErr = fmt.Errorf("failed to purge messages: %w", err)
	} else {
		metrics.SweepDeleted.WithLabelValues("messages").Add(float64(msgs))
	}

	groups, err := s.groups.DeleteCreatedBefore(ctx, community, boundary)
	if err != nil {
		s.logger.Error("group purge failed", "community", community, "error", err)
		if firstErr == nil {
			firstErr = fmt.Errorf("failed to purge groups: %w", err)
		}
	} else {
		metrics.SweepDeleted.WithLabelValues("hashtag_groups").Add(float64(groups))
	}

	metrics.SweepDuration.WithLabelValues("global_purge").Observe(float64(time.Since(start).Milliseconds()))
	if firstErr != nil {
		metrics.SweepRuns.WithLabelValues("global_purge", "error").Inc()
		return firstErr
	}

	metrics.SweepRuns.WithLabelValues("global_purge", "success").Inc()
	if msgs > 0 || groups > 0 {
		s.logger.Info("global purge complete",
			"community", community,
			"boundary", boundary,
			"messages_deleted", msgs,
			"groups_deleted", groups)
	}
	return nil
}

// SweepAll runs both sweeps for every community. Errors are logged per
// community; one community's failure never blocks the rest.
func (s *PurgeService) SweepAll(ctx context.Context, communities []string) {
	for _, community := range communities {
		if err := s.SweepInactiveGroups(ctx, community); err != nil {
			s.logger.Error("inactive-group sweep failed", "community", community, "error", err)
		}
		if err := s.SweepGlobalPurge(ctx, community); err != nil {
			s.logger.Error("global purge failed", "community", community, "error", err)
		}
	}
}

// Run sweeps immediately and then on the cron cadence until the context
// is cancelled. The cron expression is validated up front.
func (s *PurgeService) Run(ctx context.Context, cronExpr string, communities []string) error {
	if cronExpr == "" {
		cronExpr = DefaultSweepCron
	}
	if !gronx.IsValid(cronExpr) {
		return fmt.Errorf("invalid sweep cron expression: %s", cronExpr)
	}

	s.logger.Info("purge sweeper started", "cron", cronExpr, "communities", len(communities))
	s.SweepAll(ctx, communities)

	for {
		next, err := gronx.NextTickAfter(cronExpr, s.now().UTC(), false)
		if err != nil {
			s.logger.Error("could not compute next sweep tick", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		select {
		case <-time.After(time.Until(next)):
			s.SweepAll(ctx, communities)
		case <-ctx.Done():
			s.logger.Info("purge sweeper stopping")
			return ctx.Err()
		}
	}
}
