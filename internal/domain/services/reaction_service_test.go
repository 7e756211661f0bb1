package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/devilmonastery/blackhole/internal/domain/entities"
	"github.com/devilmonastery/blackhole/internal/domain/repositories"
)

func newTestReactionService() (*ReactionService, *fakeMessageRepo, *fakeProfileRepo) {
	messages := newFakeMessageRepo()
	profiles := newFakeProfileRepo()
	svc := NewReactionService(messages, profiles, slog.Default())
	return svc, messages, profiles
}

func seedMessage(t *testing.T, repo *fakeMessageRepo, id, authorID string) {
	t.Helper()
	err := repo.Create(context.Background(), &entities.Message{
		ID:        id,
		Community: "pes",
		Content:   "hello",
		AuthorID:  authorID,
		GroupName: entities.GroupMain,
		Kind:      entities.KindNormal,
		Reactions: map[entities.ReactionKind][]string{},
		Reports:   map[string]string{},
	})
	if err != nil {
		t.Fatalf("seed message: %v", err)
	}
}

func holders(m map[entities.ReactionKind][]string, kind entities.ReactionKind) []string {
	return m[kind]
}

func TestToggleReactionIdempotentOverTwoApplies(t *testing.T) {
	ctx := context.Background()
	svc, messages, _ := newTestReactionService()
	seedMessage(t, messages, "m1", "author")

	// apply once: present
	got, err := svc.ToggleReaction(ctx, "m1", "u1", entities.ReactionFire)
	if err != nil {
		t.Fatalf("toggle 1: %v", err)
	}
	if len(holders(got, entities.ReactionFire)) != 1 {
		t.Fatalf("after 1st toggle fire holders = %v, want [u1]", got)
	}

	// apply again: absent
	got, err = svc.ToggleReaction(ctx, "m1", "u1", entities.ReactionFire)
	if err != nil {
		t.Fatalf("toggle 2: %v", err)
	}
	if len(holders(got, entities.ReactionFire)) != 0 {
		t.Fatalf("after 2nd toggle fire holders = %v, want none", got)
	}

	// and a third time: present again
	got, err = svc.ToggleReaction(ctx, "m1", "u1", entities.ReactionFire)
	if err != nil {
		t.Fatalf("toggle 3: %v", err)
	}
	if len(holders(got, entities.ReactionFire)) != 1 {
		t.Fatalf("after 3rd toggle fire holders = %v, want [u1]", got)
	}
}

func TestToggleReactionExclusive(t *testing.T) {
	ctx := context.Background()
	svc, messages, _ := newTestReactionService()
	seedMessage(t, messages, "m1", "author")

	if _, err := svc.ToggleReaction(ctx, "m1", "u1", entities.ReactionFire); err != nil {
		t.Fatalf("toggle fire: %v", err)
	}
	got, err := svc.ToggleReaction(ctx, "m1", "u1", entities.ReactionCry)
	if err != nil {
		t.Fatalf("toggle cry: %v", err)
	}

	if len(holders(got, entities.ReactionFire)) != 0 {
		t.Errorf("u1 still under fire after moving: %v", got)
	}
	if h := holders(got, entities.ReactionCry); len(h) != 1 || h[0] != "u1" {
		t.Errorf("cry holders = %v, want [u1]", h)
	}
}

func TestToggleReactionScoreRatchet(t *testing.T) {
	ctx := context.Background()
	svc, messages, profiles := newTestReactionService()
	seedMessage(t, messages, "m1", "author")

	// add: +1 aura, +1 author karma
	if _, err := svc.ToggleReaction(ctx, "m1", "u1", entities.ReactionFire); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	msg, _ := messages.GetByID(ctx, "m1")
	if msg.Score != 1 {
		t.Errorf("score after add = %d, want 1", msg.Score)
	}
	p, _ := profiles.GetByID(ctx, "author")
	if p.Karma != 1 {
		t.Errorf("author karma after add = %d, want 1", p.Karma)
	}

	// remove: no decrement
	if _, err := svc.ToggleReaction(ctx, "m1", "u1", entities.ReactionFire); err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	msg, _ = messages.GetByID(ctx, "m1")
	if msg.Score != 1 {
		t.Errorf("score after removal = %d, want 1 (one-way ratchet)", msg.Score)
	}

	// moving kinds still counts as a new add
	if _, err := svc.ToggleReaction(ctx, "m1", "u1", entities.ReactionLaugh); err != nil {
		t.Fatalf("toggle laugh: %v", err)
	}
	if _, err := svc.ToggleReaction(ctx, "m1", "u1", entities.ReactionSkull); err != nil {
		t.Fatalf("toggle skull: %v", err)
	}
	msg, _ = messages.GetByID(ctx, "m1")
	if msg.Score != 3 {
		t.Errorf("score after add+move = %d, want 3", msg.Score)
	}
}

func TestToggleReactionUnknownKind(t *testing.T) {
	svc, messages, _ := newTestReactionService()
	seedMessage(t, messages, "m1", "author")

	if _, err := svc.ToggleReaction(context.Background(), "m1", "u1", "thumbsup"); !errors.Is(err, ErrUnknownReaction) {
		t.Errorf("error = %v, want ErrUnknownReaction", err)
	}
}

func TestSubmitReportThreshold(t *testing.T) {
	ctx := context.Background()
	svc, messages, _ := newTestReactionService()
	seedMessage(t, messages, "m1", "author")

	// Four distinct reporters: message survives.
	for i := 0; i < 4; i++ {
		if err := svc.SubmitReport(ctx, "m1", fmt.Sprintf("reporter-%d", i), "spam"); err != nil {
			t.Fatalf("report %d: %v", i+1, err)
		}
	}
	msg, err := messages.GetByID(ctx, "m1")
	if err != nil {
		t.Fatalf("message gone before threshold: %v", err)
	}
	if msg.FlagCount() != 4 {
		t.Errorf("flag_count = %d, want 4", msg.FlagCount())
	}

	// Fifth distinct reporter crosses the threshold: deleted outright.
	if err := svc.SubmitReport(ctx, "m1", "reporter-4", "spam"); err != nil {
		t.Fatalf("fifth report: %v", err)
	}
	if _, err := messages.GetByID(ctx, "m1"); !errors.Is(err, repositories.ErrMessageNotFound) {
		t.Errorf("message should be deleted at threshold, got err = %v", err)
	}
}

func TestSubmitReportOverwritesSameReporter(t *testing.T) {
	ctx := context.Background()
	svc, messages, _ := newTestReactionService()
	seedMessage(t, messages, "m1", "author")

	// The same reporter reporting repeatedly holds one outstanding
	// report, so the threshold never trips.
	for i := 0; i < 6; i++ {
		if err := svc.SubmitReport(ctx, "m1", "reporter-1", fmt.Sprintf("reason %d", i)); err != nil {
			t.Fatalf("report %d: %v", i+1, err)
		}
	}
	msg, err := messages.GetByID(ctx, "m1")
	if err != nil {
		t.Fatalf("message deleted by a single reporter: %v", err)
	}
	if msg.FlagCount() != 1 {
		t.Errorf("flag_count = %d, want 1", msg.FlagCount())
	}
	if msg.Reports["reporter-1"] != "reason 5" {
		t.Errorf("reason = %q, want the latest overwrite", msg.Reports["reporter-1"])
	}
}
