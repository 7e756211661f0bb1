package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/devilmonastery/blackhole/internal/domain/entities"
	"github.com/devilmonastery/blackhole/internal/pkg/timeutil"
)

func newTestMessageService() (*MessageService, *fakeMessageRepo, *fakeGroupRepo, *fakeProfileRepo) {
	messages := newFakeMessageRepo()
	groups := newFakeGroupRepo()
	profiles := newFakeProfileRepo()
	registry := NewGroupService(groups)
	svc := NewMessageService(messages, profiles, registry, slog.Default())
	return svc, messages, groups, profiles
}

func TestResolveRoute(t *testing.T) {
	tests := []struct {
		name       string
		confession bool
		filter     string
		wantGroup  string
		wantKind   entities.MessageKind
	}{
		{
			name:       "confession mode wins over hashtag filter",
			confession: true,
			filter:     "#study",
			wantGroup:  "confession",
			wantKind:   entities.KindConfession,
		},
		{
			name:       "confession mode wins over all filter",
			confession: true,
			filter:     "all",
			wantGroup:  "confession",
			wantKind:   entities.KindConfession,
		},
		{
			name:      "hashtag filter targets the viewed room",
			filter:    "#study",
			wantGroup: "study",
			wantKind:  entities.KindNormal,
		},
		{
			name:      "hashtag filter is normalized",
			filter:    "#StuDY",
			wantGroup: "study",
			wantKind:  entities.KindNormal,
		},
		{
			name:      "all filter goes to main",
			filter:    "all",
			wantGroup: "main",
			wantKind:  entities.KindNormal,
		},
		{
			name:      "empty filter goes to main",
			filter:    "",
			wantGroup: "main",
			wantKind:  entities.KindNormal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route, err := ResolveRoute(PostRequest{ConfessionMode: tt.confession, ActiveFilter: tt.filter})
			if err != nil {
				t.Fatalf("ResolveRoute: %v", err)
			}
			if route.GroupName != tt.wantGroup {
				t.Errorf("group = %q, want %q", route.GroupName, tt.wantGroup)
			}
			if route.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", route.Kind, tt.wantKind)
			}
		})
	}
}

func TestPostCreatesHashtagRoom(t *testing.T) {
	ctx := context.Background()
	svc, _, groups, _ := newTestMessageService()

	msg, err := svc.Post(ctx, PostRequest{
		Community:    "pes",
		Content:      "anyone in the library?",
		AuthorID:     "user-1",
		Identity:     entities.Identity{DisplayName: "Neon NPC", DisplayColor: "#39FF14"},
		ActiveFilter: "#library",
	})
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if msg.GroupName != "library" {
		t.Errorf("group = %q, want library", msg.GroupName)
	}
	if _, err := groups.GetByTag(ctx, "pes", "library"); err != nil {
		t.Errorf("posting must ensure the room exists: %v", err)
	}
	if len(msg.Hashtags) != 1 || msg.Hashtags[0] != "library" {
		t.Errorf("hashtags = %v, want [library]", msg.Hashtags)
	}
}

func TestPostToMainCreatesNoRoom(t *testing.T) {
	ctx := context.Background()
	svc, _, groups, _ := newTestMessageService()

	msg, err := svc.Post(ctx, PostRequest{
		Community:    "pes",
		Content:      "hello",
		AuthorID:     "user-1",
		ActiveFilter: "all",
	})
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if msg.GroupName != "main" {
		t.Errorf("group = %q, want main", msg.GroupName)
	}
	if len(groups.groups) != 0 {
		t.Errorf("posting to main must not create groups, got %d", len(groups.groups))
	}
}

func TestPostBumpsPosterKarma(t *testing.T) {
	ctx := context.Background()
	svc, _, _, profiles := newTestMessageService()

	if _, err := svc.Post(ctx, PostRequest{Community: "pes", Content: "hi", AuthorID: "user-1"}); err != nil {
		t.Fatalf("Post: %v", err)
	}
	p, err := profiles.GetByID(ctx, "user-1")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if p.Karma != 1 {
		t.Errorf("karma = %d, want 1", p.Karma)
	}
}

func TestConfessionQuota(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestMessageService()

	// Pin the clock mid-civil-day so the two confessions land after the
	// current boundary.
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	remaining, err := svc.RemainingConfessions(ctx, "user-1")
	if err != nil {
		t.Fatalf("RemainingConfessions: %v", err)
	}
	if remaining != 2 {
		t.Fatalf("fresh author remaining = %d, want 2", remaining)
	}

	req := PostRequest{Community: "pes", Content: "secret", AuthorID: "user-1", ConfessionMode: true}
	for i := 0; i < 2; i++ {
		if _, err := svc.Post(ctx, req); err != nil {
			t.Fatalf("confession %d: %v", i+1, err)
		}
	}

	if remaining, _ = svc.RemainingConfessions(ctx, "user-1"); remaining != 0 {
		t.Errorf("remaining after two = %d, want 0", remaining)
	}

	if _, err := svc.Post(ctx, req); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("third confession error = %v, want ErrQuotaExceeded", err)
	}

	// Another author is unaffected.
	other := req
	other.AuthorID = "user-2"
	if _, err := svc.Post(ctx, other); err != nil {
		t.Errorf("other author's confession: %v", err)
	}

	// Crossing the boundary resets the quota.
	svc.now = func() time.Time { return timeutil.NextBoundary(now).Add(time.Second) }
	if remaining, _ = svc.RemainingConfessions(ctx, "user-1"); remaining != 2 {
		t.Errorf("remaining after boundary = %d, want 2", remaining)
	}
	if _, err := svc.Post(ctx, req); err != nil {
		t.Errorf("confession after boundary: %v", err)
	}
}

func TestConfessionAlwaysFilesIntoConfessionGroup(t *testing.T) {
	ctx := context.Background()
	svc, messages, _, _ := newTestMessageService()

	if _, err := svc.Post(ctx, PostRequest{
		Community:      "pes",
		Content:        "secret",
		AuthorID:       "user-1",
		ConfessionMode: true,
		ActiveFilter:   "#study",
	}); err != nil {
		t.Fatalf("Post: %v", err)
	}

	got := messages.messages[0]
	if got.GroupName != entities.GroupConfession || got.Kind != entities.KindConfession {
		t.Errorf("confession filed as (%q, %q), want (confession, confession)", got.GroupName, got.Kind)
	}
}

func TestListMessagesFilters(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestMessageService()

	seed := []PostRequest{
		{Community: "pes", Content: "main talk", AuthorID: "u1"},
		{Community: "pes", Content: "secret", AuthorID: "u1", ConfessionMode: true},
		{Community: "pes", Content: "tag talk", AuthorID: "u2", ActiveFilter: "#study"},
	}
	for _, req := range seed {
		if _, err := svc.Post(ctx, req); err != nil {
			t.Fatalf("seed post: %v", err)
		}
	}

	tests := []struct {
		filter string
		want   string
	}{
		{"all", "main talk"},
		{"confession", "secret"},
		{"#study", "tag talk"},
	}
	for _, tt := range tests {
		msgs, err := svc.ListMessages(ctx, "pes", tt.filter, 0)
		if err != nil {
			t.Fatalf("ListMessages(%q): %v", tt.filter, err)
		}
		if len(msgs) != 1 || msgs[0].Content != tt.want {
			t.Errorf("ListMessages(%q) = %d msgs, want exactly %q", tt.filter, len(msgs), tt.want)
		}
	}
}

func TestPostAnnotatesContentHashtags(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestMessageService()

	tests := []struct {
		name    string
		content string
		filter  string
		want    []string
	}{
		{"tags in main post", "#Exams soon, #midsem after #exams", "all", []string{"exams", "midsem"}},
		{"room tag merged in", "#exams panic", "#library", []string{"exams", "library"}},
		{"room tag not doubled", "more #library talk", "#library", []string{"library"}},
		{"no tags anywhere", "plain talk", "all", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := svc.Post(ctx, PostRequest{
				Community:    "pes",
				Content:      tt.content,
				AuthorID:     "user-1",
				ActiveFilter: tt.filter,
			})
			if err != nil {
				t.Fatalf("Post: %v", err)
			}
			if len(msg.Hashtags) != len(tt.want) {
				t.Fatalf("hashtags = %v, want %v", msg.Hashtags, tt.want)
			}
			for i, tag := range tt.want {
				if msg.Hashtags[i] != tag {
					t.Errorf("hashtags = %v, want %v", msg.Hashtags, tt.want)
					break
				}
			}
		})
	}
}
