package services

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/devilmonastery/blackhole/internal/domain/entities"
	"github.com/devilmonastery/blackhole/internal/pkg/timeutil"
)

// Name and color pools for generated identities.
var (
	identityAdjectives = []string{
		"Sus", "Based", "Cringe", "Goated", "Mid", "Salty", "Woke", "Dank", "Ghosted", "Simp",
		"Glitchy", "Neon", "Cyber", "Toxic", "Savage", "Moody", "Hype", "Chill", "Vibing",
	}
	identityNouns = []string{
		"NPC", "MainCharacter", "Backbencher", "Topper", "Dropout", "Intern", "Fresher", "Senior",
		"Influencer", "Gamer", "Hacker", "Bot", "Stan", "Chad", "Karen", "Zoomer", "Doomer",
	}
	identityColors = []string{
		"#39FF14", // neon green
		"#FF00FF", // neon pink
		"#00FFFF", // neon cyan
		"#FFFF00", // neon yellow
		"#FF3131", // neon red
		"#1F51FF", // neon blue
	}
)

// IdentityService owns the anonymous persona for one session: a
// name/color pair generated from fixed pools, rotated once per purge
// cycle, and reconciled local-wins against the account copy.
type IdentityService struct {
	mu      sync.Mutex
	current entities.Identity
	rng     *rand.Rand
	now     func() time.Time
	logger  *slog.Logger
}

// NewIdentityService creates an identity service seeded with a fresh
// persona.
func NewIdentityService(logger *slog.Logger) *IdentityService {
	s := &IdentityService{
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		now:    time.Now,
		logger: logger.With("component", "identity_service"),
	}
	s.current = s.generate()
	return s
}

func (s *IdentityService) generate() entities.Identity {
	return entities.Identity{
		DisplayName:  identityAdjectives[s.rng.Intn(len(identityAdjectives))] + " " + identityNouns[s.rng.Intn(len(identityNouns))],
		DisplayColor: identityColors[s.rng.Intn(len(identityColors))],
	}
}

// Mint draws a fresh identity from the pools without touching the
// current one.
func (s *IdentityService) Mint() entities.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generate()
}

// Get returns the current identity.
func (s *IdentityService) Get() entities.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Regenerate replaces the identity with a fresh one and returns it.
func (s *IdentityService) Regenerate() entities.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = s.generate()
	s.logger.Info("identity rotated", "display_name", s.current.DisplayName)
	return s.current
}

// Reconcile resolves a divergence between the local identity and the
// account copy. Local wins: the local identity is kept and the caller is
// told whether the account copy needs to be rewritten to match. An empty
// local identity adopts the account copy instead.
func (s *IdentityService) Reconcile(account entities.Identity) (entities.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current.DisplayName == "" && account.DisplayName != "" {
		s.current = account
		return s.current, false
	}
	return s.current, s.current != account
}

// Schedule rotates the identity at every purge boundary until the
// context is cancelled, invoking onRotate with each new identity. The
// rotation is an explicit state transition plus notification; callers
// must not rely on restarts to refresh personas.
func (s *IdentityService) Schedule(ctx context.Context, onRotate func(entities.Identity)) {
	go func() {
		for {
			wait := timeutil.UntilNextBoundary(s.now())
			select {
			case <-time.After(wait):
				id := s.Regenerate()
				if onRotate != nil {
					onRotate(id)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
