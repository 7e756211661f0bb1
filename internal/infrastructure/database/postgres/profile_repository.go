package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/devilmonastery/blackhole/internal/domain/entities"
	"github.com/devilmonastery/blackhole/internal/domain/repositories"
	"github.com/devilmonastery/blackhole/internal/pkg/metrics"
)

type profileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a new PostgreSQL profile repository
func NewProfileRepository(db *sqlx.DB) repositories.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Upsert(ctx context.Context, profile *entities.Profile) error {
	start := time.Now()
	query := `
		INSERT INTO profiles (id, community, display_name, display_color, karma, updated_at)
		VALUES ($1, $2, $3, $4, 0, NOW())
		ON CONFLICT (id) DO UPDATE SET
			community     = EXCLUDED.community,
			display_name  = EXCLUDED.display_name,
			display_color = EXCLUDED.display_color,
			updated_at    = NOW()
	`
	_, err := r.db.ExecContext(ctx, query,
		profile.ID, profile.Community, profile.DisplayName, profile.DisplayColor)
	metrics.RecordDBOperation("profile", "upsert", time.Since(start), err)
	return err
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*entities.Profile, error) {
	start := time.Now()
	profile := &entities.Profile{}
	err := r.db.GetContext(ctx, profile,
		`SELECT id, community, display_name, display_color, karma, updated_at FROM profiles WHERE id = $1`, id)
	metrics.RecordDBOperation("profile", "get", time.Since(start), err)
	if err == sql.ErrNoRows {
		return nil, repositories.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *profileRepository) AddKarma(ctx context.Context, id string, delta int) error {
	start := time.Now()
	// A karma bump may land before the identity has ever been pushed, so
	// the upsert seeds a blank profile on first touch.
	query := `
		INSERT INTO profiles (id, community, display_name, display_color, karma, updated_at)
		VALUES ($1, '', '', '', $2, NOW())
		ON CONFLICT (id) DO UPDATE SET
			karma      = profiles.karma + EXCLUDED.karma,
			updated_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, query, id, delta)
	metrics.RecordDBOperation("profile", "add_karma", time.Since(start), err)
	return err
}

func (r *profileRepository) TopKarma(ctx context.Context, community string, limit int) ([]*entities.Profile, error) {
	start := time.Now()
	if limit <= 0 {
		limit = 10
	}

	profiles := []*entities.Profile{}
	err := r.db.SelectContext(ctx, &profiles, `
		SELECT id, community, display_name, display_color, karma, updated_at
		FROM profiles
		WHERE community = $1
		ORDER BY karma DESC, id ASC
		LIMIT $2
	`, community, limit)
	metrics.RecordDBOperation("profile", "top_karma", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return profiles, nil
}
