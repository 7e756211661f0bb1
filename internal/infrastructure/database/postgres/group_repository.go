package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/devilmonastery/blackhole/internal/domain/entities"
	"github.com/devilmonastery/blackhole/internal/domain/repositories"
	"github.com/devilmonastery/blackhole/internal/pkg/idgen"
	"github.com/devilmonastery/blackhole/internal/pkg/metrics"
)

// pq error code for unique_violation.
const uniqueViolation = "23505"

type groupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository creates a new PostgreSQL hashtag group repository
func NewGroupRepository(db *sqlx.DB) repositories.GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Create(ctx context.Context, group *entities.HashtagGroup) error {
	start := time.Now()
	if group.ID == "" {
		group.ID = idgen.GenerateID()
	}
	now := time.Now()
	if group.CreatedAt.IsZero() {
		group.CreatedAt = now
	}
	if group.LastActivityAt.IsZero() {
		group.LastActivityAt = group.CreatedAt
	}

	query := `
		INSERT INTO hashtag_groups (id, community, tag, message_count, last_activity_at, created_at, owner_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		group.ID, group.Community, group.Tag, group.MessageCount,
		group.LastActivityAt, group.CreatedAt, nullString(group.OwnerID), group.IsActive,
	)
	metrics.RecordDBOperation("group", "create", time.Since(start), err)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
		return repositories.ErrDuplicateGroup
	}
	return err
}

const groupColumns = `id, community, tag, message_count, last_activity_at, created_at, owner_id, is_active`

func (r *groupRepository) GetByTag(ctx context.Context, community, tag string) (*entities.HashtagGroup, error) {
	start := time.Now()
	query := `SELECT ` + groupColumns + ` FROM hashtag_groups WHERE community = $1 AND tag = $2`

	group, err := scanGroup(r.db.QueryRowContext(ctx, query, community, tag))
	metrics.RecordDBOperation("group", "get", time.Since(start), err)
	if err == sql.ErrNoRows {
		return nil, repositories.ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}
	return group, nil
}

func (r *groupRepository) Top(ctx context.Context, community string, limit int) ([]*entities.HashtagGroup, error) {
	start := time.Now()
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT ` + groupColumns + ` FROM hashtag_groups
		WHERE community = $1
		ORDER BY message_count DESC, id ASC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, community, limit)
	metrics.RecordDBOperation("group", "top", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := []*entities.HashtagGroup{}
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, rows.Err()
}

func (r *groupRepository) ActiveOwnedBy(ctx context.Context, ownerID string) (*entities.HashtagGroup, error) {
	start := time.Now()
	// One active group per owner is enforced at the service layer; the
	// LIMIT guards against any historical duplicates.
	query := `
		SELECT ` + groupColumns + ` FROM hashtag_groups
		WHERE owner_id = $1 AND is_active
		ORDER BY created_at DESC
		LIMIT 1
	`
	group, err := scanGroup(r.db.QueryRowContext(ctx, query, ownerID))
	metrics.RecordDBOperation("group", "active_owned_by", time.Since(start), err)
	if err == sql.ErrNoRows {
		return nil, repositories.ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}
	return group, nil
}

func (r *groupRepository) DeleteIdle(ctx context.Context, community string, cutoff time.Time) (int64, error) {
	start := time.Now()
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM hashtag_groups WHERE community = $1 AND last_activity_at < $2`, community, cutoff)
	metrics.RecordDBOperation("group", "delete_idle", time.Since(start), err)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *groupRepository) DeleteCreatedBefore(ctx context.Context, community string, cutoff time.Time) (int64, error) {
	start := time.Now()
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM hashtag_groups WHERE community = $1 AND created_at < $2`, community, cutoff)
	metrics.RecordDBOperation("group", "delete_before", time.Since(start), err)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanGroup(row rowScanner) (*entities.HashtagGroup, error) {
	group := &entities.HashtagGroup{}
	var owner sql.NullString

	err := row.Scan(
		&group.ID, &group.Community, &group.Tag, &group.MessageCount,
		&group.LastActivityAt, &group.CreatedAt, &owner, &group.IsActive,
	)
	if err != nil {
		return nil, err
	}
	group.OwnerID = owner.String
	return group, nil
}
