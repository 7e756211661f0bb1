package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/devilmonastery/blackhole/internal/domain/entities"
	"github.com/devilmonastery/blackhole/internal/domain/repositories"
	"github.com/devilmonastery/blackhole/internal/pkg/idgen"
	"github.com/devilmonastery/blackhole/internal/pkg/metrics"
)

type messageRepository struct {
	db *sqlx.DB
}

// NewMessageRepository creates a new PostgreSQL message repository
func NewMessageRepository(db *sqlx.DB) repositories.MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, msg *entities.Message) error {
	start := time.Now()
	if msg.ID == "" {
		msg.ID = idgen.GenerateID()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	if msg.Reactions == nil {
		msg.Reactions = map[entities.ReactionKind][]string{}
	}
	if msg.Reports == nil {
		msg.Reports = map[string]string{}
	}

	reactions, err := json.Marshal(msg.Reactions)
	if err != nil {
		return fmt.Errorf("failed to encode reactions: %w", err)
	}
	reports, err := json.Marshal(msg.Reports)
	if err != nil {
		return fmt.Errorf("failed to encode reports: %w", err)
	}

	query := `
		INSERT INTO messages (id, community, content, author_id, display_name, display_color,
		                      kind, group_name, reply_to_id, reactions, reports, hashtags, score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = r.db.ExecContext(ctx, query,
		msg.ID, msg.Community, msg.Content, msg.AuthorID, msg.DisplayName, msg.DisplayColor,
		msg.Kind, msg.GroupName, nullString(msg.ReplyToID), reactions, reports,
		pq.Array(msg.Hashtags), msg.Score, msg.CreatedAt,
	)
	metrics.RecordDBOperation("message", "create", time.Since(start), err)
	return err
}

const messageColumns = `id, community, content, author_id, display_name, display_color,
	kind, group_name, reply_to_id, reactions, reports, hashtags, score, created_at`

func (r *messageRepository) GetByID(ctx context.Context, id string) (*entities.Message, error) {
	start := time.Now()
	query := fmt.Sprintf(`SELECT %s FROM messages WHERE id = $1`, messageColumns)

	msg, err := scanMessage(r.db.QueryRowContext(ctx, query, id))
	metrics.RecordDBOperation("message", "get", time.Since(start), err)
	if err == sql.ErrNoRows {
		return nil, repositories.ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (r *messageRepository) ListByGroup(ctx context.Context, community, groupName string, limit int) ([]*entities.Message, error) {
	start := time.Now()
	if limit <= 0 {
		limit = 500
	}

	query := fmt.Sprintf(`
		SELECT %s FROM messages
		WHERE community = $1 AND group_name = $2
		ORDER BY created_at ASC
		LIMIT $3
	`, messageColumns)

	rows, err := r.db.QueryContext(ctx, query, community, groupName, limit)
	metrics.RecordDBOperation("message", "list", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMessages(rows)
}

func (r *messageRepository) UpdateReactions(ctx context.Context, id string, reactions map[entities.ReactionKind][]string) error {
	start := time.Now()
	encoded, err := json.Marshal(reactions)
	if err != nil {
		return fmt.Errorf("failed to encode reactions: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `UPDATE messages SET reactions = $2 WHERE id = $1`, id, encoded)
	metrics.RecordDBOperation("message", "update_reactions", time.Since(start), err)
	return err
}

func (r *messageRepository) UpdateReports(ctx context.Context, id string, reports map[string]string) error {
	start := time.Now()
	encoded, err := json.Marshal(reports)
	if err != nil {
		return fmt.Errorf("failed to encode reports: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `UPDATE messages SET reports = $2 WHERE id = $1`, id, encoded)
	metrics.RecordDBOperation("message", "update_reports", time.Since(start), err)
	return err
}

func (r *messageRepository) AddScore(ctx context.Context, id string, delta int) error {
	start := time.Now()
	_, err := r.db.ExecContext(ctx, `UPDATE messages SET score = score + $2 WHERE id = $1`, id, delta)
	metrics.RecordDBOperation("message", "add_score", time.Since(start), err)
	return err
}

func (r *messageRepository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	// Predicate delete: an absent row is a no-op, which keeps concurrent
	// threshold crossings and sweeps safe.
	_, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = $1`, id)
	metrics.RecordDBOperation("message", "delete", time.Since(start), err)
	return err
}

func (r *messageRepository) DeleteCreatedBefore(ctx context.Context, community string, cutoff time.Time) (int64, error) {
	start := time.Now()
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM messages WHERE community = $1 AND created_at < $2`, community, cutoff)
	metrics.RecordDBOperation("message", "delete_before", time.Since(start), err)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *messageRepository) CountConfessionsSince(ctx context.Context, authorID string, cutoff time.Time) (int, error) {
	start := time.Now()
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE author_id = $1 AND kind = $2 AND created_at >= $3`,
		authorID, entities.KindConfession, cutoff,
	).Scan(&count)
	metrics.RecordDBOperation("message", "count_confessions", time.Since(start), err)
	return count, err
}

func (r *messageRepository) TopByReactions(ctx context.Context, community string, limit int) ([]*entities.Message, error) {
	start := time.Now()
	if limit <= 0 {
		limit = 3
	}

	// Total reactions = sum of holder-array lengths across every kind in
	// the JSONB map.
	query := fmt.Sprintf(`
		SELECT %s FROM messages
		WHERE community = $1
		ORDER BY (
			SELECT COALESCE(SUM(jsonb_array_length(value)), 0)
			FROM jsonb_each(reactions)
		) DESC, created_at ASC
		LIMIT $2
	`, messageColumns)

	rows, err := r.db.QueryContext(ctx, query, community, limit)
	metrics.RecordDBOperation("message", "top_by_reactions", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMessages(rows)
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMessage(row rowScanner) (*entities.Message, error) {
	msg := &entities.Message{}
	var replyTo sql.NullString
	var reactions, reports []byte
	var hashtags pq.StringArray

	err := row.Scan(
		&msg.ID, &msg.Community, &msg.Content, &msg.AuthorID, &msg.DisplayName, &msg.DisplayColor,
		&msg.Kind, &msg.GroupName, &replyTo, &reactions, &reports, &hashtags,
		&msg.Score, &msg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	msg.ReplyToID = replyTo.String
	msg.Hashtags = hashtags
	if err := json.Unmarshal(reactions, &msg.Reactions); err != nil {
		return nil, fmt.Errorf("failed to decode reactions for %s: %w", msg.ID, err)
	}
	if err := json.Unmarshal(reports, &msg.Reports); err != nil {
		return nil, fmt.Errorf("failed to decode reports for %s: %w", msg.ID, err)
	}
	return msg, nil
}

func collectMessages(rows *sql.Rows) ([]*entities.Message, error) {
	msgs := []*entities.Message{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
