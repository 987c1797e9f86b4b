package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/devilmonastery/projectboard/internal/domain/entities"
	"github.com/devilmonastery/projectboard/internal/domain/repositories"
	"github.com/devilmonastery/projectboard/internal/pkg/idgen"
	"github.com/devilmonastery/projectboard/internal/pkg/metrics"
)

// HashtagRepository implements repositories.HashtagRepository
type HashtagRepository struct {
	db  sqlx.ExtContext
	log *slog.Logger
}

// NewHashtagRepository creates a new hashtag repository
func NewHashtagRepository(db sqlx.ExtContext) repositories.HashtagRepository {
	return &HashtagRepository{
		db:  db,
		log: slog.Default().With(slog.String("repo", "hashtag")),
	}
}

type hashtagRow struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *hashtagRow) toEntity() *entities.Hashtag {
	return &entities.Hashtag{
		ID:        r.ID,
		Name:      r.Name,
		CreatedAt: utc(r.CreatedAt),
		UpdatedAt: utc(r.UpdatedAt),
	}
}

// FindOrCreate returns the hashtags named in names, inserting missing ones.
// The result is ordered by name.
func (r *HashtagRepository) FindOrCreate(ctx context.Context, names []string) ([]*entities.Hashtag, error) {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("hashtag", "find_or_create", time.Since(start), int64(len(names)), err)
	}()

	if len(names) == 0 {
		return []*entities.Hashtag{}, nil
	}

	now := entities.Now()
	insert := r.db.Rebind(`INSERT INTO hashtags (id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (name) DO NOTHING`)
	for _, name := range names {
		if _, err = r.db.ExecContext(ctx, insert, idgen.NextID(), name, now, now); err != nil {
			return nil, fmt.Errorf("failed to insert hashtag %q: %w", name, err)
		}
	}

	query, args, err := sqlx.In(`SELECT id, name, created_at, updated_at FROM hashtags WHERE name IN (?) ORDER BY name`, names)
	if err != nil {
		return nil, fmt.Errorf("failed to build hashtag query: %w", err)
	}
	var rows []hashtagRow
	if err = sqlx.SelectContext(ctx, r.db, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to load hashtags: %w", err)
	}

	hashtags := make([]*entities.Hashtag, 0, len(rows))
	for i := range rows {
		hashtags = append(hashtags, rows[i].toEntity())
	}
	return hashtags, nil
}

// GetByName retrieves a hashtag by exact name
func (r *HashtagRepository) GetByName(ctx context.Context, name string) (*entities.Hashtag, error) {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("hashtag", "get_by_name", time.Since(start), -1, err)
	}()

	var row hashtagRow
	query := r.db.Rebind(`SELECT id, name, created_at, updated_at FROM hashtags WHERE name = ?`)
	if err = sqlx.GetContext(ctx, r.db, &row, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = repositories.ErrHashtagNotFound
			return nil, err
		}
		return nil, fmt.Errorf("failed to get hashtag: %w", err)
	}
	return row.toEntity(), nil
}

// ListNames returns every hashtag name in ascending order
func (r *HashtagRepository) ListNames(ctx context.Context) ([]string, error) {
	start := time.Now()
	var err error
	names := []string{}
	defer func() {
		metrics.RecordDBRead("hashtag", "list_names", time.Since(start), len(names), err)
	}()

	if err = sqlx.SelectContext(ctx, r.db, &names, `SELECT name FROM hashtags ORDER BY name`); err != nil {
		return nil, fmt.Errorf("failed to list hashtag names: %w", err)
	}
	return names, nil
}

// DeleteUnused deletes hashtags that no article links to. With ids set only
// those hashtags are considered.
func (r *HashtagRepository) DeleteUnused(ctx context.Context, ids []int64) (int64, error) {
	start := time.Now()
	var err error
	var rows int64
	defer func() {
		metrics.RecordDBOperation("hashtag", "delete_unused", time.Since(start), rows, err)
	}()

	query := `DELETE FROM hashtags
		WHERE NOT EXISTS (SELECT 1 FROM article_hashtags ah WHERE ah.hashtag_id = hashtags.id)`
	var args []interface{}
	if len(ids) > 0 {
		query, args, err = sqlx.In(query+` AND id IN (?)`, ids)
		if err != nil {
			return 0, fmt.Errorf("failed to build hashtag delete query: %w", err)
		}
	}

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete unused hashtags: %w", err)
	}
	rows, err = res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows > 0 {
		r.log.Debug("deleted unused hashtags", slog.Int64("count", rows))
	}
	return rows, nil
}

// Count returns the number of hashtags
func (r *HashtagRepository) Count(ctx context.Context) (int64, error) {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("hashtag", "count", time.Since(start), -1, err)
	}()

	var count int64
	if err = sqlx.GetContext(ctx, r.db, &count, `SELECT COUNT(*) FROM hashtags`); err != nil {
		return 0, fmt.Errorf("failed to count hashtags: %w", err)
	}
	return count, nil
}
