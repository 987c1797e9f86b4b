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

// CommentRepository implements repositories.CommentRepository
type CommentRepository struct {
	db  sqlx.ExtContext
	log *slog.Logger
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db sqlx.ExtContext) repositories.CommentRepository {
	return &CommentRepository{
		db:  db,
		log: slog.Default().With(slog.String("repo", "comment")),
	}
}

type commentRow struct {
	ID              int64          `db:"id"`
	ArticleID       int64          `db:"article_id"`
	UserID          string         `db:"user_id"`
	ParentCommentID sql.NullInt64  `db:"parent_comment_id"`
	Content         string         `db:"content"`
	CreatedAt       time.Time      `db:"created_at"`
	CreatedBy       string         `db:"created_by"`
	UpdatedAt       time.Time      `db:"updated_at"`
	UpdatedBy       string         `db:"updated_by"`
	AuthorNickname  sql.NullString `db:"author_nickname"`
	AuthorEmail     sql.NullString `db:"author_email"`
}

const commentSelect = `SELECT c.id, c.article_id, c.user_id, c.parent_comment_id, c.content,
		c.created_at, c.created_by, c.updated_at, c.updated_by,
		u.nickname AS author_nickname, u.email AS author_email
	FROM article_comments c
	JOIN users u ON u.user_id = c.user_id`

func (r *commentRow) toEntity() *entities.Comment {
	return &entities.Comment{
		ID:              r.ID,
		ArticleID:       r.ArticleID,
		UserID:          r.UserID,
		ParentCommentID: int64Ptr(r.ParentCommentID),
		Content:         r.Content,
		Author: &entities.User{
			UserID:   r.UserID,
			Nickname: r.AuthorNickname.String,
			Email:    r.AuthorEmail.String,
		},
		AuditFields: entities.AuditFields{
			CreatedAt: utc(r.CreatedAt),
			CreatedBy: r.CreatedBy,
			UpdatedAt: utc(r.UpdatedAt),
			UpdatedBy: r.UpdatedBy,
		},
	}
}

// Create stores a new comment, assigning an ID when none is set
func (r *CommentRepository) Create(ctx context.Context, comment *entities.Comment) error {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("comment", "create", time.Since(start), 1, err)
	}()

	if comment.ID == 0 {
		comment.ID = idgen.NextID()
	}
	if comment.CreatedAt.IsZero() {
		comment.Stamp(comment.UserID, entities.Now())
	}

	r.log.Debug("creating comment",
		slog.Int64("id", comment.ID),
		slog.Int64("article_id", comment.ArticleID))

	query := r.db.Rebind(`INSERT INTO article_comments
		(id, article_id, user_id, parent_comment_id, content, created_at, created_by, updated_at, updated_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = r.db.ExecContext(ctx, query,
		comment.ID, comment.ArticleID, comment.UserID, nullInt64Ptr(comment.ParentCommentID), comment.Content,
		comment.CreatedAt, comment.CreatedBy, comment.UpdatedAt, comment.UpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// GetByID retrieves a comment with its author
func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*entities.Comment, error) {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("comment", "get_by_id", time.Since(start), -1, err)
	}()

	var row commentRow
	if err = sqlx.GetContext(ctx, r.db, &row, r.db.Rebind(commentSelect+` WHERE c.id = ?`), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = repositories.ErrCommentNotFound
			return nil, err
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return row.toEntity(), nil
}

// ListByArticle returns every comment on an article, oldest first
func (r *CommentRepository) ListByArticle(ctx context.Context, articleID int64) ([]*entities.Comment, error) {
	start := time.Now()
	var err error
	var rows []commentRow
	defer func() {
		metrics.RecordDBRead("comment", "list_by_article", time.Since(start), len(rows), err)
	}()

	query := r.db.Rebind(commentSelect + ` WHERE c.article_id = ? ORDER BY c.created_at ASC, c.id ASC`)
	if err = sqlx.SelectContext(ctx, r.db, &rows, query, articleID); err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	comments := make([]*entities.Comment, 0, len(rows))
	for i := range rows {
		comments = append(comments, rows[i].toEntity())
	}
	return comments, nil
}

// Update saves content and the updated_* audit columns
func (r *CommentRepository) Update(ctx context.Context, comment *entities.Comment) error {
	start := time.Now()
	var err error
	var rows int64
	defer func() {
		metrics.RecordDBOperation("comment", "update", time.Since(start), rows, err)
	}()

	query := r.db.Rebind(`UPDATE article_comments SET content = ?, updated_at = ?, updated_by = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, comment.Content, comment.UpdatedAt, comment.UpdatedBy, comment.ID)
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	rows, err = res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		err = repositories.ErrCommentNotFound
		return err
	}
	return nil
}

// DeleteTree removes a comment and all replies below it
func (r *CommentRepository) DeleteTree(ctx context.Context, id int64) (int64, error) {
	start := time.Now()
	var err error
	var rows int64
	defer func() {
		metrics.RecordDBOperation("comment", "delete_tree", time.Since(start), rows, err)
	}()

	query := r.db.Rebind(`WITH RECURSIVE subtree(id) AS (
			SELECT id FROM article_comments WHERE id = ?
			UNION
			SELECT c.id FROM article_comments c JOIN subtree s ON c.parent_comment_id = s.id
		)
		DELETE FROM article_comments WHERE id IN (SELECT id FROM subtree)`)

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete comment: %w", err)
	}
	rows, err = res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		err = repositories.ErrCommentNotFound
		return 0, err
	}
	return rows, nil
}
