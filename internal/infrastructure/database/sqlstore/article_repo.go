package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/devilmonastery/projectboard/internal/domain/entities"
	"github.com/devilmonastery/projectboard/internal/domain/repositories"
	"github.com/devilmonastery/projectboard/internal/pkg/idgen"
	"github.com/devilmonastery/projectboard/internal/pkg/metrics"
	"github.com/devilmonastery/projectboard/internal/pkg/pagination"
)

// ArticleRepository implements repositories.ArticleRepository
type ArticleRepository struct {
	db  sqlx.ExtContext
	log *slog.Logger
}

// NewArticleRepository creates a new article repository
func NewArticleRepository(db sqlx.ExtContext) repositories.ArticleRepository {
	return &ArticleRepository{
		db:  db,
		log: slog.Default().With(slog.String("repo", "article")),
	}
}

type articleRow struct {
	ID             int64          `db:"id"`
	UserID         string         `db:"user_id"`
	Title          string         `db:"title"`
	Content        string         `db:"content"`
	CreatedAt      time.Time      `db:"created_at"`
	CreatedBy      string         `db:"created_by"`
	UpdatedAt      time.Time      `db:"updated_at"`
	UpdatedBy      string         `db:"updated_by"`
	AuthorNickname sql.NullString `db:"author_nickname"`
	AuthorEmail    sql.NullString `db:"author_email"`
}

const articleSelect = `SELECT a.id, a.user_id, a.title, a.content,
		a.created_at, a.created_by, a.updated_at, a.updated_by,
		u.nickname AS author_nickname, u.email AS author_email
	FROM articles a
	JOIN users u ON u.user_id = a.user_id`

func (r *articleRow) toEntity() *entities.Article {
	return &entities.Article{
		ID:      r.ID,
		UserID:  r.UserID,
		Title:   r.Title,
		Content: r.Content,
		Author: &entities.User{
			UserID:   r.UserID,
			Nickname: r.AuthorNickname.String,
			Email:    r.AuthorEmail.String,
		},
		Hashtags: []*entities.Hashtag{},
		AuditFields: entities.AuditFields{
			CreatedAt: utc(r.CreatedAt),
			CreatedBy: r.CreatedBy,
			UpdatedAt: utc(r.UpdatedAt),
			UpdatedBy: r.UpdatedBy,
		},
	}
}

// Create stores a new article, assigning an ID when none is set
func (r *ArticleRepository) Create(ctx context.Context, article *entities.Article) error {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("article", "create", time.Since(start), 1, err)
	}()

	if article.ID == 0 {
		article.ID = idgen.NextID()
	}
	if article.CreatedAt.IsZero() {
		article.Stamp(article.UserID, entities.Now())
	}

	r.log.Debug("creating article",
		slog.Int64("id", article.ID),
		slog.String("user_id", article.UserID))

	query := r.db.Rebind(`INSERT INTO articles (id, user_id, title, content, created_at, created_by, updated_at, updated_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = r.db.ExecContext(ctx, query,
		article.ID, article.UserID, article.Title, article.Content,
		article.CreatedAt, article.CreatedBy, article.UpdatedAt, article.UpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to create article: %w", err)
	}
	return nil
}

// GetByID retrieves an article with its author and hashtags
func (r *ArticleRepository) GetByID(ctx context.Context, id int64) (*entities.Article, error) {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("article", "get_by_id", time.Since(start), -1, err)
	}()

	var row articleRow
	err = sqlx.GetContext(ctx, r.db, &row, r.db.Rebind(articleSelect+` WHERE a.id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = repositories.ErrArticleNotFound
			return nil, err
		}
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	article := row.toEntity()
	if err = r.attachHashtags(ctx, []*entities.Article{article}); err != nil {
		return nil, err
	}
	return article, nil
}

// Update saves title, content and the updated_* audit columns
func (r *ArticleRepository) Update(ctx context.Context, article *entities.Article) error {
	start := time.Now()
	var err error
	var rows int64
	defer func() {
		metrics.RecordDBOperation("article", "update", time.Since(start), rows, err)
	}()

	query := r.db.Rebind(`UPDATE articles SET title = ?, content = ?, updated_at = ?, updated_by = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query,
		article.Title, article.Content, article.UpdatedAt, article.UpdatedBy, article.ID)
	if err != nil {
		return fmt.Errorf("failed to update article: %w", err)
	}
	rows, err = res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		err = repositories.ErrArticleNotFound
		return err
	}
	return nil
}

// Delete removes an article together with its comments and hashtag links
func (r *ArticleRepository) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	var err error
	var rows int64
	defer func() {
		metrics.RecordDBOperation("article", "delete", time.Since(start), rows, err)
	}()

	for _, stmt := range []string{
		`DELETE FROM article_hashtags WHERE article_id = ?`,
		`DELETE FROM article_comments WHERE article_id = ?`,
	} {
		if _, err = r.db.ExecContext(ctx, r.db.Rebind(stmt), id); err != nil {
			return fmt.Errorf("failed to delete article dependents: %w", err)
		}
	}

	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM articles WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	rows, err = res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		err = repositories.ErrArticleNotFound
		return err
	}
	return nil
}

// buildArticleWhere turns a filter into a WHERE clause with '?' placeholders.
// Slice arguments are left for sqlx.In to expand.
func buildArticleWhere(f repositories.ArticleFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	like := func(column, value string) {
		if value == "" {
			return
		}
		conditions = append(conditions, "LOWER("+column+") LIKE LOWER(?) ESCAPE '\\'")
		args = append(args, likePattern(value))
	}
	like("a.title", f.TitleContains)
	like("a.content", f.ContentContains)
	like("a.user_id", f.UserIDContains)
	like("u.nickname", f.NicknameContains)
	like("a.created_by", f.CreatedByContains)

	if f.HashtagContains != "" {
		conditions = append(conditions, `EXISTS (SELECT 1 FROM article_hashtags ah
			JOIN hashtags h ON h.id = ah.hashtag_id
			WHERE ah.article_id = a.id AND LOWER(h.name) LIKE LOWER(?) ESCAPE '\')`)
		args = append(args, likePattern(f.HashtagContains))
	}

	if len(f.HashtagNames) > 0 {
		conditions = append(conditions, `EXISTS (SELECT 1 FROM article_hashtags ah
			JOIN hashtags h ON h.id = ah.hashtag_id
			WHERE ah.article_id = a.id AND h.name IN (?))`)
		args = append(args, f.HashtagNames)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// List returns one page of matching articles, newest first
func (r *ArticleRepository) List(ctx context.Context, filter repositories.ArticleFilter, page pagination.Pageable) ([]*entities.Article, int64, error) {
	start := time.Now()
	var err error
	var count int
	defer func() {
		metrics.RecordDBRead("article", "list", time.Since(start), count, err)
	}()

	where, args := buildArticleWhere(filter)

	countQuery, countArgs, err := sqlx.In(`SELECT COUNT(*) FROM articles a JOIN users u ON u.user_id = a.user_id`+where, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build article count query: %w", err)
	}
	var total int64
	if err = sqlx.GetContext(ctx, r.db, &total, r.db.Rebind(countQuery), countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count articles: %w", err)
	}

	listQuery, listArgs, err := sqlx.In(articleSelect+where+` ORDER BY a.created_at DESC, a.id DESC LIMIT ? OFFSET ?`,
		append(args, page.Size, page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build article list query: %w", err)
	}

	var rows []articleRow
	if err = sqlx.SelectContext(ctx, r.db, &rows, r.db.Rebind(listQuery), listArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to list articles: %w", err)
	}
	count = len(rows)

	articles := make([]*entities.Article, 0, len(rows))
	for i := range rows {
		articles = append(articles, rows[i].toEntity())
	}
	if err = r.attachHashtags(ctx, articles); err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

// Count returns the number of articles
func (r *ArticleRepository) Count(ctx context.Context) (int64, error) {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("article", "count", time.Since(start), -1, err)
	}()

	var count int64
	if err = sqlx.GetContext(ctx, r.db, &count, `SELECT COUNT(*) FROM articles`); err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return count, nil
}

// SetHashtags replaces the article's hashtag links
func (r *ArticleRepository) SetHashtags(ctx context.Context, articleID int64, hashtagIDs []int64) error {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("article", "set_hashtags", time.Since(start), int64(len(hashtagIDs)), err)
	}()

	if _, err = r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM article_hashtags WHERE article_id = ?`), articleID); err != nil {
		return fmt.Errorf("failed to clear article hashtags: %w", err)
	}

	insert := r.db.Rebind(`INSERT INTO article_hashtags (article_id, hashtag_id) VALUES (?, ?)`)
	seen := make(map[int64]bool, len(hashtagIDs))
	for _, id := range hashtagIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, err = r.db.ExecContext(ctx, insert, articleID, id); err != nil {
			return fmt.Errorf("failed to link hashtag %d: %w", id, err)
		}
	}
	return nil
}

// HashtagIDs lists the IDs of hashtags linked to the article
func (r *ArticleRepository) HashtagIDs(ctx context.Context, articleID int64) ([]int64, error) {
	start := time.Now()
	var err error
	var ids []int64
	defer func() {
		metrics.RecordDBRead("article", "hashtag_ids", time.Since(start), len(ids), err)
	}()

	query := r.db.Rebind(`SELECT hashtag_id FROM article_hashtags WHERE article_id = ? ORDER BY hashtag_id`)
	if err = sqlx.SelectContext(ctx, r.db, &ids, query, articleID); err != nil {
		return nil, fmt.Errorf("failed to list article hashtags: %w", err)
	}
	return ids, nil
}

type articleHashtagRow struct {
	ArticleID int64     `db:"article_id"`
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *articleHashtagRow) toEntity() *entities.Hashtag {
	return &entities.Hashtag{ID: r.ID, Name: r.Name, CreatedAt: utc(r.CreatedAt), UpdatedAt: utc(r.UpdatedAt)}
}

// attachHashtags loads the hashtags of every article in one query.
func (r *ArticleRepository) attachHashtags(ctx context.Context, articles []*entities.Article) error {
	if len(articles) == 0 {
		return nil
	}

	byID := make(map[int64]*entities.Article, len(articles))
	ids := make([]int64, 0, len(articles))
	for _, a := range articles {
		byID[a.ID] = a
		ids = append(ids, a.ID)
	}

	query, args, err := sqlx.In(`SELECT ah.article_id, h.id, h.name, h.created_at, h.updated_at
		FROM article_hashtags ah
		JOIN hashtags h ON h.id = ah.hashtag_id
		WHERE ah.article_id IN (?)
		ORDER BY h.name`, ids)
	if err != nil {
		return fmt.Errorf("failed to build hashtag query: %w", err)
	}

	var rows []articleHashtagRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to load article hashtags: %w", err)
	}

	for i := range rows {
		if a, ok := byID[rows[i].ArticleID]; ok {
			a.Hashtags = append(a.Hashtags, rows[i].toEntity())
		}
	}
	return nil
}
