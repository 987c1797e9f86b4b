package repositories

import (
	"context"

	"github.com/devilmonastery/projectboard/internal/domain/entities"
	"github.com/devilmonastery/projectboard/internal/pkg/pagination"
)

// ArticleFilter narrows an article listing. Zero-valued fields do not
// filter. String filters are case-insensitive substring matches, except
// HashtagNames which matches whole tag names exactly.
type ArticleFilter struct {
	TitleContains     string
	ContentContains   string
	UserIDContains    string
	NicknameContains  string
	HashtagContains   string
	CreatedByContains string

	// HashtagNames keeps articles carrying at least one of these tags.
	HashtagNames []string
}

// ArticleRepository defines operations for article persistence
type ArticleRepository interface {
	// Create stores a new article
	Create(ctx context.Context, article *entities.Article) error

	// GetByID retrieves an article with its author and hashtags
	GetByID(ctx context.Context, id int64) (*entities.Article, error)

	// Update saves title, content and the updated_* audit columns
	Update(ctx context.Context, article *entities.Article) error

	// Delete removes an article. Comments and hashtag links cascade.
	Delete(ctx context.Context, id int64) error

	// List returns one page of matching articles, newest first, and the
	// total number of matches
	List(ctx context.Context, filter ArticleFilter, page pagination.Pageable) ([]*entities.Article, int64, error)

	// Count returns the number of articles
	Count(ctx context.Context) (int64, error)

	// SetHashtags replaces the article's hashtag links
	SetHashtags(ctx context.Context, articleID int64, hashtagIDs []int64) error

	// HashtagIDs lists the IDs of hashtags linked to the article
	HashtagIDs(ctx context.Context, articleID int64) ([]int64, error)
}
