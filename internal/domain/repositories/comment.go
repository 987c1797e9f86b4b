package repositories

import (
	"context"

	"github.com/devilmonastery/projectboard/internal/domain/entities"
)

// CommentRepository defines operations for comment persistence
type CommentRepository interface {
	// Create stores a new comment
	Create(ctx context.Context, comment *entities.Comment) error

	// GetByID retrieves a comment with its author
	GetByID(ctx context.Context, id int64) (*entities.Comment, error)

	// ListByArticle returns every comment on an article, oldest first
	ListByArticle(ctx context.Context, articleID int64) ([]*entities.Comment, error)

	// Update saves content and the updated_* audit columns
	Update(ctx context.Context, comment *entities.Comment) error

	// DeleteTree removes a comment and every reply below it, returning the
	// number of rows removed
	DeleteTree(ctx context.Context, id int64) (int64, error)
}
