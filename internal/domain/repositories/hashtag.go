package repositories

import (
	"context"

	"github.com/devilmonastery/projectboard/internal/domain/entities"
)

// HashtagRepository defines operations for hashtag persistence
type HashtagRepository interface {
	// FindOrCreate returns the hashtags with the given names, creating any
	// that do not exist yet
	FindOrCreate(ctx context.Context, names []string) ([]*entities.Hashtag, error)

	// GetByName retrieves a hashtag by exact name
	GetByName(ctx context.Context, name string) (*entities.Hashtag, error)

	// ListNames returns every hashtag name in ascending order
	ListNames(ctx context.Context) ([]string, error)

	// DeleteUnused deletes the given hashtags that no article links to and
	// returns the number deleted. An empty ids slice checks every hashtag.
	DeleteUnused(ctx context.Context, ids []int64) (int64, error)

	// Count returns the number of hashtags
	Count(ctx context.Context) (int64, error)
}
