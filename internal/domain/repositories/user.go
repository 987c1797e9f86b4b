package repositories

import (
	"context"

	"github.com/devilmonastery/projectboard/internal/domain/entities"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create a new user. Returns ErrUserExists if the user ID is taken.
	Create(ctx context.Context, user *entities.User) error

	// GetByID retrieves a user by their user ID
	GetByID(ctx context.Context, userID string) (*entities.User, error)

	// GetByProviderSubject retrieves an OAuth user by provider and subject
	GetByProviderSubject(ctx context.Context, provider, subject string) (*entities.User, error)

	// Update changes email, nickname and memo
	Update(ctx context.Context, user *entities.User) error

	// Exists checks if a user exists by ID
	Exists(ctx context.Context, userID string) (bool, error)

	// Count returns the number of accounts
	Count(ctx context.Context) (int64, error)
}
