package services

import (
	"errors"

	"github.com/devilmonastery/projectboard/internal/domain/repositories"
)

// Service errors. Not-found and conflict errors come from the repository
// layer and are re-exported so callers need only this package.
var (
	ErrForbidden          = errors.New("permission denied")
	ErrInvalidParent      = errors.New("parent comment does not belong to the article")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid user id or password")

	ErrArticleNotFound = repositories.ErrArticleNotFound
	ErrCommentNotFound = repositories.ErrCommentNotFound
	ErrHashtagNotFound = repositories.ErrHashtagNotFound
	ErrUserNotFound    = repositories.ErrUserNotFound
	ErrUserExists      = repositories.ErrUserExists
)

// IsNotFound reports whether err means the requested record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, repositories.ErrArticleNotFound) ||
		errors.Is(err, repositories.ErrCommentNotFound) ||
		errors.Is(err, repositories.ErrHashtagNotFound) ||
		errors.Is(err, repositories.ErrUserNotFound)
}

// IsUserNotFound checks if the error indicates user not found.
func IsUserNotFound(err error) bool {
	return errors.Is(err, repositories.ErrUserNotFound)
}

// IsUserExists reports whether err is a duplicate user ID.
func IsUserExists(err error) bool {
	return errors.Is(err, repositories.ErrUserExists)
}
