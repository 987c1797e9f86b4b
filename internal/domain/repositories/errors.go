package repositories

import "errors"

// Domain-specific repository errors
var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists is returned when creating a user whose ID is taken
	ErrUserExists = errors.New("user already exists")

	// ErrArticleNotFound is returned when an article cannot be found
	ErrArticleNotFound = errors.New("article not found")

	// ErrCommentNotFound is returned when a comment cannot be found
	ErrCommentNotFound = errors.New("comment not found")

	// ErrHashtagNotFound is returned when a hashtag cannot be found
	ErrHashtagNotFound = errors.New("hashtag not found")
)
