package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/devilmonastery/projectboard/internal/domain/entities"
	"github.com/devilmonastery/projectboard/internal/domain/repositories"
)

// CommentService handles business logic for article comments
type CommentService struct {
	repos *repositories.Repositories
	log   *slog.Logger
}

// NewCommentService creates a new comment service
func NewCommentService(repos *repositories.Repositories) *CommentService {
	return &CommentService{
		repos: repos,
		log:   slog.Default().With(slog.String("service", "comment")),
	}
}

// GetComments returns the flat comment list of an article, oldest first
func (s *CommentService) GetComments(ctx context.Context, articleID int64) ([]*entities.Comment, error) {
	comments, err := s.repos.Comments.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// GetCommentTree returns the threaded comments of an article
func (s *CommentService) GetCommentTree(ctx context.Context, articleID int64) ([]*entities.CommentNode, error) {
	comments, err := s.GetComments(ctx, articleID)
	if err != nil {
		return nil, err
	}
	return entities.BuildCommentTree(comments), nil
}

// GetComment retrieves a single comment
func (s *CommentService) GetComment(ctx context.Context, id int64) (*entities.Comment, error) {
	comment, err := s.repos.Comments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return comment, nil
}

func validateCommentContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: comment is empty", ErrInvalidInput)
	}
	if len([]rune(content)) > entities.MaxCommentLength {
		return fmt.Errorf("%w: comment is longer than %d characters", ErrInvalidInput, entities.MaxCommentLength)
	}
	return nil
}

// SaveComment stores a new comment. When ParentCommentID is set the parent
// must exist on the same article.
func (s *CommentService) SaveComment(ctx context.Context, comment *entities.Comment) (*entities.Comment, error) {
	if err := validateCommentContent(comment.Content); err != nil {
		return nil, err
	}

	if _, err := s.repos.Articles.GetByID(ctx, comment.ArticleID); err != nil {
		return nil, fmt.Errorf("failed to save comment: %w", err)
	}
	exists, err := s.repos.Users.Exists(ctx, comment.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check author: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("failed to save comment: %w", ErrUserNotFound)
	}

	if comment.ParentCommentID != nil {
		parent, err := s.repos.Comments.GetByID(ctx, *comment.ParentCommentID)
		if errors.Is(err, repositories.ErrCommentNotFound) {
			return nil, ErrInvalidParent
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get parent comment: %w", err)
		}
		if parent.ArticleID != comment.ArticleID {
			return nil, ErrInvalidParent
		}
	}

	comment.ID = 0
	comment.Stamp(comment.UserID, entities.Now())
	if err := s.repos.Comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to save comment: %w", err)
	}

	s.log.Debug("comment saved",
		slog.Int64("comment_id", comment.ID),
		slog.Int64("article_id", comment.ArticleID))

	return s.GetComment(ctx, comment.ID)
}

// UpdateComment replaces the content of a comment owned by userID
func (s *CommentService) UpdateComment(ctx context.Context, id int64, userID, content string) (*entities.Comment, error) {
	if err := validateCommentContent(content); err != nil {
		return nil, err
	}

	comment, err := s.GetComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !comment.IsOwnedBy(userID) {
		return nil, ErrForbidden
	}

	comment.Content = content
	comment.Touch(userID, entities.Now())
	if err := s.repos.Comments.Update(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	return comment, nil
}

// DeleteComment deletes a comment owned by userID and every reply below it.
// It returns the article the comment belonged to.
func (s *CommentService) DeleteComment(ctx context.Context, id int64, userID string) (int64, error) {
	comment, err := s.GetComment(ctx, id)
	if err != nil {
		return 0, err
	}
	if !comment.IsOwnedBy(userID) {
		return 0, ErrForbidden
	}

	if _, err := s.repos.Comments.DeleteTree(ctx, id); err != nil {
		return 0, fmt.Errorf("failed to delete comment: %w", err)
	}
	return comment.ArticleID, nil
}
