package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/devilmonastery/projectboard/internal/domain/entities"
	"github.com/devilmonastery/projectboard/internal/domain/repositories"
	"github.com/devilmonastery/projectboard/internal/pkg/metrics"
	"github.com/devilmonastery/projectboard/internal/pkg/pagination"
	"github.com/devilmonastery/projectboard/internal/pkg/textutil"
)

const maxTitleLength = 255

// ArticleService handles business logic for articles and their hashtags
type ArticleService struct {
	uow      repositories.UnitOfWork
	repos    *repositories.Repositories
	hashtags *HashtagService
	log      *slog.Logger
}

// NewArticleService creates a new article service. repos must run outside
// any transaction; uow opens the transactions used for writes.
func NewArticleService(uow repositories.UnitOfWork, repos *repositories.Repositories, hashtags *HashtagService) *ArticleService {
	return &ArticleService{
		uow:      uow,
		repos:    repos,
		hashtags: hashtags,
		log:      slog.Default().With(slog.String("service", "article")),
	}
}

// SearchArticles lists articles matching keyword in the field chosen by
// searchType. A blank keyword lists every article.
func (s *ArticleService) SearchArticles(ctx context.Context, searchType entities.SearchType, keyword string, page pagination.Pageable) (result pagination.Page[*entities.Article], err error) {
	defer func(start time.Time) {
		metrics.RecordServiceOperation("article", "search", start, err)
	}(time.Now())

	keyword = strings.TrimSpace(keyword)
	var filter repositories.ArticleFilter

	if keyword != "" {
		switch searchType {
		case entities.SearchTitle:
			filter.TitleContains = keyword
		case entities.SearchContent:
			filter.ContentContains = keyword
		case entities.SearchID:
			filter.UserIDContains = keyword
		case entities.SearchNickname:
			filter.NicknameContains = keyword
		case entities.SearchHashtag:
			filter.HashtagNames = hashtagTerms(keyword)
		default:
			return result, fmt.Errorf("%w: %q", entities.ErrUnknownSearchType, searchType)
		}
	}

	return s.list(ctx, filter, page)
}

// SearchArticlesViaHashtag lists articles tagged with name. A blank name
// gives an empty page.
func (s *ArticleService) SearchArticlesViaHashtag(ctx context.Context, name string, page pagination.Pageable) (pagination.Page[*entities.Article], error) {
	terms := hashtagTerms(name)
	if len(terms) == 0 {
		return pagination.Empty[*entities.Article](page), nil
	}
	return s.list(ctx, repositories.ArticleFilter{HashtagNames: terms}, page)
}

// ListArticles lists articles matching an arbitrary filter
func (s *ArticleService) ListArticles(ctx context.Context, filter repositories.ArticleFilter, page pagination.Pageable) (pagination.Page[*entities.Article], error) {
	return s.list(ctx, filter, page)
}

func (s *ArticleService) list(ctx context.Context, filter repositories.ArticleFilter, page pagination.Pageable) (pagination.Page[*entities.Article], error) {
	articles, total, err := s.repos.Articles.List(ctx, filter, page)
	if err != nil {
		return pagination.Page[*entities.Article]{}, fmt.Errorf("failed to list articles: %w", err)
	}
	return pagination.NewPage(articles, page, total), nil
}

// hashtagTerms splits a hashtag query on whitespace and drops a leading '#'.
func hashtagTerms(keyword string) []string {
	var terms []string
	for _, f := range strings.Fields(keyword) {
		f = strings.TrimPrefix(f, "#")
		if f != "" {
			terms = append(terms, f)
		}
	}
	return terms
}

// GetArticle retrieves an article with its author and hashtags
func (s *ArticleService) GetArticle(ctx context.Context, id int64) (*entities.Article, error) {
	article, err := s.repos.Articles.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return article, nil
}

// GetArticleWithComments retrieves an article and its comment tree
func (s *ArticleService) GetArticleWithComments(ctx context.Context, id int64) (*entities.ArticleWithComments, error) {
	article, err := s.GetArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.repos.Comments.ListByArticle(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return &entities.ArticleWithComments{
		Article:  article,
		Comments: entities.BuildCommentTree(comments),
	}, nil
}

// GetArticleByPageIndex returns the index-th article of page in newest
// first order, together with the total number of articles.
func (s *ArticleService) GetArticleByPageIndex(ctx context.Context, index int, page pagination.Pageable) (*entities.Article, int64, error) {
	if index < 0 || index >= page.Size {
		return nil, 0, ErrArticleNotFound
	}
	articles, total, err := s.repos.Articles.List(ctx, repositories.ArticleFilter{}, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list articles: %w", err)
	}
	if index >= len(articles) {
		return nil, total, ErrArticleNotFound
	}
	return articles[index], total, nil
}

// GetArticleCount returns the number of articles
func (s *ArticleService) GetArticleCount(ctx context.Context) (int64, error) {
	return s.repos.Articles.Count(ctx)
}

func validateArticle(title, content string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if len([]rune(title)) > maxTitleLength {
		return fmt.Errorf("%w: title is longer than %d characters", ErrInvalidInput, maxTitleLength)
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	for _, tag := range textutil.ExtractHashtags(content) {
		if utf8.RuneCountInString(tag) > entities.MaxHashtagLength {
			return fmt.Errorf("%w: hashtag #%s is longer than %d characters", ErrInvalidInput, tag, entities.MaxHashtagLength)
		}
	}
	return nil
}

// SaveArticle stores a new article and links the hashtags found in its
// content, creating hashtags that do not exist yet.
func (s *ArticleService) SaveArticle(ctx context.Context, article *entities.Article) (saved *entities.Article, err error) {
	defer func(start time.Time) {
		metrics.RecordServiceOperation("article", "save", start, err)
	}(time.Now())

	if err := validateArticle(article.Title, article.Content); err != nil {
		return nil, err
	}

	err = repositories.WithTx(ctx, s.uow, func(repos *repositories.Repositories) error {
		exists, err := repos.Users.Exists(ctx, article.UserID)
		if err != nil {
			return fmt.Errorf("failed to check author: %w", err)
		}
		if !exists {
			return ErrUserNotFound
		}

		article.ID = 0
		article.Stamp(article.UserID, entities.Now())
		if err := repos.Articles.Create(ctx, article); err != nil {
			return err
		}
		return linkHashtags(ctx, repos, article.ID, article.Content)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save article: %w", err)
	}
	s.hashtags.InvalidateCache()

	s.log.Info("article saved",
		slog.Int64("article_id", article.ID),
		slog.String("user_id", article.UserID))

	return s.GetArticle(ctx, article.ID)
}

// UpdateArticle changes the title and content of an article owned by
// userID. Blank values keep the current ones. Hashtags are re-extracted
// and hashtags no longer used by any article are deleted.
func (s *ArticleService) UpdateArticle(ctx context.Context, id int64, userID, title, content string) (updated *entities.Article, err error) {
	defer func(start time.Time) {
		metrics.RecordServiceOperation("article", "update", start, err)
	}(time.Now())

	err = repositories.WithTx(ctx, s.uow, func(repos *repositories.Repositories) error {
		article, err := repos.Articles.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !article.IsOwnedBy(userID) {
			return ErrForbidden
		}

		if strings.TrimSpace(title) != "" {
			article.Title = title
		}
		if strings.TrimSpace(content) != "" {
			article.Content = content
		}
		if err := validateArticle(article.Title, article.Content); err != nil {
			return err
		}
		article.Touch(userID, entities.Now())

		if err := repos.Articles.Update(ctx, article); err != nil {
			return err
		}

		oldIDs, err := repos.Articles.HashtagIDs(ctx, id)
		if err != nil {
			return err
		}
		if err := linkHashtags(ctx, repos, id, article.Content); err != nil {
			return err
		}
		return deleteUnusedHashtags(ctx, repos, oldIDs)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update article: %w", err)
	}
	s.hashtags.InvalidateCache()

	return s.GetArticle(ctx, id)
}

// DeleteArticle deletes an article owned by userID along with its comments,
// then deletes hashtags left without articles.
func (s *ArticleService) DeleteArticle(ctx context.Context, id int64, userID string) (err error) {
	defer func(start time.Time) {
		metrics.RecordServiceOperation("article", "delete", start, err)
	}(time.Now())

	err = repositories.WithTx(ctx, s.uow, func(repos *repositories.Repositories) error {
		article, err := repos.Articles.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !article.IsOwnedBy(userID) {
			return ErrForbidden
		}

		oldIDs, err := repos.Articles.HashtagIDs(ctx, id)
		if err != nil {
			return err
		}
		if err := repos.Articles.Delete(ctx, id); err != nil {
			return err
		}
		return deleteUnusedHashtags(ctx, repos, oldIDs)
	})
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	s.hashtags.InvalidateCache()

	s.log.Info("article deleted",
		slog.Int64("article_id", id),
		slog.String("user_id", userID))
	return nil
}

// deleteUnusedHashtags drops the given hashtags once no article links them.
// An empty ids slice deletes nothing.
func deleteUnusedHashtags(ctx context.Context, repos *repositories.Repositories, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := repos.Hashtags.DeleteUnused(ctx, ids)
	return err
}

func linkHashtags(ctx context.Context, repos *repositories.Repositories, articleID int64, content string) error {
	hashtags, err := repos.Hashtags.FindOrCreate(ctx, textutil.ExtractHashtags(content))
	if err != nil {
		return err
	}
	ids := make([]int64, 0, len(hashtags))
	for _, h := range hashtags {
		ids = append(ids, h.ID)
	}
	return repos.Articles.SetHashtags(ctx, articleID, ids)
}
