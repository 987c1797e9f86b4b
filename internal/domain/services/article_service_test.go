package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devilmonastery/projectboard/internal/domain/entities"
	"github.com/devilmonastery/projectboard/internal/domain/services"
	"github.com/devilmonastery/projectboard/internal/pkg/pagination"
)

func titles(page pagination.Page[*entities.Article]) []string {
	out := []string{}
	for _, a := range page.Content {
		out = append(out, a.Title)
	}
	return out
}

func TestSearchArticles(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.user(t, "uno", "Uno")
	env.user(t, "dos", "Dos")

	env.article(t, "uno", "Learning Go", "channels and #go #concurrency")
	env.article(t, "dos", "Spring Boot", "#java #spring")
	env.article(t, "uno", "Java records", "records in #java")

	tests := []struct {
		name       string
		searchType entities.SearchType
		keyword    string
		want       []string
	}{
		{"blank keyword lists all", entities.SearchTitle, "  ", []string{"Java records", "Spring Boot", "Learning Go"}},
		{"title", entities.SearchTitle, "java", []string{"Java records"}},
		{"content", entities.SearchContent, "channels", []string{"Learning Go"}},
		{"user id", entities.SearchID, "do", []string{"Spring Boot"}},
		{"nickname", entities.SearchNickname, "un", []string{"Java records", "Learning Go"}},
		{"hashtag any of", entities.SearchHashtag, "go spring", []string{"Spring Boot", "Learning Go"}},
		{"hashtag with hash sign", entities.SearchHashtag, "#java", []string{"Java records", "Spring Boot"}},
		{"hashtag is exact", entities.SearchHashtag, "jav", []string{}},
		{"no match", entities.SearchTitle, "rust", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := env.articles.SearchArticles(ctx, tt.searchType, tt.keyword, pagination.Of(0, 10))
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(page))
			assert.EqualValues(t, len(tt.want), page.TotalElements)
		})
	}

	_, err := env.articles.SearchArticles(ctx, entities.SearchType("BOGUS"), "x", pagination.Of(0, 10))
	assert.ErrorIs(t, err, entities.ErrUnknownSearchType)
}

func TestSearchArticlesViaHashtag(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.user(t, "uno", "Uno")
	env.article(t, "uno", "A", "#java")
	env.article(t, "uno", "B", "#spring")

	page, err := env.articles.SearchArticlesViaHashtag(ctx, "", pagination.Of(0, 10))
	require.NoError(t, err)
	assert.Empty(t, page.Content)
	assert.Zero(t, page.TotalElements)

	page, err = env.articles.SearchArticlesViaHashtag(ctx, "java", pagination.Of(0, 10))
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, titles(page))
}

func TestSaveArticleExtractsHashtags(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.user(t, "uno", "Uno")

	a := env.article(t, "uno", "Tags", "#java#spring #부트 and #java again")
	assert.Equal(t, []string{"java", "spring", "부트"}, a.HashtagNames())
	assert.Equal(t, "uno", a.CreatedBy)

	env.article(t, "uno", "More", "#java #go")
	names, err := env.hashtags.GetHashtags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "java", "spring", "부트"}, names)

	_, err = env.articles.SaveArticle(ctx, &entities.Article{UserID: "ghost", Title: "t", Content: "c"})
	assert.ErrorIs(t, err, services.ErrUserNotFound)

	_, err = env.articles.SaveArticle(ctx, &entities.Article{UserID: "uno", Title: " ", Content: "c"})
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestUpdateArticle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.user(t, "uno", "Uno")
	env.user(t, "dos", "Dos")

	a := env.article(t, "uno", "Old title", "#java #spring")
	env.article(t, "dos", "Other", "#java")

	_, err := env.articles.UpdateArticle(ctx, a.ID, "dos", "hijack", "")
	assert.ErrorIs(t, err, services.ErrForbidden)

	updated, err := env.articles.UpdateArticle(ctx, a.ID, "uno", "", "now about #go")
	require.NoError(t, err)
	assert.Equal(t, "Old title", updated.Title, "blank title keeps the old one")
	assert.Equal(t, "now about #go", updated.Content)
	assert.Equal(t, []string{"go"}, updated.HashtagNames())
	assert.Equal(t, "uno", updated.UpdatedBy)

	names, err := env.hashtags.GetHashtags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "java"}, names, "spring lost its last article, java is still used")

	_, err = env.articles.UpdateArticle(ctx, 12345, "uno", "x", "y")
	assert.ErrorIs(t, err, services.ErrArticleNotFound)
}

func TestDeleteArticle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.user(t, "uno", "Uno")
	env.user(t, "dos", "Dos")

	a := env.article(t, "uno", "Doomed", "#solo #shared")
	env.article(t, "dos", "Keeper", "#shared")

	_, err := env.comments.SaveComment(ctx, &entities.Comment{ArticleID: a.ID, UserID: "dos", Content: "nice"})
	require.NoError(t, err)

	assert.ErrorIs(t, env.articles.DeleteArticle(ctx, a.ID, "dos"), services.ErrForbidden)
	require.NoError(t, env.articles.DeleteArticle(ctx, a.ID, "uno"))

	_, err = env.articles.GetArticle(ctx, a.ID)
	assert.ErrorIs(t, err, services.ErrArticleNotFound)
	assert.True(t, services.IsNotFound(err))

	comments, err := env.comments.GetComments(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	names, err := env.hashtags.GetHashtags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"shared"}, names)

	count, err := env.articles.GetArticleCount(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestGetArticleByPageIndex(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.user(t, "uno", "Uno")
	for _, title := range []string{"a1", "a2", "a3", "a4", "a5"} {
		env.article(t, "uno", title, "body")
	}

	a, total, err := env.articles.GetArticleByPageIndex(ctx, 0, pagination.Of(0, 2))
	require.NoError(t, err)
	assert.Equal(t, "a5", a.Title)
	assert.EqualValues(t, 5, total)

	a, _, err = env.articles.GetArticleByPageIndex(ctx, 1, pagination.Of(1, 2))
	require.NoError(t, err)
	assert.Equal(t, "a2", a.Title)

	a, _, err = env.articles.GetArticleByPageIndex(ctx, 0, pagination.Of(2, 2))
	require.NoError(t, err)
	assert.Equal(t, "a1", a.Title)

	_, _, err = env.articles.GetArticleByPageIndex(ctx, 1, pagination.Of(2, 2))
	assert.ErrorIs(t, err, services.ErrArticleNotFound)

	_, _, err = env.articles.GetArticleByPageIndex(ctx, -1, pagination.Of(0, 2))
	assert.ErrorIs(t, err, services.ErrArticleNotFound)
}

func TestGetArticleWithComments(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.user(t, "uno", "Uno")
	a := env.article(t, "uno", "Thread", "body")

	root, err := env.comments.SaveComment(ctx, &entities.Comment{ArticleID: a.ID, UserID: "uno", Content: "root"})
	require.NoError(t, err)
	_, err = env.comments.SaveComment(ctx, &entities.Comment{ArticleID: a.ID, UserID: "uno", Content: "reply", ParentCommentID: &root.ID})
	require.NoError(t, err)

	got, err := env.articles.GetArticleWithComments(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Thread", got.Article.Title)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "root", got.Comments[0].Content)
	require.Len(t, got.Comments[0].Children, 1)
	assert.Equal(t, "reply", got.Comments[0].Children[0].Content)
}
