package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devilmonastery/projectboard/internal/domain/entities"
	"github.com/devilmonastery/projectboard/internal/domain/services"
)

func TestSaveComment(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.user(t, "uno", "Uno")
	a := env.article(t, "uno", "first", "body")
	b := env.article(t, "uno", "second", "body")

	root, err := env.comments.SaveComment(ctx, &entities.Comment{ArticleID: a.ID, UserID: "uno", Content: "hello"})
	require.NoError(t, err)
	assert.NotZero(t, root.ID)
	assert.False(t, root.IsReply())
	assert.Equal(t, "Uno", root.AuthorName())

	reply, err := env.comments.SaveComment(ctx, &entities.Comment{ArticleID: a.ID, UserID: "uno", Content: "re", ParentCommentID: &root.ID})
	require.NoError(t, err)
	assert.True(t, reply.IsReply())

	_, err = env.comments.SaveComment(ctx, &entities.Comment{ArticleID: b.ID, UserID: "uno", Content: "re", ParentCommentID: &root.ID})
	assert.ErrorIs(t, err, services.ErrInvalidParent, "parent on another article")

	missing := int64(424242)
	_, err = env.comments.SaveComment(ctx, &entities.Comment{ArticleID: a.ID, UserID: "uno", Content: "re", ParentCommentID: &missing})
	assert.ErrorIs(t, err, services.ErrInvalidParent)

	_, err = env.comments.SaveComment(ctx, &entities.Comment{ArticleID: 999, UserID: "uno", Content: "x"})
	assert.ErrorIs(t, err, services.ErrArticleNotFound)

	_, err = env.comments.SaveComment(ctx, &entities.Comment{ArticleID: a.ID, UserID: "ghost", Content: "x"})
	assert.ErrorIs(t, err, services.ErrUserNotFound)

	_, err = env.comments.SaveComment(ctx, &entities.Comment{ArticleID: a.ID, UserID: "uno", Content: "   "})
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	_, err = env.comments.SaveComment(ctx, &entities.Comment{ArticleID: a.ID, UserID: "uno", Content: strings.Repeat("가", 501)})
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestUpdateAndDeleteComment(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.user(t, "uno", "Uno")
	env.user(t, "dos", "Dos")
	a := env.article(t, "uno", "post", "body")

	root, err := env.comments.SaveComment(ctx, &entities.Comment{ArticleID: a.ID, UserID: "uno", Content: "root"})
	require.NoError(t, err)
	reply, err := env.comments.SaveComment(ctx, &entities.Comment{ArticleID: a.ID, UserID: "dos", Content: "reply", ParentCommentID: &root.ID})
	require.NoError(t, err)
	_, err = env.comments.SaveComment(ctx, &entities.Comment{ArticleID: a.ID, UserID: "uno", Content: "deeper", ParentCommentID: &reply.ID})
	require.NoError(t, err)
	_, err = env.comments.SaveComment(ctx, &entities.Comment{ArticleID: a.ID, UserID: "dos", Content: "other"})
	require.NoError(t, err)

	_, err = env.comments.UpdateComment(ctx, root.ID, "dos", "nope")
	assert.ErrorIs(t, err, services.ErrForbidden)

	updated, err := env.comments.UpdateComment(ctx, root.ID, "uno", "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	_, err = env.comments.DeleteComment(ctx, root.ID, "dos")
	assert.ErrorIs(t, err, services.ErrForbidden)

	articleID, err := env.comments.DeleteComment(ctx, root.ID, "uno")
	require.NoError(t, err)
	assert.Equal(t, a.ID, articleID)

	tree, err := env.comments.GetCommentTree(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, "other", tree[0].Content)

	_, err = env.comments.DeleteComment(ctx, root.ID, "uno")
	assert.ErrorIs(t, err, services.ErrCommentNotFound)
}
