package services_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/devilmonastery/projectboard/internal/domain/entities"
	"github.com/devilmonastery/projectboard/internal/domain/services"
	"github.com/devilmonastery/projectboard/internal/infrastructure/database/sqlstore"
	"github.com/devilmonastery/projectboard/migrations"
)

type testEnv struct {
	conn     *sqlstore.Connection
	articles *services.ArticleService
	comments *services.CommentService
	hashtags *services.HashtagService
	users    *services.UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conn, err := sqlstore.NewConnection(sqlstore.DriverSQLite, filepath.Join(t.TempDir(), "board.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.RunMigrations(migrations.FS))

	repos := conn.Repositories()
	hashtags := services.NewHashtagService(repos.Hashtags)
	return &testEnv{
		conn:     conn,
		articles: services.NewArticleService(conn, repos, hashtags),
		comments: services.NewCommentService(repos),
		hashtags: hashtags,
		users:    services.NewUserService(repos.Users),
	}
}

func (e *testEnv) user(t *testing.T, userID, nickname string) {
	t.Helper()
	_, err := e.users.SaveUser(context.Background(), userID, "pw", userID+"@mail.com", nickname, "")
	require.NoError(t, err)
}

func (e *testEnv) article(t *testing.T, userID, title, content string) *entities.Article {
	t.Helper()
	a, err := e.articles.SaveArticle(context.Background(), &entities.Article{UserID: userID, Title: title, Content: content})
	require.NoError(t, err)
	return a
}
