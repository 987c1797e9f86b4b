package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/devilmonastery/projectboard/internal/config"
	"github.com/devilmonastery/projectboard/internal/domain/services"
	"github.com/devilmonastery/projectboard/internal/infrastructure/database/sqlstore"
	"github.com/devilmonastery/projectboard/internal/pkg/idgen"
	"github.com/devilmonastery/projectboard/migrations"
)

const (
	connectRetries  = 10
	connectMaxDelay = 30 * time.Second
)

// app bundles the database connection and the services built on it
type app struct {
	cfg  *config.Config
	conn *sqlstore.Connection

	articles *services.ArticleService
	comments *services.CommentService
	hashtags *services.HashtagService
	users    *services.UserService
}

// openApp connects to the configured database, applies pending migrations
// and wires the services.
func openApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	if err := idgen.Initialize(1); err != nil {
		return nil, fmt.Errorf("failed to initialize ID generator: %w", err)
	}

	conn, err := connect(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	if err := conn.RunMigrations(migrations.FS); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return newApp(cfg, conn), nil
}

func newApp(cfg *config.Config, conn *sqlstore.Connection) *app {
	repos := conn.Repositories()
	hashtags := services.NewHashtagService(repos.Hashtags)
	return &app{
		cfg:      cfg,
		conn:     conn,
		articles: services.NewArticleService(conn, repos, hashtags),
		comments: services.NewCommentService(repos),
		hashtags: hashtags,
		users:    services.NewUserService(repos.Users),
	}
}

func (a *app) Close() error {
	return a.conn.Close()
}

// connect opens the database. PostgreSQL is retried with exponential backoff
// because the database may still be starting next to us.
func connect(ctx context.Context, cfg *config.Config, log *slog.Logger) (*sqlstore.Connection, error) {
	driver, dsn := cfg.Database.DataSource()
	log.Info("connecting to database", "driver", driver)

	attempts := 1
	if driver == sqlstore.DriverPostgres {
		attempts = connectRetries
		log.Info("postgres target",
			"host", cfg.Database.Postgres.Host,
			"port", cfg.Database.Postgres.Port,
			"database", cfg.Database.Postgres.Database,
			"user", cfg.Database.Postgres.User)
	}

	retryDelay := 2 * time.Second
	for i := 0; ; i++ {
		conn, err := sqlstore.NewConnection(driver, dsn)
		if err == nil {
			log.Info("connected to database", "driver", driver)
			return conn, nil
		}
		if i >= attempts-1 {
			return nil, fmt.Errorf("failed to connect to %s after %d attempts: %w", driver, attempts, err)
		}

		log.Warn("failed to connect to database",
			"attempt", i+1,
			"max_retries", attempts,
			"error", err,
			"retry_delay", retryDelay)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
		retryDelay *= 2
		if retryDelay > connectMaxDelay {
			retryDelay = connectMaxDelay
		}
	}
}
