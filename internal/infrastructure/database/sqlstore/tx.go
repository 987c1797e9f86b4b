package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/devilmonastery/projectboard/internal/domain/repositories"
)

// Begin starts a transaction whose repositories share one *sqlx.Tx.
func (c *Connection) Begin(ctx context.Context) (repositories.Transaction, error) {
	tx, err := c.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &transaction{tx: tx, repos: NewRepositories(tx)}, nil
}

type transaction struct {
	tx    *sqlx.Tx
	repos *repositories.Repositories
}

func (t *transaction) Commit() error {
	return t.tx.Commit()
}

func (t *transaction) Rollback() error {
	return t.tx.Rollback()
}

func (t *transaction) GetRepositories() *repositories.Repositories {
	return t.repos
}

var (
	_ repositories.UnitOfWork    = (*Connection)(nil)
	_ repositories.HealthChecker = (*Connection)(nil)
)
