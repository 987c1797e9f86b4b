package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/devilmonastery/projectboard/internal/domain/entities"
	"github.com/devilmonastery/projectboard/internal/domain/repositories"
	"github.com/devilmonastery/projectboard/internal/pkg/metrics"
)

// UserRepository implements repositories.UserRepository
type UserRepository struct {
	db  sqlx.ExtContext
	log *slog.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db sqlx.ExtContext) repositories.UserRepository {
	return &UserRepository{
		db:  db,
		log: slog.Default().With(slog.String("repo", "user")),
	}
}

// userRow represents a user as stored in the database
type userRow struct {
	UserID          string         `db:"user_id"`
	PasswordHash    sql.NullString `db:"password_hash"`
	Email           sql.NullString `db:"email"`
	Nickname        sql.NullString `db:"nickname"`
	Memo            sql.NullString `db:"memo"`
	Provider        sql.NullString `db:"provider"`
	ProviderSubject sql.NullString `db:"provider_subject"`
	CreatedAt       time.Time      `db:"created_at"`
	CreatedBy       string         `db:"created_by"`
	UpdatedAt       time.Time      `db:"updated_at"`
	UpdatedBy       string         `db:"updated_by"`
}

const userColumns = `user_id, password_hash, email, nickname, memo, provider, provider_subject,
	created_at, created_by, updated_at, updated_by`

func (r *userRow) toEntity() *entities.User {
	return &entities.User{
		UserID:          r.UserID,
		PasswordHash:    stringPtr(r.PasswordHash),
		Email:           r.Email.String,
		Nickname:        r.Nickname.String,
		Memo:            r.Memo.String,
		Provider:        stringPtr(r.Provider),
		ProviderSubject: stringPtr(r.ProviderSubject),
		AuditFields: entities.AuditFields{
			CreatedAt: utc(r.CreatedAt),
			CreatedBy: r.CreatedBy,
			UpdatedAt: utc(r.UpdatedAt),
			UpdatedBy: r.UpdatedBy,
		},
	}
}

func userRowFromEntity(u *entities.User) *userRow {
	return &userRow{
		UserID:          u.UserID,
		PasswordHash:    nullStringPtr(u.PasswordHash),
		Email:           nullString(u.Email),
		Nickname:        nullString(u.Nickname),
		Memo:            nullString(u.Memo),
		Provider:        nullStringPtr(u.Provider),
		ProviderSubject: nullStringPtr(u.ProviderSubject),
		CreatedAt:       u.CreatedAt,
		CreatedBy:       u.CreatedBy,
		UpdatedAt:       u.UpdatedAt,
		UpdatedBy:       u.UpdatedBy,
	}
}

// Create creates a new user. The password must already be hashed.
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("user", "create", time.Since(start), 1, err)
	}()

	if user.CreatedAt.IsZero() {
		user.Stamp(user.UserID, entities.Now())
	}

	r.log.Debug("creating user", slog.String("user_id", user.UserID))

	query := `INSERT INTO users (` + userColumns + `) VALUES (
			:user_id, :password_hash, :email, :nickname, :memo, :provider, :provider_subject,
			:created_at, :created_by, :updated_at, :updated_by
		)`

	_, err = sqlx.NamedExecContext(ctx, r.db, query, userRowFromEntity(user))
	if err != nil {
		if isUniqueViolation(err) {
			err = repositories.ErrUserExists
			return err
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by their user ID
func (r *UserRepository) GetByID(ctx context.Context, userID string) (*entities.User, error) {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("user", "get_by_id", time.Since(start), -1, err)
	}()

	var row userRow
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE user_id = ?`)
	err = sqlx.GetContext(ctx, r.db, &row, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = repositories.ErrUserNotFound
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return row.toEntity(), nil
}

// GetByProviderSubject retrieves an OAuth user
func (r *UserRepository) GetByProviderSubject(ctx context.Context, provider, subject string) (*entities.User, error) {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("user", "get_by_provider_subject", time.Since(start), -1, err)
	}()

	var row userRow
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE provider = ? AND provider_subject = ?`)
	err = sqlx.GetContext(ctx, r.db, &row, query, provider, subject)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = repositories.ErrUserNotFound
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user by provider subject: %w", err)
	}
	return row.toEntity(), nil
}

// Update saves the user's profile fields
func (r *UserRepository) Update(ctx context.Context, user *entities.User) error {
	start := time.Now()
	var err error
	var rows int64
	defer func() {
		metrics.RecordDBOperation("user", "update", time.Since(start), rows, err)
	}()

	if user.UpdatedAt.IsZero() {
		user.Touch(user.UserID, entities.Now())
	}

	query := `UPDATE users SET email = :email, nickname = :nickname, memo = :memo,
			updated_at = :updated_at, updated_by = :updated_by
		WHERE user_id = :user_id`

	res, err := sqlx.NamedExecContext(ctx, r.db, query, userRowFromEntity(user))
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	rows, err = res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		err = repositories.ErrUserNotFound
		return err
	}
	return nil
}

// Exists checks if a user exists by ID
func (r *UserRepository) Exists(ctx context.Context, userID string) (bool, error) {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("user", "exists", time.Since(start), -1, err)
	}()

	var count int
	query := r.db.Rebind(`SELECT COUNT(*) FROM users WHERE user_id = ?`)
	if err = sqlx.GetContext(ctx, r.db, &count, query, userID); err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return count > 0, nil
}

// Count returns the number of accounts
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("user", "count", time.Since(start), -1, err)
	}()

	var count int64
	if err = sqlx.GetContext(ctx, r.db, &count, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
