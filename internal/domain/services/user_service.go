package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/devilmonastery/projectboard/internal/domain/entities"
	"github.com/devilmonastery/projectboard/internal/domain/repositories"
	"github.com/devilmonastery/projectboard/internal/pkg/metrics"
)

var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,50}$`)

// UserService provides business logic for user accounts
type UserService struct {
	userRepo repositories.UserRepository
	log      *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
		log:      slog.Default().With(slog.String("service", "user")),
	}
}

// SearchUser looks up an account. The password hash is never returned.
func (s *UserService) SearchUser(ctx context.Context, userID string) (*entities.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.PasswordHash = nil
	return user, nil
}

// SaveUser creates a local account with a bcrypt-hashed password
func (s *UserService) SaveUser(ctx context.Context, userID, password, email, nickname, memo string) (*entities.User, error) {
	userID = strings.TrimSpace(userID)
	if !userIDPattern.MatchString(userID) {
		return nil, fmt.Errorf("%w: user id must be 1-50 letters, digits, '.', '_' or '-'", ErrInvalidInput)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	email, nickname = strings.TrimSpace(email), strings.TrimSpace(nickname)
	if utf8.RuneCountInString(email) > entities.MaxEmailLength {
		return nil, fmt.Errorf("%w: email is longer than %d characters", ErrInvalidInput, entities.MaxEmailLength)
	}
	if utf8.RuneCountInString(nickname) > entities.MaxNicknameLength {
		return nil, fmt.Errorf("%w: nickname is longer than %d characters", ErrInvalidInput, entities.MaxNicknameLength)
	}

	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check if user exists: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	user := &entities.User{
		UserID:   userID,
		Email:    email,
		Nickname: nickname,
		Memo:     memo,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.Stamp(userID, entities.Now())

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info("user created", slog.String("user_id", userID))

	// Clear password hash from returned user for security
	user.PasswordHash = nil
	return user, nil
}

// Authenticate verifies a local login
func (s *UserService) Authenticate(ctx context.Context, userID, password string) (*entities.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		metrics.Logins.WithLabelValues("password", "failure").Inc()
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !user.VerifyPassword(password) {
		metrics.Logins.WithLabelValues("password", "failure").Inc()
		return nil, ErrInvalidCredentials
	}

	metrics.Logins.WithLabelValues("password", "success").Inc()
	user.PasswordHash = nil
	return user, nil
}

// FindOrCreateOAuthUser returns the account linked to a provider login,
// creating it on first login. Nickname and email are refreshed from the
// provider on later logins.
func (s *UserService) FindOrCreateOAuthUser(ctx context.Context, provider, subject, email, nickname string) (*entities.User, error) {
	if provider == "" || subject == "" {
		return nil, fmt.Errorf("%w: provider and subject are required", ErrInvalidInput)
	}
	// Provider profile fields are clipped to the column limits.
	email = truncateRunes(email, entities.MaxEmailLength)
	nickname = truncateRunes(nickname, entities.MaxNicknameLength)

	user, err := s.userRepo.GetByProviderSubject(ctx, provider, subject)
	switch {
	case err == nil:
		if (nickname != "" && nickname != user.Nickname) || (email != "" && email != user.Email) {
			if nickname != "" {
				user.Nickname = nickname
			}
			if email != "" {
				user.Email = email
			}
			user.Touch(user.UserID, entities.Now())
			if err := s.userRepo.Update(ctx, user); err != nil {
				return nil, fmt.Errorf("failed to refresh user profile: %w", err)
			}
		}
		metrics.Logins.WithLabelValues(provider, "success").Inc()
		user.PasswordHash = nil
		return user, nil
	case !errors.Is(err, repositories.ErrUserNotFound):
		return nil, fmt.Errorf("failed to look up %s user: %w", provider, err)
	}

	user = &entities.User{
		UserID:          provider + "_" + subject,
		Email:           email,
		Nickname:        nickname,
		Provider:        &provider,
		ProviderSubject: &subject,
	}
	user.Stamp(user.UserID, entities.Now())

	err = s.userRepo.Create(ctx, user)
	if errors.Is(err, repositories.ErrUserExists) {
		// A local account already took the natural ID.
		user.UserID = provider + "_" + uuid.NewString()[:8]
		user.Stamp(user.UserID, user.CreatedAt)
		err = s.userRepo.Create(ctx, user)
	}
	if err != nil {
		metrics.Logins.WithLabelValues(provider, "failure").Inc()
		return nil, fmt.Errorf("failed to create %s user: %w", provider, err)
	}

	s.log.Info("oauth user created",
		slog.String("user_id", user.UserID),
		slog.String("provider", provider))
	metrics.Logins.WithLabelValues(provider, "success").Inc()
	return user, nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// Count returns the number of accounts
func (s *UserService) Count(ctx context.Context) (int64, error) {
	return s.userRepo.Count(ctx)
}
