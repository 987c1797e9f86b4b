package auth

import (
	"context"
	"errors"
)

var ErrUnauthorized = errors.New("unauthorized")

// UserContext contains authenticated user information
type UserContext struct {
	UserID   string
	Nickname string
	Email    string
	Provider string
	TokenID  string
}

// DisplayName is the nickname, or the user ID when no nickname is set.
func (u *UserContext) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.UserID
}

// FromClaims rebuilds the user carried by a validated token.
func FromClaims(c *Claims) *UserContext {
	return &UserContext{
		UserID:   c.UserID,
		Nickname: c.Nickname,
		Email:    c.Email,
		Provider: c.Provider,
		TokenID:  c.TokenID,
	}
}

// contextKey is the key for storing user info in context
type contextKey string

const userContextKey contextKey = "user"

// GetUserFromContext extracts the authenticated user from the context
func GetUserFromContext(ctx context.Context) (*UserContext, error) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	if !ok || user == nil {
		return nil, ErrUnauthorized
	}
	return user, nil
}

// SetUserInContext stores the authenticated user in the context
func SetUserInContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}
