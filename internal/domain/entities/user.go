package entities

import (
	"golang.org/x/crypto/bcrypt"
)

// ProviderKakao identifies accounts created through Kakao login.
const ProviderKakao = "kakao"

// Column limits of the users table, counted in characters.
const (
	MaxEmailLength    = 100
	MaxNicknameLength = 100
)

// User is a board account. Local accounts carry a password hash; OAuth
// accounts carry a provider and the provider's subject instead.
type User struct {
	UserID          string  `json:"userId" db:"user_id"`
	PasswordHash    *string `json:"-" db:"password_hash"` // never serialize to JSON
	Email           string  `json:"email,omitempty" db:"email"`
	Nickname        string  `json:"nickname,omitempty" db:"nickname"`
	Memo            string  `json:"memo,omitempty" db:"memo"`
	Provider        *string `json:"provider,omitempty" db:"provider"`
	ProviderSubject *string `json:"-" db:"provider_subject"`
	AuditFields
}

// DisplayName is the nickname, or the user ID when no nickname is set.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.UserID
}

// IsOAuthUser returns true if the account was provisioned by a login provider
func (u *User) IsOAuthUser() bool {
	return u.Provider != nil && *u.Provider != ""
}

// SetPassword hashes and stores password.
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	h := string(hash)
	u.PasswordHash = &h
	return nil
}

// VerifyPassword checks if the provided password matches the hashed password
func (u *User) VerifyPassword(password string) bool {
	if u.PasswordHash == nil {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(password))
	return err == nil
}
