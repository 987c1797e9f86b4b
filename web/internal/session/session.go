package session

import (
	"errors"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/devilmonastery/projectboard/internal/auth"
)

const (
	// SessionName is the name of the session cookie
	SessionName = "projectboard_session"

	// TokenKey is the session key for storing the JWT token
	TokenKey = "token"

	// TokenIDKey is the session key for storing the token ID
	TokenIDKey = "token_id"

	// StateKey holds the OAuth state between the redirect and the callback
	StateKey = "oauth_state"

	// RedirectKey holds where to send the user after login
	RedirectKey = "redirect"
)

// ErrNoToken is returned when the session carries no login token
var ErrNoToken = errors.New("no session token")

// Manager wraps gorilla/sessions for our use case. The session cookie holds
// a signed JWT issued by the JWTManager; the user is rebuilt from its claims
// on every request.
type Manager struct {
	store *sessions.CookieStore
	jwt   *auth.JWTManager
}

// NewManager creates a new session manager
// secretKey should be 32 bytes for AES-256
func NewManager(secretKey []byte, jwtManager *auth.JWTManager, secure bool) *Manager {
	store := sessions.NewCookieStore(secretKey)

	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60, // 30 days
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	return &Manager{
		store: store,
		jwt:   jwtManager,
	}
}

// SetUser issues a token for user and stores it in the session
func (m *Manager) SetUser(r *http.Request, w http.ResponseWriter, user *auth.UserContext) error {
	token, _, err := m.jwt.GenerateToken(user)
	if err != nil {
		return err
	}
	claims, err := m.jwt.ValidateToken(token)
	if err != nil {
		return err
	}
	return m.SetToken(r, w, token, claims.TokenID)
}

// SetToken stores the JWT token and token ID in the session
func (m *Manager) SetToken(r *http.Request, w http.ResponseWriter, token, tokenID string) error {
	session, err := m.store.Get(r, SessionName)
	if err != nil {
		// Undecodable cookie, start over
		session, _ = m.store.New(r, SessionName)
	}

	session.Values[TokenKey] = token
	session.Values[TokenIDKey] = tokenID
	return session.Save(r, w)
}

// GetToken retrieves the JWT token from the session
func (m *Manager) GetToken(r *http.Request) (string, error) {
	session, err := m.store.Get(r, SessionName)
	if err != nil {
		return "", err
	}

	token, ok := session.Values[TokenKey].(string)
	if !ok || token == "" {
		return "", ErrNoToken
	}

	return token, nil
}

// CurrentUser validates the session token and returns the logged-in user
func (m *Manager) CurrentUser(r *http.Request) (*auth.UserContext, error) {
	token, err := m.GetToken(r)
	if err != nil {
		return nil, err
	}
	claims, err := m.jwt.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return auth.FromClaims(claims), nil
}

// ClearToken removes the session (logout)
func (m *Manager) ClearToken(r *http.Request, w http.ResponseWriter) error {
	session, err := m.store.Get(r, SessionName)
	if err != nil {
		return nil // Session doesn't exist, nothing to clear
	}

	// Set MaxAge to -1 to delete the session
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

// GetSession returns the session object for storing additional data
func (m *Manager) GetSession(r *http.Request) (*sessions.Session, error) {
	return m.store.Get(r, SessionName)
}

// AddFlash queues a one-time message shown on the next rendered page
func (m *Manager) AddFlash(r *http.Request, w http.ResponseWriter, msg string) error {
	session, err := m.store.Get(r, SessionName)
	if err != nil {
		session, _ = m.store.New(r, SessionName)
	}
	session.AddFlash(msg)
	return session.Save(r, w)
}

// Flashes pops queued messages. The caller must write the response after
// this so the emptied session is saved.
func (m *Manager) Flashes(r *http.Request, w http.ResponseWriter) []string {
	session, err := m.store.Get(r, SessionName)
	if err != nil {
		return nil
	}
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = session.Save(r, w)

	msgs := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			msgs = append(msgs, s)
		}
	}
	return msgs
}
