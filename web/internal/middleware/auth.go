package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/devilmonastery/projectboard/internal/auth"
	"github.com/devilmonastery/projectboard/web/internal/session"
)

// AuthMiddleware loads the session user into the request context and guards
// pages that need a login.
type AuthMiddleware struct {
	sessionManager *session.Manager
	log            *slog.Logger
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(sessionManager *session.Manager, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		sessionManager: sessionManager,
		log:            logger.With(slog.String("component", "auth_middleware")),
	}
}

// LoadUser puts the logged-in user, if any, into the request context.
// An expired or invalid token is treated as anonymous.
func (m *AuthMiddleware) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.sessionManager.CurrentUser(r)
		if err != nil {
			if !errors.Is(err, session.ErrNoToken) {
				m.log.Debug("ignoring session token", slog.String("error", err.Error()))
			}
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.SetUserInContext(r.Context(), user)))
	})
}

// RequireAuth is middleware that ensures the user is authenticated.
// It must run after LoadUser.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := auth.GetUserFromContext(r.Context()); err != nil {
			http.Redirect(w, r, LoginURL(r), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LoginURL is the login page with a redirect back to r. Only GET requests
// are replayed; a form post goes back to the page it came from.
func LoginURL(r *http.Request) string {
	back := r.URL.RequestURI()
	if r.Method != http.MethodGet {
		back = "/"
		if ref, err := url.Parse(r.Referer()); err == nil && ref.Path != "" {
			back = ref.RequestURI()
		}
	}
	return "/login?" + url.Values{"redirect": {back}}.Encode()
}
