package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"

	"github.com/devilmonastery/projectboard/internal/auth"
	"github.com/devilmonastery/projectboard/internal/domain/entities"
	"github.com/devilmonastery/projectboard/internal/domain/services"
	"github.com/devilmonastery/projectboard/web/internal/session"
)

func userContext(u *entities.User) *auth.UserContext {
	uc := &auth.UserContext{
		UserID:   u.UserID,
		Nickname: u.Nickname,
		Email:    u.Email,
	}
	if u.Provider != nil {
		uc.Provider = *u.Provider
	}
	return uc
}

// renderLoginPage renders the login form. Message is shown above it.
func (h *Handler) renderLoginPage(w http.ResponseWriter, r *http.Request, status int, userID, message string) {
	data := h.newTemplateData(w, r)
	data["Message"] = message
	data["UserID"] = userID
	data["Redirect"] = safeRedirect(r.FormValue("redirect"))
	data["CurrentPage"] = "login"
	h.renderTemplateStatus(w, status, "login.html", data)
}

// Login shows the login form
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	// If already logged in, go where the user was heading
	if currentUser(r) != nil {
		http.Redirect(w, r, safeRedirect(r.URL.Query().Get("redirect")), http.StatusSeeOther)
		return
	}
	h.renderLoginPage(w, r, http.StatusOK, "", "")
}

// LoginSubmit handles the local login form
func (h *Handler) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLoginPage(w, r, http.StatusBadRequest, "", "Invalid form.")
		return
	}

	userID := r.PostFormValue("userId")
	user, err := h.users.Authenticate(r.Context(), userID, r.PostFormValue("password"))
	if errors.Is(err, services.ErrInvalidCredentials) {
		h.log.Info("login failed", slog.String("user_id", userID))
		h.renderLoginPage(w, r, http.StatusUnauthorized, userID, "Invalid user ID or password.")
		return
	}
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	h.completeLogin(w, r, user, r.PostFormValue("redirect"))
}

// completeLogin stores the user in the session and redirects
func (h *Handler) completeLogin(w http.ResponseWriter, r *http.Request, user *entities.User, redirect string) {
	if err := h.sessionManager.SetUser(r, w, userContext(user)); err != nil {
		h.log.Error("failed to save session",
			slog.String("error", err.Error()))
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}
	h.log.Info("user logged in", slog.String("user_id", user.UserID))
	http.Redirect(w, r, safeRedirect(redirect), http.StatusSeeOther)
}

func (h *Handler) renderSignupPage(w http.ResponseWriter, r *http.Request, status int, message string) {
	data := h.newTemplateData(w, r)
	data["Message"] = message
	data["Form"] = map[string]string{
		"UserID":   r.PostFormValue("userId"),
		"Email":    r.PostFormValue("email"),
		"Nickname": r.PostFormValue("nickname"),
		"Memo":     r.PostFormValue("memo"),
	}
	data["CurrentPage"] = "signup"
	h.renderTemplateStatus(w, status, "signup.html", data)
}

// Signup shows the account form
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	h.renderSignupPage(w, r, http.StatusOK, "")
}

// SignupSubmit creates a local account and logs it in
func (h *Handler) SignupSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderSignupPage(w, r, http.StatusBadRequest, "Invalid form.")
		return
	}

	user, err := h.users.SaveUser(r.Context(),
		r.PostFormValue("userId"),
		r.PostFormValue("password"),
		r.PostFormValue("email"),
		r.PostFormValue("nickname"),
		r.PostFormValue("memo"))
	switch {
	case errors.Is(err, services.ErrUserExists):
		h.renderSignupPage(w, r, http.StatusConflict, "That user ID is taken.")
		return
	case errors.Is(err, services.ErrInvalidInput):
		h.renderSignupPage(w, r, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.renderError(w, r, err)
		return
	}

	h.completeLogin(w, r, user, "/articles")
}

// Logout handles user logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionManager.ClearToken(r, w); err != nil {
		h.log.Error("error clearing session", slog.String("error", err.Error()))
	}
	http.Redirect(w, r, "/articles", http.StatusSeeOther)
}

// KakaoLogin starts the Kakao authorization code flow
func (h *Handler) KakaoLogin(w http.ResponseWriter, r *http.Request) {
	if h.kakao == nil {
		http.NotFound(w, r)
		return
	}

	// State parameter for CSRF protection
	state := generateState()

	sess, _ := h.sessionManager.GetSession(r)
	sess.Values[session.StateKey] = state
	sess.Values[session.RedirectKey] = safeRedirect(r.URL.Query().Get("redirect"))
	if err := sess.Save(r, w); err != nil {
		h.log.Error("failed to save session",
			slog.String("error", err.Error()))
		http.Error(w, "Failed to start login", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, h.kakao.AuthCodeURL(state), http.StatusFound)
}

// KakaoCallback finishes the Kakao login
func (h *Handler) KakaoCallback(w http.ResponseWriter, r *http.Request) {
	if h.kakao == nil {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	if errorParam := q.Get("error"); errorParam != "" {
		h.log.Error("OAuth error received",
			slog.String("error", errorParam),
			slog.String("error_description", q.Get("error_description")))
		h.renderLoginPage(w, r, http.StatusBadRequest, "", "Kakao login was cancelled or failed.")
		return
	}

	code := q.Get("code")
	if code == "" {
		http.Error(w, "Missing authorization code", http.StatusBadRequest)
		return
	}

	// Verify state for CSRF protection
	sess, _ := h.sessionManager.GetSession(r)
	savedState, ok := sess.Values[session.StateKey].(string)
	if !ok || savedState == "" || savedState != q.Get("state") {
		h.log.Warn("invalid state parameter - possible CSRF attempt",
			slog.String("received", q.Get("state")))
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}
	redirect, _ := sess.Values[session.RedirectKey].(string)

	// Clear OAuth temporary data
	delete(sess.Values, session.StateKey)
	delete(sess.Values, session.RedirectKey)
	_ = sess.Save(r, w)

	profile, err := h.kakao.Login(r.Context(), code)
	if err != nil {
		h.log.Error("failed to complete kakao login",
			slog.String("error", err.Error()))
		http.Error(w, "Failed to complete authentication", http.StatusBadGateway)
		return
	}

	user, err := h.users.FindOrCreateOAuthUser(r.Context(), entities.ProviderKakao,
		profile.Subject(), profile.Email(), profile.Nickname())
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	h.completeLogin(w, r, user, redirect)
}

func generateState() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
