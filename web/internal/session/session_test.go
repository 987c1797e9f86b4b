package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devilmonastery/projectboard/internal/auth"
)

func newTestManager() *Manager {
	return NewManager([]byte("0123456789abcdef0123456789abcdef"), auth.NewJWTManager("test-signing-key", time.Hour), false)
}

// carry copies the cookies set on rec onto a fresh request
func carry(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestSetUserAndCurrentUser(t *testing.T) {
	m := newTestManager()

	rec := httptest.NewRecorder()
	err := m.SetUser(httptest.NewRequest(http.MethodPost, "/login", nil), rec, &auth.UserContext{
		UserID:   "uno",
		Nickname: "Uno",
		Email:    "uno@mail.com",
	})
	require.NoError(t, err)

	user, err := m.CurrentUser(carry(rec))
	require.NoError(t, err)
	assert.Equal(t, "uno", user.UserID)
	assert.Equal(t, "Uno", user.Nickname)
	assert.NotEmpty(t, user.TokenID)
}

func TestCurrentUserWithoutSession(t *testing.T) {
	m := newTestManager()

	_, err := m.CurrentUser(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestCurrentUserRejectsForeignToken(t *testing.T) {
	m := newTestManager()
	other := auth.NewJWTManager("another-key", time.Hour)
	token, _, err := other.GenerateToken(&auth.UserContext{UserID: "mallory"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, m.SetToken(httptest.NewRequest(http.MethodGet, "/", nil), rec, token, "id"))

	_, err = m.CurrentUser(carry(rec))
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestClearToken(t *testing.T) {
	m := newTestManager()

	rec := httptest.NewRecorder()
	require.NoError(t, m.SetUser(httptest.NewRequest(http.MethodGet, "/", nil), rec, &auth.UserContext{UserID: "uno"}))

	clearRec := httptest.NewRecorder()
	require.NoError(t, m.ClearToken(carry(rec), clearRec))

	cookies := clearRec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionName, cookies[0].Name)
	assert.True(t, cookies[0].MaxAge < 0)
}

func TestFlashes(t *testing.T) {
	m := newTestManager()

	rec := httptest.NewRecorder()
	require.NoError(t, m.AddFlash(httptest.NewRequest(http.MethodGet, "/", nil), rec, "article saved"))

	readRec := httptest.NewRecorder()
	assert.Equal(t, []string{"article saved"}, m.Flashes(carry(rec), readRec))

	// Popped flashes are gone from the saved session
	assert.Empty(t, m.Flashes(carry(readRec), httptest.NewRecorder()))
}
