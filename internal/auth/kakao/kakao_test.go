package kakao

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKakaoServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.PostForm.Get("code") != "good-code" || r.PostForm.Get("client_id") != "client" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/v2/user/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": 123456789,
			"properties": {"nickname": "legacy"},
			"kakao_account": {"email": "k@kakao.com", "profile": {"nickname": "카카오"}}
		}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server) *Client {
	return New(Config{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURI:  "http://localhost/oauth2/kakao/callback",
		AuthURL:      srv.URL + "/oauth/authorize",
		TokenURL:     srv.URL + "/oauth/token",
		ProfileURL:   srv.URL + "/v2/user/me",
	})
}

func TestLogin(t *testing.T) {
	srv := newKakaoServer(t)
	c := newTestClient(srv)

	profile, err := c.Login(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "123456789", profile.Subject())
	assert.Equal(t, "카카오", profile.Nickname())
	assert.Equal(t, "k@kakao.com", profile.Email())

	_, err = c.Login(context.Background(), "bad-code")
	assert.Error(t, err)
}

func TestAuthCodeURL(t *testing.T) {
	srv := newKakaoServer(t)
	c := newTestClient(srv)

	raw := c.AuthCodeURL("state-123")
	require.True(t, strings.HasPrefix(raw, srv.URL+"/oauth/authorize?"))

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "client", q.Get("client_id"))
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "http://localhost/oauth2/kakao/callback", q.Get("redirect_uri"))
}

func TestProfileNicknameFallback(t *testing.T) {
	var p Profile
	p.Properties.Nickname = "legacy"
	assert.Equal(t, "legacy", p.Nickname())
}
