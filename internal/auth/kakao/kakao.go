// Package kakao implements Kakao Login on top of golang.org/x/oauth2.
package kakao

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
)

const (
	DefaultAuthURL    = "https://kauth.kakao.com/oauth/authorize"
	DefaultTokenURL   = "https://kauth.kakao.com/oauth/token"
	DefaultProfileURL = "https://kapi.kakao.com/v2/user/me"
)

// Config holds the application registration. The URL fields default to
// Kakao's production endpoints.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	AuthURL    string
	TokenURL   string
	ProfileURL string
}

// Client runs the authorization code flow and fetches the user profile.
type Client struct {
	oauth      *oauth2.Config
	profileURL string
}

// New creates a Kakao client
func New(cfg Config) *Client {
	if cfg.AuthURL == "" {
		cfg.AuthURL = DefaultAuthURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.ProfileURL == "" {
		cfg.ProfileURL = DefaultProfileURL
	}

	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       []string{"profile_nickname", "account_email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		profileURL: cfg.ProfileURL,
	}
}

// AuthCodeURL is where the browser is sent to start the login.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// Profile is the subset of /v2/user/me the board uses.
type Profile struct {
	ID         int64 `json:"id"`
	Properties struct {
		Nickname string `json:"nickname"`
	} `json:"properties"`
	KakaoAccount struct {
		Email   string `json:"email"`
		Profile struct {
			Nickname string `json:"nickname"`
		} `json:"profile"`
	} `json:"kakao_account"`
}

// Subject is the stable Kakao user ID as a string.
func (p *Profile) Subject() string {
	return strconv.FormatInt(p.ID, 10)
}

// Nickname prefers the account profile nickname over the legacy property.
func (p *Profile) Nickname() string {
	if p.KakaoAccount.Profile.Nickname != "" {
		return p.KakaoAccount.Profile.Nickname
	}
	return p.Properties.Nickname
}

func (p *Profile) Email() string {
	return p.KakaoAccount.Email
}

// Login exchanges an authorization code and loads the user's profile.
func (c *Client) Login(ctx context.Context, code string) (*Profile, error) {
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.profileURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch kakao profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("kakao profile request failed: %s: %s", resp.Status, body)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode kakao profile: %w", err)
	}
	if profile.ID == 0 {
		return nil, fmt.Errorf("kakao profile has no id")
	}
	return &profile, nil
}
