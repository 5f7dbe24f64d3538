// Package oauth implements the Google OAuth2 flows used to authorize write
// access to the video platform: the one-time authorization-code grant and
// the refresh-token grant.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vidwarden/vidwarden/internal/models"
)

const (
	defaultAuthEndpoint  = "https://accounts.google.com/o/oauth2/v2/auth"
	defaultTokenEndpoint = "https://oauth2.googleapis.com/token"
)

// Scopes required to manage videos and comments.
var Scopes = []string{
	"https://www.googleapis.com/auth/youtube",
	"https://www.googleapis.com/auth/youtube.force-ssl",
}

// ErrInvalidGrant indicates that the provider rejected the grant (expired or
// revoked refresh token, already-used authorization code). Not retryable:
// the operator has to run the consent flow again.
var ErrInvalidGrant = errors.New("grant rejected by provider")

// Client talks to the provider's authorization and token endpoints.
type Client struct {
	httpClient    *http.Client
	clientID      string
	clientSecret  string
	redirectURI   string
	authEndpoint  string
	tokenEndpoint string
}

// Option customizes a Client.
type Option func(*Client)

// WithEndpoints overrides the provider endpoints. Used in tests.
func WithEndpoints(authEndpoint, tokenEndpoint string) Option {
	return func(c *Client) {
		c.authEndpoint = authEndpoint
		c.tokenEndpoint = tokenEndpoint
	}
}

// NewClient creates a token endpoint client for the given OAuth application.
func NewClient(clientID, clientSecret, redirectURI string, opts ...Option) *Client {
	c := &Client{
		clientID:      clientID,
		clientSecret:  clientSecret,
		redirectURI:   redirectURI,
		authEndpoint:  defaultAuthEndpoint,
		tokenEndpoint: defaultTokenEndpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AuthCodeURL builds the consent URL the operator opens in a browser.
// access_type=offline and prompt=consent force the provider to issue a
// refresh token.
func (c *Client) AuthCodeURL(state string) string {
	params := url.Values{
		"client_id":     {c.clientID},
		"redirect_uri":  {c.redirectURI},
		"response_type": {"code"},
		"scope":         {strings.Join(Scopes, " ")},
		"access_type":   {"offline"},
		"prompt":        {"consent"},
	}
	if state != "" {
		params.Set("state", state)
	}
	return c.authEndpoint + "?" + params.Encode()
}

// Exchange trades an authorization code for a token pair.
func (c *Client) Exchange(ctx context.Context, code string) (*models.Credential, error) {
	if code == "" {
		return nil, fmt.Errorf("authorization code is required")
	}
	return c.requestToken(ctx, url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {c.redirectURI},
	})
}

// Refresh trades a refresh token for a new access token. The provider may
// rotate the refresh token; when it does, the returned credential carries
// the new one, otherwise RefreshToken is empty and the caller keeps the old.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*models.Credential, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("refresh token is required: %w", ErrInvalidGrant)
	}
	return c.requestToken(ctx, url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	})
}

// tokenResponse is the provider's token endpoint response.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	IDToken      string `json:"id_token"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
	ExpiresIn    int64  `json:"expires_in"`
}

// tokenError is the provider's RFC 6749 error response.
type tokenError struct {
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (c *Client) requestToken(ctx context.Context, form url.Values) (*models.Credential, error) {
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenEndpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var terr tokenError
		if err := json.Unmarshal(body, &terr); err == nil && terr.Code != "" {
			if terr.Code == "invalid_grant" || resp.StatusCode == http.StatusUnauthorized {
				return nil, fmt.Errorf("%s: %s: %w", terr.Code, terr.Description, ErrInvalidGrant)
			}
			return nil, fmt.Errorf("token endpoint error (%d): %s: %s", resp.StatusCode, terr.Code, terr.Description)
		}
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, fmt.Errorf("token endpoint rejected request (%d): %w", resp.StatusCode, ErrInvalidGrant)
		}
		return nil, fmt.Errorf("token endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("token response missing access_token")
	}

	return &models.Credential{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second),
		Account:      accountFromIDToken(tr.IDToken),
	}, nil
}

// accountFromIDToken extracts the operator identity from the id_token, when
// present. Claims are read without signature verification: the token came
// over TLS straight from the provider and is used for display only.
func accountFromIDToken(idToken string) string {
	if idToken == "" {
		return ""
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(idToken, claims); err != nil {
		return ""
	}

	if email, ok := claims["email"].(string); ok && email != "" {
		return email
	}
	if sub, ok := claims["sub"].(string); ok {
		return sub
	}
	return ""
}
