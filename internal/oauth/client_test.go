package oauth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsignedIDToken builds a JWT-shaped token with the given claims and an
// empty signature, enough for unverified claim extraction.
func unsignedIDToken(t *testing.T, claims map[string]any) string {
	t.Helper()

	header, err := json.Marshal(map[string]string{"alg": "none", "typ": "JWT"})
	require.NoError(t, err)
	payload, err := json.Marshal(claims)
	require.NoError(t, err)

	enc := base64.RawURLEncoding
	return enc.EncodeToString(header) + "." + enc.EncodeToString(payload) + "."
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient("client-id", "client-secret", "http://localhost/callback",
		WithEndpoints(srv.URL+"/auth", srv.URL+"/token"))
}

func TestAuthCodeURL(t *testing.T) {
	c := NewClient("client-id", "client-secret", "http://localhost/callback")

	raw := c.AuthCodeURL("xyzzy")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Equal(t, "xyzzy", q.Get("state"))
	assert.Contains(t, q.Get("scope"), "youtube.force-ssl")
}

func TestExchange_Success(t *testing.T) {
	idToken := ""
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "client-id", r.PostForm.Get("client_id"))
		assert.Equal(t, "client-secret", r.PostForm.Get("client_secret"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
			"access_token": "new-access",
			"refresh_token": "new-refresh",
			"expires_in": 3600,
			"id_token": %q,
			"token_type": "Bearer"
		}`, idToken)
	})
	idToken = unsignedIDToken(t, map[string]any{"email": "operator@example.com", "sub": "123"})

	cred, err := c.Exchange(context.Background(), "the-code")
	require.NoError(t, err)

	assert.Equal(t, "new-access", cred.AccessToken)
	assert.Equal(t, "new-refresh", cred.RefreshToken)
	assert.Equal(t, "operator@example.com", cred.Account)
	assert.WithinDuration(t, time.Now().Add(time.Hour), cred.ExpiresAt, 5*time.Second)
}

func TestExchange_EmptyCode(t *testing.T) {
	c := NewClient("id", "secret", "uri")

	_, err := c.Exchange(context.Background(), "")
	assert.Error(t, err)
}

func TestRefresh_Success_NoRotation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "old-refresh", r.PostForm.Get("refresh_token"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token": "fresh-access", "expires_in": 3599}`)
	})

	cred, err := c.Refresh(context.Background(), "old-refresh")
	require.NoError(t, err)

	assert.Equal(t, "fresh-access", cred.AccessToken)
	// Provider did not rotate: caller keeps the old refresh token
	assert.Empty(t, cred.RefreshToken)
}

func TestRefresh_Rotation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token": "fresh-access", "refresh_token": "rotated-refresh", "expires_in": 3600}`)
	})

	cred, err := c.Refresh(context.Background(), "old-refresh")
	require.NoError(t, err)
	assert.Equal(t, "rotated-refresh", cred.RefreshToken)
}

func TestRefresh_InvalidGrant(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": "invalid_grant", "error_description": "Token has been revoked."}`)
	})

	_, err := c.Refresh(context.Background(), "revoked-refresh")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidGrant)
	assert.Contains(t, err.Error(), "revoked")
}

func TestRefresh_EmptyRefreshToken(t *testing.T) {
	c := NewClient("id", "secret", "uri")

	_, err := c.Refresh(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidGrant)
}

func TestRefresh_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Refresh(context.Background(), "refresh")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidGrant)
}

func TestRefresh_ContextDeadline(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, `{"access_token": "late"}`)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Refresh(ctx, "refresh")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRefresh_MissingAccessToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"expires_in": 3600}`)
	})

	_, err := c.Refresh(context.Background(), "refresh")
	assert.Error(t, err)
}

func TestAccountFromIDToken(t *testing.T) {
	assert.Empty(t, accountFromIDToken(""))
	assert.Empty(t, accountFromIDToken("garbage"))

	token := unsignedIDToken(t, map[string]any{"sub": "11122233344"})
	assert.Equal(t, "11122233344", accountFromIDToken(token))
}
