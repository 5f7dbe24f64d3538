package models

import "time"

// Credential is the OAuth token pair used against the video platform.
// AccessToken and ExpiresAt always change together: ExpiresAt is the expiry
// of the access token currently in the struct, never of a previous one.
type Credential struct {
	ExpiresAt    time.Time `json:"expires_at"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	// Account identifies the authorized operator (email or subject from the
	// provider's id_token). Informational only.
	Account string `json:"account,omitempty"`
}

// IsExpired reports whether the access token is expired or will expire
// within skew. The skew guards against tokens that expire while a remote
// call is in flight.
func (c Credential) IsExpired(skew time.Duration) bool {
	return !time.Now().Add(skew).Before(c.ExpiresAt)
}
