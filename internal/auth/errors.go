package auth

import "errors"

// Credential errors. Unauthorized-class errors (ErrUnauthorized,
// ErrNotAuthenticated, ErrNoRefreshToken) are fatal until the operator runs
// the consent flow again; ErrRefreshTimeout is transient and a later caller
// may retry the refresh.
var (
	// ErrUnauthorized indicates the provider rejected the refresh token.
	// Re-consent is required; retrying is pointless.
	ErrUnauthorized = errors.New("refresh token rejected: re-authorization required")

	// ErrNotAuthenticated indicates no credential has been stored yet
	ErrNotAuthenticated = errors.New("not authenticated: run the consent flow first")

	// ErrNoRefreshToken indicates the consent flow produced no refresh
	// token, usually because the provider skipped the consent screen
	ErrNoRefreshToken = errors.New("no refresh token issued: redo consent with prompt=consent")

	// ErrRefreshTimeout indicates the refresh attempt exceeded its deadline
	ErrRefreshTimeout = errors.New("credential refresh timed out")
)
