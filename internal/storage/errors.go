package storage

import "errors"

// Common storage errors
var (
	// ErrCredentialNotFound indicates that no credential has been persisted yet
	ErrCredentialNotFound = errors.New("credential not found")

	// ErrEventNotFound indicates that no audit event matched the query
	ErrEventNotFound = errors.New("audit event not found")
)
