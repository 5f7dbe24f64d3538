package storage

import "context"

// StoredCredential is the at-rest form of the OAuth token pair.
// Token fields hold base64-encoded AES-GCM ciphertext; encryption and
// decryption happen one layer up, in the auth store. Salt is the keystore
// salt the encryption key was derived with.
type StoredCredential struct {
	Account      string `json:"account,omitempty"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Salt         string `json:"salt"`
	ExpiresAt    int64  `json:"expires_at"`
}

// CredentialStorage persists the single current credential record.
// Implementations must replace the record atomically: a crash mid-write must
// never corrupt the previously stored credential.
type CredentialStorage interface {
	// SaveCredential atomically replaces the stored credential
	SaveCredential(ctx context.Context, cred *StoredCredential) error

	// GetCredential retrieves the stored credential
	// Returns ErrCredentialNotFound if nothing has been persisted
	GetCredential(ctx context.Context) (*StoredCredential, error)

	// DeleteCredential removes the stored credential
	DeleteCredential(ctx context.Context) error
}
