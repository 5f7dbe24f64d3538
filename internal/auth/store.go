// Package auth owns the OAuth credential: it is the only component allowed
// to read, refresh, or persist the token pair. All consumers go through the
// Coordinator so that concurrent refreshes collapse into one.
package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vidwarden/vidwarden/internal/crypto"
	"github.com/vidwarden/vidwarden/internal/models"
	"github.com/vidwarden/vidwarden/internal/oauth"
	"github.com/vidwarden/vidwarden/internal/storage"
)

// TokenSource exchanges a refresh token for a fresh access token.
type TokenSource interface {
	Refresh(ctx context.Context, refreshToken string) (*models.Credential, error)
}

// Compile-time check that the oauth client satisfies TokenSource
var _ TokenSource = (*oauth.Client)(nil)

// Store holds the current credential in memory and mirrors every change to
// encrypted persistent storage. Tokens are sealed with a key derived from
// the operator passphrase; the keystore salt lives next to the ciphertext.
type Store struct {
	storage    storage.CredentialStorage
	tokens     TokenSource
	logger     *slog.Logger
	current    *models.Credential
	key        []byte
	salt       []byte
	passphrase string
	mu         sync.RWMutex
}

// NewStore creates a credential store over the given persistence layer.
func NewStore(credStorage storage.CredentialStorage, tokens TokenSource, passphrase string, logger *slog.Logger) *Store {
	return &Store{
		storage:    credStorage,
		tokens:     tokens,
		passphrase: passphrase,
		logger:     logger,
	}
}

// Load restores the persisted credential into memory. A missing record is
// not an error: the store simply starts unauthenticated.
func (s *Store) Load(ctx context.Context) error {
	stored, err := s.storage.GetCredential(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrCredentialNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load credential: %w", err)
	}

	salt, err := base64.StdEncoding.DecodeString(stored.Salt)
	if err != nil {
		return fmt.Errorf("failed to decode keystore salt: %w", err)
	}
	key, err := crypto.DeriveKey(s.passphrase, salt)
	if err != nil {
		return fmt.Errorf("failed to derive keystore key: %w", err)
	}

	accessToken, err := crypto.DecryptFromBase64(stored.AccessToken, key)
	if err != nil {
		return fmt.Errorf("failed to decrypt access token: %w", err)
	}
	refreshToken, err := crypto.DecryptFromBase64(stored.RefreshToken, key)
	if err != nil {
		return fmt.Errorf("failed to decrypt refresh token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.salt = salt
	s.key = key
	s.current = &models.Credential{
		AccessToken:  string(accessToken),
		RefreshToken: string(refreshToken),
		ExpiresAt:    time.Unix(stored.ExpiresAt, 0),
		Account:      stored.Account,
	}

	s.logger.Info("credential loaded",
		slog.String("account", stored.Account),
		slog.Time("expires_at", s.current.ExpiresAt))
	return nil
}

// Credential returns a copy of the current credential.
func (s *Store) Credential() (models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return models.Credential{}, ErrNotAuthenticated
	}
	return *s.current, nil
}

// SetCredential persists and installs a credential obtained from the consent
// flow. A credential without a refresh token is rejected: it could never be
// refreshed and would strand the service once the access token expires.
func (s *Store) SetCredential(ctx context.Context, cred models.Credential) error {
	if cred.RefreshToken == "" {
		return ErrNoRefreshToken
	}
	if err := s.persist(ctx, cred); err != nil {
		return err
	}

	s.mu.Lock()
	s.current = &cred
	s.mu.Unlock()

	s.logger.Info("credential installed",
		slog.String("account", cred.Account),
		slog.Time("expires_at", cred.ExpiresAt))
	return nil
}

// Refresh exchanges the current refresh token for a new access token,
// persists the result, and atomically replaces the in-memory credential.
// Only the Coordinator's single-flight leader calls this.
func (s *Store) Refresh(ctx context.Context) (models.Credential, error) {
	current, err := s.Credential()
	if err != nil {
		return models.Credential{}, err
	}

	fresh, err := s.tokens.Refresh(ctx, current.RefreshToken)
	if err != nil {
		if errors.Is(err, oauth.ErrInvalidGrant) {
			s.logger.Error("refresh token rejected by provider", slog.Any("error", err))
			return models.Credential{}, fmt.Errorf("%w: %w", ErrUnauthorized, err)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return models.Credential{}, fmt.Errorf("%w: %w", ErrRefreshTimeout, err)
		}
		return models.Credential{}, fmt.Errorf("refresh failed: %w", err)
	}

	// The provider rotates the refresh token only sometimes; keep the old
	// one unless a replacement arrived.
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = current.RefreshToken
	}
	if fresh.Account == "" {
		fresh.Account = current.Account
	}

	// Persist before install: a credential the process knows but the store
	// lost would break the next restart.
	if err := s.persist(ctx, *fresh); err != nil {
		return models.Credential{}, err
	}

	s.mu.Lock()
	s.current = fresh
	s.mu.Unlock()

	s.logger.Info("credential refreshed",
		slog.Time("expires_at", fresh.ExpiresAt),
		slog.Bool("refresh_token_rotated", fresh.RefreshToken != current.RefreshToken))
	return *fresh, nil
}

// Invalidate forces the in-memory credential into the expired state. Used
// when the platform rejects an access token the store still considers valid
// (revocation, clock skew). Not persisted: worst case after a restart is one
// extra rejected call followed by the same invalidation.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.ExpiresAt = time.Time{}
	}
}

// Delete removes the credential from memory and storage.
func (s *Store) Delete(ctx context.Context) error {
	if err := s.storage.DeleteCredential(ctx); err != nil && !errors.Is(err, storage.ErrCredentialNotFound) {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	return nil
}

func (s *Store) persist(ctx context.Context, cred models.Credential) error {
	s.mu.Lock()
	if s.salt == nil {
		salt, err := crypto.GenerateSalt()
		if err != nil {
			s.mu.Unlock()
			return err
		}
		key, err := crypto.DeriveKey(s.passphrase, salt)
		if err != nil {
			s.mu.Unlock()
			return err
		}
		s.salt = salt
		s.key = key
	}
	salt, key := s.salt, s.key
	s.mu.Unlock()

	encAccess, err := crypto.EncryptToBase64([]byte(cred.AccessToken), key)
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}
	encRefresh, err := crypto.EncryptToBase64([]byte(cred.RefreshToken), key)
	if err != nil {
		return fmt.Errorf("failed to encrypt refresh token: %w", err)
	}

	stored := &storage.StoredCredential{
		Account:      cred.Account,
		AccessToken:  encAccess,
		RefreshToken: encRefresh,
		Salt:         base64.StdEncoding.EncodeToString(salt),
		ExpiresAt:    cred.ExpiresAt.Unix(),
	}
	if err := s.storage.SaveCredential(ctx, stored); err != nil {
		return fmt.Errorf("failed to persist credential: %w", err)
	}
	return nil
}
