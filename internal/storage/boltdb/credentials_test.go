package boltdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidwarden/vidwarden/internal/storage"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(context.Background(), dbPath)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func TestSaveAndGetCredential(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	cred := &storage.StoredCredential{
		Account:      "operator@example.com",
		AccessToken:  "encrypted-access",
		RefreshToken: "encrypted-refresh",
		Salt:         "c2FsdA==",
		ExpiresAt:    1735689600,
	}

	require.NoError(t, s.SaveCredential(ctx, cred))

	got, err := s.GetCredential(ctx)
	require.NoError(t, err)
	assert.Equal(t, cred, got)
}

func TestSaveCredential_ReplacesPrevious(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	first := &storage.StoredCredential{AccessToken: "a1", RefreshToken: "r1", Salt: "s"}
	second := &storage.StoredCredential{AccessToken: "a2", RefreshToken: "r2", Salt: "s"}

	require.NoError(t, s.SaveCredential(ctx, first))
	require.NoError(t, s.SaveCredential(ctx, second))

	got, err := s.GetCredential(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a2", got.AccessToken)
	assert.Equal(t, "r2", got.RefreshToken)
}

func TestSaveCredential_Nil(t *testing.T) {
	s := newTestStorage(t)

	assert.Error(t, s.SaveCredential(context.Background(), nil))
}

func TestGetCredential_NotFound(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.GetCredential(context.Background())
	assert.ErrorIs(t, err, storage.ErrCredentialNotFound)
}

func TestDeleteCredential(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	// Deleting when nothing is stored
	assert.ErrorIs(t, s.DeleteCredential(ctx), storage.ErrCredentialNotFound)

	require.NoError(t, s.SaveCredential(ctx, &storage.StoredCredential{AccessToken: "a", RefreshToken: "r"}))
	require.NoError(t, s.DeleteCredential(ctx))

	_, err := s.GetCredential(ctx)
	assert.ErrorIs(t, err, storage.ErrCredentialNotFound)
}

func TestCredential_SurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "persist.db")
	ctx := context.Background()

	s, err := New(ctx, dbPath)
	require.NoError(t, err)

	cred := &storage.StoredCredential{AccessToken: "a", RefreshToken: "rotated", Salt: "s", ExpiresAt: 42}
	require.NoError(t, s.SaveCredential(ctx, cred))
	require.NoError(t, s.Close())

	reopened, err := New(ctx, dbPath)
	require.NoError(t, err)
	defer func() {
		_ = reopened.Close()
	}()

	got, err := reopened.GetCredential(ctx)
	require.NoError(t, err)
	assert.Equal(t, cred, got)
}
