package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/vidwarden/vidwarden/internal/storage"
)

// The store holds exactly one credential, keyed under "current".
var credentialKey = []byte("current")

// Compile-time check that Storage implements storage.CredentialStorage
var _ storage.CredentialStorage = (*Storage)(nil)

// SaveCredential atomically replaces the stored credential record.
func (s *Storage) SaveCredential(ctx context.Context, cred *storage.StoredCredential) error {
	if cred == nil {
		return fmt.Errorf("credential is nil")
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCredentials)
		if bucket == nil {
			return fmt.Errorf("credentials bucket not found")
		}

		data, err := json.Marshal(cred)
		if err != nil {
			return fmt.Errorf("failed to marshal credential: %w", err)
		}

		if err := bucket.Put(credentialKey, data); err != nil {
			return fmt.Errorf("failed to save credential: %w", err)
		}
		return nil
	})
}

// GetCredential retrieves the stored credential record.
func (s *Storage) GetCredential(ctx context.Context) (*storage.StoredCredential, error) {
	var cred *storage.StoredCredential

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCredentials)
		if bucket == nil {
			return fmt.Errorf("credentials bucket not found")
		}

		data := bucket.Get(credentialKey)
		if data == nil {
			return storage.ErrCredentialNotFound
		}

		cred = &storage.StoredCredential{}
		if err := json.Unmarshal(data, cred); err != nil {
			return fmt.Errorf("failed to unmarshal credential: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cred, nil
}

// DeleteCredential removes the stored credential record.
func (s *Storage) DeleteCredential(ctx context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCredentials)
		if bucket == nil {
			return fmt.Errorf("credentials bucket not found")
		}

		if bucket.Get(credentialKey) == nil {
			return storage.ErrCredentialNotFound
		}

		if err := bucket.Delete(credentialKey); err != nil {
			return fmt.Errorf("failed to delete credential: %w", err)
		}
		return nil
	})
}
