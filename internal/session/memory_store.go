package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MemoryCredentialStore is an in-memory store intended for tests and
// ephemeral runs where credentials should not outlive the process.
type MemoryCredentialStore struct {
	mutex       sync.Mutex
	accessToken string
	userJSON    string
	hasSession  bool
}

// NewMemoryCredentialStore creates an empty in-memory credential store.
func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{}
}

// Save replaces the stored token and profile.
func (store *MemoryCredentialStore) Save(ctx context.Context, current Session) error {
	if strings.TrimSpace(current.AccessToken) == "" {
		return fmt.Errorf("credential_store.save: %w", ErrEmptyAccessToken)
	}
	encoded, encodeErr := encodeUser(current.User)
	if encodeErr != nil {
		return encodeErr
	}
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.accessToken = current.AccessToken
	store.userJSON = encoded
	store.hasSession = true
	return nil
}

// Load returns the stored session or ErrNoSession.
func (store *MemoryCredentialStore) Load(ctx context.Context) (Session, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	if !store.hasSession || store.accessToken == "" {
		return Session{}, fmt.Errorf("credential_store.load: %w", ErrNoSession)
	}
	user, decodeErr := decodeUser(store.userJSON)
	if decodeErr != nil {
		return Session{}, fmt.Errorf("credential_store.load: %w", decodeErr)
	}
	return Session{AccessToken: store.accessToken, User: user}, nil
}

// Clear removes the stored session. Clearing an empty store is a no-op.
func (store *MemoryCredentialStore) Clear(ctx context.Context) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.accessToken = ""
	store.userJSON = ""
	store.hasSession = false
	return nil
}
