package session

import (
	"context"
	"errors"
)

// StoreTokenSource adapts a CredentialStore to the token-source shape the
// refresh transport consumes: read the bearer token, swap in a refreshed
// one while keeping the cached profile, or tear the session down.
type StoreTokenSource struct {
	store CredentialStore
}

// NewTokenSource wraps the given credential store.
func NewTokenSource(store CredentialStore) *StoreTokenSource {
	return &StoreTokenSource{store: store}
}

// Token returns the stored access token, or empty when no session exists.
func (source *StoreTokenSource) Token(ctx context.Context) (string, error) {
	current, loadErr := source.store.Load(ctx)
	if loadErr != nil {
		if errors.Is(loadErr, ErrNoSession) {
			return "", nil
		}
		return "", loadErr
	}
	return current.AccessToken, nil
}

// StoreToken replaces the access token, preserving the cached user profile.
// A refresh that lands with no surviving session still stores the token so
// the replayed request can proceed; the profile stays empty until re-login.
func (source *StoreTokenSource) StoreToken(ctx context.Context, accessToken string) error {
	current, loadErr := source.store.Load(ctx)
	if loadErr != nil && !errors.Is(loadErr, ErrNoSession) {
		return loadErr
	}
	current.AccessToken = accessToken
	return source.store.Save(ctx, current)
}

// ClearSession removes both the token and the cached profile.
func (source *StoreTokenSource) ClearSession(ctx context.Context) error {
	return source.store.Clear(ctx)
}
